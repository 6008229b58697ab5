package retrieval_test

import (
	"bytes"
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/papercomputeco/leadline/pkg/logger"
	"github.com/papercomputeco/leadline/pkg/metrics"
	"github.com/papercomputeco/leadline/pkg/retrieval"
	"github.com/papercomputeco/leadline/pkg/stage"
	testutils "github.com/papercomputeco/leadline/pkg/utils/test"
)

var _ = Describe("Client", func() {
	var (
		fake *testutils.MockRetriever
		ctx  context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = testutils.NewMockRetriever(
			retrieval.Chunk{Text: "Nails runs Mon-Fri.", Title: "Nails", Link: "gs://kb/programs/nails.pdf"},
			retrieval.Chunk{Text: "Parking is on 5th Avenue."},
			retrieval.Chunk{Text: "Esthetics tuition covers the kit.", Link: "gs://kb/tuition.pdf"},
			retrieval.Chunk{Text: "Classes start in March."},
			retrieval.Chunk{Text: "Barbering is 900 hours."},
		)
	})

	Describe("TopK", func() {
		It("uses the configured depth early on", func() {
			c := retrieval.NewClient(fake, retrieval.WithTopK(7))
			Expect(c.TopK(stage.Pricing)).To(Equal(7))
			Expect(c.TopK(stage.Initial)).To(Equal(7))
		})

		It("narrows the search for late stages", func() {
			c := retrieval.NewClient(fake)
			Expect(c.TopK(stage.EnrollmentCollection)).To(Equal(retrieval.LateStageTopK))
			Expect(c.TopK(stage.Completion)).To(Equal(retrieval.LateStageTopK))
		})

		It("ignores non-positive overrides", func() {
			c := retrieval.NewClient(fake, retrieval.WithTopK(0))
			Expect(c.TopK(stage.Active)).To(Equal(retrieval.DefaultTopK))
		})
	})

	Describe("Retrieve", func() {
		It("drops irrelevant chunks and caps the result", func() {
			res := retrieval.NewClient(fake).Retrieve(ctx, "tell me about nails", stage.Active)

			Expect(fake.Calls()).To(Equal([]int{retrieval.DefaultTopK}))
			Expect(res.Texts()).To(Equal([]string{
				"Nails runs Mon-Fri.",
				"Esthetics tuition covers the kit.",
				"Classes start in March.",
			}))
			Expect(res.Sources()).To(Equal([]retrieval.Source{
				{Label: "Nails", Folder: "kb/programs"},
				{Label: "tuition.pdf", Folder: "kb"},
				{Label: "unknown"},
			}))
		})

		It("truncates long snippets", func() {
			fake.Chunks = []retrieval.Chunk{{Text: "tuition " + strings.Repeat("x", 600)}}

			res := retrieval.NewClient(fake).Retrieve(ctx, "cost", stage.Pricing)
			Expect(res.Snippets).To(HaveLen(1))
			Expect([]rune(res.Snippets[0].Text)).To(HaveLen(retrieval.MaxSnippetChars + 3))
			Expect(res.Snippets[0].Text).To(HaveSuffix("..."))
		})

		It("degrades to an empty result on failure", func() {
			var buf bytes.Buffer
			m := metrics.NewWithRegistry("retrieval_test", prometheus.NewRegistry())
			fake.Err = errors.New("boom")

			c := retrieval.NewClient(fake,
				retrieval.WithLogger(logger.New(logger.WithWriter(&buf))),
				retrieval.WithMetrics(m),
			)
			res := c.Retrieve(ctx, "nails", stage.Active)

			Expect(res.Snippets).To(BeEmpty())
			Expect(res.Texts()).To(BeEmpty())
			Expect(buf.String()).To(ContainSubstring("retrieval failed"))
			Expect(testutil.ToFloat64(m.RetrievalFailures)).To(Equal(1.0))
		})

		It("skips blank queries", func() {
			res := retrieval.NewClient(fake).Retrieve(ctx, "   ", stage.Active)
			Expect(res.Snippets).To(BeEmpty())
			Expect(fake.Calls()).To(BeEmpty())
		})

		It("returns nothing without a backend", func() {
			res := retrieval.NewClient(nil).Retrieve(ctx, "nails", stage.Active)
			Expect(res.Snippets).To(BeEmpty())
		})
	})
})

var _ = Describe("Relevant", func() {
	DescribeTable("keyword relevance",
		func(text string, expected bool) {
			Expect(retrieval.Relevant(text)).To(Equal(expected))
		},
		Entry("program", "The COSMETOLOGY program", true),
		Entry("month", "Next intake is in September", true),
		Entry("money", "Financial aid is available", true),
		Entry("spanish", "El precio incluye el kit", true),
		Entry("unrelated", "Parking is on 5th Avenue", false),
	)
})

var _ = Describe("SourceFor", func() {
	DescribeTable("labels and folders",
		func(title, link string, expected retrieval.Source) {
			Expect(retrieval.SourceFor(title, link)).To(Equal(expected))
		},
		Entry("title wins", "Catalog", "gs://kb/docs/catalog.pdf", retrieval.Source{Label: "Catalog", Folder: "kb/docs"}),
		Entry("base name fallback", "", "https://example.com/files/schedule.html", retrieval.Source{Label: "schedule.html", Folder: "example.com/files"}),
		Entry("no link", "FAQ", "", retrieval.Source{Label: "FAQ"}),
		Entry("nothing", "", "", retrieval.Source{Label: "unknown"}),
	)
})
