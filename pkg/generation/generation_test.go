package generation_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/papercomputeco/leadline/pkg/generation"
	"github.com/papercomputeco/leadline/pkg/llm"
	"github.com/papercomputeco/leadline/pkg/metrics"
	"github.com/papercomputeco/leadline/pkg/stage"
	testutils "github.com/papercomputeco/leadline/pkg/utils/test"
)

var _ = Describe("Client", func() {
	var (
		gen      *testutils.MockGenerator
		contents []llm.Message
		ctx      context.Context
	)

	BeforeEach(func() {
		gen = testutils.NewMockGenerator("Hello!")
		contents = []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")}
		ctx = context.Background()
	})

	Describe("BudgetFor", func() {
		It("uses the stage table", func() {
			c := generation.NewClient(gen)
			Expect(c.BudgetFor(stage.Completion)).To(Equal(generation.Budget{MaxOutputTokens: 150, Temperature: 0.1}))
			Expect(c.BudgetFor(stage.Pricing)).To(Equal(generation.Budget{MaxOutputTokens: 800, Temperature: 0.2}))
		})

		It("falls back to the configured defaults", func() {
			c := generation.NewClient(gen, generation.WithDefaults(1200, 0.4))
			Expect(c.BudgetFor(stage.Active)).To(Equal(generation.Budget{MaxOutputTokens: 1200, Temperature: 0.4}))
			Expect(c.BudgetFor(stage.Stage("unheard_of"))).To(Equal(generation.Budget{MaxOutputTokens: 1200, Temperature: 0.4}))
		})

		It("keeps package defaults for zero overrides", func() {
			c := generation.NewClient(gen, generation.WithDefaults(0, 0))
			Expect(c.BudgetFor(stage.Active)).To(Equal(generation.Budget{
				MaxOutputTokens: generation.DefaultMaxOutputTokens,
				Temperature:     generation.DefaultTemperature,
			}))
		})
	})

	Describe("Complete", func() {
		It("streams with the stage budget", func() {
			c := generation.NewClient(gen, generation.WithModel("gemini-2.5-flash"), generation.WithTopP(0.9))

			resp, err := c.Complete(ctx, "system doc", contents, stage.Completion)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message.GetText()).To(Equal("Hello!"))

			streams, oneShots := gen.Counts()
			Expect(streams).To(Equal(1))
			Expect(oneShots).To(Equal(0))

			req := gen.Requests()[0]
			Expect(req.Model).To(Equal("gemini-2.5-flash"))
			Expect(req.System).To(Equal("system doc"))
			Expect(req.Messages).To(Equal(contents))
			Expect(*req.MaxTokens).To(Equal(150))
			Expect(*req.Temperature).To(Equal(0.1))
			Expect(*req.TopP).To(Equal(0.9))
		})

		It("falls back to one-shot once when streaming fails", func() {
			m := metrics.NewWithRegistry("generation_test", prometheus.NewRegistry())
			gen.StreamErr = errors.New("stream reset")

			c := generation.NewClient(gen, generation.WithMetrics(m))
			resp, err := c.Complete(ctx, "sys", contents, stage.Active)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Message.GetText()).To(Equal("Hello!"))

			streams, oneShots := gen.Counts()
			Expect(streams).To(Equal(1))
			Expect(oneShots).To(Equal(1))
			Expect(testutil.ToFloat64(m.GenerationFallbacks)).To(Equal(1.0))
		})

		It("returns the fallback error without retrying further", func() {
			gen.StreamErr = errors.New("stream reset")
			gen.Err = errors.New("quota exceeded")

			_, err := generation.NewClient(gen).Complete(ctx, "sys", contents, stage.Active)
			Expect(err).To(MatchError(ContainSubstring("quota exceeded")))

			streams, oneShots := gen.Counts()
			Expect(streams).To(Equal(1))
			Expect(oneShots).To(Equal(1))
		})

		It("goes straight to one-shot when streaming is disabled", func() {
			c := generation.NewClient(gen, generation.WithStreaming(false))
			_, err := c.Complete(ctx, "sys", contents, stage.Active)
			Expect(err).NotTo(HaveOccurred())

			streams, oneShots := gen.Counts()
			Expect(streams).To(Equal(0))
			Expect(oneShots).To(Equal(1))
		})

		It("does not fall back once the context is done", func() {
			gen.StreamErr = context.Canceled
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := generation.NewClient(gen).Complete(cctx, "sys", contents, stage.Active)
			Expect(err).To(MatchError(context.Canceled))

			_, oneShots := gen.Counts()
			Expect(oneShots).To(Equal(0))
		})
	})
})
