package qdrant_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	qc "github.com/qdrant/go-client/qdrant"

	"github.com/papercomputeco/leadline/pkg/retrieval"
	"github.com/papercomputeco/leadline/pkg/retrieval/qdrant"
	testutils "github.com/papercomputeco/leadline/pkg/utils/test"
)

type fakeQuerier struct {
	points  []*qc.ScoredPoint
	err     error
	request *qc.QueryPoints
	closed  bool
}

func (f *fakeQuerier) Query(_ context.Context, req *qc.QueryPoints) ([]*qc.ScoredPoint, error) {
	f.request = req
	return f.points, f.err
}

func (f *fakeQuerier) Close() error {
	f.closed = true
	return nil
}

var _ = Describe("Retriever", func() {
	var (
		fake     *fakeQuerier
		embedder *testutils.MockEmbedder
	)

	BeforeEach(func() {
		fake = &fakeQuerier{points: []*qc.ScoredPoint{
			{
				Score: 0.92,
				Payload: map[string]*qc.Value{
					qdrant.PayloadText:   qc.NewValueString("Skin Care runs Mon-Fri."),
					qdrant.PayloadTitle:  qc.NewValueString("Skin Care"),
					qdrant.PayloadSource: qc.NewValueString("kb/nj/skin-care.md"),
				},
			},
			{Score: 0.5, Payload: map[string]*qc.Value{qdrant.PayloadTitle: qc.NewValueString("no text")}},
		}}
		embedder = testutils.NewMockEmbedder()
		embedder.Embeddings["skin care"] = []float32{1, 0, 0}
	})

	It("validates its dependencies", func() {
		_, err := qdrant.NewWithClient(fake, "", embedder)
		Expect(err).To(MatchError(ContainSubstring("collection is required")))

		_, err = qdrant.NewWithClient(fake, "kb", nil)
		Expect(err).To(MatchError(ContainSubstring("embedder is required")))
	})

	It("embeds the query and maps payloads to chunks", func() {
		r, err := qdrant.NewWithClient(fake, "leadline_kb", embedder)
		Expect(err).NotTo(HaveOccurred())

		chunks, err := r.Search(context.Background(), "skin care", 3)
		Expect(err).NotTo(HaveOccurred())

		Expect(embedder.Inputs()).To(Equal([]string{"skin care"}))
		Expect(fake.request.GetCollectionName()).To(Equal("leadline_kb"))
		Expect(fake.request.GetLimit()).To(Equal(uint64(3)))
		Expect(chunks).To(Equal([]retrieval.Chunk{{
			Text:  "Skin Care runs Mon-Fri.",
			Title: "Skin Care",
			Link:  "kb/nj/skin-care.md",
			Score: 0.92,
		}}))
	})

	It("wraps embedding failures", func() {
		embedder.FailOn = "skin care"
		r, err := qdrant.NewWithClient(fake, "kb", embedder)
		Expect(err).NotTo(HaveOccurred())

		_, err = r.Search(context.Background(), "skin care", 3)
		Expect(err).To(MatchError(ContainSubstring("embedding query")))
	})

	It("wraps query failures", func() {
		fake.err = errors.New("unavailable")
		r, err := qdrant.NewWithClient(fake, "kb", embedder)
		Expect(err).NotTo(HaveOccurred())

		_, err = r.Search(context.Background(), "skin care", 3)
		Expect(err).To(MatchError(ContainSubstring("querying collection kb")))
	})

	It("closes the client", func() {
		r, err := qdrant.NewWithClient(fake, "kb", embedder)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Close()).To(Succeed())
		Expect(fake.closed).To(BeTrue())
	})

	It("requires a target when dialing", func() {
		_, err := qdrant.New(qdrant.Config{Collection: "kb"}, embedder)
		Expect(err).To(MatchError(ContainSubstring("target is required")))
	})
})
