package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/leadline/pkg/embeddings"
	"github.com/papercomputeco/leadline/pkg/embeddings/ollama"
)

var _ = Describe("Embedder", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		gotBody map[string]string
	)

	BeforeEach(func() {
		gotBody = nil
		handler = func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/api/embed"))
			Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())
			_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2,0.3]]}`))
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
		DeferCleanup(server.Close)
	})

	It("returns the first embedding", func() {
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL + "/"})
		Expect(err).NotTo(HaveOccurred())

		vec, err := e.Embed(context.Background(), "nails schedule")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{0.1, 0.2, 0.3}))
		Expect(gotBody).To(HaveKeyWithValue("model", ollama.DefaultEmbeddingModel))
		Expect(gotBody).To(HaveKeyWithValue("input", "nails schedule"))
	})

	It("rejects vectors of the wrong size", func() {
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL, Dimensions: 768})
		Expect(err).NotTo(HaveOccurred())

		_, err = e.Embed(context.Background(), "x")
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
		Expect(err).To(MatchError(ContainSubstring("expected 768 dimensions, got 3")))
	})

	It("wraps non-200 responses", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = e.Embed(context.Background(), "x")
		Expect(err).To(MatchError(embeddings.ErrEmbedding))
		Expect(err).To(MatchError(ContainSubstring("status 404")))
	})

	It("fails when no embeddings are returned", func() {
		handler = func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"embeddings":[]}`))
		}
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{BaseURL: server.URL})
		Expect(err).NotTo(HaveOccurred())

		_, err = e.Embed(context.Background(), "x")
		Expect(err).To(MatchError(ContainSubstring("no embeddings returned")))
	})
})
