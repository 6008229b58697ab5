package embeddingutils_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/leadline/pkg/embeddings/ollama"
	embeddingutils "github.com/papercomputeco/leadline/pkg/embeddings/utils"
)

var _ = Describe("NewEmbedder", func() {
	It("defaults to ollama", func() {
		e, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{})
		Expect(err).NotTo(HaveOccurred())
		Expect(e).To(BeAssignableToTypeOf(&ollama.Embedder{}))
	})

	It("rejects unknown providers", func() {
		_, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{ProviderType: "openai"})
		Expect(err).To(MatchError("unsupported embedding provider: openai"))
	})
})
