package generation_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/oauth2"

	"github.com/papercomputeco/leadline/pkg/generation"
	"github.com/papercomputeco/leadline/pkg/llm"
	"github.com/papercomputeco/leadline/pkg/logger"
)

const modelPath = "/v1/projects/christinevalmy/locations/us-central1/publishers/google/models/gemini-2.5-flash"

const oneShotBody = `{
  "candidates": [{"content": {"role": "model", "parts": [{"text": "**Hi** there"}]}, "finishReason": "STOP"}],
  "usageMetadata": {"promptTokenCount": 10, "candidatesTokenCount": 3, "totalTokenCount": 13},
  "modelVersion": "gemini-2.5-flash-001"
}`

const streamBody = "data: {\"candidates\":[{\"content\":{\"role\":\"model\",\"parts\":[{\"text\":\"Hel\"}]}}]}\n\n" +
	"data: {\"candidates\":[{\"content\":{\"role\":\"model\",\"parts\":[{\"text\":\"oops\"}]},\"finishReason\":\"SAFETY\"}]}\n\n" +
	"data: {\"candidates\":[{\"content\":{\"role\":\"model\",\"parts\":[{\"text\":\"lo\"}]},\"finishReason\":\"STOP\"}],\"modelVersion\":\"gemini-2.5-flash-001\"}\n\n"

var _ = Describe("Vertex", func() {
	var (
		server  *httptest.Server
		handler http.HandlerFunc
		gotURL  string
		gotAuth string
		gotBody map[string]any
		req     *llm.ChatRequest
	)

	BeforeEach(func() {
		gotURL, gotAuth, gotBody = "", "", nil
		handler = func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, oneShotBody)
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			gotURL = r.URL.RequestURI()
			gotAuth = r.Header.Get("Authorization")
			Expect(json.NewDecoder(r.Body).Decode(&gotBody)).To(Succeed())
			handler(w, r)
		}))
		DeferCleanup(server.Close)

		maxTokens := 150
		req = &llm.ChatRequest{
			Model:     "gemini-2.5-flash",
			System:    "be brief",
			Messages:  []llm.Message{llm.NewTextMessage(llm.RoleUser, "hi")},
			MaxTokens: &maxTokens,
		}
	})

	newVertex := func() *generation.Vertex {
		v, err := generation.NewVertex(generation.VertexConfig{
			Project:     "christinevalmy",
			Location:    "us-central1",
			Model:       "gemini-2.5-flash",
			Endpoint:    server.URL + "/v1",
			TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"}),
		})
		Expect(err).NotTo(HaveOccurred())
		return v
	}

	It("requires project, location and model", func() {
		_, err := generation.NewVertex(generation.VertexConfig{Project: "p"})
		Expect(err).To(HaveOccurred())
	})

	Describe("Generate", func() {
		It("posts to generateContent and parses the reply", func() {
			resp, err := newVertex().Generate(context.Background(), req)
			Expect(err).NotTo(HaveOccurred())

			Expect(gotURL).To(Equal(modelPath + ":generateContent"))
			Expect(gotAuth).To(Equal("Bearer tok"))
			Expect(gotBody).To(HaveKey("systemInstruction"))
			Expect(gotBody).To(HaveKey("safetySettings"))

			Expect(resp.Message.GetText()).To(Equal("**Hi** there"))
			Expect(resp.Model).To(Equal("gemini-2.5-flash-001"))
			Expect(resp.Usage).NotTo(BeNil())
			Expect(resp.Usage.TotalTokens).To(Equal(13))
		})

		It("returns HTTPStatusError for non-200 responses", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "quota exceeded", http.StatusTooManyRequests)
			}

			_, err := newVertex().Generate(context.Background(), req)
			var statusErr *generation.HTTPStatusError
			Expect(errors.As(err, &statusErr)).To(BeTrue())
			Expect(statusErr.StatusCode).To(Equal(http.StatusTooManyRequests))
			Expect(statusErr.Body).To(Equal("quota exceeded"))
		})
	})

	Describe("Stream", func() {
		It("assembles deltas and skips blocked chunks", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "text/event-stream")
				_, _ = io.WriteString(w, streamBody)
			}

			var deltas []string
			resp, err := newVertex().Stream(context.Background(), req, func(d string) {
				deltas = append(deltas, d)
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(gotURL).To(Equal(modelPath + ":streamGenerateContent?alt=sse"))
			Expect(deltas).To(Equal([]string{"Hel", "lo"}))
			Expect(resp.Message.GetText()).To(Equal("Hello"))
			Expect(resp.Model).To(Equal("gemini-2.5-flash-001"))
			Expect(resp.StopReason).To(Equal("STOP"))
			Expect(resp.Done).To(BeTrue())
		})

		It("reports an empty stream", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "data: [DONE]\n\n")
			}

			_, err := newVertex().Stream(context.Background(), req, nil)
			Expect(err).To(MatchError(generation.ErrEmptyStream))
		})

		It("logs the raw stream when it yields no text at debug level", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "data: [DONE]\n\n")
			}

			var buf strings.Builder
			v, err := generation.NewVertex(generation.VertexConfig{
				Project:  "christinevalmy",
				Location: "us-central1",
				Model:    "gemini-2.5-flash",
				Endpoint: server.URL + "/v1",
				Logger:   logger.New(logger.WithWriter(&buf), logger.WithDebug(true)),
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = v.Stream(context.Background(), req, nil)
			Expect(err).To(MatchError(generation.ErrEmptyStream))
			Expect(buf.String()).To(ContainSubstring("model stream produced no text"))
			Expect(buf.String()).To(ContainSubstring("data: [DONE]"))
		})

		It("rejects malformed chunks", func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, "data: {not json\n\n")
			}

			_, err := newVertex().Stream(context.Background(), req, nil)
			Expect(err).To(MatchError(ContainSubstring("parsing stream chunk")))
		})
	})
})
