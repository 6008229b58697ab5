package assistant_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/leadline/pkg/analytics"
	"github.com/papercomputeco/leadline/pkg/assistant"
	"github.com/papercomputeco/leadline/pkg/generation"
	"github.com/papercomputeco/leadline/pkg/llm"
	"github.com/papercomputeco/leadline/pkg/logger"
	"github.com/papercomputeco/leadline/pkg/prompt"
	"github.com/papercomputeco/leadline/pkg/retrieval"
	"github.com/papercomputeco/leadline/pkg/stage"
	testutils "github.com/papercomputeco/leadline/pkg/utils/test"
)

type eventLog struct {
	events []*analytics.Event
}

func (l *eventLog) Enqueue(e *analytics.Event) bool {
	l.events = append(l.events, e)
	return true
}

func (l *eventLog) types() []string {
	out := make([]string, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.EventType)
	}
	return out
}

func record(role, text string) map[string]any {
	return map[string]any{"role": role, "text": text}
}

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		gen       *testutils.MockGenerator
		retriever *testutils.MockRetriever
		events    *eventLog
		svc       *assistant.Service
	)

	build := func(window int) {
		a := prompt.NewAssembler("", "", prompt.StaticPolicy("<pricing>Nails $4,200</pricing>"))
		a.Clock = func() time.Time { return time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC) }

		var err error
		svc, err = assistant.NewService(&assistant.Config{
			Generation:    generation.NewClient(gen, generation.WithModel("gemini-test")),
			Prompt:        a,
			Retrieval:     retrieval.NewClient(retriever),
			Sink:          analytics.NewSink(logger.Nop(), events),
			HistoryWindow: window,
			Logger:        logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		ctx = context.Background()
		gen = testutils.NewMockGenerator("**Nails** tuition is $4,200. Which campus works best for you?")
		retriever = testutils.NewMockRetriever(
			retrieval.Chunk{Text: "Nails program tuition is $4,200 including kit.", Title: "nails.pdf", Link: "gs://kb/programs/nails.pdf"},
			retrieval.Chunk{Text: "Parking is available on Route 23."},
		)
		events = &eventLog{}
		build(0)
	})

	Describe("NewService", func() {
		It("requires a generation client and a prompt assembler", func() {
			_, err := assistant.NewService(&assistant.Config{})
			Expect(err).To(MatchError("generation client is required"))

			_, err = assistant.NewService(&assistant.Config{Generation: generation.NewClient(gen)})
			Expect(err).To(MatchError("prompt assembler is required"))
		})
	})

	It("rejects requests without a message", func() {
		_, err := svc.Chat(ctx, &assistant.Request{Message: "   ", UserID: "u1"})
		Expect(err).To(MatchError(assistant.ErrMissingMessage))
		Expect(assistant.CodeOf(err)).To(Equal(assistant.CodeInvalidInput))
		Expect(events.events).To(BeEmpty())
	})

	It("accepts query and text as aliases", func() {
		Expect((&assistant.Request{Query: " hi "}).Input()).To(Equal("hi"))
		Expect((&assistant.Request{Text: "hola"}).Input()).To(Equal("hola"))
		Expect((&assistant.Request{Message: "a", Query: "b"}).Input()).To(Equal("a"))
	})

	Context("when the lead closes after sharing their contact", func() {
		It("short-circuits with the canned completion message", func() {
			resp, err := svc.Chat(ctx, &assistant.Request{
				Message: "thanks",
				History: []any{
					record("user", "my email is a@b.com and phone 555-123-4567, enrollment advisor will contact me"),
				},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Response).To(Equal(assistant.CompletionMessage))
			Expect(resp.ShouldComplete).To(BeTrue())
			Expect(resp.Stage).To(Equal(stage.Completion))
			Expect(resp.TotalLatency).To(BeNumerically(">=", 0))

			streams, oneShots := gen.Counts()
			Expect(streams + oneShots).To(BeZero())
			Expect(retriever.Calls()).To(BeEmpty())
			Expect(events.types()).To(Equal([]string{analytics.EventUserMessage, analytics.EventAssistantReply}))
			Expect(events.events[0].UserID).To(Equal(analytics.UnknownID))
		})

		It("replies in Spanish to a Spanish-speaking lead", func() {
			resp, err := svc.Chat(ctx, &assistant.Request{
				Message: "¡Gracias!",
				History: []any{
					record("user", "mi correo es ana@b.com y mi teléfono 555-123-4567"),
					record("assistant", "Thank you, Ana! An enrollment advisor will contact you soon."),
				},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Response).To(Equal(assistant.CompletionMessageSpanish))
		})

		It("serializes the latency fields", func() {
			resp, err := svc.Chat(ctx, &assistant.Request{
				Message: "thanks",
				History: []any{record("user", "a@b.com 555-123-4567 enrollment")},
			})
			Expect(err).NotTo(HaveOccurred())

			raw, err := json.Marshal(resp)
			Expect(err).NotTo(HaveOccurred())
			var body map[string]any
			Expect(json.Unmarshal(raw, &body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("should_complete_conversation", true))
			Expect(body).To(HaveKeyWithValue("rag_snippets", BeEmpty()))
			for _, key := range []string{"classification_latency", "retrieval_latency", "generation_latency", "total_latency"} {
				Expect(body).To(HaveKey(key))
			}
		})
	})

	Context("on the full pipeline", func() {
		It("classifies, retrieves, prompts and returns plain text", func() {
			resp, err := svc.Chat(ctx, &assistant.Request{
				Message:  "How much is tuition for nails?",
				UserID:   "u1",
				ThreadID: "t1",
				History:  []any{record("user", "hi"), record("assistant", "Hello! How can I help?")},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Response).To(Equal("Nails tuition is $4,200. Which campus works best for you?"))
			Expect(resp.Model).To(Equal("gemini-test"))
			Expect(resp.Stage).To(Equal(stage.Pricing))
			Expect(resp.ShouldComplete).To(BeFalse())
			Expect(resp.Snippets).To(Equal([]string{"Nails program tuition is $4,200 including kit."}))
			Expect(resp.Sources).To(Equal([]retrieval.Source{{Label: "nails.pdf", Folder: "kb/programs"}}))

			Expect(retriever.Calls()).To(Equal([]int{retrieval.DefaultTopK}))

			reqs := gen.Requests()
			Expect(reqs).To(HaveLen(1))
			Expect(reqs[0].System).To(ContainSubstring("<stage>pricing</stage>"))
			Expect(reqs[0].System).To(ContainSubstring("Nails program tuition is $4,200 including kit."))
			Expect(*reqs[0].MaxTokens).To(Equal(800))
			last := reqs[0].Messages[len(reqs[0].Messages)-1]
			Expect(last.Role).To(Equal(llm.RoleUser))
			Expect(last.GetText()).To(Equal("How much is tuition for nails?"))

			Expect(events.types()).To(Equal([]string{analytics.EventUserMessage, analytics.EventAssistantReply}))
			reply := events.events[1]
			Expect(reply.ThreadID).To(Equal("t1"))
			Expect(reply.Stage).To(Equal("pricing"))
			Expect(reply.SnippetCount).To(Equal(1))
			Expect(reply.Language).To(Equal("en"))
		})

		It("still replies when retrieval fails", func() {
			retriever.Err = errors.New("search returned 503")

			resp, err := svc.Chat(ctx, &assistant.Request{Message: "Tell me about the nails program"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Response).NotTo(BeEmpty())
			Expect(resp.Snippets).To(BeEmpty())
			Expect(resp.Sources).To(BeEmpty())
			Expect(gen.Requests()[0].System).To(ContainSubstring("<rag>\n" + prompt.NoContext))
		})

		It("uses the late-stage depth once contact is collected", func() {
			_, err := svc.Chat(ctx, &assistant.Request{
				Message: "what should I bring?",
				History: []any{record("user", "Jane Doe jane@example.com 555-123-4567")},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(retriever.Calls()).To(Equal([]int{retrieval.LateStageTopK}))
		})

		It("sends only the history window to the model", func() {
			build(2)
			_, err := svc.Chat(ctx, &assistant.Request{
				Message: "and the schedule?",
				History: []any{
					record("user", "hi"),
					record("assistant", "Hello!"),
					record("user", "nails please"),
					record("assistant", "Nails runs Mon-Fri."),
				},
			})
			Expect(err).NotTo(HaveOccurred())

			msgs := gen.Requests()[0].Messages
			Expect(msgs).To(HaveLen(3))
			Expect(msgs[0].GetText()).To(Equal("nails please"))
			Expect(msgs[2].GetText()).To(Equal("and the schedule?"))
		})

		It("falls back to a one-shot call when streaming fails", func() {
			gen.StreamErr = errors.New("stream reset")

			resp, err := svc.Chat(ctx, &assistant.Request{Message: "hi"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Stage).To(Equal(stage.Initial))

			streams, oneShots := gen.Counts()
			Expect(streams).To(Equal(1))
			Expect(oneShots).To(Equal(1))
		})

		It("reports generation failures as errors with an analytics event", func() {
			gen.StreamErr = errors.New("stream reset")
			gen.Err = errors.New("quota exceeded")

			_, err := svc.Chat(ctx, &assistant.Request{Message: "hi", UserID: "u9", ThreadID: "t9"})
			Expect(err).To(MatchError(ContainSubstring("quota exceeded")))
			Expect(assistant.CodeOf(err)).To(Equal(assistant.CodeGeneration))

			Expect(events.types()).To(Equal([]string{analytics.EventUserMessage, analytics.EventAssistantError}))
			failed := events.events[1]
			Expect(failed.UserID).To(Equal("u9"))
			Expect(failed.ThreadID).To(Equal("t9"))
			Expect(failed.Error).To(ContainSubstring("quota exceeded"))
		})
	})
})

var _ = Describe("Seconds", func() {
	It("rounds to milliseconds", func() {
		Expect(assistant.Seconds(1234567 * time.Microsecond)).To(Equal(1.235))
		Expect(assistant.Seconds(0)).To(Equal(0.0))
	})
})

var _ = Describe("CodeOf", func() {
	It("defaults to internal", func() {
		Expect(assistant.CodeOf(errors.New("boom"))).To(Equal(assistant.CodeInternal))
		Expect(assistant.CodeOf(&assistant.Error{Code: assistant.CodeGeneration, Err: errors.New("x")})).To(Equal(assistant.CodeGeneration))
	})
})
