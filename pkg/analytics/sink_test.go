package analytics_test

import (
	"bytes"
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/leadline/pkg/analytics"
	"github.com/papercomputeco/leadline/pkg/logger"
)

type recordingQueue struct {
	events []*analytics.Event
}

func (q *recordingQueue) Enqueue(e *analytics.Event) bool {
	q.events = append(q.events, e)
	return true
}

var _ = Describe("NewEvent", func() {
	It("stamps identity and defaults missing IDs", func() {
		e := analytics.NewEvent(analytics.EventUserMessage, "", "")
		Expect(e.SchemaVersion).To(Equal(analytics.SchemaVersionV1))
		Expect(e.EventID).NotTo(BeEmpty())
		Expect(e.EmittedAt.IsZero()).To(BeFalse())
		Expect(e.UserID).To(Equal(analytics.UnknownID))
		Expect(e.ThreadID).To(Equal(analytics.UnknownID))
	})

	It("generates distinct IDs", func() {
		a := analytics.NewEvent(analytics.EventUserMessage, "u", "t")
		b := analytics.NewEvent(analytics.EventUserMessage, "u", "t")
		Expect(a.EventID).NotTo(Equal(b.EventID))
	})
})

var _ = Describe("Sink", func() {
	var (
		buf   *bytes.Buffer
		queue *recordingQueue
		sink  *analytics.Sink
	)

	BeforeEach(func() {
		buf = &bytes.Buffer{}
		queue = &recordingQueue{}
		sink = analytics.NewSink(logger.New(logger.WithJSON(true), logger.WithWriter(buf)), queue)
	})

	records := func() []map[string]any {
		var out []map[string]any
		for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
			var rec map[string]any
			Expect(json.Unmarshal([]byte(line), &rec)).To(Succeed())
			out = append(out, rec)
		}
		return out
	}

	It("logs replies at INFO and enqueues them", func() {
		e := analytics.NewEvent(analytics.EventAssistantReply, "u1", "t1")
		e.Stage = "pricing"
		e.Model = "gemini-2.5-flash"
		e.Latency.Total = 1.234

		sink.Emit(e)

		Expect(queue.events).To(ConsistOf(e))
		recs := records()
		Expect(recs).To(HaveLen(1))
		Expect(recs[0]).To(HaveKeyWithValue("level", "INFO"))
		Expect(recs[0]).To(HaveKeyWithValue("msg", "assistant_reply"))
		Expect(recs[0]).To(HaveKeyWithValue("component", "analytics"))
		Expect(recs[0]).To(HaveKeyWithValue("user_id", "u1"))
		Expect(recs[0]).To(HaveKeyWithValue("conversation_stage", "pricing"))
		Expect(recs[0]).To(HaveKeyWithValue("total_latency", 1.234))
	})

	It("logs errors at ERROR", func() {
		e := analytics.NewEvent(analytics.EventAssistantError, "u1", "t1")
		e.Error = "boom"

		sink.Emit(e)

		recs := records()
		Expect(recs[0]).To(HaveKeyWithValue("level", "ERROR"))
		Expect(recs[0]).To(HaveKeyWithValue("error", "boom"))
	})

	It("ignores nil events and nil sinks", func() {
		sink.Emit(nil)
		var nilSink *analytics.Sink
		Expect(func() { nilSink.Emit(analytics.NewEvent(analytics.EventUserMessage, "u", "t")) }).NotTo(Panic())
		Expect(queue.events).To(BeEmpty())
	})

	It("only logs without a queue", func() {
		s := analytics.NewSink(logger.New(logger.WithWriter(buf)), nil)
		s.Emit(analytics.NewEvent(analytics.EventUserMessage, "u", "t"))
		Expect(buf.String()).To(ContainSubstring("user_message"))
	})
})
