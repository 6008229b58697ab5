package metrics_test

import (
	"io"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/papercomputeco/leadline/pkg/metrics"
)

var _ = Describe("Metrics", func() {
	var m *metrics.Metrics

	BeforeEach(func() {
		m = metrics.NewWithRegistry("test", prometheus.NewRegistry())
	})

	It("counts requests by stage and outcome", func() {
		m.ObserveRequest("pricing", metrics.OutcomeOK)
		m.ObserveRequest("pricing", metrics.OutcomeOK)
		m.ObserveRequest("completion", metrics.OutcomeFastPath)

		Expect(testutil.ToFloat64(m.Requests.WithLabelValues("pricing", "ok"))).To(Equal(2.0))
		Expect(testutil.ToFloat64(m.Requests.WithLabelValues("completion", "fast_path"))).To(Equal(1.0))
	})

	It("counts degradations and drops", func() {
		m.RetrievalFailed()
		m.GenerationFellBack()
		m.AnalyticsDrop(metrics.DropQueueFull)

		Expect(testutil.ToFloat64(m.RetrievalFailures)).To(Equal(1.0))
		Expect(testutil.ToFloat64(m.GenerationFallbacks)).To(Equal(1.0))
		Expect(testutil.ToFloat64(m.AnalyticsDropped.WithLabelValues("queue_full"))).To(Equal(1.0))
	})

	It("serves the exposition format", func() {
		m.ObservePhase("retrieval", 120*time.Millisecond)

		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

		body, err := io.ReadAll(rec.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).To(ContainSubstring(`test_phase_latency_seconds_count{phase="retrieval"} 1`))
	})

	It("ignores calls on a nil receiver", func() {
		var nilMetrics *metrics.Metrics
		Expect(func() {
			nilMetrics.ObserveRequest("active", metrics.OutcomeOK)
			nilMetrics.ObservePhase("total", time.Second)
			nilMetrics.RetrievalFailed()
			nilMetrics.GenerationFellBack()
			nilMetrics.AnalyticsDrop(metrics.DropPublishError)
		}).NotTo(Panic())
	})
})
