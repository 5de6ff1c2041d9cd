package observe

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 엔진과 HTTP 지표
// nil 포인터에 대해 모든 기록 메서드는 아무것도 하지 않는다.
type Metrics struct {
	gatherer prometheus.Gatherer

	ConstructMatches   *prometheus.CounterVec
	MatchMisses        prometheus.Counter
	ExtractionFailures *prometheus.CounterVec
	SamplesGenerated   *prometheus.CounterVec
	SamplesSkipped     *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// NewMetrics 새 레지스트리에 지표 등록
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		gatherer: reg,
		ConstructMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatdb_construct_matches_total",
			Help: "Natural language inputs classified per construct.",
		}, []string{"construct"}),
		MatchMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chatdb_construct_misses_total",
			Help: "Natural language inputs that matched no construct.",
		}),
		ExtractionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatdb_extraction_failures_total",
			Help: "Classified inputs whose slots could not be extracted.",
		}, []string{"construct"}),
		SamplesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatdb_samples_generated_total",
			Help: "Sample queries synthesized per construct.",
		}, []string{"construct"}),
		SamplesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatdb_samples_skipped_total",
			Help: "Sample variants skipped per construct.",
		}, []string{"construct"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chatdb_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chatdb_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	reg.MustRegister(
		m.ConstructMatches, m.MatchMisses, m.ExtractionFailures,
		m.SamplesGenerated, m.SamplesSkipped,
		m.HTTPRequests, m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler /metrics 핸들러
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveMatch(construct string, ok bool) {
	if m == nil {
		return
	}
	if !ok {
		m.MatchMisses.Inc()
		return
	}
	m.ConstructMatches.WithLabelValues(construct).Inc()
}

func (m *Metrics) ObserveExtractionFailure(construct string) {
	if m == nil {
		return
	}
	m.ExtractionFailures.WithLabelValues(construct).Inc()
}

func (m *Metrics) ObserveSample(construct string, skipped bool) {
	if m == nil {
		return
	}
	if skipped {
		m.SamplesSkipped.WithLabelValues(construct).Inc()
		return
	}
	m.SamplesGenerated.WithLabelValues(construct).Inc()
}
