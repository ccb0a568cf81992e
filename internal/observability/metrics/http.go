package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	retrievalTotal      *prometheus.CounterVec
	retrievalDuration   *prometheus.HistogramVec
	sourceFailuresTotal *prometheus.CounterVec
	rerankSkippedTotal  prometheus.Counter
	feedbackTotal       *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "athenus",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "athenus",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "athenus",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrievalTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "athenus",
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total retrievals by role and outcome.",
		},
		[]string{"service", "role", "outcome"},
	)
	retrievalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "athenus",
			Subsystem: "retrieval",
			Name:      "duration_seconds",
			Help:      "Retrieval pipeline duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "role"},
	)
	sourceFailuresTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "athenus",
			Subsystem: "retrieval",
			Name:      "source_failures_total",
			Help:      "Total retrieval source failures absorbed by the pipeline.",
		},
		[]string{"service", "source"},
	)
	rerankSkippedTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "athenus",
			Subsystem: "retrieval",
			Name:      "rerank_skipped_total",
			Help:      "Total retrievals served in fused order after a reranker failure.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	feedbackTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "athenus",
			Subsystem: "feedback",
			Name:      "received_total",
			Help:      "Total feedback submissions by rating.",
		},
		[]string{"service", "rating"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		retrievalTotal,
		retrievalDuration,
		sourceFailuresTotal,
		rerankSkippedTotal,
		feedbackTotal,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		retrievalTotal:      retrievalTotal,
		retrievalDuration:   retrievalDuration,
		sourceFailuresTotal: sourceFailuresTotal,
		rerankSkippedTotal:  rerankSkippedTotal,
		feedbackTotal:       feedbackTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := r.URL.Path
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// RetrievalObserver adapts the metrics set to the retrieval pipeline's
// observer contract.
type RetrievalObserver struct {
	metrics *HTTPServerMetrics
	service string
}

func (m *HTTPServerMetrics) RetrievalObserver(service string) *RetrievalObserver {
	return &RetrievalObserver{metrics: m, service: service}
}

func (o *RetrievalObserver) ObserveRetrieval(role, outcome string, duration time.Duration) {
	o.metrics.retrievalTotal.WithLabelValues(o.service, role, outcome).Inc()
	o.metrics.retrievalDuration.WithLabelValues(o.service, role).Observe(duration.Seconds())
}

func (o *RetrievalObserver) ObserveSourceFailure(source string) {
	if source == "" {
		source = "unknown"
	}
	o.metrics.sourceFailuresTotal.WithLabelValues(o.service, source).Inc()
}

func (o *RetrievalObserver) ObserveRerankSkipped() {
	o.metrics.rerankSkippedTotal.Inc()
}

// FeedbackCounter adapts the metrics set to the feedback observer contract.
type FeedbackCounter struct {
	metrics *HTTPServerMetrics
	service string
}

func (m *HTTPServerMetrics) FeedbackObserver(service string) *FeedbackCounter {
	return &FeedbackCounter{metrics: m, service: service}
}

func (o *FeedbackCounter) ObserveFeedback(rating int) {
	o.metrics.feedbackTotal.WithLabelValues(o.service, strconv.Itoa(rating)).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
