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

	extractionsTotal    *prometheus.CounterVec
	extractedChars      *prometheus.HistogramVec
	analysesTotal       *prometheus.CounterVec
	analysisDuration    *prometheus.HistogramVec
	matchScores         *prometheus.HistogramVec
	rateLimitRejections *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skillgap",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skillgap",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "skillgap",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	extractionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skillgap",
			Subsystem: "extraction",
			Name:      "documents_total",
			Help:      "Total document extraction attempts by category and outcome.",
		},
		[]string{"service", "category", "outcome"},
	)
	extractedChars := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skillgap",
			Subsystem: "extraction",
			Name:      "text_chars",
			Help:      "Distribution of sanitized text length per successful extraction.",
			Buckets:   []float64{50, 200, 500, 1000, 2500, 5000, 10000, 25000},
		},
		[]string{"service", "category"},
	)
	analysesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skillgap",
			Subsystem: "analysis",
			Name:      "runs_total",
			Help:      "Total match analysis runs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skillgap",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "End-to-end match analysis duration in seconds.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 120},
		},
		[]string{"service"},
	)
	matchScores := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skillgap",
			Subsystem: "analysis",
			Name:      "match_score",
			Help:      "Distribution of match scores returned by completed analyses.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
		[]string{"service"},
	)
	rateLimitRejections := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skillgap",
			Subsystem: "http",
			Name:      "rate_limit_rejections_total",
			Help:      "Total requests rejected by the per-caller rate limiter.",
		},
		[]string{"service", "path"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		extractionsTotal,
		extractedChars,
		analysesTotal,
		analysisDuration,
		matchScores,
		rateLimitRejections,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		extractionsTotal:    extractionsTotal,
		extractedChars:      extractedChars,
		analysesTotal:       analysesTotal,
		analysisDuration:    analysisDuration,
		matchScores:         matchScores,
		rateLimitRejections: rateLimitRejections,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
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
			r.URL.Path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

func (m *HTTPServerMetrics) RecordExtraction(service, category, outcome string, chars int) {
	if category == "" {
		category = "unknown"
	}
	m.extractionsTotal.WithLabelValues(service, category, outcome).Inc()
	if outcome == "success" {
		m.extractedChars.WithLabelValues(service, category).Observe(float64(chars))
	}
}

func (m *HTTPServerMetrics) RecordAnalysis(service, outcome string, score float64, duration time.Duration) {
	m.analysesTotal.WithLabelValues(service, outcome).Inc()
	m.analysisDuration.WithLabelValues(service).Observe(duration.Seconds())
	if outcome == "success" {
		m.matchScores.WithLabelValues(service).Observe(score)
	}
}

func (m *HTTPServerMetrics) RecordRateLimitRejection(service, path string) {
	m.rateLimitRejections.WithLabelValues(service, path).Inc()
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
