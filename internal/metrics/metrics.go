// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the matching engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "facematch",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "facematch",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	facesDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "facematch",
			Name:      "faces_detected_total",
			Help:      "Total number of faces detected across all match calls",
		},
	)

	facesRecognized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "facematch",
			Name:      "faces_recognized_total",
			Help:      "Total number of faces credited to an enrolled identity",
		},
	)

	referencesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "facematch",
			Name:      "references_skipped_total",
			Help:      "Reference embeddings skipped for dimension mismatch",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(facesDetected)
	prometheus.MustRegister(facesRecognized)
	prometheus.MustRegister(referencesSkipped)
}

// ObserveMatch records the outcome of one match call.
func ObserveMatch(detected, recognized, skippedReferences int) {
	facesDetected.Add(float64(detected))
	facesRecognized.Add(float64(recognized))
	referencesSkipped.Add(float64(skippedReferences))
}

// Middleware records HTTP request duration and count.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(ww.status)

			// Use chi route pattern for path normalization.
			path := chi.RouteContext(r.Context()).RoutePattern()
			if path == "" {
				path = "unknown"
			}

			httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
			httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		})
	}
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b)
}
