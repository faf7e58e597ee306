package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	registrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "members_registered_total",
		Help: "Total member registrations accepted.",
	})

	statusChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "member_status_changes_total",
			Help: "Member status transitions applied.",
		},
		[]string{"to"},
	)
)

// Init registers all metrics in the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		registrationsTotal, statusChangesTotal,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// CountRegistration records one accepted registration.
func CountRegistration() {
	registrationsTotal.Inc()
}

// CountStatusChange records a member status transition.
func CountStatusChange(to string) {
	statusChangesTotal.WithLabelValues(to).Inc()
}

// collections whose element paths collapse to :id for metric labels.
var idCollections = map[string]bool{
	"members":        true,
	"disciplinary":   true,
	"events":         true,
	"communications": true,
	"cards":          true,
	"users":          true,
}

// subresources allowed after an :id segment.
var idSubresources = map[string]bool{
	"status":   true,
	"advance":  true,
	"rsvps":    true,
	"cards":    true,
	"actions":  true,
	"evidence": true,
	"notes":    true,
}

// CanonicalPath collapses resource identifiers so metric labels stay
// low-cardinality.
func CanonicalPath(raw string) string {
	if raw == "" {
		return "/"
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	parts := strings.Split(strings.Trim(raw, "/"), "/")
	if len(parts) >= 3 && parts[0] == "v1" && idCollections[parts[1]] {
		switch len(parts) {
		case 3:
			return "/v1/" + parts[1] + "/:id"
		case 4:
			if idSubresources[parts[3]] {
				return "/v1/" + parts[1] + "/:id/" + parts[3]
			}
		}
	}
	if raw == "" {
		return "/"
	}
	return raw
}

// Instrument measures request rate, latency and in-flight count.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter records the response code for labelling.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush forwards to the underlying writer so SSE keeps streaming through
// the instrumented handler chain.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
