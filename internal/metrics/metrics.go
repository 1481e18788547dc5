// Package metrics provides Prometheus instrumentation for the gateway.
//
// The gateway registers its metrics at package init and exposes them via
// metrics.Handler() at GET /metrics (Prometheus scrape endpoint).
//
// Standard metrics exposed automatically by prometheus/client_golang:
//   - go_goroutines, go_gc_duration_seconds, etc. (Go runtime)
//   - process_cpu_seconds_total, process_open_fds, etc. (process)
//
// Gateway-specific metrics registered here:
//
//	festivent_gateway_requests_total       — counter: requests by class/outcome
//	festivent_gateway_rejections_total     — counter: rejections by envelope code
//	festivent_gateway_csrf_tokens_total    — counter: token lifecycle events
//	festivent_gateway_lockouts_total       — counter: auth lockouts triggered
//	festivent_gateway_request_duration_seconds — histogram: latency by class
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// collectors is the gateway metric set. There is exactly one definition of
// each collector — the package-level defaults and every test registry get
// instances from the same constructor, so the two can never drift.
type collectors struct {
	requests        *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	csrfTokens      *prometheus.CounterVec
	lockouts        *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newCollectors() collectors {
	return collectors{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "festivent_gateway_requests_total",
			Help: "Requests handled by the gateway, by route class and outcome.",
		}, []string{"class", "outcome"}),

		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "festivent_gateway_rejections_total",
			Help: "Rejected requests by envelope code.",
		}, []string{"code"}),

		csrfTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "festivent_gateway_csrf_tokens_total",
			Help: "One-time token lifecycle events.",
		}, []string{"event"}),

		lockouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "festivent_gateway_lockouts_total",
			Help: "Auth lockouts triggered, by tenant.",
		}, []string{"tenant"}),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "festivent_http_requests_total",
			Help: "Total HTTP requests handled.",
		}, []string{"method", "path", "status"}),

		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "festivent_gateway_request_duration_seconds",
			Help:    "Gateway request latency in seconds.",
			Buckets: prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
		}, []string{"class"}),
	}
}

func (c collectors) mustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		c.requests,
		c.rejections,
		c.csrfTokens,
		c.lockouts,
		c.httpRequests,
		c.requestDuration,
	)
}

// defaultSet backs the exported package-level collectors and is registered
// with the default registry at init.
var defaultSet = newCollectors()

func init() {
	defaultSet.mustRegister(prometheus.DefaultRegisterer)
}

// Requests counts dispatched requests by route class and outcome ("ok" or the
// envelope code).
var Requests = defaultSet.requests

// Rejections counts failed envelopes by code, across every rejection point
// (route resolution, CSRF, rate limit, auth).
var Rejections = defaultSet.rejections

// CSRFTokens counts token lifecycle events: issued, consumed, rejected.
var CSRFTokens = defaultSet.csrfTokens

// Lockouts counts auth lockouts as they trigger, labeled by tenant.
var Lockouts = defaultSet.lockouts

// HTTPRequests counts raw HTTP traffic by method, path, and status, before
// any gateway classification.
var HTTPRequests = defaultSet.httpRequests

// RequestDuration tracks end-to-end gateway latency by route class.
var RequestDuration = defaultSet.requestDuration

// ── Handler ───────────────────────────────────────────────────────────────────

// Handler returns the Prometheus HTTP handler. Mount at GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ── Middleware ────────────────────────────────────────────────────────────────

// Middleware wraps an HTTP handler to record raw request counts. path should
// be low-cardinality; long paths are truncated for label hygiene.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		HTTPRequests.WithLabelValues(r.Method, sanitizePath(r.URL.Path), strconv.Itoa(rw.status)).Inc()
	})
}

// ObserveRequest records one classified gateway request: the class/outcome
// counter, the latency histogram, and — on failure — the rejection counter.
func ObserveRequest(class, outcome string, start time.Time, failedCode string) {
	Requests.WithLabelValues(class, outcome).Inc()
	RequestDuration.WithLabelValues(class).Observe(time.Since(start).Seconds())
	if failedCode != "" {
		Rejections.WithLabelValues(failedCode).Inc()
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// sanitizePath bounds label length; tenant slugs and page names are short, so
// anything longer is attacker-shaped traffic.
func sanitizePath(path string) string {
	if len(path) > 64 {
		return path[:64] + "..."
	}
	return path
}

// ── Init (registry-scoped) ────────────────────────────────────────────────────

// Init registers a fresh instance of the gateway metric set with the given
// prometheus.Registerer. Provided for testing — pass prometheus.NewRegistry()
// for an isolated registry.
func Init(reg prometheus.Registerer) {
	newCollectors().mustRegister(reg)
}
