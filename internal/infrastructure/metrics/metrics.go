package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "switchbot"

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics is the set of collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	commandsTotal         *prometheus.CounterVec
	commandsInFlight      prometheus.Gauge
	pollDuration          prometheus.Histogram
	pollDeviceFailures    prometheus.Counter
	credentialValidations *prometheus.CounterVec
	sceneExecutions       *prometheus.CounterVec
	httpRequests          *prometheus.CounterVec
}

// New creates and registers all collectors, plus the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Device commands sent, by result.",
		}, []string{"result"}),
		commandsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "commands_in_flight",
			Help:      "Device commands awaiting a cloud response.",
		}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poll_duration_seconds",
			Help:      "Wall time of one status poll cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		pollDeviceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_device_failures_total",
			Help:      "Per-device status fetches that failed during polling.",
		}),
		credentialValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_validations_total",
			Help:      "Credential probes against the cloud, by result.",
		}, []string{"result"}),
		sceneExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scene_executions_total",
			Help:      "Scene executions, by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route, method and status.",
		}, []string{"route", "method", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.commandsTotal,
		m.commandsInFlight,
		m.pollDuration,
		m.pollDeviceFailures,
		m.credentialValidations,
		m.sceneExecutions,
		m.httpRequests,
	)
	return m
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// CommandStarted marks one command as in flight.
func (m *Metrics) CommandStarted() { m.commandsInFlight.Inc() }

// CommandFinished pairs with CommandStarted.
func (m *Metrics) CommandFinished(err error) {
	m.commandsInFlight.Dec()
	m.commandsTotal.WithLabelValues(result(err)).Inc()
}

// PollCompleted records one poll cycle.
func (m *Metrics) PollCompleted(elapsed time.Duration, failures int) {
	m.pollDuration.Observe(elapsed.Seconds())
	m.pollDeviceFailures.Add(float64(failures))
}

// CredentialValidated records one credential probe.
func (m *Metrics) CredentialValidated(err error) {
	m.credentialValidations.WithLabelValues(result(err)).Inc()
}

// SceneExecuted records one scene execution.
func (m *Metrics) SceneExecuted(err error) {
	m.sceneExecutions.WithLabelValues(result(err)).Inc()
}

// Middleware counts API requests by chi route pattern. It must be mounted
// on a chi router so the pattern is resolved by the time the handler
// returns.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Hijack passes through to the wrapped writer so WebSocket upgrades work
// behind the middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	return h.Hijack()
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
