// Package metrics exposes Prometheus instruments for the web server.
//
// A nil *Recorder is valid and records nothing, so components and tests can
// skip metrics wiring entirely.
package metrics

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultNoop    = "noop"
)

// Backend attempt outcomes.
const (
	OutcomeSuccess      = "success"
	OutcomeHTTPError    = "http_error"
	OutcomeUnauthorized = "unauthorized"
	OutcomeNetworkError = "network_error"
)

const namespace = "initweb"

// Recorder groups the application's instruments.
type Recorder struct {
	backendAttempts *prometheus.CounterVec
	backendLatency  *prometheus.HistogramVec
	propagations    prometheus.Counter
	gateDecisions   *prometheus.CounterVec
	storageEvents   *prometheus.CounterVec
	prunerRuns      *prometheus.CounterVec
	prunedRows      prometheus.Counter
}

// New creates a Recorder and registers its instruments with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		backendAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "attempts_total",
			Help:      "Outbound backend attempts by operation and outcome.",
		}, []string{"operation", "outcome"}),
		backendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Latency of a complete backend call including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		propagations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "session_id_propagations_total",
			Help:      "Session identifiers written into the cookie tier.",
		}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "decisions_total",
			Help:      "Route gate decisions by state and rule.",
		}, []string{"state", "rule"}),
		storageEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "events_total",
			Help:      "Storage-change events by direction.",
		}, []string{"direction"}),
		prunerRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pruner",
			Name:      "runs_total",
			Help:      "Storage pruner cleanup passes by result.",
		}, []string{"result", "error_class"}),
		prunedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pruner",
			Name:      "rows_deleted_total",
			Help:      "Expired client storage rows deleted.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			r.backendAttempts, r.backendLatency, r.propagations,
			r.gateDecisions, r.storageEvents, r.prunerRuns, r.prunedRows,
		)
	}
	return r
}

// BackendAttempt counts one outbound attempt.
func (r *Recorder) BackendAttempt(operation, outcome string) {
	if r == nil {
		return
	}
	r.backendAttempts.WithLabelValues(operation, outcome).Inc()
}

// BackendCall observes the total duration of a call.
func (r *Recorder) BackendCall(operation string, d time.Duration) {
	if r == nil {
		return
	}
	r.backendLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// SessionPropagated counts a session-id propagation.
func (r *Recorder) SessionPropagated() {
	if r == nil {
		return
	}
	r.propagations.Inc()
}

// GateDecision counts a route gate decision.
func (r *Recorder) GateDecision(state, rule string) {
	if r == nil {
		return
	}
	r.gateDecisions.WithLabelValues(state, rule).Inc()
}

// StorageEvent counts a published ("out") or streamed ("in") storage event.
func (r *Recorder) StorageEvent(direction string) {
	if r == nil {
		return
	}
	r.storageEvents.WithLabelValues(direction).Inc()
}

// PrunerRun records one cleanup pass.
func (r *Recorder) PrunerRun(deleted int64, err error) {
	if r == nil {
		return
	}
	result := ResultSuccess
	switch {
	case err != nil:
		result = ResultError
	case deleted == 0:
		result = ResultNoop
	}
	r.prunerRuns.WithLabelValues(result, Classify(err)).Inc()
	if deleted > 0 {
		r.prunedRows.Add(float64(deleted))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Classify returns a normalized error type name suitable for labels.
// It unwraps to the innermost error and converts its type to snake_case-ish.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}
	name := strings.ReplaceAll(strings.ToLower(t.String()), ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}
