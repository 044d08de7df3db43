package metrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_NilSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.BackendAttempt("login", OutcomeSuccess)
		r.BackendCall("login", time.Second)
		r.SessionPropagated()
		r.GateDecision("ALLOWED", "allowed")
		r.StorageEvent("out")
		r.PrunerRun(3, nil)
	})
}

func TestRecorder_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.BackendAttempt("login", OutcomeNetworkError)
	r.BackendAttempt("login", OutcomeNetworkError)
	r.BackendAttempt("login", OutcomeSuccess)
	r.GateDecision("REDIRECTING", "unauthenticated")
	r.PrunerRun(5, nil)
	r.PrunerRun(0, fmt.Errorf("wrap: %w", context.DeadlineExceeded))

	assert.InDelta(t, 2, testutil.ToFloat64(r.backendAttempts.WithLabelValues("login", OutcomeNetworkError)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.gateDecisions.WithLabelValues("REDIRECTING", "unauthenticated")), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(r.prunedRows), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.prunerRuns.WithLabelValues(ResultSuccess, "")), 0)
}

func TestHandler_Exposes(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)
	r.SessionPropagated()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "initweb_backend_session_id_propagations_total 1"))
}

func TestClassify(t *testing.T) {
	assert.Empty(t, Classify(nil))
	assert.Equal(t, "errors_errorstring", Classify(fmt.Errorf("outer: %w", errors.New("inner"))))
}
