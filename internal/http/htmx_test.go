package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMX_RequestDetection(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	assert.False(t, IsHTMX(r))
	assert.False(t, WantsPartial(r))

	r.Header.Set("Hx-Request", "true")
	r.Header.Set("Hx-Current-Url", "http://localhost/profile?tab=1")
	assert.True(t, IsHTMX(r))
	assert.True(t, WantsPartial(r))
	assert.Equal(t, "http://localhost/profile?tab=1", HXCurrentURL(r))
}

func TestHTMX_HistoryRestoreWantsFullPage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	r.Header.Set("Hx-Request", "true")
	r.Header.Set("Hx-History-Restore-Request", "true")
	assert.False(t, WantsPartial(r))
}

func TestHTMX_ResponseHeaders(t *testing.T) {
	rr := httptest.NewRecorder()
	HTMX(rr).Trigger("theme:changed", map[string]string{"theme": "dark"}).PushURL("/settings")

	assert.Equal(t, "/settings", rr.Header().Get("Hx-Push-Url"))
	var payload map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(rr.Header().Get("Hx-Trigger")), &payload))
	assert.Equal(t, "dark", payload["theme:changed"]["theme"])
	// Chainable methods leave the status to the handler.
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, rr.Flushed)
}

func TestHTMX_TriggerWithoutPayload(t *testing.T) {
	rr := httptest.NewRecorder()
	SetHXTrigger(rr, RecommendationsRefreshEvent, nil)
	assert.JSONEq(t, `{"recommendations:refresh":true}`, rr.Header().Get("Hx-Trigger"))
}

func TestHTMX_Redirect(t *testing.T) {
	rr := httptest.NewRecorder()
	HTMX(rr).Redirect("/login?reason=auth_failed")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "/login?reason=auth_failed", rr.Header().Get("Hx-Redirect"))
	assert.Empty(t, rr.Body.String())
}
