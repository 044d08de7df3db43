package httpx

import "net/http"

// healthBody is the /healthz answer. It reports process liveness only; storage and the
// backend are not contacted.
var healthBody = []byte(`{"status":"ok","service":"init-web"}`)

// healthHandler answers GET and HEAD /healthz outside the client scope: no device cookie,
// no CSRF token, no gate.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(healthBody)
	}
}
