package httpx

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/initcareer/init-web/internal/domain/model"
	"github.com/initcareer/init-web/internal/domain/route"
	"github.com/initcareer/init-web/internal/observability/metrics"
	"github.com/initcareer/init-web/internal/ports"
	"github.com/initcareer/init-web/internal/service"
)

// gateSpinner stands in for the page body while the browser follows a gate redirect.
const gateSpinner = `<div class="gate-spinner" role="status" aria-live="polite"><span class="spinner"></span>` +
	`<span class="visually-hidden">Redirecting</span></div>`

// GateConfig configures the route gate.
type GateConfig struct {
	Resolver ports.AuthResolver
	// Policy defaults to route.DefaultPolicy.
	Policy  *route.Policy
	Metrics *metrics.Recorder
	Logger  *slog.Logger
}

// gateResponse is the JSON body API callers get instead of a redirect.
type gateResponse struct {
	State      route.State   `json:"state"`
	Rule       route.Rule    `json:"rule"`
	RedirectTo string        `json:"redirect_to"`
	Notice     *model.Notice `json:"notice,omitempty"`
}

// RouteGate returns a middleware that resolves the auth state of the request's
// Client and applies the route decision. Allowed requests continue with the
// outcome in their context; everything else is redirected exactly once.
// It must run inside ClientScope.
func RouteGate(cfg GateConfig) func(http.Handler) http.Handler {
	policy := route.DefaultPolicy()
	if cfg.Policy != nil {
		policy = *cfg.Policy
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			c, ok := GetClientFromContext(ctx)
			if !ok {
				logger.ErrorContext(ctx, "route gate without client scope", "path", r.URL.Path)
				WriteError(w, ErrorParams{
					Code:    http.StatusInternalServerError,
					ErrCode: "internal_error",
					Err:     errors.New("client scope unavailable"),
				})
				return
			}

			res := cfg.Resolver.Resolve(ctx, c.Store)
			d := policy.Decide(r.URL.Path, res)
			cfg.Metrics.GateDecision(string(d.State), string(d.Rule))

			if d.State == route.StateAllowed {
				next.ServeHTTP(w, r.WithContext(setGateInContext(ctx, Gate{Resolution: res, Decision: d})))
				return
			}

			if d.ClearCredentials {
				c.Store.Clear(ctx)
			}
			if d.Rule == route.RuleUnauthenticated {
				d.Target = route.LoginURL(route.ReasonAuthRequired, intendedPath(r))
			}
			SetFlash(c.Cookies, d.Notice)
			logger.InfoContext(ctx, "route gate redirect",
				"path", r.URL.Path,
				"rule", d.Rule,
				"role", res.Role,
				"target", d.Target,
			)
			writeGateRedirect(w, r, d)
		})
	}
}

func writeGateRedirect(w http.ResponseWriter, r *http.Request, d route.Decision) {
	switch {
	case IsHTMX(r):
		SetHXRedirect(w, d.Target)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, gateSpinner)
	case IsBrowserRequest(r):
		http.Redirect(w, r, d.Target, http.StatusSeeOther)
	default:
		status := http.StatusForbidden
		if d.Rule == route.RuleUnauthenticated || d.Rule == route.RuleRoleMissing {
			status = http.StatusUnauthorized
		}
		body := gateResponse{State: d.State, Rule: d.Rule, RedirectTo: d.Target}
		if !d.Notice.IsZero() {
			n := d.Notice
			body.Notice = &n
		}
		WriteJSON(w, status, body)
	}
}

// intendedPath is the page to return to after login. Form posts and htmx
// fragments return to the page they were issued from.
func intendedPath(r *http.Request) string {
	if IsHTMX(r) {
		if p := localPathFromURL(HXCurrentURL(r)); p != "" {
			return p
		}
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		if p := localPathFromURL(r.Header.Get("Referer")); p != "" {
			return p
		}
	}
	if uri := r.URL.RequestURI(); service.SafeRedirect(uri) {
		return uri
	}
	return r.URL.Path
}

// localPathFromURL reduces an absolute or relative URL to its local path and query.
func localPathFromURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Host != "" && !u.IsAbs() {
		return ""
	}
	p := u.RequestURI()
	if !service.SafeRedirect(p) {
		return ""
	}
	return p
}
