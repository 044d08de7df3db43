package httpx

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"net/http"

	"github.com/initcareer/init-web/internal/domain/model"
	"github.com/initcareer/init-web/internal/observability/metrics"
	"github.com/initcareer/init-web/internal/ports"
	"github.com/initcareer/init-web/internal/service"
)

// MsgUnexpected is the notice shown when a page could not load its data.
const MsgUnexpected = "An unexpected error occurred. Please try again."

// UIHandlers serves the HTML pages and their htmx fragments.
type UIHandlers struct {
	T         *TemplateRenderer
	Auth      *service.AuthService
	Signup    *service.SignupService
	Dashboard *service.DashboardService
	Theme     *service.ThemeService
	Resolver  ports.AuthResolver
	Events    ports.StorageEvents
	Metrics   *metrics.Recorder

	// GoogleLoginURL is where the "Continue with Google" button points.
	GoogleLoginURL string
	IsDev          bool // Development mode flag for enhanced error reporting
	Logger         *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// PageMeta contains page metadata.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// userView is what the layout shows about the signed-in user.
type userView struct {
	ID      string
	Name    string
	Email   string
	Role    string
	Initial string
}

// basePageData builds the data every page template receives: layout flags from
// the route gate, the theme, the CSRF token and any queued notice.
func (h *UIHandlers) basePageData(r *http.Request, meta PageMeta) map[string]any {
	gate := GetGateFromContext(r.Context())
	data := map[string]any{
		"Title":           meta.Title,
		"PageTitle":       meta.PageTitle,
		"CurrentPage":     meta.CurrentPage,
		"Path":            r.URL.Path,
		"Decorate":        gate.Decision.Decorate,
		"Sidebar":         gate.Decision.Sidebar,
		"IsAuthenticated": gate.Resolution.Authenticated,
		"Nav":             UserNav(),
		"Theme":           string(service.ThemeLight),
		"Notice":          model.Notice{},
		"CSRFToken":       GetCSRFToken(r),
		"GoogleLoginURL":  h.GoogleLoginURL,
	}

	if gate.Resolution.Authenticated {
		email := gate.Resolution.UserEmail
		if email == "" {
			email = "No email on file"
		}
		data["User"] = userView{
			ID:      gate.Resolution.UserID,
			Name:    gate.Resolution.UserName,
			Email:   email,
			Role:    string(gate.Resolution.Role),
			Initial: initialOf(gate.Resolution.UserName),
		}
	}

	if c, ok := GetClientFromContext(r.Context()); ok {
		if h.Theme != nil {
			data["Theme"] = string(h.Theme.Current(r.Context(), c.Durable))
		}
		data["Notice"] = TakeFlash(c.Cookies)
	}
	return data
}

func initialOf(name string) string {
	for _, r := range name {
		return string(r)
	}
	return "?"
}

// setNotice replaces the page notice unless one is already queued.
func setNotice(data map[string]any, n model.Notice) {
	if n.IsZero() {
		return
	}
	if cur, ok := data["Notice"].(model.Notice); ok && !cur.IsZero() {
		return
	}
	data["Notice"] = n
}

// PageSpec defines metadata and an optional fetch for page-specific data.
type PageSpec struct {
	Meta  PageMeta
	Fetch func(ctx context.Context, data map[string]any) error
}

// Page builds base data, optionally fetches content data, and renders.
func (h *UIHandlers) Page(w http.ResponseWriter, r *http.Request, spec PageSpec) {
	data := h.basePageData(r, spec.Meta)
	if spec.Fetch != nil {
		if err := spec.Fetch(r.Context(), data); err != nil {
			h.logger().WarnContext(r.Context(), "page data unavailable", "page", spec.Meta.CurrentPage, "error", err)
			setNotice(data, model.Error(MsgUnexpected))
		}
	}
	h.renderPage(w, r, data)
}

// renderPage renders a full page, or only its content for htmx requests.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data map[string]any) {
	if !WantsPartial(r) {
		if err := h.T.RenderFull(w, r, data); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
		}
		return
	}

	// Hint client JS to update nav active state based on current path
	HTMX(w).Trigger("nav:activate", map[string]string{"path": r.URL.Path}).PushURL(r.URL.RequestURI())
	if err := h.T.RenderPartial(w, r, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial content render")
	}
}

// renderFragment renders one htmx fragment.
func (h *UIHandlers) renderFragment(w http.ResponseWriter, r *http.Request, name string, data any) {
	if err := h.T.RenderFragment(w, name, data); err != nil {
		h.logAndRenderTemplateError(w, r, err, "fragment "+name)
	}
}

// redirect sends the browser to target: Hx-Redirect for htmx, 303 otherwise.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMX(r) {
		HTMX(w).Redirect(target)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// client returns the request's Client or writes a 500 when ClientScope did not run.
func (h *UIHandlers) client(w http.ResponseWriter, r *http.Request) (*Client, bool) {
	c, ok := GetClientFromContext(r.Context())
	if !ok {
		h.logger().ErrorContext(r.Context(), "handler reached without client scope", "path", r.URL.Path)
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "internal_error",
			Err:     errors.New("client scope unavailable"),
		})
	}
	return c, ok
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		body := `<div class="template-error"><h2>Template Rendering Error</h2>` +
			`<p><strong>Context:</strong> ` + html.EscapeString(context) + `</p>` +
			`<p><strong>Path:</strong> ` + html.EscapeString(r.URL.Path) + `</p>` +
			`<pre>` + html.EscapeString(err.Error()) + `</pre></div>`
		if _, writeErr := w.Write([]byte(body)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}

	http.Error(w, "internal server error", http.StatusInternalServerError)
}
