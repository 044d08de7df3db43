package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/initcareer/init-web/internal/adapters/cookies"
)

const (
	// DefaultCSRFCookieName is the cookie (and form field) carrying the double-submit token.
	DefaultCSRFCookieName = "csrf_token"
	// DefaultCSRFHeaderName is the header app.js and HTMX send the token in (canonical form).
	DefaultCSRFHeaderName = "X-Csrf-Token"
	// DefaultCSRFTokenLength is the token entropy in bytes.
	DefaultCSRFTokenLength = 32

	csrfCookieLifetime = 12 * time.Hour
)

var errCSRFRejected = errors.New("CSRF token validation failed; reload the page and try again")

// CSRFConfig holds configuration for CSRF protection middleware.
type CSRFConfig struct {
	CookieName    string // default csrf_token
	HeaderName    string // default X-Csrf-Token
	FormFieldName string // default csrf_token
	CookieDomain  string
	TokenLength   int // bytes, default 32
	Logger        *slog.Logger
}

type csrfGuard struct {
	cfg CSRFConfig
}

// CSRFProtection applies the double-submit cookie pattern. A token cookie is issued on first
// contact and exposed to templates through GetCSRFToken; unsafe methods must echo it in the
// header or, for form encodings, in the form field.
func CSRFProtection(cfg CSRFConfig) func(http.Handler) http.Handler {
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCSRFCookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = DefaultCSRFHeaderName
	}
	if cfg.FormFieldName == "" {
		cfg.FormFieldName = DefaultCSRFCookieName
	}
	if cfg.TokenLength <= 0 {
		cfg.TokenLength = DefaultCSRFTokenLength
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	g := &csrfGuard{cfg: cfg}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := g.ensureToken(w, r)
			if err != nil {
				http.Error(w, "unable to generate CSRF token", http.StatusInternalServerError)
				return
			}
			r = r.WithContext(context.WithValue(r.Context(), csrfTokenKey{}, token))

			if !isSafeMethod(r.Method) && !g.submitted(r, token) {
				g.cfg.Logger.WarnContext(r.Context(), "csrf validation failed",
					"method", r.Method, "path", r.URL.Path, "htmx", IsHTMX(r))
				writeCSRFFailure(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ensureToken returns the cookie token, issuing a fresh one when the cookie is missing.
func (g *csrfGuard) ensureToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(g.cfg.CookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}

	b := make([]byte, g.cfg.TokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("csrf token generation failed: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(b)

	http.SetCookie(w, &http.Cookie{
		Name:   g.cfg.CookieName,
		Value:  token,
		Path:   "/",
		Domain: g.cfg.CookieDomain,
		// Read by app.js for fetch and HTMX headers.
		HttpOnly: false,
		Secure:   cookies.IsSecure(r),
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(csrfCookieLifetime / time.Second),
	})
	return token, nil
}

// submitted reports whether the request echoes token. The header wins when present; the form
// field is only read from form encodings so a JSON body is never parsed here.
func (g *csrfGuard) submitted(r *http.Request, token string) bool {
	if h := r.Header.Get(g.cfg.HeaderName); h != "" {
		return tokensEqual(h, token)
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
	default:
		return false
	}
	if err := r.ParseForm(); err != nil {
		return false
	}
	return tokensEqual(r.FormValue(g.cfg.FormFieldName), token)
}

func tokensEqual(got, want string) bool {
	return got != "" && want != "" && subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}

// writeCSRFFailure answers a rejected request. Pages get a plain 403; scripted callers get JSON.
func writeCSRFFailure(w http.ResponseWriter, r *http.Request) {
	if IsBrowserRequest(r) && !IsHTMX(r) && !acceptsJSON(r) {
		http.Error(w, "CSRF token validation failed", http.StatusForbidden)
		return
	}
	WriteError(w, ErrorParams{
		Code:    http.StatusForbidden,
		ErrCode: "csrf_failed",
		Err:     errCSRFRejected,
	})
}

type csrfTokenKey struct{}

// GetCSRFToken returns the request's CSRF token for forms and the layout meta tag.
func GetCSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfTokenKey{}).(string)
	return token
}
