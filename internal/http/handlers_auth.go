package httpx

import (
	"net/http"
	"strings"
	"time"

	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/domain/model"
	"github.com/initcareer/init-web/internal/domain/route"
	"github.com/initcareer/init-web/internal/service"
)

// reasonNotice is shown on the login page when the gate sent the user there
// without queuing a notice of its own.
func reasonNotice(reason string) model.Notice {
	switch reason {
	case route.ReasonAuthRequired:
		return model.Warning("Please sign in to continue.")
	case route.ReasonInvalidSession:
		return model.Error(route.NoticeInvalidAccount)
	case route.ReasonAuthFailed:
		return model.Error(service.MsgAuthFailed)
	default:
		return model.Notice{}
	}
}

// OAuthLanding completes a Google sign-in that the backend redirected to
// /login?googleLogin=success or /login?error=<code>. It runs ahead of the route
// gate because the backend has already set the credential cookies.
func (h *UIHandlers) OAuthLanding(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		c, ok := GetClientFromContext(r.Context())
		if !ok || (q.Get("googleLogin") == "" && q.Get("error") == "") {
			next.ServeHTTP(w, r)
			return
		}

		res, handled := h.Auth.CompleteOAuthLanding(r.Context(), service.OAuthLandingInput{
			Store:       c.Store,
			Cookies:     c.Cookies,
			GoogleLogin: q.Get("googleLogin"),
			Error:       q.Get("error"),
		})
		if !handled {
			next.ServeHTTP(w, r)
			return
		}
		SetFlash(c.Cookies, res.Notice)
		redirect(w, r, res.Redirect)
	})
}

// LoginPage renders the sign-in form.
// GET /login?reason=<reason>&redirect=<path>.
func (h *UIHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	data := h.basePageData(r, PageMeta{Title: "Sign in - Init", PageTitle: "Sign in", CurrentPage: PageLogin})
	setNotice(data, reasonNotice(r.URL.Query().Get("reason")))
	data["Redirect"] = safeRedirectParam(r.URL.Query().Get("redirect"))
	h.renderPage(w, r, data)
}

// LoginSubmit posts the credentials to the backend.
// POST /login.
func (h *UIHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	userID := r.PostFormValue("userId")
	target := safeRedirectParam(r.PostFormValue("redirect"))
	res, err := h.Auth.Login(r.Context(), service.LoginInput{
		Backend:  c.Backend,
		Store:    c.Store,
		UserID:   userID,
		Password: r.PostFormValue("password"),
		Redirect: target,
	})
	if err != nil {
		h.logger().InfoContext(r.Context(), "login rejected", "user_id", strings.TrimSpace(userID), "error", err)
		data := h.basePageData(r, PageMeta{Title: "Sign in - Init", PageTitle: "Sign in", CurrentPage: PageLogin})
		data["Notice"] = service.LoginFailureNotice(err)
		data["UserID"] = userID
		data["Redirect"] = target
		h.renderPage(w, r, data)
		return
	}

	SetFlash(c.Cookies, res.Notice)
	redirect(w, r, res.Redirect)
}

// Logout wipes every credential and returns to the login page.
// POST /logout.
func (h *UIHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(w, r)
	if !ok {
		return
	}
	target := h.Auth.Logout(r.Context(), c.Store)
	if err := c.Session.Clear(r.Context()); err != nil {
		h.logger().WarnContext(r.Context(), "failed to clear session tier on logout", "error", err)
	}
	if acceptsJSON(r) && !IsHTMX(r) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "success", "redirect_to": target})
		return
	}
	SetFlash(c.Cookies, model.Info(service.MsgSignedOut))
	redirect(w, r, target)
}

// authStatusUser is the user block of the auth status response.
type authStatusUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}

// authStatusResponse is the body of GET /auth/status.
type authStatusResponse struct {
	Authenticated  bool            `json:"authenticated"`
	User           *authStatusUser `json:"user,omitempty"`
	TokenExpiresAt *time.Time      `json:"tokenExpiresAt,omitempty"`
	Home           string          `json:"home,omitempty"`
}

// AuthStatus reports the resolved auth state of the calling device.
// GET /auth/status.
func (h *UIHandlers) AuthStatus(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(w, r)
	if !ok {
		return
	}
	res := h.Resolver.Resolve(r.Context(), c.Store)
	if !res.Authenticated {
		WriteJSON(w, http.StatusOK, authStatusResponse{})
		return
	}

	body := authStatusResponse{
		Authenticated: true,
		User: &authStatusUser{
			ID:    res.UserID,
			Name:  res.UserName,
			Email: res.UserEmail,
			Role:  string(res.Role),
		},
	}
	if res.Role != domainauth.RoleNone {
		body.Home = res.Role.Home()
	}
	if !res.TokenExpiresAt.IsZero() {
		exp := res.TokenExpiresAt.UTC()
		body.TokenExpiresAt = &exp
	}
	WriteJSON(w, http.StatusOK, body)
}

// SessionStatus reports which backend session cookie the device is tracking.
// GET /auth/session-status.
func (h *UIHandlers) SessionStatus(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, c.Backend.SessionStatus(r.Context()))
}

// FindAccountPage renders the find-your-user-id form.
// GET /find-account.
func (h *UIHandlers) FindAccountPage(w http.ResponseWriter, r *http.Request) {
	h.Page(w, r, PageSpec{Meta: findAccountMeta()})
}

// FindAccountSubmit looks up the user id registered to an email.
// POST /find-account.
func (h *UIHandlers) FindAccountSubmit(w http.ResponseWriter, r *http.Request) {
	c, ok := h.client(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	id, err := h.Auth.FindUserID(r.Context(), c.Backend, email)
	if err != nil {
		h.logger().InfoContext(r.Context(), "find account failed", "error", err)
	}

	data := h.basePageData(r, findAccountMeta())
	data["Notice"] = service.FindAccountNotice(err)
	data["Email"] = email
	data["FoundUserID"] = id
	h.renderPage(w, r, data)
}

func findAccountMeta() PageMeta {
	return PageMeta{Title: "Find account - Init", PageTitle: "Find your user ID", CurrentPage: PageFindAccount}
}

// safeRedirectParam keeps a redirect parameter only when it is a local path.
func safeRedirectParam(target string) string {
	target = strings.TrimSpace(target)
	if !service.SafeRedirect(target) {
		return ""
	}
	return target
}
