package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/domain/model"
	"github.com/initcareer/init-web/internal/domain/route"
	apperrors "github.com/initcareer/init-web/internal/errors"
	"github.com/initcareer/init-web/internal/ports"
)

// OAuth error codes the backend appends to /login.
const (
	OAuthErrInvalidAccount = "invalid_google_account"
	OAuthErrLoginFailed    = "google_login_failed"
	OAuthErrOAuth2Failed   = "oauth2_failed"
)

// User-facing login messages.
const (
	MsgLoginMissingFields = "Enter your user ID and password."
	MsgLoginWrongPassword = "The user ID or password is incorrect."
	MsgLoginUnknownUser   = "No account exists with that user ID."
	MsgLoginServerError   = "The server encountered an error. Please try again shortly."
	MsgLoginNetwork       = "Could not reach the server. Check your network connection."
	MsgLoginFailed        = "Login failed. Check your user ID and password."
	MsgOAuthIncomplete    = "Something went wrong while completing Google sign-in. Please try again."
	MsgOAuthGeneric       = "Google sign-in failed."
	MsgAuthFailed         = "Authentication failed. Please sign in again."
	MsgSignedOut          = "You have been signed out."
	MsgFindAccountMissing = "No account is registered with that email."
	MsgFindAccountFailed  = "Could not look up your account. Please try again."
	MsgFindAccountFound   = "We found your user ID."
)

var oauthErrorMessages = map[string]string{
	OAuthErrInvalidAccount: "Your Google account is missing required information. Try a different Google account.",
	OAuthErrLoginFailed:    "Google sign-in failed on the server. Please try again shortly.",
	OAuthErrOAuth2Failed:   "OAuth2 authentication failed.",
}

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Logger *slog.Logger
}

// AuthService runs the login, OAuth landing, find-account and logout flows.
// Backends and stores are request-scoped, so they are passed per call.
type AuthService struct {
	logger *slog.Logger
}

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) *AuthService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{logger: logger.With("component", "auth_service")}
}

// LoginInput groups parameters for Login.
type LoginInput struct {
	Backend  ports.AccountAPI
	Store    ports.CredentialStore
	UserID   string
	Password string
	// Redirect is the page the user was sent away from, if any.
	Redirect string
}

// LoginResult is where to send the browser after a successful sign-in.
type LoginResult struct {
	Credential domainauth.Credential
	Redirect   string
	Notice     model.Notice
}

// Login posts the credentials, persists the returned record in both tiers and picks the landing page.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" || in.Password == "" {
		return nil, apperrors.Validation(MsgLoginMissingFields)
	}

	cred, err := in.Backend.Login(ctx, model.LoginRequest{UserID: userID, Password: in.Password})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if !cred.HasValidUserID() {
		return nil, apperrors.Wrap(errors.New("missing user id"), apperrors.ErrCodeMalformed, "unexpected login response")
	}

	in.Store.Write(ctx, cred)
	s.logger.InfoContext(ctx, "user signed in", "user_id", cred.UserID, "role", cred.Role)

	return &LoginResult{
		Credential: cred,
		Redirect:   landingFor(cred.Role, in.Redirect),
		Notice:     welcome(cred.Role, cred.UserName, false),
	}, nil
}

// LoginFailureNotice converts a Login error into the message shown on the login form.
func LoginFailureNotice(err error) model.Notice {
	if err == nil {
		return model.Notice{}
	}
	if apperrors.IsValidation(err) {
		return model.Warning(MsgLoginMissingFields)
	}
	if apperrors.IsNetwork(err) || apperrors.IsTimeout(err) {
		return model.Error(MsgLoginNetwork)
	}
	switch status := apperrors.GetStatus(err); {
	case status == http.StatusUnauthorized:
		return model.Error(MsgLoginWrongPassword)
	case status == http.StatusNotFound:
		return model.Error(MsgLoginUnknownUser)
	case status >= http.StatusInternalServerError:
		return model.Error(MsgLoginServerError)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Status != 0 && appErr.Message != "" {
		return model.Error(appErr.Message)
	}
	return model.Error(MsgLoginFailed)
}

// OAuthLandingInput carries what the backend's OAuth redirect left behind.
type OAuthLandingInput struct {
	Store   ports.CredentialStore
	Cookies ports.CookieTier
	// GoogleLogin and Error are the googleLogin and error query parameters.
	GoogleLogin string
	Error       string
}

// CompleteOAuthLanding handles /login?googleLogin=success and /login?error=<code>.
// It reports false when the request carries neither parameter. The result always
// redirects so the query is stripped from the address bar.
func (s *AuthService) CompleteOAuthLanding(ctx context.Context, in OAuthLandingInput) (*LoginResult, bool) {
	switch {
	case in.GoogleLogin == "success":
		cred := domainauth.Credential{
			Token:    in.Cookies.Get(domainauth.KeyAuthToken),
			UserID:   in.Cookies.Get(domainauth.KeyUserID),
			UserName: unescapeCookie(in.Cookies.Get(domainauth.KeyUserName)),
			Role:     domainauth.ParseRole(in.Cookies.Get(domainauth.KeyUserRole)),
		}
		rawRole := in.Cookies.Get(domainauth.KeyUserRole)
		if cred.Token == "" || cred.UserID == "" || cred.UserName == "" || rawRole == "" {
			s.logger.WarnContext(ctx, "google sign-in landed without credential cookies",
				"has_token", cred.Token != "", "has_user_id", cred.UserID != "",
				"has_user_name", cred.UserName != "", "has_role", rawRole != "")
			return &LoginResult{Redirect: "/login", Notice: model.Error(MsgOAuthIncomplete)}, true
		}
		in.Store.Write(ctx, cred)
		s.logger.InfoContext(ctx, "user signed in with google", "user_id", cred.UserID, "role", cred.Role)
		return &LoginResult{
			Credential: cred,
			Redirect:   landingFor(cred.Role, ""),
			Notice:     welcome(cred.Role, cred.UserName, true),
		}, true

	case in.Error != "":
		msg, ok := oauthErrorMessages[in.Error]
		if !ok {
			msg = MsgOAuthGeneric
		}
		s.logger.WarnContext(ctx, "google sign-in failed", "error_code", in.Error)
		return &LoginResult{Redirect: "/login", Notice: model.Error(msg)}, true

	default:
		return nil, false
	}
}

// FindUserID looks up the account registered to email.
func (s *AuthService) FindUserID(ctx context.Context, backend ports.AccountAPI, email string) (string, error) {
	email = strings.TrimSpace(email)
	if !model.ValidEmail(email) {
		return "", apperrors.ValidationField("email", model.ErrEmailInvalid.Error())
	}
	id, err := backend.FindUserID(ctx, email)
	if err != nil {
		return "", fmt.Errorf("find user id: %w", err)
	}
	return id, nil
}

// FindAccountNotice converts a FindUserID error into the message shown on the form.
func FindAccountNotice(err error) model.Notice {
	switch {
	case err == nil:
		return model.Success(MsgFindAccountFound)
	case apperrors.IsValidation(err):
		return model.Warning(MsgEmailInvalid)
	case apperrors.IsNetwork(err) || apperrors.IsTimeout(err):
		return model.Error(MsgLoginNetwork)
	case apperrors.IsNotFound(err) || apperrors.GetStatus(err) == http.StatusNotFound:
		return model.Warning(MsgFindAccountMissing)
	default:
		return model.Error(errorMessage(err, MsgFindAccountFailed))
	}
}

// Logout wipes every credential key and returns the page to land on.
func (s *AuthService) Logout(ctx context.Context, store ports.CredentialStore) string {
	store.Clear(ctx)
	return "/login"
}

// ExpireSession clears credentials after the backend rejected the token and
// returns the login URL to send the browser to.
func (s *AuthService) ExpireSession(ctx context.Context, store ports.CredentialStore, intended string) (string, model.Notice) {
	s.logger.InfoContext(ctx, "backend rejected stored token, clearing credentials")
	store.Clear(ctx)
	return route.LoginURL(route.ReasonAuthFailed, intended), model.Error(MsgAuthFailed)
}

// landingFor picks the post-login page. Users may resume the page they were sent away from.
func landingFor(role domainauth.Role, intended string) string {
	if role == domainauth.RoleAdmin {
		return role.Home()
	}
	if u, ok := localURL(intended); ok && route.DefaultPolicy().Classify(u.Path) != route.ClassAdminOnly {
		return intended
	}
	return domainauth.RoleUser.Home()
}

// SafeRedirect reports whether target is a local absolute path.
func SafeRedirect(target string) bool {
	_, ok := localURL(target)
	return ok
}

func localURL(target string) (*url.URL, bool) {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return nil, false
	}
	u, err := url.Parse(target)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return nil, false
	}
	return u, true
}

func welcome(role domainauth.Role, name string, google bool) model.Notice {
	if name == "" {
		name = UnknownUserName
	}
	via := ""
	if google {
		via = " You signed in with Google."
	}
	if role == domainauth.RoleAdmin {
		return model.Success(fmt.Sprintf("Welcome, administrator %s!%s", name, via))
	}
	return model.Success(fmt.Sprintf("Welcome, %s!%s", name, via))
}

func unescapeCookie(v string) string {
	if out, err := url.QueryUnescape(v); err == nil {
		return out
	}
	return v
}
