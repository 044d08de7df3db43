package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/domain/model"
	apperrors "github.com/initcareer/init-web/internal/errors"
)

const (
	contentJSON = "application/json"
	contentForm = "application/x-www-form-urlencoded"

	maxMessageRunes = 300
)

// Login posts credentials and maps the answer into a Credential.
func (s *Session) Login(ctx context.Context, req model.LoginRequest) (domainauth.Credential, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domainauth.Credential{}, apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode login request")
	}
	resp, err := s.Do(ctx, Request{
		Operation:   "login",
		Method:      http.MethodPost,
		Path:        "/login",
		Body:        body,
		ContentType: contentJSON,
	})
	if err != nil {
		return domainauth.Credential{}, err
	}
	if !resp.OK() {
		return domainauth.Credential{}, failure(resp, "login failed")
	}

	var doc any
	if err := json.Unmarshal(resp.Body, &doc); err != nil {
		return domainauth.Credential{}, apperrors.Wrap(err, apperrors.ErrCodeMalformed, "login response is not JSON")
	}
	cred, err := s.c.login.Map(doc)
	if err != nil {
		return domainauth.Credential{}, apperrors.Wrap(err, apperrors.ErrCodeMalformed, "unexpected login response")
	}
	return cred, nil
}

// Signup submits the registration form. Mobile clients wait first so a fresh session cookie can settle.
func (s *Session) Signup(ctx context.Context, req model.SignupRequest) (string, error) {
	if s.mobile {
		if err := s.pause(ctx, s.c.timing.MobileSignupDelay); err != nil {
			return "", err
		}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode signup request")
	}
	resp, err := s.Do(ctx, Request{
		Operation:   "signup",
		Method:      http.MethodPost,
		Path:        "/signup",
		Body:        body,
		ContentType: contentJSON,
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", failure(resp, "signup failed")
	}
	return resp.Text(), nil
}

// CheckUserID reports whether userID is already registered.
func (s *Session) CheckUserID(ctx context.Context, userID string) (bool, error) {
	return s.checkDuplicate(ctx, "check_userid", "/check-userid/", userID)
}

// CheckEmail reports whether email is already registered.
func (s *Session) CheckEmail(ctx context.Context, email string) (bool, error) {
	return s.checkDuplicate(ctx, "check_email", "/check-email/", email)
}

func (s *Session) checkDuplicate(ctx context.Context, op, prefix, value string) (bool, error) {
	resp, err := s.Do(ctx, Request{
		Operation:   op,
		Method:      http.MethodGet,
		Path:        prefix + url.PathEscape(value),
		ContentType: contentJSON,
	})
	if err != nil {
		return false, err
	}
	if !resp.OK() {
		if resp.StatusCode == http.StatusBadRequest {
			msg := messageFromBody(resp.Body)
			if msg == "" {
				msg = "invalid request"
			}
			return false, &apperrors.AppError{Code: apperrors.ErrCodeValidation, Message: msg, Status: resp.StatusCode}
		}
		return false, apperrors.Upstream(resp.StatusCode, "duplicate check failed")
	}
	var taken bool
	if err := json.Unmarshal(resp.Body, &taken); err != nil {
		return false, apperrors.Wrap(err, apperrors.ErrCodeMalformed, "duplicate check response is not a boolean")
	}
	return taken, nil
}

// FindUserID asks the backend to look up the account registered to email.
func (s *Session) FindUserID(ctx context.Context, email string) (string, error) {
	resp, err := s.Do(ctx, Request{
		Operation:   "find_userid",
		Method:      http.MethodPost,
		Path:        "/find-userid",
		Body:        []byte(url.Values{"email": {email}}.Encode()),
		ContentType: contentForm,
	})
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		return "", failure(resp, "account lookup failed")
	}
	return resp.Text(), nil
}

// failure converts a non-2xx answer into an AppError carrying the backend's own message when it sent one.
func failure(resp *Response, fallback string) error {
	msg := messageFromBody(resp.Body)
	if isAuthFailure(resp.StatusCode) {
		if msg == "" {
			msg = fallback
		}
		return apperrors.Unauthorized(resp.StatusCode, msg)
	}
	return apperrors.Upstream(resp.StatusCode, msg)
}

// messageFromBody returns the "message" (or "error") field of a JSON body,
// else the short plain-text body. HTML error pages yield "".
func messageFromBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" || strings.HasPrefix(text, "<") {
		return ""
	}
	if strings.HasPrefix(text, "{") {
		var obj struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal([]byte(text), &obj); err == nil {
			if obj.Message != "" {
				return obj.Message
			}
			return obj.Error
		}
	}
	if utf8.RuneCountInString(text) > maxMessageRunes {
		return string([]rune(text)[:maxMessageRunes])
	}
	return text
}
