package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/initcareer/init-web/internal/domain/model"
	apperrors "github.com/initcareer/init-web/internal/errors"
	"github.com/initcareer/init-web/internal/ports"
)

// Session-tier keys recording signup progress between requests.
const (
	KeySignupCheckedUserID = "signupCheckedUserId"
	KeySignupVerifiedEmail = "signupVerifiedEmail"
)

// Cookies the backend sets before handing a Google sign-up over to the signup form.
const (
	CookieTempGoogleEmail = "tempGoogleEmail"
	CookieTempGoogleName  = "tempGoogleName"
	CookieTempGoogleID    = "tempGoogleId"
)

// VerificationCodeLength is the number of digits in an email code.
const VerificationCodeLength = 6

// CheckStatus is the state of one signup field check.
type CheckStatus string

const (
	CheckAvailable CheckStatus = "available"
	CheckDuplicate CheckStatus = "duplicate"
	CheckSent      CheckStatus = "sent"
	CheckVerified  CheckStatus = "verified"
	CheckError     CheckStatus = "error"
)

// FieldCheck is the inline result shown next to a signup field.
type FieldCheck struct {
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
}

// Signup messages.
const (
	MsgUserIDTooShort     = "User ID must be at least 4 characters."
	MsgUserIDTaken        = "This user ID is already in use."
	MsgUserIDAvailable    = "This user ID is available."
	MsgEmailInvalid       = "Enter a valid email address."
	MsgEmailTaken         = "This email is already registered."
	MsgEmailGoogle        = "This email is already verified through your Google account."
	MsgCodeLength         = "Enter the 6-digit verification code."
	MsgCheckFailed        = "Something went wrong while checking. Please try again."
	MsgSignupNeedUserID   = "Check your user ID for duplicates first."
	MsgSignupNeedEmail    = "Verify your email address first."
	MsgSignupGoogleEmail  = "The email does not match your Google account."
	MsgSignupDone         = "Sign-up complete! Please sign in."
	MsgSignupFailed       = "Sign-up failed."
	MsgGooglePrefilled    = "Your Google account details for %s were filled in. Complete the remaining fields to finish signing up."
	MsgGooglePrefillEmpty = "Could not read your Google account details. Please try again."
)

// SignupServiceOptions groups dependencies for SignupService.
type SignupServiceOptions struct {
	Logger *slog.Logger
}

// SignupService runs the multi-step signup form: duplicate checks, email
// verification and the final submission. Progress lives in the session tier.
type SignupService struct {
	logger *slog.Logger
}

// NewSignupService constructs a new SignupService.
func NewSignupService(opts SignupServiceOptions) *SignupService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SignupService{logger: logger.With("component", "signup_service")}
}

// SignupFlow holds the request-scoped collaborators of one signup step.
type SignupFlow struct {
	Backend ports.AccountAPI
	Session ports.StorageTier
	Cookies ports.CookieTier
}

// GooglePrefill returns the details of a Google sign-up in progress, if any.
func (s *SignupService) GooglePrefill(flow SignupFlow) (model.GoogleSignup, bool) {
	g := model.GoogleSignup{
		Email:    unescapeCookie(flow.Cookies.Get(CookieTempGoogleEmail)),
		Name:     unescapeCookie(flow.Cookies.Get(CookieTempGoogleName)),
		GoogleID: flow.Cookies.Get(CookieTempGoogleID),
	}
	if g.Email == "" || g.Name == "" {
		return model.GoogleSignup{}, false
	}
	return g, true
}

// PrefillNotice is shown when the signup form opens with googleSignup=true.
func (s *SignupService) PrefillNotice(flow SignupFlow) model.Notice {
	g, ok := s.GooglePrefill(flow)
	if !ok {
		return model.Warning(MsgGooglePrefillEmpty)
	}
	return model.Info(fmt.Sprintf(MsgGooglePrefilled, g.Name))
}

// CheckUserID runs the duplicate check and remembers an available id.
func (s *SignupService) CheckUserID(ctx context.Context, flow SignupFlow, userID string) FieldCheck {
	userID = strings.TrimSpace(userID)
	if !model.ValidUserID(userID) {
		return FieldCheck{Status: CheckError, Message: MsgUserIDTooShort}
	}
	taken, err := flow.Backend.CheckUserID(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "user id duplicate check failed", "error", err)
		return FieldCheck{Status: CheckError, Message: checkFailure(err)}
	}
	if taken {
		s.forget(ctx, flow, KeySignupCheckedUserID)
		return FieldCheck{Status: CheckDuplicate, Message: MsgUserIDTaken}
	}
	s.remember(ctx, flow, KeySignupCheckedUserID, userID)
	return FieldCheck{Status: CheckAvailable, Message: MsgUserIDAvailable}
}

// SendEmailCode checks the email for duplicates and then asks the backend to mail a code.
func (s *SignupService) SendEmailCode(ctx context.Context, flow SignupFlow, email string) FieldCheck {
	if _, ok := s.GooglePrefill(flow); ok {
		return FieldCheck{Status: CheckVerified, Message: MsgEmailGoogle}
	}
	email = strings.TrimSpace(email)
	if !model.ValidEmail(email) {
		return FieldCheck{Status: CheckError, Message: MsgEmailInvalid}
	}

	s.forget(ctx, flow, KeySignupVerifiedEmail)
	taken, err := flow.Backend.CheckEmail(ctx, email)
	if err != nil {
		s.logger.WarnContext(ctx, "email duplicate check failed", "error", err)
		return FieldCheck{Status: CheckError, Message: checkFailure(err)}
	}
	if taken {
		return FieldCheck{Status: CheckDuplicate, Message: MsgEmailTaken}
	}

	msg, err := flow.Backend.SendEmailCode(ctx, email)
	if err != nil {
		s.logger.WarnContext(ctx, "send email code failed", "error", err)
		return FieldCheck{Status: CheckError, Message: checkFailure(err)}
	}
	return FieldCheck{Status: CheckSent, Message: msg}
}

// VerifyEmailCode confirms the code and marks the email verified for this session.
func (s *SignupService) VerifyEmailCode(ctx context.Context, flow SignupFlow, email, code string) FieldCheck {
	code = strings.TrimSpace(code)
	if len(code) != VerificationCodeLength {
		return FieldCheck{Status: CheckError, Message: MsgCodeLength}
	}
	email = strings.TrimSpace(email)
	msg, err := flow.Backend.VerifyEmailCode(ctx, email, code)
	if err != nil {
		s.logger.WarnContext(ctx, "verify email code failed", "error", err)
		return FieldCheck{Status: CheckError, Message: checkFailure(err)}
	}
	s.remember(ctx, flow, KeySignupVerifiedEmail, email)
	return FieldCheck{Status: CheckVerified, Message: msg}
}

// Submit registers the account once the user id and email have been checked.
func (s *SignupService) Submit(ctx context.Context, flow SignupFlow, req model.SignupRequest) (model.Notice, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Email = strings.TrimSpace(req.Email)
	if req.Interests == nil {
		req.Interests = []string{}
	}

	if s.recall(ctx, flow, KeySignupCheckedUserID) != req.UserID {
		return model.Notice{}, apperrors.ValidationField("userId", MsgSignupNeedUserID)
	}
	google, isGoogle := s.GooglePrefill(flow)
	switch {
	case isGoogle && req.Email != google.Email:
		return model.Notice{}, apperrors.ValidationField("email", MsgSignupGoogleEmail)
	case isGoogle:
		req.GoogleID = google.GoogleID
	case s.recall(ctx, flow, KeySignupVerifiedEmail) != req.Email:
		return model.Notice{}, apperrors.ValidationField("email", MsgSignupNeedEmail)
	}
	req.Phone = model.FormatPhoneNumber(req.Phone)
	if err := req.Validate(); err != nil {
		return model.Notice{}, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}

	if _, err := flow.Backend.Signup(ctx, req); err != nil {
		return model.Notice{}, fmt.Errorf("signup: %w", err)
	}

	if isGoogle {
		flow.Cookies.Delete(CookieTempGoogleEmail, CookieTempGoogleName, CookieTempGoogleID)
	}
	s.forget(ctx, flow, KeySignupCheckedUserID, KeySignupVerifiedEmail)
	s.logger.InfoContext(ctx, "account registered", "user_id", req.UserID, "google", isGoogle)
	return model.Success(MsgSignupDone), nil
}

// SignupFailureNotice converts a Submit error into the message shown on the form.
func SignupFailureNotice(err error) model.Notice {
	if err == nil {
		return model.Notice{}
	}
	if apperrors.IsValidation(err) {
		return model.Warning(errorMessage(err, MsgSignupFailed))
	}
	return model.Error(errorMessage(err, MsgSignupFailed))
}

func checkFailure(err error) string {
	if apperrors.IsNetwork(err) || apperrors.IsTimeout(err) {
		return MsgLoginNetwork
	}
	return errorMessage(err, MsgCheckFailed)
}

// errorMessage returns the AppError message carried by err, or fallback.
func errorMessage(err error, fallback string) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

func (s *SignupService) remember(ctx context.Context, flow SignupFlow, key, value string) {
	if flow.Session == nil {
		return
	}
	if err := flow.Session.Set(ctx, key, value); err != nil {
		s.logger.WarnContext(ctx, "record signup progress failed", "key", key, "error", err)
	}
}

func (s *SignupService) recall(ctx context.Context, flow SignupFlow, key string) string {
	if flow.Session == nil {
		return ""
	}
	v, err := flow.Session.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "read signup progress failed", "key", key, "error", err)
		return ""
	}
	return v
}

func (s *SignupService) forget(ctx context.Context, flow SignupFlow, keys ...string) {
	if flow.Session == nil {
		return
	}
	if err := flow.Session.Delete(ctx, keys...); err != nil {
		s.logger.WarnContext(ctx, "clear signup progress failed", "error", err)
	}
}
