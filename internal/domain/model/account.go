package model

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinUserIDLength is the shortest user id the duplicate check accepts.
const MinUserIDLength = 4

// MinPasswordLength is the shortest acceptable password.
const MinPasswordLength = 8

var (
	passwordLetter  = regexp.MustCompile(`[a-zA-Z]`)
	passwordDigit   = regexp.MustCompile(`\d`)
	passwordSpecial = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
	mobileNumber    = regexp.MustCompile(`^(010|011|016|017|018|019)\d{7,8}$`)
)

// SignupRequest is the body posted to the backend signup endpoint.
type SignupRequest struct {
	UserID          string   `json:"userId"`
	Name            string   `json:"name"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirmPassword"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email"`
	Interests       []string `json:"interests"`
	GoogleID        string   `json:"googleId,omitempty"`
}

// Signup form validation errors.
var (
	ErrUserIDTooShort   = errors.New("user id must be at least 4 characters")
	ErrPasswordWeak     = errors.New("password needs 8+ characters with a letter, a digit and a symbol")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrEmailInvalid     = errors.New("enter a valid email address")
	ErrPhoneInvalid     = errors.New("enter a valid mobile phone number")
)

// ValidUserID reports whether id is long enough to be checked for duplicates.
func ValidUserID(id string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(id)) >= MinUserIDLength
}

// ValidEmail is the loose shape check the signup form applies.
func ValidEmail(email string) bool {
	return strings.Contains(email, "@")
}

// PasswordStrong reports whether pw meets the signup password policy.
func PasswordStrong(pw string) bool {
	return len(pw) >= MinPasswordLength &&
		passwordLetter.MatchString(pw) &&
		passwordDigit.MatchString(pw) &&
		passwordSpecial.MatchString(pw)
}

// Validate checks the fields the backend would otherwise reject.
func (s SignupRequest) Validate() error {
	var errs []error
	if !ValidUserID(s.UserID) {
		errs = append(errs, ErrUserIDTooShort)
	}
	if !ValidEmail(s.Email) {
		errs = append(errs, ErrEmailInvalid)
	}
	if !PasswordStrong(s.Password) {
		errs = append(errs, ErrPasswordWeak)
	}
	if s.Password != s.ConfirmPassword {
		errs = append(errs, ErrPasswordMismatch)
	}
	if s.Phone != "" && !ValidPhoneNumber(s.Phone) {
		errs = append(errs, ErrPhoneInvalid)
	}
	return errors.Join(errs...)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhoneNumber keeps at most 11 digits and hyphenates them as 010-1234-5678.
func FormatPhoneNumber(raw string) string {
	d := digitsOnly(raw)
	if len(d) > 11 {
		d = d[:11]
	}
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 7:
		return d[:3] + "-" + d[3:]
	default:
		return d[:3] + "-" + d[3:7] + "-" + d[7:]
	}
}

// ValidPhoneNumber accepts 10 or 11 digit Korean mobile numbers, hyphenated or not.
func ValidPhoneNumber(raw string) bool {
	return mobileNumber.MatchString(digitsOnly(raw))
}

// GoogleSignup is the prefill handed over by the backend's OAuth sign-up continuation.
type GoogleSignup struct {
	Email    string
	Name     string
	GoogleID string
}

// LoginRequest is the body posted to the backend login endpoint.
type LoginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}
