package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeNotFound, Message: "unknown user"},
			want: "unknown user",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeNetwork,
				Message: "backend unreachable",
				Cause:   errors.New("connection refused"),
			},
			want: "backend unreachable: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeNetwork, "request failed")

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(Wrap(cause)) = false, want true")
	}
	if Wrap(nil, ErrCodeNetwork, "x") != nil {
		t.Errorf("Wrap(nil) should be nil")
	}
}

func TestUpstream_DefaultMessage(t *testing.T) {
	err := Upstream(502, "")
	if err.Message != "HTTP error! status: 502" {
		t.Errorf("Upstream().Message = %q", err.Message)
	}
	if GetStatus(err) != 502 {
		t.Errorf("GetStatus() = %d, want 502", GetStatus(err))
	}
	if got := Upstream(400, "bad id").Message; got != "bad id" {
		t.Errorf("Upstream().Message = %q, want backend text", got)
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
	}{
		{"not found", NotFound("x"), IsNotFound},
		{"validation", ValidationField("email", "bad"), IsValidation},
		{"unauthorized", Unauthorized(401, "nope"), IsUnauthorized},
		{"network", Wrap(errors.New("dial"), ErrCodeNetwork, "net"), IsNetwork},
		{"malformed", Wrapf(errors.New("eof"), ErrCodeMalformed, "decode %s", "login"), IsMalformed},
		{"storage", Wrap(errors.New("down"), ErrCodeStorage, "redis"), IsStorage},
		{"wrapped by fmt", fmt.Errorf("outer: %w", Unauthorized(403, "no")), IsUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.pred(tt.err) {
				t.Errorf("predicate returned false for %v", tt.err)
			}
		})
	}

	if IsNotFound(errors.New("plain")) {
		t.Errorf("plain errors should not match any code")
	}
	if GetField(ValidationField("email", "bad")) != "email" {
		t.Errorf("GetField() lost the field")
	}
}
