package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordStrong(t *testing.T) {
	assert.True(t, PasswordStrong("abcd123!"))
	assert.False(t, PasswordStrong("abc12!"), "too short")
	assert.False(t, PasswordStrong("abcdefg!"), "no digit")
	assert.False(t, PasswordStrong("12345678!"), "no letter")
	assert.False(t, PasswordStrong("abcd1234"), "no symbol")
}

func TestSignupRequest_Validate(t *testing.T) {
	ok := SignupRequest{
		UserID:          "kimdev",
		Password:        "abcd123!",
		ConfirmPassword: "abcd123!",
		Email:           "kim@example.com",
	}
	assert.NoError(t, ok.Validate())

	bad := SignupRequest{UserID: "kim", Password: "abcd123!", ConfirmPassword: "x", Email: "kim"}
	err := bad.Validate()
	assert.ErrorIs(t, err, ErrUserIDTooShort)
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	assert.ErrorIs(t, err, ErrEmailInvalid)
	assert.NotErrorIs(t, err, ErrPasswordWeak)
}

func TestJobRecommendation_Normalize(t *testing.T) {
	j := JobRecommendation{Company: "Acme", Title: "Backend"}
	j.Normalize(2)
	assert.Equal(t, "Acme-Backend-2", j.ID)
	assert.Equal(t, DeadlineUnknown, j.Deadline)
	assert.Equal(t, "#", j.URL)
	assert.NotNil(t, j.Keywords)
	assert.Zero(t, j.MatchScore)

	k := JobRecommendation{ID: "x", Deadline: "2026-01-01", URL: "https://jobs"}
	k.Normalize(0)
	assert.Equal(t, "x", k.ID)
	assert.Equal(t, "2026-01-01", k.Deadline)
}

func TestDefaults(t *testing.T) {
	p := DefaultProfile(42, "")
	assert.Equal(t, "User", p.Name)
	assert.Equal(t, CareerNewcomer, p.CareerType)
	assert.Equal(t, int64(42), *p.UserID)
	assert.True(t, *p.IsMatching)

	c := DefaultConditions(42)
	assert.Equal(t, "0", c.Salary)
	assert.Empty(t, c.Jobs)
}
