package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCredential_Valid(t *testing.T) {
	tests := []struct {
		name string
		cred Credential
		want bool
	}{
		{name: "token and id", cred: Credential{Token: "abc", UserID: "42"}, want: true},
		{name: "missing token", cred: Credential{UserID: "42"}},
		{name: "empty id", cred: Credential{Token: "abc"}},
		{name: "whitespace id", cred: Credential{Token: "abc", UserID: "   "}},
		{name: "undefined id", cred: Credential{Token: "abc", UserID: "undefined"}},
		{name: "role alone does not validate", cred: Credential{Role: RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cred.Valid())
		})
	}
}

func TestCredential_Orphaned(t *testing.T) {
	assert.True(t, Credential{UserID: "42"}.Orphaned())
	assert.True(t, Credential{UserName: "Kim"}.Orphaned())
	assert.True(t, Credential{Role: RoleUser}.Orphaned())
	assert.False(t, Credential{}.Orphaned())
	assert.False(t, Credential{Token: "abc", UserID: "42"}.Orphaned())
}

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleUser, ParseRole("USER"))
	assert.Equal(t, RoleAdmin, ParseRole(" admin "))
	assert.Equal(t, RoleNone, ParseRole(""))
	assert.Equal(t, RoleNone, ParseRole("GUEST"))
}

func TestRole_Home(t *testing.T) {
	assert.Equal(t, "/admin", RoleAdmin.Home())
	assert.Equal(t, "/dashboard", RoleUser.Home())
	assert.Empty(t, RoleNone.Home())
}

func TestResolution_RoleMissing(t *testing.T) {
	assert.True(t, Resolution{Authenticated: true}.RoleMissing())
	assert.False(t, Resolution{Authenticated: true, Role: RoleUser}.RoleMissing())
	assert.False(t, Resolution{}.RoleMissing())
}

func TestClearKeys_KeepTheme(t *testing.T) {
	assert.NotContains(t, DurableClearKeys(), KeyTheme)
	assert.NotContains(t, CookieClearKeys(), KeyTheme)
	assert.Contains(t, CookieClearKeys(), "JSESSIONID")
}
