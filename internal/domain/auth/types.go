package auth

// Package auth contains domain-level types for client credentials and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents the role the backend assigned to the logged-in user.
// Keep the backend's upper-case string form; it is persisted verbatim in storage and cookies.
type Role string

const (
	RoleNone  Role = ""
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole normalizes a stored role value. Unknown values map to RoleNone.
func ParseRole(raw string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleUser:
		return RoleUser
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleNone
	}
}

// Home returns the landing path for the role, or "" when the role is absent.
func (r Role) Home() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleUser:
		return "/dashboard"
	default:
		return ""
	}
}

// undefinedUserID is what a stringified JS undefined looks like once it reaches storage.
const undefinedUserID = "undefined"

// Credential is the client-held representation of who is logged in.
// Empty strings mean "absent".
type Credential struct {
	Token     string
	UserID    string
	UserName  string
	UserEmail string
	Role      Role
}

// HasValidUserID reports whether UserID is non-empty and not the "undefined" sentinel.
func (c Credential) HasValidUserID() bool {
	id := strings.TrimSpace(c.UserID)
	return id != "" && id != undefinedUserID
}

// Valid reports whether the record identifies an authenticated user: a token plus a usable user id.
// Role is intentionally not part of validity.
func (c Credential) Valid() bool {
	return c.Token != "" && c.HasValidUserID()
}

// Orphaned reports whether identity fields linger without a token.
func (c Credential) Orphaned() bool {
	return c.Token == "" && (c.UserID != "" || c.UserName != "" || c.Role != RoleNone)
}

// Resolution is the read-only view of the auth state derived from a Credential.
type Resolution struct {
	Authenticated bool
	UserID        string
	UserName      string
	UserEmail     string
	Role          Role
	// TokenExpiresAt is set when the token carries an exp claim.
	TokenExpiresAt time.Time
	// Purged is true when the resolver removed orphaned identity fields.
	Purged bool
}

// RoleMissing reports the inconsistent "authenticated without a role" state.
func (r Resolution) RoleMissing() bool {
	return r.Authenticated && r.Role == RoleNone
}

// Storage and cookie key names shared by every tier.
const (
	KeyAuthToken    = "authToken"
	KeyAccessToken  = "accessToken"
	KeyUserID       = "userId"
	KeyUserName     = "userName"
	KeyUserRole     = "userRole"
	KeyUserEmail    = "userEmail"
	KeyTheme        = "theme"
	KeySendSession  = "sendSessionId"
	KeySendSentAt   = "sendTimestamp"
	KeyDeviceCookie = "device_id"
)

// DurableClearKeys lists every durable-tier key removed on logout or a corrupted session.
// theme is a preference and survives.
func DurableClearKeys() []string {
	return []string{
		KeyUserID, KeyUserName, KeyUserEmail, KeyUserRole, "name", "email",
		"token", "refreshToken", KeyAuthToken, KeyAccessToken,
		"loginTime", "sessionId", "userInfo",
	}
}

// CookieClearKeys lists every cookie removed on logout or a corrupted session.
func CookieClearKeys() []string {
	return []string{
		KeyUserID, KeyUserName, KeyUserEmail, KeyUserRole, "name", "email",
		"token", "refreshToken", KeyAuthToken, KeyAccessToken,
		"JSESSIONID", "SESSIONID", "SESSID", "sessionId",
	}
}

// OrphanKeys lists the fields purged when identity data lingers without a token.
func OrphanKeys() []string {
	return []string{KeyUserID, KeyUserName, KeyUserRole, KeyUserEmail, KeyAuthToken, KeyAccessToken}
}
