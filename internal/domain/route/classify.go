package route

// Package route classifies navigation paths and decides what the layout gate does with them.
// Everything here is pure; the HTTP middleware in internal/http applies the decisions.

import "strings"

// Class is the static category of a navigation path.
type Class int

const (
	// ClassProtected is any path not listed anywhere: it needs a login but no particular role.
	ClassProtected Class = iota
	// ClassPublic paths render for everyone without layout decoration.
	ClassPublic
	// ClassAuthEntry paths (login, signup) render for anonymous visitors only.
	ClassAuthEntry
	// ClassUserOnly paths require the USER role.
	ClassUserOnly
	// ClassAdminOnly paths require the ADMIN role.
	ClassAdminOnly
)

func (c Class) String() string {
	switch c {
	case ClassPublic:
		return "public"
	case ClassAuthEntry:
		return "auth_entry"
	case ClassUserOnly:
		return "user_only"
	case ClassAdminOnly:
		return "admin_only"
	default:
		return "protected"
	}
}

// Policy holds the fixed path lists. Public and auth-entry paths match exactly;
// role paths match by segment prefix.
type Policy struct {
	Public    []string
	AuthEntry []string
	UserOnly  []string
	AdminOnly []string
}

// DefaultPolicy returns the navigation lists of the career dashboard.
func DefaultPolicy() Policy {
	return Policy{
		Public:    []string{"/", "/find-account"},
		AuthEntry: []string{"/login", "/signup"},
		UserOnly: []string{
			"/dashboard",
			"/profile",
			"/resume",
			"/introduce",
			"/spec-management",
			"/job-calendar",
			"/community",
			"/statistics",
			"/settings",
			"/home",
		},
		AdminOnly: []string{"/admin"},
	}
}

// Classify returns the category of path.
func (p Policy) Classify(path string) Class {
	path = normalize(path)
	switch {
	case containsExact(p.Public, path):
		return ClassPublic
	case containsExact(p.AuthEntry, path):
		return ClassAuthEntry
	case matchesPrefix(p.AdminOnly, path):
		return ClassAdminOnly
	case matchesPrefix(p.UserOnly, path):
		return ClassUserOnly
	default:
		return ClassProtected
	}
}

func normalize(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

func containsExact(list []string, path string) bool {
	for _, p := range list {
		if p == path {
			return true
		}
	}
	return false
}

// matchesPrefix matches whole segments so "/homework" is not mistaken for "/home".
func matchesPrefix(list []string, path string) bool {
	for _, p := range list {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
