package route

import (
	"net/url"

	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/domain/model"
)

// State is where the gate stands for the current navigation.
type State string

const (
	StateChecking    State = "CHECKING"
	StateAllowed     State = "ALLOWED"
	StateRedirecting State = "REDIRECTING"
)

// Rule identifies which row of the transition table produced a decision.
type Rule string

const (
	RulePublic            Rule = "public"
	RuleAuthEntry         Rule = "auth_entry"
	RuleUnauthenticated   Rule = "unauthenticated"
	RuleAdminOnUserPath   Rule = "admin_on_user_path"
	RuleUserOnAdminPath   Rule = "user_on_admin_path"
	RuleAuthenticatedAuth Rule = "authenticated_on_auth_page"
	RuleRoleMissing       Rule = "role_missing"
	RuleAllowed           Rule = "allowed"
)

// Login reasons carried in the reason query parameter.
const (
	ReasonAuthRequired   = "auth_required"
	ReasonInvalidSession = "invalid_session"
	ReasonAuthFailed     = "auth_failed"
)

// Notice texts shown on cross-role and corrupted-session redirects.
const (
	NoticeAdminBlocked   = "Administrators cannot access this page. Redirecting to the admin console."
	NoticeUserBlocked    = "This page requires administrator permissions. Redirecting to your dashboard."
	NoticeInvalidAccount = "Your account information is incomplete. Please sign in again."
)

// Decision is the outcome of evaluating one navigation.
type Decision struct {
	State State
	Rule  Rule
	Class Class
	// Target is the replace-navigation destination when State is REDIRECTING.
	Target string
	// Notice is surfaced to the user on the destination page.
	Notice model.Notice
	// ClearCredentials asks the caller to wipe every stored credential before redirecting.
	ClearCredentials bool
	// Decorate wraps the page in the application layout.
	Decorate bool
	// Sidebar shows the user navigation sidebar inside the layout.
	Sidebar bool
}

// Checking is the decision in force before the auth state has been resolved.
func Checking() Decision { return Decision{State: StateChecking} }

// Decide evaluates path against DefaultPolicy.
func Decide(path string, res domainauth.Resolution) Decision {
	return DefaultPolicy().Decide(path, res)
}

// Decide evaluates the transition table for path in fixed priority order.
func (p Policy) Decide(path string, res domainauth.Resolution) Decision {
	class := p.Classify(path)
	d := Decision{Class: class}

	switch {
	case class == ClassPublic:
		return allow(d, RulePublic, false, false)

	case class == ClassAuthEntry && !res.Authenticated:
		return allow(d, RuleAuthEntry, false, false)

	case !res.Authenticated:
		return redirect(d, RuleUnauthenticated, LoginURL(ReasonAuthRequired, path))

	case res.Role == domainauth.RoleAdmin && class == ClassUserOnly:
		d.Notice = model.Warning(NoticeAdminBlocked)
		return redirect(d, RuleAdminOnUserPath, domainauth.RoleAdmin.Home())

	case res.Role == domainauth.RoleUser && class == ClassAdminOnly:
		d.Notice = model.Warning(NoticeUserBlocked)
		return redirect(d, RuleUserOnAdminPath, domainauth.RoleUser.Home())

	case class == ClassAuthEntry && res.Role != domainauth.RoleNone:
		return redirect(d, RuleAuthenticatedAuth, res.Role.Home())

	case res.Role == domainauth.RoleNone:
		d.Notice = model.Error(NoticeInvalidAccount)
		d.ClearCredentials = true
		return redirect(d, RuleRoleMissing, LoginURL(ReasonInvalidSession, ""))

	default:
		sidebar := res.Role == domainauth.RoleUser && class != ClassAdminOnly
		return allow(d, RuleAllowed, true, sidebar)
	}
}

func allow(d Decision, rule Rule, decorate, sidebar bool) Decision {
	d.State = StateAllowed
	d.Rule = rule
	d.Decorate = decorate
	d.Sidebar = sidebar
	return d
}

func redirect(d Decision, rule Rule, target string) Decision {
	d.State = StateRedirecting
	d.Rule = rule
	d.Target = target
	return d
}

// LoginURL builds the login destination with an optional reason and intended path.
func LoginURL(reason, intended string) string {
	q := url.Values{}
	if reason != "" {
		q.Set("reason", reason)
	}
	if intended != "" {
		q.Set("redirect", intended)
	}
	if len(q) == 0 {
		return "/login"
	}
	return "/login?" + q.Encode()
}
