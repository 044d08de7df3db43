package backend

import (
	"net/http"
	"strings"

	"github.com/initcareer/init-web/internal/ports"
)

// SessionCookieNames are the recognized session-tracking cookies, in primary-id priority order.
var SessionCookieNames = []string{"JSESSIONID", "SESSIONID", "SESSID"}

func isSessionCookie(name string) bool {
	for _, n := range SessionCookieNames {
		if n == name {
			return true
		}
	}
	return false
}

// SessionIDs returns the known session identifiers in priority order. The first is the primary id.
// Values are not deduplicated: the same id under two names appears twice, and coexisting
// cookies with one name all appear in request order.
func SessionIDs(cookies ports.CookieTier) []string {
	if cookies == nil {
		return nil
	}
	var ids []string
	for _, name := range SessionCookieNames {
		ids = append(ids, cookies.Values(name)...)
	}
	return ids
}

// PrimarySessionID returns the first known session id, or "".
func PrimarySessionID(cookies ports.CookieTier) string {
	if ids := SessionIDs(cookies); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

func sessionCookies(cookies ports.CookieTier) []*http.Cookie {
	if cookies == nil {
		return nil
	}
	var out []*http.Cookie
	for _, c := range cookies.All() {
		if isSessionCookie(c.Name) && c.Value != "" {
			out = append(out, c)
		}
	}
	return out
}

// propagationVariants are the attribute sets a propagated session id is written with.
// Later writes under the same name win in the browser, so the most permissive
// JSESSIONID variant goes last.
var propagationVariants = []struct {
	name     string
	sameSite http.SameSite
	secure   bool
}{
	{"JSESSIONID", http.SameSiteNoneMode, true},
	{"JSESSIONID", http.SameSiteLaxMode, true},
	{"JSESSIONID", http.SameSiteDefaultMode, true},
	{"JSESSIONID", http.SameSiteDefaultMode, false},
	{"SESSIONID", http.SameSiteNoneMode, true},
	{"SESSID", http.SameSiteLaxMode, true},
}

// PropagateSessionID writes id under every recognized name and attribute combination.
// It is best-effort: the browser may refuse some variants. It returns the number of writes issued.
func PropagateSessionID(cookies ports.CookieTier, id string) int {
	if cookies == nil || strings.TrimSpace(id) == "" {
		return 0
	}
	for _, v := range propagationVariants {
		cookies.Set(&http.Cookie{
			Name:     v.name,
			Value:    id,
			Path:     "/",
			SameSite: v.sameSite,
			Secure:   v.secure,
		})
	}
	return len(propagationVariants)
}

// ClearSessionCookies expires every session-tracking cookie, including any other
// cookie whose name contains "SESSION".
func ClearSessionCookies(cookies ports.CookieTier) {
	if cookies == nil {
		return
	}
	names := append([]string(nil), SessionCookieNames...)
	for _, c := range cookies.All() {
		if strings.Contains(c.Name, "SESSION") && !isSessionCookie(c.Name) {
			names = append(names, c.Name)
		}
	}
	cookies.Delete(names...)
}

// adoptSessionCookies copies session cookies the backend set on its own origin into the browser's tier.
func adoptSessionCookies(cookies ports.CookieTier, h http.Header) {
	if cookies == nil || len(h.Values("Set-Cookie")) == 0 {
		return
	}
	resp := http.Response{Header: h}
	for _, c := range resp.Cookies() {
		if !isSessionCookie(c.Name) {
			continue
		}
		if c.MaxAge < 0 || c.Value == "" {
			cookies.Delete(c.Name)
			continue
		}
		cookies.Set(&http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Path:     "/",
			SameSite: c.SameSite,
			Secure:   c.Secure,
		})
	}
}
