// Package cookies adapts one request/response pair into the request-scoped cookie tier.
package cookies

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/initcareer/init-web/internal/ports"
)

var _ ports.CookieTier = (*Tier)(nil)

// Options controls the attributes applied to cookies written through the tier.
type Options struct {
	// Domain is the cookie domain; empty means host-only.
	Domain string
	// HTTPOnly hides written cookies from page scripts.
	HTTPOnly bool
}

// Tier reads cookies from the incoming request and writes Set-Cookie headers on the response.
// Writes made during the request shadow the request's own cookies for later reads.
type Tier struct {
	r    *http.Request
	w    http.ResponseWriter
	opts Options

	mu      sync.Mutex
	pending map[string]*http.Cookie
	order   []string
}

// New binds a cookie tier to one request.
func New(w http.ResponseWriter, r *http.Request, opts Options) *Tier {
	return &Tier{r: r, w: w, opts: opts, pending: make(map[string]*http.Cookie)}
}

// IsSecure reports whether r arrived over HTTPS directly or through a proxy.
func IsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	for _, proto := range strings.Split(r.Header.Get("X-Forwarded-Proto"), ",") {
		if strings.EqualFold(strings.TrimSpace(proto), "https") {
			return true
		}
	}
	return false
}

// Get returns the current value of name, or "" when absent or deleted.
func (t *Tier) Get(name string) string {
	t.mu.Lock()
	c, ok := t.pending[name]
	t.mu.Unlock()
	if ok {
		if c.MaxAge < 0 {
			return ""
		}
		return c.Value
	}
	if t.r == nil {
		return ""
	}
	rc, err := t.r.Cookie(name)
	if err != nil {
		return ""
	}
	return rc.Value
}

// Values returns every value of name in request order. A write during this request
// replaces them all.
func (t *Tier) Values(name string) []string {
	t.mu.Lock()
	c, ok := t.pending[name]
	t.mu.Unlock()
	if ok {
		if c.MaxAge < 0 || c.Value == "" {
			return nil
		}
		return []string{c.Value}
	}
	if t.r == nil {
		return nil
	}
	var out []string
	for _, rc := range t.r.CookiesNamed(name) {
		if rc.Value != "" {
			out = append(out, rc.Value)
		}
	}
	return out
}

// Set writes c. Path defaults to "/" and Domain to the configured domain.
// Secure is forced on for HTTPS requests and for SameSite=None cookies.
func (t *Tier) Set(c *http.Cookie) {
	if c == nil || c.Name == "" {
		return
	}
	cp := *c
	if cp.Path == "" {
		cp.Path = "/"
	}
	if cp.Domain == "" {
		cp.Domain = t.opts.Domain
	}
	if t.opts.HTTPOnly {
		cp.HttpOnly = true
	}
	if cp.SameSite == http.SameSiteDefaultMode {
		cp.SameSite = http.SameSiteLaxMode
	}
	if cp.SameSite == http.SameSiteNoneMode || (t.r != nil && IsSecure(t.r)) {
		cp.Secure = true
	}
	if t.w != nil {
		http.SetCookie(t.w, &cp)
	}

	t.mu.Lock()
	if _, seen := t.pending[cp.Name]; !seen {
		t.order = append(t.order, cp.Name)
	}
	t.pending[cp.Name] = &cp
	t.mu.Unlock()
}

// Delete expires every named cookie.
func (t *Tier) Delete(names ...string) {
	for _, name := range names {
		t.Set(&http.Cookie{
			Name:    name,
			Value:   "",
			MaxAge:  -1,
			Expires: time.Unix(0, 0).UTC(),
		})
	}
}

// All returns the live cookies: request cookies not overwritten, then cookies written during the request.
func (t *Tier) All() []*http.Cookie {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []*http.Cookie
	if t.r != nil {
		for _, c := range t.r.Cookies() {
			if _, shadowed := t.pending[c.Name]; shadowed {
				continue
			}
			out = append(out, c)
		}
	}
	for _, name := range t.order {
		c := t.pending[name]
		if c.MaxAge < 0 {
			continue
		}
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}
