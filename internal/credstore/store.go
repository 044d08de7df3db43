// Package credstore is the only reader and writer of the Credential Record.
// It writes both the durable tier and the cookie tier and reads with durable-first fallback.
package credstore

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/ports"
)

// DefaultCookieMaxAge is how long mirrored credential cookies live.
const DefaultCookieMaxAge = 7 * 24 * time.Hour

var _ ports.CredentialStore = (*Store)(nil)

// Options configures a Store. Session and Logger are optional.
type Options struct {
	Durable      ports.StorageTier
	Cookies      ports.CookieTier
	Session      ports.ClearableTier
	CookieMaxAge time.Duration
	Logger       *slog.Logger
}

// Store is a request-scoped CredentialStore over the tiers of one device.
type Store struct {
	durable ports.StorageTier
	cookies ports.CookieTier
	session ports.ClearableTier
	maxAge  time.Duration
	logger  *slog.Logger
}

// New creates a Store.
func New(opts Options) *Store {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	maxAge := opts.CookieMaxAge
	if maxAge <= 0 {
		maxAge = DefaultCookieMaxAge
	}
	return &Store{
		durable: opts.Durable,
		cookies: opts.Cookies,
		session: opts.Session,
		maxAge:  maxAge,
		logger:  l.With("component", "credstore"),
	}
}

// Read assembles the record field by field: durable value first, then cookie.
func (s *Store) Read(ctx context.Context) domainauth.Credential {
	return domainauth.Credential{
		Token: firstNonEmpty(
			s.durableGet(ctx, domainauth.KeyAuthToken),
			s.durableGet(ctx, domainauth.KeyAccessToken),
			s.cookieGet(domainauth.KeyAuthToken),
		),
		UserID:    s.field(ctx, domainauth.KeyUserID),
		UserName:  s.field(ctx, domainauth.KeyUserName),
		UserEmail: s.field(ctx, domainauth.KeyUserEmail),
		Role:      domainauth.ParseRole(s.field(ctx, domainauth.KeyUserRole)),
	}
}

// Write replaces the stored record. Empty fields remove their keys.
func (s *Store) Write(ctx context.Context, cred domainauth.Credential) {
	durable := []struct{ key, value string }{
		{domainauth.KeyAuthToken, cred.Token},
		{domainauth.KeyAccessToken, cred.Token},
		{domainauth.KeyUserID, cred.UserID},
		{domainauth.KeyUserName, cred.UserName},
		{domainauth.KeyUserRole, string(cred.Role)},
		{domainauth.KeyUserEmail, cred.UserEmail},
	}
	for _, kv := range durable {
		if kv.value == "" {
			s.durableDelete(ctx, kv.key)
			continue
		}
		s.durableSet(ctx, kv.key, kv.value)
	}

	mirrored := []struct{ key, value string }{
		{domainauth.KeyAuthToken, cred.Token},
		{domainauth.KeyUserID, cred.UserID},
		{domainauth.KeyUserName, cred.UserName},
		{domainauth.KeyUserRole, string(cred.Role)},
	}
	for _, kv := range mirrored {
		if kv.value == "" {
			s.cookieDelete(kv.key)
			continue
		}
		s.cookieSet(kv.key, kv.value)
	}
}

// Clear removes every credential key from both tiers and wipes the session tier. theme is kept.
func (s *Store) Clear(ctx context.Context) {
	s.durableDelete(ctx, domainauth.DurableClearKeys()...)
	s.cookieDelete(domainauth.CookieClearKeys()...)
	if s.session != nil {
		s.guard(ctx, "session.clear", func() error { return s.session.Clear(ctx) })
	}
	s.logger.DebugContext(ctx, "credentials cleared")
}

// PurgeOrphans removes identity fields from both tiers. Only cookies actually present are expired.
func (s *Store) PurgeOrphans(ctx context.Context) {
	keys := domainauth.OrphanKeys()
	s.durableDelete(ctx, keys...)

	var present []string
	for _, k := range keys {
		if s.cookieGet(k) != "" {
			present = append(present, k)
		}
	}
	s.cookieDelete(present...)
	s.logger.DebugContext(ctx, "orphaned identity fields purged", "cookies", len(present))
}

func (s *Store) field(ctx context.Context, key string) string {
	return firstNonEmpty(s.durableGet(ctx, key), s.cookieGet(key))
}

func (s *Store) durableGet(ctx context.Context, key string) string {
	var v string
	s.guard(ctx, "durable.get", func() error {
		var err error
		v, err = s.durable.Get(ctx, key)
		return err
	})
	return v
}

func (s *Store) durableSet(ctx context.Context, key, value string) {
	s.guard(ctx, "durable.set", func() error { return s.durable.Set(ctx, key, value) })
}

func (s *Store) durableDelete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	s.guard(ctx, "durable.delete", func() error { return s.durable.Delete(ctx, keys...) })
}

// cookieGet returns the decoded cookie value. Values that are not valid escapes are returned as sent.
func (s *Store) cookieGet(name string) string {
	var v string
	s.guard(context.Background(), "cookie.get", func() error {
		v = s.cookies.Get(name)
		return nil
	})
	if out, err := url.QueryUnescape(v); err == nil {
		return out
	}
	return v
}

// cookieSet escapes value; http.SetCookie drops bytes outside the cookie-octet set.
func (s *Store) cookieSet(name, value string) {
	s.guard(context.Background(), "cookie.set", func() error {
		s.cookies.Set(&http.Cookie{
			Name:     name,
			Value:    url.QueryEscape(value),
			MaxAge:   int(s.maxAge.Seconds()),
			SameSite: http.SameSiteLaxMode,
		})
		return nil
	})
}

func (s *Store) cookieDelete(names ...string) {
	if len(names) == 0 {
		return
	}
	s.guard(context.Background(), "cookie.delete", func() error {
		s.cookies.Delete(names...)
		return nil
	})
}

// guard runs fn, logging and swallowing both errors and panics.
func (s *Store) guard(ctx context.Context, op string, fn func() error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.WarnContext(ctx, "credential tier panicked", "op", op, "panic", fmt.Sprint(rec))
		}
	}()
	if err := fn(); err != nil {
		s.logger.WarnContext(ctx, "credential tier unavailable", "op", op, "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
