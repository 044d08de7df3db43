package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/ports"
)

// UnknownUserName is shown for an authenticated user without a stored display name.
const UnknownUserName = "Unknown User"

var _ ports.AuthResolver = (*AuthStateResolver)(nil)

// AuthStateResolverOptions groups dependencies for AuthStateResolver.
type AuthStateResolverOptions struct {
	// RejectExpired treats a token whose exp claim has passed as absent.
	RejectExpired bool
	Now           func() time.Time
	Logger        *slog.Logger
}

// AuthStateResolver derives the auth view from a CredentialStore. It never calls the network.
type AuthStateResolver struct {
	rejectExpired bool
	now           func() time.Time
	parser        *jwt.Parser
	logger        *slog.Logger
}

// NewAuthStateResolver constructs an AuthStateResolver.
func NewAuthStateResolver(opts AuthStateResolverOptions) *AuthStateResolver {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthStateResolver{
		rejectExpired: opts.RejectExpired,
		now:           now,
		parser:        jwt.NewParser(),
		logger:        logger.With("component", "auth_resolver"),
	}
}

// Resolve reads the credential record and reports who is logged in.
// Identity fields lingering without a token are purged as a side effect.
func (r *AuthStateResolver) Resolve(ctx context.Context, store ports.CredentialStore) domainauth.Resolution {
	cred := store.Read(ctx)

	if cred.Orphaned() {
		r.logger.DebugContext(ctx, "purging identity fields without a token")
		store.PurgeOrphans(ctx)
		return domainauth.Resolution{Purged: true}
	}
	if !cred.Valid() {
		return domainauth.Resolution{}
	}

	expiresAt := r.tokenExpiry(cred.Token)
	if r.rejectExpired && !expiresAt.IsZero() && !r.now().Before(expiresAt) {
		r.logger.InfoContext(ctx, "stored token has expired, clearing credentials", "expired_at", expiresAt)
		store.Clear(ctx)
		return domainauth.Resolution{TokenExpiresAt: expiresAt, Purged: true}
	}

	name := cred.UserName
	if name == "" {
		name = UnknownUserName
	}
	return domainauth.Resolution{
		Authenticated:  true,
		UserID:         cred.UserID,
		UserName:       name,
		UserEmail:      cred.UserEmail,
		Role:           cred.Role,
		TokenExpiresAt: expiresAt,
	}
}

// tokenExpiry reads the exp claim without verifying the signature; the backend owns the key.
// Opaque tokens yield the zero time.
func (r *AuthStateResolver) tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := r.parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
