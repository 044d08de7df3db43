package httpx

import (
	"context"

	"github.com/initcareer/init-web/internal/adapters/cookies"
	"github.com/initcareer/init-web/internal/credstore"
	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/domain/route"
	"github.com/initcareer/init-web/internal/ports"
)

// Client is the request-scoped view of one browser device: its storage tiers,
// the credential store over them and the backend session bound to its cookies.
type Client struct {
	Device  string
	Cookies *cookies.Tier
	Durable *credstore.BoundTier
	Session *credstore.BoundTier
	Store   *credstore.Store
	Backend ports.BackendSession
}

// clientKey is an unexported context key type to avoid collisions across packages.
type clientKey struct{}

// SetClientInContext returns a child context that carries c.
// If c is nil, the original ctx is returned unchanged.
func SetClientInContext(ctx context.Context, c *Client) context.Context {
	if c == nil {
		return ctx
	}
	return context.WithValue(ctx, clientKey{}, c)
}

// GetClientFromContext returns the request's client and whether one is present.
func GetClientFromContext(ctx context.Context) (*Client, bool) {
	if c, ok := ctx.Value(clientKey{}).(*Client); ok && c != nil {
		return c, true
	}
	return nil, false
}

// Gate is what the route gate concluded for an allowed request.
type Gate struct {
	Resolution domainauth.Resolution
	Decision   route.Decision
}

type gateKey struct{}

func setGateInContext(ctx context.Context, g Gate) context.Context {
	return context.WithValue(ctx, gateKey{}, g)
}

// GetGateFromContext returns the gate outcome. Requests that bypassed the gate get the CHECKING decision.
func GetGateFromContext(ctx context.Context) Gate {
	if g, ok := ctx.Value(gateKey{}).(Gate); ok {
		return g
	}
	return Gate{Decision: route.Checking()}
}
