package config

import "time"

// CredentialConfig controls how the credential record is mirrored and validated.
type CredentialConfig struct {
	// CookieMaxAge is the lifetime of the mirrored credential cookies.
	CookieMaxAge time.Duration `env:"CREDENTIAL_COOKIE_MAX_AGE" envDefault:"168h"`

	// RejectExpiredTokens treats a token whose unverified exp claim has passed as absent.
	RejectExpiredTokens bool `env:"CREDENTIAL_REJECT_EXPIRED" envDefault:"false"`

	// HTTPOnly marks the credential cookies HttpOnly. The original browser client
	// read them from script, so the default keeps them readable.
	HTTPOnly bool `env:"CREDENTIAL_COOKIE_HTTP_ONLY" envDefault:"false"`
}

// Sanitize applies guardrails to credential configuration values.
func (c *CredentialConfig) Sanitize() {
	if c.CookieMaxAge <= 0 {
		c.CookieMaxAge = 7 * 24 * time.Hour
	}
}
