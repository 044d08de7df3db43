package config

import (
	"strings"
	"time"
)

// BackendConfig configures the upstream REST backend and the session reconciliation client.
type BackendConfig struct {
	// BaseURL is the API root, e.g. "https://api.example.com/api".
	BaseURL string `env:"BACKEND_BASE_URL" envDefault:"http://localhost:8081/api"`

	// GoogleLoginURL starts the backend-run Google OAuth flow.
	GoogleLoginURL string `env:"BACKEND_GOOGLE_LOGIN_URL" envDefault:"http://localhost:8081/oauth2/authorization/google"`

	// Timeout bounds each outbound attempt.
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"30s"`

	// MaxAttempts is the number of retries after the initial attempt.
	MaxAttempts int `env:"BACKEND_MAX_ATTEMPTS" envDefault:"3"`

	// VerifyMaxAttempts is the retry count used for email-code verification.
	VerifyMaxAttempts int `env:"BACKEND_VERIFY_MAX_ATTEMPTS" envDefault:"5"`

	// BackoffUnit is multiplied by the attempt number between network-failure retries.
	BackoffUnit time.Duration `env:"BACKEND_BACKOFF_UNIT" envDefault:"1s"`

	// Mobile clients get extra time for cookies to settle around the email-code flow.
	MobileSendDelay   time.Duration `env:"BACKEND_MOBILE_SEND_DELAY"   envDefault:"500ms"`
	MobileVerifyDelay time.Duration `env:"BACKEND_MOBILE_VERIFY_DELAY" envDefault:"1s"`
	MobileSignupDelay time.Duration `env:"BACKEND_MOBILE_SIGNUP_DELAY" envDefault:"1s"`

	// SettleDelay follows a session-id re-propagation before verification.
	SettleDelay time.Duration `env:"BACKEND_SETTLE_DELAY" envDefault:"200ms"`

	// Login response mapping (JMESPath expressions).
	Login LoginMappingConfig `envPrefix:"BACKEND_LOGIN_"`
}

// LoginMappingConfig holds JMESPath expressions that pull credential fields
// out of the backend's login response.
type LoginMappingConfig struct {
	TokenExpr string `env:"TOKEN_EXPR" envDefault:"token || accessToken"`
	IDExpr    string `env:"ID_EXPR"    envDefault:"id || userId"`
	NameExpr  string `env:"NAME_EXPR"  envDefault:"name || userName"`
	RoleExpr  string `env:"ROLE_EXPR"  envDefault:"role || userRole"`
	EmailExpr string `env:"EMAIL_EXPR" envDefault:"email"`
}

// Sanitize applies guardrails to backend configuration values.
func (b *BackendConfig) Sanitize() {
	b.BaseURL = strings.TrimRight(strings.TrimSpace(b.BaseURL), "/")
	if b.BaseURL == "" {
		b.BaseURL = "http://localhost:8081/api"
	}
	b.GoogleLoginURL = strings.TrimSpace(b.GoogleLoginURL)
	if b.Timeout <= 0 {
		b.Timeout = 30 * time.Second
	}
	if b.MaxAttempts < 0 {
		b.MaxAttempts = 0
	}
	if b.VerifyMaxAttempts < b.MaxAttempts {
		b.VerifyMaxAttempts = b.MaxAttempts
	}
	if b.BackoffUnit < 0 {
		b.BackoffUnit = 0
	}
}
