package config

import (
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - backend.go: upstream REST backend and retry timing
//   - credential.go: credential cookie lifetime and token checks
//   - database.go: Postgres and Redis connections
//   - http.go: HTTP server configuration
//   - storage.go: client storage tiers and the expiry pruner
//   - services.go: service mode selection
type AppConfig struct {
	// IsDev controls development mode behavior (template reloading, verbose logs).
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	HTTP       HTTPConfig
	Backend    BackendConfig
	Credential CredentialConfig
	Storage    StorageConfig
	Pruner     PrunerConfig

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	// Services is a comma-separated list of service modes to run.
	Services string `env:"SERVICES" envDefault:"http"`

	Observability ObservabilityConfig
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.HTTP.Sanitize()
	c.Backend.Sanitize()
	c.Credential.Sanitize()
	c.Storage.Sanitize()
	c.Pruner.Sanitize()
	c.Observability.Sanitize()
	c.Postgres.Sanitize()

	c.detectDevMode()
}

// detectDevMode checks both DEV and NODE_ENV environment variables.
// NODE_ENV is checked as a fallback (common in frontend tooling).
func (c *AppConfig) detectDevMode() {
	if !c.IsDev {
		nodeEnv := strings.ToLower(os.Getenv("NODE_ENV"))
		c.IsDev = nodeEnv == "development" || nodeEnv == "dev"
	}
}

// GetEnabledServices returns the enabled services based on the Services field.
func (c *AppConfig) GetEnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

// IsHTTPServerEnabled returns true if the HTTP server service is enabled.
func (c *AppConfig) IsHTTPServerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModeHTTP]
}

// IsPrunerEnabled returns true if the storage pruner should run.
// The pruner only has work to do when client storage lives in Postgres.
func (c *AppConfig) IsPrunerEnabled() bool {
	services, err := c.GetEnabledServices()
	if err != nil {
		return false
	}
	return services[ServiceModePruner] && c.Storage.Backend == StorageBackendPostgres
}

// NeedsPostgres reports whether any enabled component talks to Postgres.
func (c *AppConfig) NeedsPostgres() bool {
	return c.Storage.Backend == StorageBackendPostgres
}

// NeedsRedis reports whether any enabled component talks to Redis.
func (c *AppConfig) NeedsRedis() bool {
	return c.Storage.Backend == StorageBackendRedis || c.Storage.Events == StorageBackendRedis
}
