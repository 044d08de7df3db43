package config

import (
	"fmt"
	"strings"
	"time"
)

// StorageBackend names an implementation of the client storage tiers.
type StorageBackend string

const (
	StorageBackendRedis    StorageBackend = "redis"
	StorageBackendPostgres StorageBackend = "postgres"
	StorageBackendMemory   StorageBackend = "memory"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageBackend.
func (s *StorageBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch StorageBackend(v) {
	case StorageBackendRedis, StorageBackendPostgres, StorageBackendMemory:
		*s = StorageBackend(v)
		return nil
	case "":
		*s = ""
		return nil
	default:
		return fmt.Errorf("invalid StorageBackend: %q (valid options: redis, postgres, memory)", v)
	}
}

// StorageConfig selects where per-device durable and session-scoped values live.
type StorageConfig struct {
	// Backend holds the durable and session tiers.
	Backend StorageBackend `env:"STORAGE_BACKEND" envDefault:"redis"`

	// Events carries storage-change events between instances. Defaults to redis when
	// Backend is redis and to the in-process broker otherwise.
	Events StorageBackend `env:"STORAGE_EVENTS"`

	// SessionTTL expires an idle session-scoped tier.
	SessionTTL time.Duration `env:"STORAGE_SESSION_TTL" envDefault:"30m"`

	// KeyPrefix namespaces Redis keys and channels.
	KeyPrefix string `env:"STORAGE_KEY_PREFIX" envDefault:"initweb:"`
}

// Sanitize applies guardrails to storage configuration values.
func (s *StorageConfig) Sanitize() {
	if s.Backend == "" {
		s.Backend = StorageBackendRedis
	}
	if s.Events == "" || s.Events == StorageBackendPostgres {
		if s.Backend == StorageBackendRedis {
			s.Events = StorageBackendRedis
		} else {
			s.Events = StorageBackendMemory
		}
	}
	if s.SessionTTL <= 0 {
		s.SessionTTL = 30 * time.Minute
	}
	if s.KeyPrefix == "" {
		s.KeyPrefix = "initweb:"
	}
}

// PrunerConfig controls the background deletion of expired client storage rows.
type PrunerConfig struct {
	Interval  time.Duration `env:"PRUNER_INTERVAL"   envDefault:"5m"`
	BatchSize int           `env:"PRUNER_BATCH_SIZE" envDefault:"1000"`
}

// Sanitize applies guardrails to pruner configuration values.
func (p *PrunerConfig) Sanitize() {
	if p.Interval < time.Second {
		p.Interval = time.Second
	}
	if p.BatchSize < 1 {
		p.BatchSize = 1
	}
}
