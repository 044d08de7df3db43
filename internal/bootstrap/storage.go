package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/initcareer/init-web/config"
	"github.com/initcareer/init-web/internal/adapters/memstore"
	redisstore "github.com/initcareer/init-web/internal/adapters/redis"
	"github.com/initcareer/init-web/internal/data"
	"github.com/initcareer/init-web/internal/ports"
	"github.com/initcareer/init-web/internal/service"
)

// Storage is the wired set of client storage tiers.
type Storage struct {
	Durable ports.KeyValueStore
	Session ports.KeyValueStore
	Events  ports.StorageEvents
	// Pruner is set only for the Postgres backend, the one store that does not expire rows by itself.
	Pruner service.ExpiredRowPruner
}

// Infrastructure holds the shared connections opened for the enabled storage backends.
type Infrastructure struct {
	DB    *sql.DB
	Redis redis.UniversalClient
}

// Close releases every open connection.
func (i *Infrastructure) Close() error {
	if i == nil {
		return nil
	}
	var errs []error
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ConnectInfrastructure opens only the connections the configured storage needs.
func ConnectInfrastructure(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*Infrastructure, error) {
	infra := &Infrastructure{}
	dbCfg := DatabaseConfig{DBConfig: cfg.Postgres, RedisConfig: cfg.Redis, Logger: logger}

	if cfg.NeedsPostgres() {
		db, err := ConnectDB(ctx, dbCfg)
		if err != nil {
			return nil, fmt.Errorf("connect db: %w", err)
		}
		infra.DB = db
	}

	if cfg.NeedsRedis() {
		client, err := ConnectRedis(ctx, dbCfg)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("connect redis: %w", err), infra.Close())
		}
		infra.Redis = client
	}

	return infra, nil
}

// BuildStorage selects the tier implementations for cfg over the open connections.
func BuildStorage(cfg config.StorageConfig, infra *Infrastructure, logger *slog.Logger) (Storage, error) {
	if infra == nil {
		infra = &Infrastructure{}
	}
	var st Storage

	switch cfg.Backend {
	case config.StorageBackendRedis:
		if infra.Redis == nil {
			return Storage{}, errors.New("redis storage selected without a redis connection")
		}
		st.Durable = redisstore.NewStorageTier(infra.Redis, redisstore.StorageTierOptions{
			Prefix: cfg.KeyPrefix + "local:",
		})
		st.Session = redisstore.NewStorageTier(infra.Redis, redisstore.StorageTierOptions{
			Prefix: cfg.KeyPrefix + "session:",
			TTL:    cfg.SessionTTL,
		})

	case config.StorageBackendPostgres:
		if infra.DB == nil {
			return Storage{}, errors.New("postgres storage selected without a database connection")
		}
		st.Durable = data.NewStorageRepo(infra.DB, data.StorageRepoOptions{Tier: data.TierLocal})
		session := data.NewStorageRepo(infra.DB, data.StorageRepoOptions{Tier: data.TierSession, TTL: cfg.SessionTTL})
		st.Session = session
		st.Pruner = session

	case config.StorageBackendMemory:
		st.Durable = memstore.New()
		st.Session = memstore.New(memstore.WithTTL(cfg.SessionTTL))

	default:
		return Storage{}, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}

	switch cfg.Events {
	case config.StorageBackendRedis:
		if infra.Redis == nil {
			return Storage{}, errors.New("redis events selected without a redis connection")
		}
		st.Events = redisstore.NewEventBus(infra.Redis, cfg.KeyPrefix+"events:", logger)
	default:
		st.Events = memstore.NewBroker()
	}

	if logger != nil {
		logger.Info("client storage configured", "backend", cfg.Backend, "events", cfg.Events)
	}
	return st, nil
}
