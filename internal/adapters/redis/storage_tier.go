// Package redis provides Redis-based storage tiers and the storage-change event bus.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/initcareer/init-web/internal/ports"
)

var _ ports.KeyValueStore = (*StorageTier)(nil)

// StorageTier keeps one Redis hash per device scope.
// A positive TTL is refreshed on every write so idle scopes expire as a whole.
type StorageTier struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// StorageTierOptions configures a StorageTier.
type StorageTierOptions struct {
	// Prefix namespaces the hashes, e.g. "initweb:local:" or "initweb:session:".
	Prefix string
	// TTL expires the scope after its last write; zero keeps it forever.
	TTL time.Duration
}

// NewStorageTier creates a Redis-backed KeyValueStore.
func NewStorageTier(client redis.UniversalClient, opts StorageTierOptions) *StorageTier {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "initweb:local:"
	}
	return &StorageTier{client: client, prefix: prefix, ttl: opts.TTL}
}

func (s *StorageTier) key(scope string) string { return s.prefix + scope }

func (s *StorageTier) Get(ctx context.Context, scope, key string) (string, error) {
	if scope == "" {
		return "", nil
	}
	v, err := s.client.HGet(ctx, s.key(scope), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis hget: %w", err)
	}
	return v, nil
}

func (s *StorageTier) GetAll(ctx context.Context, scope string) (map[string]string, error) {
	if scope == "" {
		return map[string]string{}, nil
	}
	m, err := s.client.HGetAll(ctx, s.key(scope)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall: %w", err)
	}
	return m, nil
}

func (s *StorageTier) Set(ctx context.Context, scope, key, value string) error {
	if scope == "" {
		return errors.New("storage scope cannot be empty")
	}
	k := s.key(scope)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, key, value)
		if s.ttl > 0 {
			p.Expire(ctx, k, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

func (s *StorageTier) Delete(ctx context.Context, scope string, keys ...string) error {
	if scope == "" || len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.key(scope), keys...).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}

func (s *StorageTier) Clear(ctx context.Context, scope string) error {
	if scope == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(scope)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
