package credstore

import (
	"context"
	"log/slog"

	"github.com/initcareer/init-web/internal/domain/model"
	"github.com/initcareer/init-web/internal/ports"
)

var _ ports.ClearableTier = (*BoundTier)(nil)

// BoundTier binds a KeyValueStore to one device scope. When events is set, every
// successful Set and Delete is published so other tabs of the device can react.
type BoundTier struct {
	kv     ports.KeyValueStore
	scope  string
	events ports.StorageEvents
	logger *slog.Logger
}

// BindOptions groups the inputs of Bind.
type BindOptions struct {
	Store  ports.KeyValueStore
	Scope  string
	Events ports.StorageEvents
	Logger *slog.Logger
}

// Bind returns the tier for one device.
func Bind(opts BindOptions) *BoundTier {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	return &BoundTier{kv: opts.Store, scope: opts.Scope, events: opts.Events, logger: l}
}

// Scope returns the device scope the tier is bound to.
func (t *BoundTier) Scope() string { return t.scope }

func (t *BoundTier) Get(ctx context.Context, key string) (string, error) {
	return t.kv.Get(ctx, t.scope, key)
}

func (t *BoundTier) Set(ctx context.Context, key, value string) error {
	if err := t.kv.Set(ctx, t.scope, key, value); err != nil {
		return err
	}
	t.publish(ctx, key, value)
	return nil
}

func (t *BoundTier) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := t.kv.Delete(ctx, t.scope, keys...); err != nil {
		return err
	}
	for _, k := range keys {
		t.publish(ctx, k, "")
	}
	return nil
}

func (t *BoundTier) Clear(ctx context.Context) error {
	return t.kv.Clear(ctx, t.scope)
}

// All returns every key in the scope.
func (t *BoundTier) All(ctx context.Context) (map[string]string, error) {
	return t.kv.GetAll(ctx, t.scope)
}

func (t *BoundTier) publish(ctx context.Context, key, value string) {
	if t.events == nil {
		return
	}
	ev := model.StorageEvent{Device: t.scope, Key: key, NewValue: value}
	if err := t.events.Publish(ctx, ev); err != nil {
		t.logger.DebugContext(ctx, "storage event publish failed", "key", key, "error", err)
	}
}
