package ports

import (
	"context"
	"net/http"

	"github.com/initcareer/init-web/internal/domain/model"
)

// KeyValueStore persists string key/value pairs grouped by scope (one scope per device).
// Missing keys read as "" with a nil error.
type KeyValueStore interface {
	Get(ctx context.Context, scope, key string) (string, error)
	GetAll(ctx context.Context, scope string) (map[string]string, error)
	Set(ctx context.Context, scope, key, value string) error
	Delete(ctx context.Context, scope string, keys ...string) error
	Clear(ctx context.Context, scope string) error
}

// StorageTier is a KeyValueStore bound to one device scope.
type StorageTier interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// ClearableTier is a StorageTier that can be wiped wholesale (the session-scoped tier).
type ClearableTier interface {
	StorageTier
	Clear(ctx context.Context) error
}

// CookieTier is the request-scoped view of the browser's cookies.
// Writes are visible to later reads within the same request.
type CookieTier interface {
	Get(name string) string
	// Values returns every live value of name. Browsers may send several cookies
	// with one name when paths or attributes differ.
	Values(name string) []string
	Set(c *http.Cookie)
	Delete(names ...string)
	// All returns the cookies currently visible, including ones set during this request.
	All() []*http.Cookie
}

// StorageEvents fans out durable-tier changes to other tabs of the same device.
type StorageEvents interface {
	Publish(ctx context.Context, ev model.StorageEvent) error
	// Subscribe delivers events for device until ctx is done or the returned cancel func is called.
	Subscribe(ctx context.Context, device string) (<-chan model.StorageEvent, func(), error)
}
