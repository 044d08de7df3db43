// Package memstore is an in-process KeyValueStore and storage-event broker for development and tests.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/initcareer/init-web/internal/domain/model"
	"github.com/initcareer/init-web/internal/ports"
)

var _ ports.KeyValueStore = (*Store)(nil)

type entry struct {
	values    map[string]string
	expiresAt time.Time
}

// Store keeps scopes in memory. A positive TTL expires a whole scope after its last write,
// matching the Redis tier's hash-level expiry.
type Store struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	scopes map[string]*entry
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the scope expiry.
func WithTTL(ttl time.Duration) Option { return func(s *Store) { s.ttl = ttl } }

// WithClock overrides time.Now for tests.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now, scopes: make(map[string]*entry)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// live returns the scope entry, dropping it if expired. Caller holds mu.
func (s *Store) live(scope string) *entry {
	e, ok := s.scopes[scope]
	if !ok {
		return nil
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.scopes, scope)
		return nil
	}
	return e
}

func (s *Store) touch(e *entry) {
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
}

func (s *Store) Get(ctx context.Context, scope, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.live(scope); e != nil {
		return e.values[key], nil
	}
	return "", nil
}

func (s *Store) GetAll(ctx context.Context, scope string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string)
	if e := s.live(scope); e != nil {
		for k, v := range e.values {
			out[k] = v
		}
	}
	return out, nil
}

func (s *Store) Set(ctx context.Context, scope, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.live(scope)
	if e == nil {
		e = &entry{values: make(map[string]string)}
		s.scopes[scope] = e
	}
	e.values[key] = value
	s.touch(e)
	return nil
}

func (s *Store) Delete(ctx context.Context, scope string, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.live(scope); e != nil {
		for _, k := range keys {
			delete(e.values, k)
		}
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, scope string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.scopes, scope)
	s.mu.Unlock()
	return nil
}

// Broker is an in-process StorageEvents implementation.
type Broker struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan model.StorageEvent
}

var _ ports.StorageEvents = (*Broker)(nil)

// NewBroker creates a Broker with no subscribers.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[int]chan model.StorageEvent)}
}

// Publish delivers ev to every subscriber of ev.Device. Slow subscribers drop events.
func (b *Broker) Publish(_ context.Context, ev model.StorageEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[ev.Device] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribe registers a buffered channel for device until ctx ends or cancel is called.
func (b *Broker) Subscribe(ctx context.Context, device string) (<-chan model.StorageEvent, func(), error) {
	ch := make(chan model.StorageEvent, 16)

	b.mu.Lock()
	id := b.next
	b.next++
	if b.subs[device] == nil {
		b.subs[device] = make(map[int]chan model.StorageEvent)
	}
	b.subs[device][id] = ch
	b.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			b.mu.Lock()
			delete(b.subs[device], id)
			if len(b.subs[device]) == 0 {
				delete(b.subs, device)
			}
			b.mu.Unlock()
			close(ch)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return ch, cancel, nil
}
