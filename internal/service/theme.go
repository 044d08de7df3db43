package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	domainauth "github.com/initcareer/init-web/internal/domain/auth"
	"github.com/initcareer/init-web/internal/ports"
)

// Theme is the colour scheme preference stored in the durable tier.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts "light" and "dark"; anything else is light.
func ParseTheme(raw string) Theme {
	if Theme(strings.ToLower(strings.TrimSpace(raw))) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ThemeServiceOptions groups dependencies for ThemeService.
type ThemeServiceOptions struct {
	Logger *slog.Logger
}

// ThemeService holds the per-device theme preference and notifies in-process subscribers
// when it changes. Other instances learn about changes from storage events.
type ThemeService struct {
	logger *slog.Logger

	mu     sync.Mutex
	nextID uint64
	subs   map[string]map[uint64]func(Theme)
}

// NewThemeService constructs a new ThemeService.
func NewThemeService(opts ThemeServiceOptions) *ThemeService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ThemeService{
		logger: logger.With("component", "theme_service"),
		subs:   make(map[string]map[uint64]func(Theme)),
	}
}

// Current reads the stored theme. Read failures fall back to light.
func (s *ThemeService) Current(ctx context.Context, durable ports.StorageTier) Theme {
	raw, err := durable.Get(ctx, domainauth.KeyTheme)
	if err != nil {
		s.logger.DebugContext(ctx, "read theme failed", "error", err)
		return ThemeLight
	}
	return ParseTheme(raw)
}

// Set stores theme for device and notifies its subscribers.
func (s *ThemeService) Set(ctx context.Context, durable ports.StorageTier, device string, theme Theme) error {
	if err := durable.Set(ctx, domainauth.KeyTheme, string(theme)); err != nil {
		return fmt.Errorf("store theme: %w", err)
	}
	s.notify(device, theme)
	return nil
}

// Toggle flips the stored theme and returns the new value.
func (s *ThemeService) Toggle(ctx context.Context, durable ports.StorageTier, device string) (Theme, error) {
	next := s.Current(ctx, durable).Toggle()
	if err := s.Set(ctx, durable, device, next); err != nil {
		return s.Current(ctx, durable), err
	}
	return next, nil
}

// Subscribe registers fn for theme changes on device. The returned func unsubscribes and is safe to call twice.
func (s *ThemeService) Subscribe(device string, fn func(Theme)) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	if s.subs[device] == nil {
		s.subs[device] = make(map[uint64]func(Theme))
	}
	s.subs[device][id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs[device], id)
			if len(s.subs[device]) == 0 {
				delete(s.subs, device)
			}
		})
	}
}

// Subscribers reports how many listeners device has.
func (s *ThemeService) Subscribers(device string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs[device])
}

func (s *ThemeService) notify(device string, theme Theme) {
	s.mu.Lock()
	fns := make([]func(Theme), 0, len(s.subs[device]))
	for _, fn := range s.subs[device] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(theme)
	}
}
