// Package assets maps logical static asset names to their fingerprinted filenames.
package assets

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"
	"time"
)

// StaticPrefix is the URL prefix static assets are served under.
const StaticPrefix = "/static/"

// AssetResolver resolves logical asset names to hashed filenames using manifest.json.
// A missing manifest is not an error: names then resolve to themselves.
type AssetResolver struct {
	mu           sync.RWMutex
	manifest     map[string]string
	manifestPath string
	diskPath     string
	fsys         fs.FS
	lastModTime  time.Time
	logger       *slog.Logger
}

// NewAssetResolverFromDisk creates a resolver that reads the manifest from the local filesystem
// and picks up rebuilt manifests (dev mode).
func NewAssetResolverFromDisk(manifestPath string) (*AssetResolver, error) {
	ar := &AssetResolver{manifestPath: manifestPath, diskPath: manifestPath, logger: slog.Default()}
	return ar, ar.Reload()
}

// NewAssetResolverFromFS creates a resolver that reads the manifest from an fs.FS (embedded builds).
func NewAssetResolverFromFS(fsys fs.FS, manifestPath string) (*AssetResolver, error) {
	ar := &AssetResolver{manifestPath: manifestPath, fsys: fsys, logger: slog.Default()}
	return ar, ar.Reload()
}

// SetLogger updates the resolver's logger. If logger is nil, slog.Default() is used.
func (ar *AssetResolver) SetLogger(logger *slog.Logger) {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	if logger == nil {
		logger = slog.Default()
	}
	ar.logger = logger
}

// Reload re-reads the manifest.
func (ar *AssetResolver) Reload() error {
	data, modTime, err := ar.read()
	if err != nil {
		return err
	}

	manifest := make(map[string]string)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &manifest); err != nil {
			return err
		}
	}

	ar.mu.Lock()
	ar.manifest = manifest
	ar.lastModTime = modTime
	ar.mu.Unlock()
	return nil
}

func (ar *AssetResolver) read() ([]byte, time.Time, error) {
	switch {
	case ar.diskPath != "":
		info, err := os.Stat(ar.diskPath)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, time.Time{}, nil
		}
		if err != nil {
			return nil, time.Time{}, err
		}
		data, err := os.ReadFile(ar.diskPath)
		return data, info.ModTime(), err
	case ar.fsys != nil:
		data, err := fs.ReadFile(ar.fsys, ar.manifestPath)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, time.Time{}, nil
		}
		return data, time.Time{}, err
	default:
		return nil, time.Time{}, nil
	}
}

// ReloadIfChanged reloads a disk manifest whose modification time moved.
func (ar *AssetResolver) ReloadIfChanged() {
	if ar == nil || ar.diskPath == "" {
		return
	}
	info, err := os.Stat(ar.diskPath)
	if err != nil {
		return
	}

	ar.mu.RLock()
	last, logger := ar.lastModTime, ar.logger
	ar.mu.RUnlock()
	if !info.ModTime().After(last) {
		return
	}

	if err := ar.Reload(); err != nil {
		logger.Error("failed to reload asset manifest",
			slog.String("manifest", ar.manifestPath),
			slog.Any("error", err),
		)
	}
}

// Resolve returns the URL of the hashed file for a logical asset name.
func (ar *AssetResolver) Resolve(logicalName string) string {
	ar.mu.RLock()
	defer ar.mu.RUnlock()

	if hashed, ok := ar.manifest[logicalName]; ok {
		return StaticPrefix + hashed
	}
	return StaticPrefix + logicalName
}

// ResolveAsset resolves logicalName, tolerating a nil resolver.
func ResolveAsset(resolver *AssetResolver, logicalName string) string {
	if resolver == nil {
		return StaticPrefix + logicalName
	}
	resolver.ReloadIfChanged()
	return resolver.Resolve(logicalName)
}
