// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package content loads game assets. It provides a lazy-loading asset
// manager with pluggable per-type loaders and decoders for the image
// container formats the engine consumes (PNG, JPEG, GIF, BMP, TGA,
// Radiance HDR and DDS including BC-compressed surfaces).
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"
)

// Errors the asset manager reports. Callers distinguish them with
// errors.Is.
var (
	// ErrEmptyTypeID is returned when a load or registration names no type.
	ErrEmptyTypeID = errors.New("content: empty asset type id")

	// ErrNoLoader is returned when no loader is registered for a type.
	ErrNoLoader = errors.New("content: no loader registered for type")

	// ErrLoaderExists is returned when a loader type is registered twice.
	ErrLoaderExists = errors.New("content: loader already registered")

	// ErrTypeConflict is returned when an asset cached under one type is
	// requested as another.
	ErrTypeConflict = errors.New("content: asset already loaded as a different type")
)

// LoaderFunc turns raw file bytes into a loaded asset.
type LoaderFunc func(name string, data []byte) (any, error)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// Prefix is prepended to every asset name before the file lookup.
	// Backslashes are normalized to forward slashes and a trailing slash
	// is appended when missing.
	Prefix string

	// Logger receives load events. Nil discards them.
	Logger *slog.Logger
}

// Manager lazily loads and caches named assets from a file system.
// Assets stay cached until Forget is called. Methods are safe for
// concurrent use.
type Manager struct {
	fsys fs.FS
	log  *slog.Logger

	mu      sync.Mutex
	prefix  string
	assets  map[string]cachedAsset
	loaders map[string]LoaderFunc
}

type cachedAsset struct {
	typeID string
	value  any
}

// NewManager creates a manager reading from fsys.
func NewManager(fsys fs.FS, opts ManagerOptions) (*Manager, error) {
	if fsys == nil {
		return nil, errors.New("content: nil file system")
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	m := &Manager{
		fsys:    fsys,
		log:     log,
		assets:  make(map[string]cachedAsset),
		loaders: make(map[string]LoaderFunc),
	}
	m.SetPrefix(opts.Prefix)
	return m, nil
}

// SetPrefix changes the asset-name prefix applied to following loads.
// Already-cached assets keep their original keys.
func (m *Manager) SetPrefix(prefix string) {
	prefix = strings.ReplaceAll(prefix, `\`, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	m.mu.Lock()
	m.prefix = prefix
	m.mu.Unlock()
}

// Prefix returns the current asset-name prefix.
func (m *Manager) Prefix() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefix
}

// RegisterLoader registers a loader for an asset type.
func (m *Manager) RegisterLoader(typeID string, fn LoaderFunc) error {
	if typeID == "" {
		return ErrEmptyTypeID
	}
	if fn == nil {
		return errors.New("content: nil loader func")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.loaders[typeID]; ok {
		return fmt.Errorf("%w: %q", ErrLoaderExists, typeID)
	}
	m.loaders[typeID] = fn
	m.log.Debug("registered asset loader", "type", typeID)
	return nil
}

// UnregisterLoader removes a loader. Unknown types are ignored.
func (m *Manager) UnregisterLoader(typeID string) {
	m.mu.Lock()
	delete(m.loaders, typeID)
	m.mu.Unlock()
	m.log.Debug("unregistered asset loader", "type", typeID)
}

// Load returns the asset of the given type and name, loading and caching
// it on first use. Requesting a cached asset under a different type fails
// with ErrTypeConflict.
func (m *Manager) Load(typeID, name string) (any, error) {
	if typeID == "" {
		return nil, ErrEmptyTypeID
	}

	m.mu.Lock()
	fn, ok := m.loaders[typeID]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", ErrNoLoader, typeID)
	}
	key := m.prefix + name
	if cached, ok := m.assets[key]; ok {
		m.mu.Unlock()
		if cached.typeID != typeID {
			return nil, fmt.Errorf("%w: %q is cached as %q, requested as %q",
				ErrTypeConflict, key, cached.typeID, typeID)
		}
		return cached.value, nil
	}
	m.mu.Unlock()

	// Read and decode outside the lock; a concurrent first load of the
	// same asset may race, last store wins.
	data, err := fs.ReadFile(m.fsys, key)
	if err != nil {
		return nil, fmt.Errorf("content: reading asset %q: %w", key, err)
	}
	value, err := fn(key, data)
	if err != nil {
		return nil, fmt.Errorf("content: loading asset %q: %w", key, err)
	}

	m.mu.Lock()
	m.assets[key] = cachedAsset{typeID: typeID, value: value}
	m.mu.Unlock()

	m.log.Debug("loaded asset", "type", typeID, "name", key, "bytes", len(data))
	return value, nil
}

// IsLoaded reports whether an asset is cached under the current prefix.
func (m *Manager) IsLoaded(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.assets[m.prefix+name]
	return ok
}

// Forget drops a cached asset so the next Load reads it again.
func (m *Manager) Forget(name string) {
	m.mu.Lock()
	key := m.prefix + name
	delete(m.assets, key)
	m.mu.Unlock()
	m.log.Debug("forgot asset", "name", key)
}
