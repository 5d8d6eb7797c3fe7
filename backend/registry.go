// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/ember/gpu"
)

// Factory creates a backend instance. Construction may perform real GPU
// bring-up and fail when no suitable device is present.
type Factory func() (gpu.Backend, error)

var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)

	// Priority order for backend selection (first that constructs wins).
	backendPriority = []string{BackendWgpu, BackendHeadless}
)

// Register registers a backend factory with the given name. This is
// typically called from init() functions in backend packages. Registering
// an existing name replaces the factory.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry. Useful for tests.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks whether a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get constructs a backend by name.
func Get(name string) (gpu.Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	return factory()
}

// Default constructs the best available backend: wgpu when a GPU is
// present, headless otherwise.
func Default() (gpu.Backend, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var firstErr error
	for _, name := range backendPriority {
		factory, ok := backends[name]
		if !ok {
			continue
		}
		b, err := factory()
		if err == nil {
			return b, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}

	// Fallback: any registered backend outside the priority list.
	for name, factory := range backends {
		if inPriority(name) {
			continue
		}
		if b, err := factory(); err == nil {
			return b, nil
		}
	}

	if firstErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrBackendNotAvailable, firstErr)
	}
	return nil, ErrBackendNotAvailable
}

// MustDefault returns the default backend or panics.
func MustDefault() gpu.Backend {
	b, err := Default()
	if err != nil {
		panic("backend: " + err.Error())
	}
	return b
}

func inPriority(name string) bool {
	for _, p := range backendPriority {
		if p == name {
			return true
		}
	}
	return false
}
