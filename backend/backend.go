// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend provides a pluggable registry of gpu.Backend
// implementations.
//
// Backends register themselves from init() functions; importing a backend
// package makes it available:
//
//	import _ "github.com/gogpu/ember/backend/headless"
//	import _ "github.com/gogpu/ember/backend/wgpu"
//
// Use Default() for the best available backend, or Get() to construct a
// specific one by name:
//
//	b, err := backend.Default()
//	if err != nil {
//		log.Fatal(err)
//	}
//	device, err := ember.NewDevice(b)
package backend

import "errors"

// Backend identifiers.
const (
	// BackendWgpu is the GPU backend on github.com/gogpu/wgpu.
	BackendWgpu = "wgpu"

	// BackendHeadless is the pure-CPU recording backend.
	BackendHeadless = "headless"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or fails to construct.
	ErrBackendNotAvailable = errors.New("backend: not available")
)
