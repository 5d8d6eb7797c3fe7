// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements gpu.Backend on top of github.com/gogpu/wgpu.
//
// The backend brings up a real GPU instance, adapter, device and queue,
// and compiles WGSL programs to SPIR-V through naga. Texture and buffer
// contents are mirrored CPU-side so uploads and read-back behave before
// the remaining wgpu surface APIs land; the GPU-side calls are marked
// with TODOs at each site.
//
// Hosts that already own a GPU device (a gogpu application, for example)
// pass it in through NewWithProvider instead of letting the backend
// create its own.
package wgpu
