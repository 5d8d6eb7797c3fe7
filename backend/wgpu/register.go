// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"github.com/gogpu/ember/backend"
	"github.com/gogpu/ember/gpu"
)

func init() {
	backend.Register(backend.BackendWgpu, func() (gpu.Backend, error) {
		return New(Options{})
	})
}
