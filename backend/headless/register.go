// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package headless

import (
	"github.com/gogpu/ember/backend"
	"github.com/gogpu/ember/gpu"
)

func init() {
	backend.Register(backend.BackendHeadless, func() (gpu.Backend, error) {
		return New(), nil
	})
}
