// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	types "github.com/gogpu/gputypes"

	"github.com/gogpu/ember/gpu"
)

// convertTextureFormat maps an engine pixel format to the wgpu texture
// format used in texture descriptors.
func convertTextureFormat(format gpu.PixelFormat) (types.TextureFormat, error) {
	switch format {
	case gpu.FormatR8:
		return types.TextureFormatR8Unorm, nil
	case gpu.FormatRGBA8:
		return types.TextureFormatRGBA8Unorm, nil
	case gpu.FormatSRGBA8:
		return types.TextureFormatRGBA8UnormSrgb, nil
	case gpu.FormatRGBA32F:
		return types.TextureFormatRGBA32Float, nil
	default:
		return types.TextureFormatUndefined, fmt.Errorf("wgpu: no texture format for %v", format)
	}
}
