// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import "fmt"

// PixelFormat identifies the layout of texture pixel data.
type PixelFormat uint8

const (
	// FormatUndefined is the zero value and never a valid texture format.
	FormatUndefined PixelFormat = iota

	// FormatR8 is a single 8-bit channel. Glyph atlas pages use this.
	FormatR8

	// FormatRGBA8 is 8 bits per channel RGBA.
	FormatRGBA8

	// FormatSRGBA8 is FormatRGBA8 with sRGB-encoded color channels.
	FormatSRGBA8

	// FormatRGBA32F is 32-bit float per channel RGBA, used for HDR images.
	FormatRGBA32F
)

// BitsPerPixel returns the number of bits one pixel occupies.
func (f PixelFormat) BitsPerPixel() int {
	switch f {
	case FormatR8:
		return 8
	case FormatRGBA8, FormatSRGBA8:
		return 32
	case FormatRGBA32F:
		return 128
	default:
		return 0
	}
}

// RowPitch returns the byte size of one row of pixels at the given width.
func (f PixelFormat) RowPitch(width int) int {
	return width * f.BitsPerPixel() / 8
}

// SlicePitch returns the byte size of a full width x height pixel slice.
func (f PixelFormat) SlicePitch(width, height int) int {
	return width * height * f.BitsPerPixel() / 8
}

func (f PixelFormat) String() string {
	switch f {
	case FormatUndefined:
		return "Undefined"
	case FormatR8:
		return "R8"
	case FormatRGBA8:
		return "RGBA8"
	case FormatSRGBA8:
		return "SRGBA8"
	case FormatRGBA32F:
		return "RGBA32F"
	default:
		return fmt.Sprintf("PixelFormat(%d)", uint8(f))
	}
}
