package ember

import (
	"github.com/gogpu/ember/geom"
	"github.com/gogpu/ember/gpu"
)

// Aliases for the geometry and backend state types that appear throughout
// the public API, so that common usage needs only the ember import.

// Vector2 is a 2D point or direction.
type Vector2 = geom.Vec2

// Vector3 is a 3-component vector.
type Vector3 = geom.Vec3

// Vector4 is a 4-component vector.
type Vector4 = geom.Vec4

// Rectangle is an axis-aligned rectangle (position + size).
type Rectangle = geom.Rect

// Matrix is a row-major 4x4 transform with the row-vector convention.
type Matrix = geom.Mat4

// PixelFormat identifies texture pixel layouts.
type PixelFormat = gpu.PixelFormat

// Re-exported pixel formats.
const (
	FormatR8      = gpu.FormatR8
	FormatRGBA8   = gpu.FormatRGBA8
	FormatSRGBA8  = gpu.FormatSRGBA8
	FormatRGBA32F = gpu.FormatRGBA32F
)

// Sampler describes texture filtering and addressing.
type Sampler = gpu.Sampler

// Re-exported common samplers.
var (
	SamplerPointClamp   = gpu.SamplerPointClamp
	SamplerPointRepeat  = gpu.SamplerPointRepeat
	SamplerLinearClamp  = gpu.SamplerLinearClamp
	SamplerLinearRepeat = gpu.SamplerLinearRepeat
)

// BlendState describes fixed-function color blending.
type BlendState = gpu.BlendState

// Re-exported common blend states.
var (
	BlendOpaque           = gpu.BlendOpaque
	BlendAlpha            = gpu.BlendAlpha
	BlendNonPremultiplied = gpu.BlendNonPremultiplied
	BlendAdditive         = gpu.BlendAdditive
)

// ScissorRect is a pixel-space clipping rectangle.
type ScissorRect = gpu.ScissorRect

// Window is the drawable surface a host window system provides.
type Window = gpu.Surface
