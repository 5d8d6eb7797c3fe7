// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

// Filter selects how a sampler interpolates texels.
type Filter uint8

const (
	FilterPoint Filter = iota
	FilterLinear
)

// AddressMode selects how texture coordinates outside [0, 1] are resolved.
type AddressMode uint8

const (
	AddressRepeat AddressMode = iota
	AddressClampToEdge
	AddressClampToBorder
	AddressMirror
)

// CompareOp is the comparison a comparison sampler applies between the
// reference value and the sampled texel. CompareNever (the zero value)
// leaves comparison sampling disabled.
type CompareOp uint8

const (
	CompareNever CompareOp = iota
	CompareLess
	CompareEqual
	CompareLessEqual
	CompareGreater
	CompareNotEqual
	CompareGreaterEqual
	CompareAlways
)

// BorderColor is the texel color AddressClampToBorder resolves to outside
// [0, 1].
type BorderColor uint8

const (
	BorderColorTransparentBlack BorderColor = iota
	BorderColorOpaqueBlack
	BorderColorOpaqueWhite
)

// Sampler describes texture filtering, addressing, comparison and border
// state. Samplers are plain comparable values; backends translate them
// into API sampler state on demand.
type Sampler struct {
	Filter      Filter
	AddressU    AddressMode
	AddressV    AddressMode
	CompareOp   CompareOp
	BorderColor BorderColor
}

// Common sampler configurations.
var (
	SamplerPointClamp   = Sampler{Filter: FilterPoint, AddressU: AddressClampToEdge, AddressV: AddressClampToEdge}
	SamplerPointRepeat  = Sampler{Filter: FilterPoint, AddressU: AddressRepeat, AddressV: AddressRepeat}
	SamplerLinearClamp  = Sampler{Filter: FilterLinear, AddressU: AddressClampToEdge, AddressV: AddressClampToEdge}
	SamplerLinearRepeat = Sampler{Filter: FilterLinear, AddressU: AddressRepeat, AddressV: AddressRepeat}
)

// Blend is a blending factor applied to source or destination color.
type Blend uint8

const (
	BlendOne Blend = iota
	BlendZero
	BlendSrcColor
	BlendInvSrcColor
	BlendSrcAlpha
	BlendInvSrcAlpha
	BlendDstColor
	BlendInvDstColor
	BlendDstAlpha
	BlendInvDstAlpha
	BlendBlendFactor
	BlendInvBlendFactor
	BlendSrcAlphaSaturation
)

// BlendFunction combines blended source and destination terms.
type BlendFunction uint8

const (
	BlendFunctionAdd BlendFunction = iota
	BlendFunctionSubtract
	BlendFunctionReverseSubtract
	BlendFunctionMin
	BlendFunctionMax
)

// ColorWriteMask selects the channels a draw writes to.
type ColorWriteMask uint8

const (
	ColorWriteMaskRed ColorWriteMask = 1 << iota
	ColorWriteMaskGreen
	ColorWriteMaskBlue
	ColorWriteMaskAlpha

	ColorWriteMaskNone ColorWriteMask = 0
	ColorWriteMaskAll                = ColorWriteMaskRed | ColorWriteMaskGreen | ColorWriteMaskBlue | ColorWriteMaskAlpha
)

// BlendState describes fixed-function color blending for sprite draws.
type BlendState struct {
	Enabled        bool
	ColorSrcBlend  Blend
	ColorDstBlend  Blend
	ColorFunction  BlendFunction
	AlphaSrcBlend  Blend
	AlphaDstBlend  Blend
	AlphaFunction  BlendFunction
	ColorWriteMask ColorWriteMask
	BlendFactor    [4]float32
}

// Common blend states.
var (
	// BlendOpaque overwrites the destination.
	BlendOpaque = BlendState{
		Enabled:        false,
		ColorSrcBlend:  BlendOne,
		ColorDstBlend:  BlendZero,
		AlphaSrcBlend:  BlendOne,
		AlphaDstBlend:  BlendZero,
		ColorWriteMask: ColorWriteMaskAll,
	}

	// BlendAlpha blends premultiplied-alpha sources.
	BlendAlpha = BlendState{
		Enabled:        true,
		ColorSrcBlend:  BlendOne,
		ColorDstBlend:  BlendInvSrcAlpha,
		AlphaSrcBlend:  BlendOne,
		AlphaDstBlend:  BlendInvSrcAlpha,
		ColorWriteMask: ColorWriteMaskAll,
	}

	// BlendNonPremultiplied blends straight-alpha sources.
	BlendNonPremultiplied = BlendState{
		Enabled:        true,
		ColorSrcBlend:  BlendSrcAlpha,
		ColorDstBlend:  BlendInvSrcAlpha,
		AlphaSrcBlend:  BlendSrcAlpha,
		AlphaDstBlend:  BlendInvSrcAlpha,
		ColorWriteMask: ColorWriteMaskAll,
	}

	// BlendAdditive accumulates source color onto the destination.
	BlendAdditive = BlendState{
		Enabled:        true,
		ColorSrcBlend:  BlendSrcAlpha,
		ColorDstBlend:  BlendOne,
		AlphaSrcBlend:  BlendSrcAlpha,
		AlphaDstBlend:  BlendOne,
		ColorWriteMask: ColorWriteMaskAll,
	}
)

// ScissorRect is a pixel-space clipping rectangle.
type ScissorRect struct {
	X, Y, W, H int
}
