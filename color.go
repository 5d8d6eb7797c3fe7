package ember

import "image/color"

// Color is an RGBA color with float32 components in the range [0, 1].
// Sprite tints are passed to the GPU as-is, so values outside the range
// are legal for HDR targets.
type Color struct {
	R, G, B, A float32
}

// NewColor creates a color from RGBA components.
func NewColor(r, g, b, a float32) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// Common colors.
var (
	White          = Color{1, 1, 1, 1}
	Black          = Color{0, 0, 0, 1}
	Transparent    = Color{0, 0, 0, 0}
	Red            = Color{1, 0, 0, 1}
	Green          = Color{0, 1, 0, 1}
	Blue           = Color{0, 0, 1, 1}
	Yellow         = Color{1, 1, 0, 1}
	CornflowerBlue = Color{0.392, 0.584, 0.929, 1}
)

// Premultiplied returns the color with RGB scaled by alpha.
func (c Color) Premultiplied() Color {
	return Color{c.R * c.A, c.G * c.A, c.B * c.A, c.A}
}

// Scaled returns the color with all components scaled by s.
func (c Color) Scaled(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A * s}
}

// Standard converts c to the standard library color type.
func (c Color) Standard() color.Color {
	return color.NRGBA{
		R: clampByte(c.R * 255),
		G: clampByte(c.G * 255),
		B: clampByte(c.B * 255),
		A: clampByte(c.A * 255),
	}
}

// FromStandard converts a standard library color to a Color.
func FromStandard(c color.Color) Color {
	r, g, b, a := c.RGBA()
	return Color{
		R: float32(r) / 65535,
		G: float32(g) / 65535,
		B: float32(b) / 65535,
		A: float32(a) / 65535,
	}
}

func clampByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
