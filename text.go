package ember

import (
	"github.com/gogpu/ember/text"
)

// TextDecoration is an optional line decoration applied when drawing
// text. Underline and Strikethrough implement it.
type TextDecoration interface {
	// decorationRect derives the decoration rectangle from the line's
	// glyph bounds. strokeWidth is the default thickness at the drawn
	// size; lineHeight bounds the thickness.
	decorationRect(lineRect Rectangle, strokeWidth, lineHeight float32) Rectangle

	// decorationColor returns the decoration color, or nil to inherit
	// the text color.
	decorationColor() *Color
}

// Underline draws a line under each text line.
type Underline struct {
	// Thickness in pixels. Zero uses a tenth of the line height.
	Thickness float32

	// Color overrides the text color when non-nil.
	Color *Color
}

func (u Underline) decorationRect(lineRect Rectangle, strokeWidth, lineHeight float32) Rectangle {
	r := lineRect
	r.Y += r.H
	r.H = clampf(pick(u.Thickness, strokeWidth), 1, lineHeight*0.5)
	r.Y += r.H / 2
	return r
}

func (u Underline) decorationColor() *Color { return u.Color }

// Strikethrough draws a line through each text line.
type Strikethrough struct {
	// Thickness in pixels. Zero uses a tenth of the line height.
	Thickness float32

	// Color overrides the text color when non-nil.
	Color *Color
}

func (s Strikethrough) decorationRect(lineRect Rectangle, strokeWidth, lineHeight float32) Rectangle {
	r := lineRect
	r.Y += r.H / 2
	r.H = clampf(pick(s.Thickness, strokeWidth), 1, lineHeight*0.5)
	r.Y -= r.H / 2
	return r
}

func (s Strikethrough) decorationColor() *Color { return s.Color }

// shapedGlyph is one atlas-backed glyph ready for drawing.
type shapedGlyph struct {
	pageIndex int
	dst       Rectangle
	src       Rectangle
}

// decorationQuad is one decoration rectangle ready for drawing.
type decorationQuad struct {
	rect  Rectangle
	color *Color
}

// Text is a pre-shaped string: glyph placement, atlas lookups and
// decoration geometry are computed once at construction, so drawing a
// Text repeatedly skips the shaping work of DrawString.
type Text struct {
	font        *Font
	glyphs      []shapedGlyph
	decorations []decorationQuad
}

// NewText shapes s at the given size. decoration may be nil.
func NewText(s string, font *Font, size float64, decoration TextDecoration) (*Text, error) {
	if font == nil {
		return nil, errInvalidArgf("text: font is nil")
	}
	t := &Text{font: font}
	err := shapeText(s, font, size, decoration, func(g shapedGlyph) {
		t.glyphs = append(t.glyphs, g)
	}, func(d decorationQuad) {
		t.decorations = append(t.decorations, d)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Font returns the font the text was shaped with.
func (t *Text) Font() *Font { return t.font }

// shapeText resolves the glyphs and decoration rectangles of s. Glyph and
// decoration emission is split into callbacks so both Text construction
// and immediate drawing share it.
func shapeText(s string, font *Font, size float64, decoration TextDecoration,
	emitGlyph func(shapedGlyph), emitDecoration func(decorationQuad)) error {

	lineHeight := font.LineHeight(size)
	strokeWidth := lineHeight * 0.1

	emit := func(r rune, dst Rectangle) error {
		g, err := font.RasterizedGlyph(r, size)
		if err != nil {
			return err
		}
		if g.UVRect.IsEmpty() {
			return nil
		}
		emitGlyph(shapedGlyph{pageIndex: g.PageIndex, dst: dst, src: g.UVRect})
		return nil
	}

	var innerErr error
	var err error

	if decoration == nil {
		err = font.ForEachGlyph(s, size, func(r rune, dst Rectangle) bool {
			innerErr = emit(r, dst)
			return innerErr == nil
		})
	} else {
		err = font.ForEachGlyphWithExtras(s, size, func(r rune, dst Rectangle, ex text.GlyphExtras) bool {
			innerErr = emit(r, dst)
			if innerErr != nil {
				return false
			}
			if ex.LastOnLine && !ex.LineRect.IsEmpty() {
				emitDecoration(decorationQuad{
					rect:  decoration.decorationRect(ex.LineRect, strokeWidth, lineHeight),
					color: decoration.decorationColor(),
				})
			}
			return true
		})
	}

	if err != nil {
		return WrapError(KindRuntime, "shaping text", err)
	}
	return innerErr
}

// pick returns v, or fallback when v is zero.
func pick(v, fallback float32) float32 {
	if v == 0 {
		return fallback
	}
	return v
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
