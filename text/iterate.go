package text

import (
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/ember/geom"
)

// GlyphFunc receives one positioned glyph. Returning false stops the
// iteration.
type GlyphFunc func(r rune, dst geom.Rect) bool

// GlyphExtras carries the additional per-glyph information needed for
// text decorations.
type GlyphExtras struct {
	// LineIncrement is the vertical distance to the next baseline.
	LineIncrement float32

	// Ascent and Descent are the line metrics at the iterated size.
	Ascent  float32
	Descent float32

	// LineRect is the union of the glyph rectangles seen on the current
	// line so far, including the current glyph.
	LineRect geom.Rect

	// LastOnLine is set on the final glyph of each line: the glyph before
	// a newline or the end of the text.
	LastOnLine bool
}

// GlyphExtrasFunc receives one positioned glyph with decoration extras.
// Returning false stops the iteration.
type GlyphExtrasFunc func(r rune, dst geom.Rect, extras GlyphExtras) bool

// ForEachGlyph positions the glyphs of s at the given pixel size, calling
// fn with each glyph's destination rectangle relative to (0, 0) at the
// text's top-left. Newlines reset the pen to the line start; kerning is
// applied between consecutive glyphs.
func (f *Font) ForEachGlyph(s string, size float64, fn GlyphFunc) error {
	return f.iterate(s, size, func(r rune, dst geom.Rect, _ GlyphExtras, _ bool) bool {
		return fn(r, dst)
	}, false)
}

// ForEachGlyphWithExtras is ForEachGlyph with per-glyph decoration extras.
// Computing the extras costs a little more per glyph, which is why the
// plain variant exists.
func (f *Font) ForEachGlyphWithExtras(s string, size float64, fn GlyphExtrasFunc) error {
	return f.iterate(s, size, func(r rune, dst geom.Rect, ex GlyphExtras, _ bool) bool {
		return fn(r, dst, ex)
	}, true)
}

// Measure returns the bounding rectangle of s laid out at the given size,
// relative to the text's top-left origin.
func (f *Font) Measure(s string, size float64) (geom.Rect, error) {
	var bounds geom.Rect
	first := true
	err := f.ForEachGlyph(s, size, func(_ rune, dst geom.Rect) bool {
		if dst.IsEmpty() {
			return true
		}
		if first {
			bounds = dst
			first = false
		} else {
			bounds = bounds.Union(dst)
		}
		return true
	})
	return bounds, err
}

func (f *Font) iterate(s string, size float64, fn func(rune, geom.Rect, GlyphExtras, bool) bool, withExtras bool) error {
	face, err := f.face(size)
	if err != nil {
		return err
	}
	m, err := f.faceMetrics(size)
	if err != nil {
		return err
	}

	ascent := fixedToFloat(m.Ascent)
	descent := fixedToFloat(m.Descent)
	lineIncrement := fixedToFloat(m.Height)

	runes := []rune(s)
	var penX, penY float32
	prev := rune(-1)
	var lineRect geom.Rect
	lineHasRect := false

	for i, r := range runes {
		if r == '\n' {
			penX = 0
			penY += lineIncrement
			prev = -1
			lineHasRect = false
			lineRect = geom.Rect{}
			continue
		}

		if prev >= 0 {
			penX += fixedToFloat(face.Kern(prev, r))
		}

		bounds, advance, ok := face.GlyphBounds(r)
		if !ok {
			bounds, advance, _ = face.GlyphBounds('�')
		}

		minX := bounds.Min.X.Floor()
		minY := bounds.Min.Y.Floor()
		w := bounds.Max.X.Ceil() - minX
		h := bounds.Max.Y.Ceil() - minY

		// Glyphs draw at the pen position; only Y carries the bitmap-box
		// offset from the baseline.
		dst := geom.Rect{
			X: penX,
			Y: penY + ascent + float32(minY),
			W: float32(w),
			H: float32(h),
		}

		var extras GlyphExtras
		if withExtras {
			if !dst.IsEmpty() {
				if lineHasRect {
					lineRect = lineRect.Union(dst)
				} else {
					lineRect = dst
					lineHasRect = true
				}
			}
			extras = GlyphExtras{
				LineIncrement: lineIncrement,
				Ascent:        ascent,
				Descent:       descent,
				LineRect:      lineRect,
				LastOnLine:    i == len(runes)-1 || runes[i+1] == '\n',
			}
		}

		if !fn(r, dst, extras, withExtras) {
			return nil
		}

		penX += fixedToFloat(advance)
		prev = r
	}
	return nil
}

func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}
