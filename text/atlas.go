package text

import (
	"image"
	"image/draw"

	"golang.org/x/image/math/fixed"

	"github.com/gogpu/ember/geom"
	"github.com/gogpu/ember/internal/binpack"
)

// glyphPadding is the gap in pixels kept around packed glyphs so that
// neighboring glyphs never bleed into each other's sampled texels.
const glyphPadding = 1

// RasterizedGlyph returns the atlas location of a glyph, rasterizing it on
// demand. The first request for a size rasterizes the Basic Latin and
// Latin-1 range eagerly with a single version bump per touched page.
// Runes the font has no glyph for fall back to the replacement character.
func (f *Font) RasterizedGlyph(r rune, size float64) (Glyph, error) {
	if err := f.ensureSizeInitialized(size); err != nil {
		return Glyph{}, err
	}
	if g, ok := f.glyphs[glyphKey{r, size}]; ok {
		return g, nil
	}
	return f.rasterize(r, size, false)
}

// ensureSizeInitialized pre-rasterizes the common codepoint range on the
// first use of a size. Page versions are bumped once at the end, mirroring
// a single deferred upload.
func (f *Font) ensureSizeInitialized(size float64) error {
	if _, ok := f.initializedSizes[size]; ok {
		return nil
	}
	f.initializedSizes[size] = struct{}{}

	touched := make(map[*Page]struct{})
	for r := rune(firstPrerasterized); r <= lastPrerasterized; r++ {
		g, err := f.rasterize(r, size, true)
		if err != nil {
			return err
		}
		if !g.UVRect.IsEmpty() {
			touched[f.pages[g.PageIndex]] = struct{}{}
		}
	}
	for p := range touched {
		p.Version++
	}
	f.log.Debug("font size initialized", "size", size, "pages", len(f.pages))
	return nil
}

// rasterize renders one glyph into the atlas. With deferUpload set the
// page version is left for the caller to bump.
func (f *Font) rasterize(r rune, size float64, deferUpload bool) (Glyph, error) {
	key := glyphKey{r, size}
	if g, ok := f.glyphs[key]; ok {
		return g, nil
	}

	face, err := f.face(size)
	if err != nil {
		return Glyph{}, err
	}

	bounds, _, ok := face.GlyphBounds(r)
	if !ok && r != '�' {
		// Alias missing runes to the replacement glyph.
		g, err := f.rasterize('�', size, deferUpload)
		if err != nil {
			return Glyph{}, err
		}
		f.glyphs[key] = g
		return g, nil
	}

	minX := bounds.Min.X.Floor()
	minY := bounds.Min.Y.Floor()
	maxX := bounds.Max.X.Ceil()
	maxY := bounds.Max.Y.Ceil()
	w, h := maxX-minX, maxY-minY

	if w <= 0 || h <= 0 {
		// Whitespace and other coverage-free glyphs still get a cache
		// entry so iteration does not re-rasterize them.
		g := Glyph{PageIndex: 0, UVRect: geom.Rect{}}
		if len(f.pages) == 0 {
			f.appendPage()
		}
		f.glyphs[key] = g
		return g, nil
	}

	page, pageIndex, pos, err := f.pack(w+glyphPadding, h+glyphPadding)
	if err != nil {
		return Glyph{}, err
	}

	// Draw the glyph mask directly into the page buffer. The dot is
	// placed so that the glyph's bounding box lands at the packed
	// position.
	dst := &image.Alpha{
		Pix:    page.Pixels,
		Stride: page.Width,
		Rect:   image.Rect(0, 0, page.Width, page.Height),
	}
	dot := fixed.P(pos.X-minX, pos.Y-minY)
	dr, mask, maskp, _, ok := face.Glyph(dot, r)
	if ok {
		draw.DrawMask(dst, dr, image.White, image.Point{}, mask, maskp, draw.Over)
	}

	if !deferUpload {
		page.Version++
	}

	g := Glyph{
		PageIndex: pageIndex,
		UVRect:    geom.Rect{X: float32(pos.X), Y: float32(pos.Y), W: float32(w), H: float32(h)},
	}
	f.glyphs[key] = g
	return g, nil
}

// pack finds room for a w x h rectangle, appending a new page when the
// current one is full.
func (f *Font) pack(w, h int) (*Page, int, binpack.Rect, error) {
	if len(f.pages) == 0 {
		f.appendPage()
	}
	last := len(f.pages) - 1
	if r, ok := f.pages[last].packer.Insert(w, h); ok {
		return f.pages[last], last, r, nil
	}

	if w > f.pageSize || h > f.pageSize {
		return nil, 0, binpack.Rect{}, ErrGlyphTooLarge
	}

	f.appendPage()
	last = len(f.pages) - 1
	r, ok := f.pages[last].packer.Insert(w, h)
	if !ok {
		return nil, 0, binpack.Rect{}, ErrGlyphTooLarge
	}
	return f.pages[last], last, r, nil
}

func (f *Font) appendPage() {
	f.pages = append(f.pages, &Page{
		Width:  f.pageSize,
		Height: f.pageSize,
		Pixels: make([]byte, f.pageSize*f.pageSize),
		packer: binpack.New(f.pageSize, f.pageSize),
	})
	f.log.Debug("atlas page added", "pages", len(f.pages), "size", f.pageSize)
}
