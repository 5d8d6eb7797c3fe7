// Package text provides font parsing, glyph rasterization and atlas
// management for the ember sprite renderer.
//
// A Font lazily rasterizes glyphs per (rune, size) pair into single-channel
// atlas pages. The renderer draws glyphs as sprites sourced from those
// pages; page uploads are deferred and tracked through a version counter
// the renderer compares against the version it last uploaded.
package text

import (
	"fmt"
	"log/slog"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/gogpu/ember/geom"
	"github.com/gogpu/ember/internal/binpack"
)

// DefaultPageSize is the edge length of atlas pages in pixels.
const DefaultPageSize = 1024

// firstPrerasterized and lastPrerasterized bound the codepoint range
// rasterized eagerly the first time a size is used.
const (
	firstPrerasterized = 0x20
	lastPrerasterized  = 0xFE
)

// FontOptions configures font creation. The zero value is ready to use.
type FontOptions struct {
	// PageSize overrides the atlas page edge length. Zero means
	// DefaultPageSize.
	PageSize int

	// Logger receives diagnostics. Nil disables logging.
	Logger *slog.Logger
}

// Font is a parsed font together with its rasterized glyph atlas.
//
// A Font is not safe for concurrent use.
type Font struct {
	fnt      *sfnt.Font
	data     []byte
	pageSize int
	log      *slog.Logger

	faces   map[float64]font.Face
	metrics map[float64]font.Metrics

	glyphs map[glyphKey]Glyph
	pages  []*Page

	// initializedSizes records sizes whose ASCII range has been
	// pre-rasterized.
	initializedSizes map[float64]struct{}
}

type glyphKey struct {
	r    rune
	size float64
}

// Glyph locates a rasterized glyph inside the atlas.
type Glyph struct {
	// PageIndex selects the atlas page.
	PageIndex int

	// UVRect is the glyph's pixel rectangle within the page. Empty for
	// glyphs without coverage, such as spaces.
	UVRect geom.Rect
}

// Page is one atlas page. Pixels hold a single 8-bit coverage channel in
// row-major order. Version increases whenever Pixels change; renderers
// re-upload a page when its version differs from the uploaded one.
type Page struct {
	Width   int
	Height  int
	Pixels  []byte
	Version uint64

	packer *binpack.Packer
}

// ParseFont parses TTF/OTF font data. The data is retained.
func ParseFont(data []byte, opts FontOptions) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFontData, err)
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Font{
		fnt:              fnt,
		data:             data,
		pageSize:         pageSize,
		log:              log,
		faces:            make(map[float64]font.Face),
		metrics:          make(map[float64]font.Metrics),
		glyphs:           make(map[glyphKey]Glyph),
		initializedSizes: make(map[float64]struct{}),
	}, nil
}

// face returns the cached rendering face for a pixel size.
func (f *Font) face(size float64) (font.Face, error) {
	if fc, ok := f.faces[size]; ok {
		return fc, nil
	}
	fc, err := opentype.NewFace(f.fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFontData, err)
	}
	f.faces[size] = fc
	f.metrics[size] = fc.Metrics()
	return fc, nil
}

func (f *Font) faceMetrics(size float64) (font.Metrics, error) {
	if m, ok := f.metrics[size]; ok {
		return m, nil
	}
	if _, err := f.face(size); err != nil {
		return font.Metrics{}, err
	}
	return f.metrics[size], nil
}

// Ascent returns the distance from the baseline to the typographic top of
// a line, in pixels.
func (f *Font) Ascent(size float64) float32 {
	m, err := f.faceMetrics(size)
	if err != nil {
		return 0
	}
	return fixedToFloat(m.Ascent)
}

// Descent returns the distance from the baseline to the typographic
// bottom of a line, in pixels.
func (f *Font) Descent(size float64) float32 {
	m, err := f.faceMetrics(size)
	if err != nil {
		return 0
	}
	return fixedToFloat(m.Descent)
}

// LineHeight returns the vertical distance between consecutive baselines,
// in pixels.
func (f *Font) LineHeight(size float64) float32 {
	m, err := f.faceMetrics(size)
	if err != nil {
		return 0
	}
	return fixedToFloat(m.Height)
}

// PageCount returns the number of atlas pages allocated so far.
func (f *Font) PageCount() int { return len(f.pages) }

// PageAt returns an atlas page. The returned page is owned by the font;
// callers must not modify it.
func (f *Font) PageAt(index int) *Page { return f.pages[index] }
