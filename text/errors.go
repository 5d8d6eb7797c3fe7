package text

import "errors"

// Errors returned by font parsing and glyph rasterization.
var (
	// ErrEmptyFontData is returned when a font is created from no bytes.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrInvalidFontData is returned when font data cannot be parsed.
	ErrInvalidFontData = errors.New("text: invalid font data")

	// ErrGlyphTooLarge is returned when a glyph does not fit into an
	// empty atlas page.
	ErrGlyphTooLarge = errors.New("text: glyph exceeds atlas page size")
)
