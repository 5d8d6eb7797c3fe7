package ember

import (
	"sync"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/ember/text"
)

// Font is a parsed font with its glyph atlas. See the text package for
// the full API.
type Font = text.Font

// NewFont parses TTF/OTF font data, wiring the ember logger into the
// font's diagnostics.
func NewFont(data []byte) (*Font, error) {
	f, err := text.ParseFont(data, text.FontOptions{Logger: Logger()})
	if err != nil {
		return nil, WrapError(KindRuntime, "parsing font", err)
	}
	return f, nil
}

var (
	builtinFontOnce sync.Once
	builtinFont     *Font
	builtinFontErr  error
)

// BuiltinFont returns the font embedded in ember (Go Regular), parsed on
// first use.
func BuiltinFont() (*Font, error) {
	builtinFontOnce.Do(func() {
		builtinFont, builtinFontErr = NewFont(goregular.TTF)
	})
	return builtinFont, builtinFontErr
}
