package ember

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/ember/content"
)

// testPNG encodes a solid-color 3x2 PNG.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNewImageFromMemory(t *testing.T) {
	d, _, _ := newTestDevice(t)

	img, err := NewImageFromMemory(d, testPNG(t))
	if err != nil {
		t.Fatal(err)
	}
	if img.Width() != 3 || img.Height() != 2 {
		t.Errorf("size = %dx%d, want 3x2", img.Width(), img.Height())
	}
	if img.Format() != FormatRGBA8 {
		t.Errorf("format = %v, want RGBA8", img.Format())
	}

	if _, err := NewImageFromMemory(d, []byte("not an image")); KindOf(err) != KindRuntime {
		t.Errorf("garbage data: kind %v, want Runtime", KindOf(err))
	}
	if _, err := NewImageFromMemory(nil, nil); KindOf(err) != KindInvalidArgument {
		t.Errorf("nil device: kind %v, want InvalidArgument", KindOf(err))
	}
}

func TestNewImageFromFile(t *testing.T) {
	d, _, _ := newTestDevice(t)

	path := filepath.Join(t.TempDir(), "sprite.png")
	if err := os.WriteFile(path, testPNG(t), 0o644); err != nil {
		t.Fatal(err)
	}

	img, err := NewImageFromFile(d, path)
	if err != nil {
		t.Fatal(err)
	}
	if img.Width() != 3 || img.Height() != 2 {
		t.Errorf("size = %dx%d, want 3x2", img.Width(), img.Height())
	}

	if _, err := NewImageFromFile(d, filepath.Join(t.TempDir(), "missing.png")); KindOf(err) != KindRuntime {
		t.Errorf("missing file: kind %v, want Runtime", KindOf(err))
	}
}

func TestContentManagerLoading(t *testing.T) {
	d, _, _ := newTestDevice(t)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "sprite.png"), testPNG(t), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := NewContentManager(d, dir)
	if err != nil {
		t.Fatal(err)
	}

	img, err := LoadImage(m, "sprite.png")
	if err != nil {
		t.Fatal(err)
	}
	if img.Width() != 3 || img.Height() != 2 {
		t.Errorf("size = %dx%d, want 3x2", img.Width(), img.Height())
	}

	if _, err := LoadImage(m, "missing.png"); KindOf(err) != KindRuntime {
		t.Errorf("missing asset: kind %v, want Runtime", KindOf(err))
	}
}

func TestWrapContentError(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
	}{
		{content.ErrTypeConflict, KindLogic},
		{content.ErrEmptyTypeID, KindInvalidArgument},
		{content.ErrNoLoader, KindInvalidArgument},
		{os.ErrNotExist, KindRuntime},
	}
	for _, c := range cases {
		if got := KindOf(wrapContentError(c.err)); got != c.kind {
			t.Errorf("wrapContentError(%v): kind %v, want %v", c.err, got, c.kind)
		}
	}
}
