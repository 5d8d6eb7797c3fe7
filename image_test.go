package ember

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestBuildMipChain(t *testing.T) {
	// 2x2 with one channel value per pixel so the box filter average is
	// easy to check.
	pixels := []byte{
		10, 0, 0, 255, 20, 0, 0, 255,
		30, 0, 0, 255, 40, 0, 0, 255,
	}
	levels, err := buildMipChain(2, 2, pixels)
	if err != nil {
		t.Fatal(err)
	}
	if len(levels) != 2 {
		t.Fatalf("%d levels, want 2", len(levels))
	}
	if !bytes.Equal(levels[0], pixels) {
		t.Error("level 0 should be the source pixels")
	}
	want := []byte{25, 0, 0, 255}
	if !bytes.Equal(levels[1], want) {
		t.Errorf("level 1 = %v, want %v", levels[1], want)
	}
}

func TestBuildMipChainNonSquare(t *testing.T) {
	// 4x1 halves only in width: 4 -> 2 -> 1.
	pixels := []byte{
		0, 0, 0, 255, 100, 0, 0, 255, 200, 0, 0, 255, 50, 0, 0, 255,
	}
	levels, err := buildMipChain(4, 1, pixels)
	if err != nil {
		t.Fatal(err)
	}
	if len(levels) != 3 {
		t.Fatalf("%d levels, want 3", len(levels))
	}
	// With height 1 the two vertical samples coincide, so each texel is
	// the average of its two horizontal sources.
	if levels[1][0] != 50 || levels[1][4] != 125 {
		t.Errorf("level 1 reds = %d, %d; want 50, 125", levels[1][0], levels[1][4])
	}
	if levels[2][0] != 87 {
		t.Errorf("level 2 red = %d, want 87", levels[2][0])
	}

	if _, err := buildMipChain(3, 2, pixels); KindOf(err) != KindInvalidArgument {
		t.Errorf("size mismatch: kind %v, want InvalidArgument", KindOf(err))
	}
}

func TestNewImageWithMipmaps(t *testing.T) {
	d, _, _ := newTestDevice(t)

	img, err := NewImageWithMipmaps(d, 4, 4, FormatRGBA8, make([]byte, 4*4*4))
	if err != nil {
		t.Fatal(err)
	}
	if img.MipmapCount() != 3 {
		t.Errorf("MipmapCount = %d, want 3 for a 4x4 image", img.MipmapCount())
	}

	if _, err := NewImageWithMipmaps(d, 2, 2, FormatR8, make([]byte, 4)); KindOf(err) != KindInvalidArgument {
		t.Errorf("R8 mipmaps: kind %v, want InvalidArgument", KindOf(err))
	}
	if _, err := NewImageWithMipmaps(d, 2, 2, FormatRGBA8, nil); KindOf(err) != KindInvalidArgument {
		t.Errorf("nil pixels: kind %v, want InvalidArgument", KindOf(err))
	}
}

func TestNewImageValidation(t *testing.T) {
	d, _, _ := newTestDevice(t)

	if _, err := NewImage(nil, 2, 2, FormatRGBA8, nil); KindOf(err) != KindInvalidArgument {
		t.Errorf("nil device: kind %v, want InvalidArgument", KindOf(err))
	}
	if _, err := NewImage(d, 0, 2, FormatRGBA8, nil); KindOf(err) != KindInvalidArgument {
		t.Errorf("zero width: kind %v, want InvalidArgument", KindOf(err))
	}
	if _, err := NewImage(d, 2, 2, FormatRGBA8, make([]byte, 3)); KindOf(err) != KindInvalidArgument {
		t.Errorf("short pixels: kind %v, want InvalidArgument", KindOf(err))
	}

	// An explicit chain must shrink level by level.
	_, err := NewImageWithLevels(d, 4, 4, FormatRGBA8, [][]byte{
		make([]byte, 4*4*4),
		make([]byte, 4*4*4), // should be 2x2
	})
	if KindOf(err) != KindInvalidArgument {
		t.Errorf("bad level size: kind %v, want InvalidArgument", KindOf(err))
	}
}

// clearCanvas runs one frame that clears the canvas to the given color.
func clearCanvas(t *testing.T, d *Device, win Window, canvas *Image, c Color) {
	t.Helper()
	canvas.SetClearColor(&c)
	drawFrame(t, d, win, func() {
		if err := d.SetCanvas(canvas); err != nil {
			t.Fatal(err)
		}
		if err := d.SetCanvas(nil); err != nil {
			t.Fatal(err)
		}
	})
}

func TestSaveCanvasToMemoryPNG(t *testing.T) {
	d, _, win := newTestDevice(t)
	canvas, err := NewCanvas(d, win, 2, 2, FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}
	clearCanvas(t, d, win, canvas, Red)

	data, err := d.SaveCanvasToMemory(canvas, ImageFilePNG)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if b := decoded.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("decoded size = %dx%d, want 2x2", b.Dx(), b.Dy())
	}
	r, g, b, a := decoded.At(0, 0).RGBA()
	if r != 0xFFFF || g != 0 || b != 0 || a != 0xFFFF {
		t.Errorf("decoded pixel = (%d, %d, %d, %d), want red", r, g, b, a)
	}
}

func TestSaveCanvasToFile(t *testing.T) {
	d, _, win := newTestDevice(t)
	canvas, err := NewCanvas(d, win, 2, 2, FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}
	clearCanvas(t, d, win, canvas, Green)

	if err := d.SaveCanvasToFile(canvas, filepath.Join(t.TempDir(), "out.webp")); KindOf(err) != KindInvalidArgument {
		t.Errorf("unsupported extension: kind %v, want InvalidArgument", KindOf(err))
	}

	path := filepath.Join(t.TempDir(), "out.png")
	if err := d.SaveCanvasToFile(canvas, path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("written file is not a valid PNG: %v", err)
	}
}

func TestSaveCanvasFormatValidation(t *testing.T) {
	d, _, win := newTestDevice(t)
	canvas, err := NewCanvas(d, win, 2, 2, FormatRGBA32F)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := d.SaveCanvasToMemory(canvas, ImageFilePNG); KindOf(err) != KindInvalidArgument {
		t.Errorf("float canvas: kind %v, want InvalidArgument", KindOf(err))
	}
	if _, err := d.SaveCanvasToMemory(nil, ImageFilePNG); KindOf(err) != KindInvalidArgument {
		t.Errorf("nil canvas: kind %v, want InvalidArgument", KindOf(err))
	}
}
