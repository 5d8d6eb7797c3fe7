// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package content

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/gogpu/ember/gpu"
)

func TestDecodeImagePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 128})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	img, err := DecodeImage(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if img.Container != "png" {
		t.Errorf("container %q, want png", img.Container)
	}
	if img.Width != 2 || img.Height != 1 {
		t.Fatalf("size %dx%d, want 2x1", img.Width, img.Height)
	}
	if img.Format != gpu.FormatRGBA8 {
		t.Fatalf("format %v, want FormatRGBA8", img.Format)
	}
	want := []byte{255, 0, 0, 255, 0, 255, 0, 128}
	if !bytes.Equal(img.Levels[0], want) {
		t.Errorf("pixels %v, want %v", img.Levels[0], want)
	}
}

// tgaHeader builds the fixed 18-byte TGA prelude.
func tgaHeader(imageType byte, width, height uint16, depth, descriptor byte) []byte {
	h := make([]byte, tgaHeaderSize)
	h[2] = imageType
	binary.LittleEndian.PutUint16(h[12:], width)
	binary.LittleEndian.PutUint16(h[14:], height)
	h[16] = depth
	h[17] = descriptor
	return h
}

func TestDecodeImageTGA(t *testing.T) {
	t.Run("uncompressed bottom-up", func(t *testing.T) {
		// 1x2, 24-bit BGR, stored bottom-up: file rows are (blue) then (red).
		data := append(tgaHeader(tgaTrueColor, 1, 2, 24, 0),
			255, 0, 0, // blue pixel, bottom row
			0, 0, 255, // red pixel, top row
		)
		img, err := DecodeImage(data)
		if err != nil {
			t.Fatal(err)
		}
		want := []byte{
			255, 0, 0, 255, // top row red
			0, 0, 255, 255, // bottom row blue
		}
		if !bytes.Equal(img.Levels[0], want) {
			t.Errorf("pixels %v, want %v", img.Levels[0], want)
		}
	})

	t.Run("rle top-down", func(t *testing.T) {
		// 2x1, 32-bit, one run packet of two identical pixels.
		data := append(tgaHeader(tgaTrueColorRLE, 2, 1, 32, 0x20),
			0x81,          // run of 2
			1, 2, 3, 200, // BGRA
		)
		img, err := DecodeImage(data)
		if err != nil {
			t.Fatal(err)
		}
		want := []byte{3, 2, 1, 200, 3, 2, 1, 200}
		if !bytes.Equal(img.Levels[0], want) {
			t.Errorf("pixels %v, want %v", img.Levels[0], want)
		}
	})

	t.Run("grayscale", func(t *testing.T) {
		data := append(tgaHeader(tgaGrayscale, 1, 1, 8, 0x20), 77)
		img, err := DecodeImage(data)
		if err != nil {
			t.Fatal(err)
		}
		want := []byte{77, 77, 77, 255}
		if !bytes.Equal(img.Levels[0], want) {
			t.Errorf("pixels %v, want %v", img.Levels[0], want)
		}
	})
}

func TestDecodeImageHDR(t *testing.T) {
	// 2x1 flat-scanline image: pure red at exposure 1 and a zero pixel.
	var buf bytes.Buffer
	buf.WriteString("#?RADIANCE\n")
	buf.WriteString("FORMAT=32-bit_rle_rgbe\n")
	buf.WriteString("\n")
	buf.WriteString("-Y 1 +X 2\n")
	buf.Write([]byte{128, 0, 0, 129}) // rgbe: r=128, e=129 -> 1.0
	buf.Write([]byte{0, 0, 0, 0})     // zero exponent -> black

	img, err := DecodeImage(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if img.Format != gpu.FormatRGBA32F {
		t.Fatalf("format %v, want FormatRGBA32F", img.Format)
	}
	if img.Width != 2 || img.Height != 1 {
		t.Fatalf("size %dx%d, want 2x1", img.Width, img.Height)
	}

	readFloat := func(i int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(img.Levels[0][i*4:]))
	}
	if got := readFloat(0); got != 1 {
		t.Errorf("pixel 0 red = %v, want 1", got)
	}
	if got := readFloat(1); got != 0 {
		t.Errorf("pixel 0 green = %v, want 0", got)
	}
	if got := readFloat(3); got != 1 {
		t.Errorf("pixel 0 alpha = %v, want 1", got)
	}
	if got := readFloat(4); got != 0 {
		t.Errorf("pixel 1 red = %v, want 0", got)
	}
}
