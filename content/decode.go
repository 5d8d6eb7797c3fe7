// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package content

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	_ "golang.org/x/image/bmp"

	"github.com/gogpu/ember/gpu"
)

// ErrUnknownImage is returned when data matches no supported image format.
var ErrUnknownImage = errors.New("content: unrecognized image data")

// Image is a decoded image ready for texture upload: one byte slice per
// mip level in an engine pixel format.
type Image struct {
	Width  int
	Height int
	Format gpu.PixelFormat

	// Levels holds pixel data per mip level, level 0 first. Images from
	// containers without mipmaps carry a single level.
	Levels [][]byte

	// Container names the detected source format, e.g. "png" or "dds/bc3".
	Container string
}

// DecodeImage decodes image file data in any supported container format.
// HDR images decode to FormatRGBA32F, everything else to an 8-bit format.
func DecodeImage(data []byte) (*Image, error) {
	if container := detectContainer(data); container != "" {
		img, err := decodeContainer(container, data)
		if err == nil {
			return img, nil
		}
		// A matched signature with a broken payload may still be a DDS
		// variant with a misleading prefix; fall through.
	}
	if img, err := decodeDDS(data); err == nil {
		return img, nil
	} else if !errors.Is(err, errNotDDS) {
		return nil, err
	}
	return nil, ErrUnknownImage
}

// detectContainer sniffs the container format from leading bytes. TGA has
// no signature and is detected from header plausibility, so it is checked
// last.
func detectContainer(data []byte) string {
	switch {
	case filetype.IsType(data, matchers.TypePng):
		return "png"
	case filetype.IsType(data, matchers.TypeJpeg):
		return "jpeg"
	case filetype.IsType(data, matchers.TypeGif):
		return "gif"
	case filetype.IsType(data, matchers.TypeBmp):
		return "bmp"
	case bytes.HasPrefix(data, []byte("#?RADIANCE")) || bytes.HasPrefix(data, []byte("#?RGBE")):
		return "hdr"
	case looksLikeTGA(data):
		return "tga"
	}
	return ""
}

func decodeContainer(container string, data []byte) (*Image, error) {
	switch container {
	case "hdr":
		return decodeHDR(data)
	case "tga":
		return decodeTGA(data)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("content: decoding %s: %w", container, err)
	}
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(nrgba, nrgba.Bounds(), src, bounds.Min, draw.Src)
	return &Image{
		Width:     w,
		Height:    h,
		Format:    gpu.FormatRGBA8,
		Levels:    [][]byte{nrgba.Pix},
		Container: container,
	}, nil
}
