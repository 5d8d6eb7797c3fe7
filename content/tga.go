// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package content

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/ember/gpu"
)

// TGA image types.
const (
	tgaTrueColor    = 2
	tgaGrayscale    = 3
	tgaTrueColorRLE = 10
	tgaGrayscaleRLE = 11
)

const tgaHeaderSize = 18

// looksLikeTGA applies a plausibility check to the 18-byte TGA header.
// The format has no magic number.
func looksLikeTGA(data []byte) bool {
	if len(data) < tgaHeaderSize {
		return false
	}
	colorMapType := data[1]
	imageType := data[2]
	depth := data[16]
	if colorMapType > 1 {
		return false
	}
	switch imageType {
	case tgaTrueColor, tgaTrueColorRLE:
		if depth != 24 && depth != 32 {
			return false
		}
	case tgaGrayscale, tgaGrayscaleRLE:
		if depth != 8 {
			return false
		}
	default:
		return false
	}
	w := binary.LittleEndian.Uint16(data[12:])
	h := binary.LittleEndian.Uint16(data[14:])
	return w > 0 && h > 0
}

// decodeTGA decodes true-color and grayscale TGA images, raw or
// run-length encoded, into RGBA8.
func decodeTGA(data []byte) (*Image, error) {
	if len(data) < tgaHeaderSize {
		return nil, fmt.Errorf("content: tga: truncated header")
	}
	idLength := int(data[0])
	imageType := data[2]
	width := int(binary.LittleEndian.Uint16(data[12:]))
	height := int(binary.LittleEndian.Uint16(data[14:]))
	depth := int(data[16])
	descriptor := data[17]
	topDown := descriptor&0x20 != 0

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("content: tga: invalid size %dx%d", width, height)
	}

	bytesPerPixel := depth / 8
	src := data[tgaHeaderSize:]
	if len(src) < idLength {
		return nil, fmt.Errorf("content: tga: truncated image id")
	}
	src = src[idLength:]

	pixels := make([]byte, width*height*bytesPerPixel)
	switch imageType {
	case tgaTrueColor, tgaGrayscale:
		if len(src) < len(pixels) {
			return nil, fmt.Errorf("content: tga: truncated pixel data")
		}
		copy(pixels, src)
	case tgaTrueColorRLE, tgaGrayscaleRLE:
		if err := tgaDecodeRLE(pixels, src, bytesPerPixel); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("content: tga: unsupported image type %d", imageType)
	}

	out := make([]byte, width*height*4)
	for y := 0; y < height; y++ {
		srcRow := y
		if !topDown {
			srcRow = height - 1 - y
		}
		for x := 0; x < width; x++ {
			s := (srcRow*width + x) * bytesPerPixel
			d := (y*width + x) * 4
			switch bytesPerPixel {
			case 1:
				v := pixels[s]
				out[d], out[d+1], out[d+2], out[d+3] = v, v, v, 0xff
			case 3:
				// TGA stores BGR.
				out[d], out[d+1], out[d+2], out[d+3] = pixels[s+2], pixels[s+1], pixels[s], 0xff
			case 4:
				out[d], out[d+1], out[d+2], out[d+3] = pixels[s+2], pixels[s+1], pixels[s], pixels[s+3]
			}
		}
	}

	return &Image{
		Width:     width,
		Height:    height,
		Format:    gpu.FormatRGBA8,
		Levels:    [][]byte{out},
		Container: "tga",
	}, nil
}

// tgaDecodeRLE expands run-length packets into dst, which must be sized
// for the full image.
func tgaDecodeRLE(dst, src []byte, bytesPerPixel int) error {
	di := 0
	si := 0
	for di < len(dst) {
		if si >= len(src) {
			return fmt.Errorf("content: tga: truncated rle data")
		}
		header := src[si]
		si++
		count := int(header&0x7f) + 1
		if header&0x80 != 0 {
			// Run packet: one pixel repeated count times.
			if si+bytesPerPixel > len(src) {
				return fmt.Errorf("content: tga: truncated rle run")
			}
			px := src[si : si+bytesPerPixel]
			si += bytesPerPixel
			for i := 0; i < count; i++ {
				if di+bytesPerPixel > len(dst) {
					return fmt.Errorf("content: tga: rle run overflows image")
				}
				copy(dst[di:], px)
				di += bytesPerPixel
			}
		} else {
			// Raw packet: count literal pixels.
			n := count * bytesPerPixel
			if si+n > len(src) {
				return fmt.Errorf("content: tga: truncated rle literals")
			}
			if di+n > len(dst) {
				return fmt.Errorf("content: tga: rle literals overflow image")
			}
			copy(dst[di:], src[si:si+n])
			si += n
			di += n
		}
	}
	return nil
}
