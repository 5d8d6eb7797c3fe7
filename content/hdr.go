// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package content

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gogpu/ember/gpu"
)

// decodeHDR decodes a Radiance RGBE image into RGBA32F with alpha 1.
func decodeHDR(data []byte) (*Image, error) {
	r := bufio.NewReader(bytes.NewReader(data))

	line, err := r.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("content: hdr: reading signature: %w", err)
	}
	if !strings.HasPrefix(line, "#?RADIANCE") && !strings.HasPrefix(line, "#?RGBE") {
		return nil, fmt.Errorf("content: hdr: missing signature")
	}

	// Header lines up to the first blank line. Only the pixel format is
	// validated; exposure and other variables are ignored.
	format := ""
	for {
		line, err = r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("content: hdr: reading header: %w", err)
		}
		line = strings.TrimRight(line, "\n")
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "FORMAT="); ok {
			format = strings.TrimSpace(v)
		}
	}
	if format != "32-bit_rle_rgbe" {
		return nil, fmt.Errorf("content: hdr: unsupported format %q", format)
	}

	line, err = r.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("content: hdr: reading resolution: %w", err)
	}
	var height, width int
	if _, err := fmt.Sscanf(line, "-Y %d +X %d", &height, &width); err != nil {
		return nil, fmt.Errorf("content: hdr: unsupported resolution line %q", strings.TrimSpace(line))
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("content: hdr: invalid size %dx%d", width, height)
	}

	out := make([]byte, width*height*16)
	scanline := make([]byte, width*4) // RGBE per pixel
	for y := 0; y < height; y++ {
		if err := readRGBEScanline(r, scanline, width); err != nil {
			return nil, err
		}
		for x := 0; x < width; x++ {
			rgbe := scanline[x*4 : x*4+4]
			fr, fg, fb := rgbeToFloat(rgbe[0], rgbe[1], rgbe[2], rgbe[3])
			base := (y*width + x) * 16
			binary.LittleEndian.PutUint32(out[base:], math.Float32bits(fr))
			binary.LittleEndian.PutUint32(out[base+4:], math.Float32bits(fg))
			binary.LittleEndian.PutUint32(out[base+8:], math.Float32bits(fb))
			binary.LittleEndian.PutUint32(out[base+12:], math.Float32bits(1))
		}
	}

	return &Image{
		Width:     width,
		Height:    height,
		Format:    gpu.FormatRGBA32F,
		Levels:    [][]byte{out},
		Container: "hdr",
	}, nil
}

// readRGBEScanline reads one scanline in either the adaptive RLE layout
// (introduced by a 2,2,hi,lo marker) or the flat layout.
func readRGBEScanline(r *bufio.Reader, dst []byte, width int) error {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("content: hdr: reading scanline: %w", err)
	}

	if header[0] == 2 && header[1] == 2 && int(header[2])<<8|int(header[3]) == width {
		// Adaptive RLE: four separate component planes.
		for c := 0; c < 4; c++ {
			x := 0
			for x < width {
				count, err := r.ReadByte()
				if err != nil {
					return fmt.Errorf("content: hdr: reading rle plane: %w", err)
				}
				if count > 128 {
					// Run of a repeated value.
					n := int(count) - 128
					v, err := r.ReadByte()
					if err != nil {
						return fmt.Errorf("content: hdr: reading rle run: %w", err)
					}
					if x+n > width {
						return fmt.Errorf("content: hdr: rle run overflows scanline")
					}
					for i := 0; i < n; i++ {
						dst[(x+i)*4+c] = v
					}
					x += n
				} else {
					n := int(count)
					if n == 0 || x+n > width {
						return fmt.Errorf("content: hdr: invalid rle literal count %d", n)
					}
					for i := 0; i < n; i++ {
						v, err := r.ReadByte()
						if err != nil {
							return fmt.Errorf("content: hdr: reading rle literals: %w", err)
						}
						dst[(x+i)*4+c] = v
					}
					x += n
				}
			}
		}
		return nil
	}

	// Flat scanline: the four bytes already read are the first pixel.
	copy(dst, header)
	if width > 1 {
		if _, err := io.ReadFull(r, dst[4:width*4]); err != nil {
			return fmt.Errorf("content: hdr: reading flat scanline: %w", err)
		}
	}
	return nil
}

// rgbeToFloat converts a shared-exponent RGBE pixel to linear floats.
func rgbeToFloat(r, g, b, e byte) (float32, float32, float32) {
	if e == 0 {
		return 0, 0, 0
	}
	scale := float32(math.Ldexp(1, int(e)-(128+8)))
	return float32(r) * scale, float32(g) * scale, float32(b) * scale
}
