// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package content

import "encoding/binary"

// CPU decompression of the BC1-BC5 block formats into 8-bit pixel data.
// Blocks cover 4x4 texels; edge blocks of non-multiple-of-4 images are
// clipped on write.

// decompressBC1 expands BC1 (DXT1) blocks into RGBA8. Index 3 of the
// three-color mode is transparent black.
func decompressBC1(raw []byte, width, height int) []byte {
	out := make([]byte, width*height*4)
	forEachBlock(width, height, 8, raw, func(block []byte, bx, by int) {
		var texels [16][4]byte
		decodeColorBlock(block, true, &texels)
		writeBlockRGBA(out, width, height, bx, by, &texels)
	})
	return out
}

// decompressBC2 expands BC2 (DXT3) blocks: 4-bit explicit alpha followed
// by a color block.
func decompressBC2(raw []byte, width, height int) []byte {
	out := make([]byte, width*height*4)
	forEachBlock(width, height, 16, raw, func(block []byte, bx, by int) {
		var texels [16][4]byte
		decodeColorBlock(block[8:], false, &texels)
		for i := 0; i < 16; i++ {
			nibble := block[i/2] >> (uint(i%2) * 4) & 0xf
			texels[i][3] = nibble<<4 | nibble
		}
		writeBlockRGBA(out, width, height, bx, by, &texels)
	})
	return out
}

// decompressBC3 expands BC3 (DXT5) blocks: interpolated alpha followed by
// a color block.
func decompressBC3(raw []byte, width, height int) []byte {
	out := make([]byte, width*height*4)
	forEachBlock(width, height, 16, raw, func(block []byte, bx, by int) {
		var texels [16][4]byte
		decodeColorBlock(block[8:], false, &texels)
		var alpha [16]byte
		decodeAlphaBlock(block, &alpha)
		for i := 0; i < 16; i++ {
			texels[i][3] = alpha[i]
		}
		writeBlockRGBA(out, width, height, bx, by, &texels)
	})
	return out
}

// decompressBC4 expands BC4 blocks into single-channel R8 data.
func decompressBC4(raw []byte, width, height int) []byte {
	out := make([]byte, width*height)
	forEachBlock(width, height, 8, raw, func(block []byte, bx, by int) {
		var values [16]byte
		decodeAlphaBlock(block, &values)
		for ty := 0; ty < 4; ty++ {
			y := by + ty
			if y >= height {
				break
			}
			for tx := 0; tx < 4; tx++ {
				x := bx + tx
				if x >= width {
					continue
				}
				out[y*width+x] = values[ty*4+tx]
			}
		}
	})
	return out
}

// decompressBC5 expands BC5 blocks into RGBA8 with the two channels in R
// and G, zero B and opaque alpha.
func decompressBC5(raw []byte, width, height int) []byte {
	out := make([]byte, width*height*4)
	forEachBlock(width, height, 16, raw, func(block []byte, bx, by int) {
		var red, green [16]byte
		decodeAlphaBlock(block, &red)
		decodeAlphaBlock(block[8:], &green)
		var texels [16][4]byte
		for i := 0; i < 16; i++ {
			texels[i] = [4]byte{red[i], green[i], 0, 0xff}
		}
		writeBlockRGBA(out, width, height, bx, by, &texels)
	})
	return out
}

// forEachBlock walks the block grid of a surface, invoking fn with each
// block's bytes and the pixel position of its top-left texel. Truncated
// data stops the walk early.
func forEachBlock(width, height, blockBytes int, raw []byte, fn func(block []byte, bx, by int)) {
	blocksWide := max(1, (width+3)/4)
	blocksHigh := max(1, (height+3)/4)
	offset := 0
	for by := 0; by < blocksHigh; by++ {
		for bx := 0; bx < blocksWide; bx++ {
			if offset+blockBytes > len(raw) {
				return
			}
			fn(raw[offset:offset+blockBytes], bx*4, by*4)
			offset += blockBytes
		}
	}
}

// decodeColorBlock decodes the 8-byte RGB565 color portion shared by
// BC1/BC2/BC3. Only BC1 uses the three-color punch-through mode.
func decodeColorBlock(block []byte, allowThreeColor bool, texels *[16][4]byte) {
	c0 := binary.LittleEndian.Uint16(block)
	c1 := binary.LittleEndian.Uint16(block[2:])
	bits := binary.LittleEndian.Uint32(block[4:])

	var palette [4][4]byte
	r0, g0, b0 := expand565(c0)
	r1, g1, b1 := expand565(c1)
	palette[0] = [4]byte{r0, g0, b0, 0xff}
	palette[1] = [4]byte{r1, g1, b1, 0xff}

	if c0 > c1 || !allowThreeColor {
		palette[2] = [4]byte{lerp3(r0, r1, 1), lerp3(g0, g1, 1), lerp3(b0, b1, 1), 0xff}
		palette[3] = [4]byte{lerp3(r0, r1, 2), lerp3(g0, g1, 2), lerp3(b0, b1, 2), 0xff}
	} else {
		palette[2] = [4]byte{mid(r0, r1), mid(g0, g1), mid(b0, b1), 0xff}
		palette[3] = [4]byte{0, 0, 0, 0}
	}

	for i := 0; i < 16; i++ {
		texels[i] = palette[bits>>(uint(i)*2)&0x3]
	}
}

// decodeAlphaBlock decodes the 8-byte interpolated single-channel block
// used by BC3 alpha, BC4 and BC5.
func decodeAlphaBlock(block []byte, values *[16]byte) {
	a0 := block[0]
	a1 := block[1]

	var palette [8]byte
	palette[0] = a0
	palette[1] = a1
	if a0 > a1 {
		for i := 1; i <= 6; i++ {
			palette[i+1] = byte(((7-i)*int(a0) + i*int(a1) + 3) / 7)
		}
	} else {
		for i := 1; i <= 4; i++ {
			palette[i+1] = byte(((5-i)*int(a0) + i*int(a1) + 2) / 5)
		}
		palette[6] = 0
		palette[7] = 0xff
	}

	// 16 3-bit indices packed little-endian across 6 bytes.
	bits := uint64(block[2]) | uint64(block[3])<<8 | uint64(block[4])<<16 |
		uint64(block[5])<<24 | uint64(block[6])<<32 | uint64(block[7])<<40
	for i := 0; i < 16; i++ {
		values[i] = palette[bits>>(uint(i)*3)&0x7]
	}
}

func writeBlockRGBA(out []byte, width, height, bx, by int, texels *[16][4]byte) {
	for ty := 0; ty < 4; ty++ {
		y := by + ty
		if y >= height {
			break
		}
		for tx := 0; tx < 4; tx++ {
			x := bx + tx
			if x >= width {
				continue
			}
			copy(out[(y*width+x)*4:], texels[ty*4+tx][:])
		}
	}
}

func expand565(c uint16) (r, g, b byte) {
	r5 := byte(c >> 11 & 0x1f)
	g6 := byte(c >> 5 & 0x3f)
	b5 := byte(c & 0x1f)
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

// lerp3 interpolates at thirds: t=1 yields 2/3 a + 1/3 b.
func lerp3(a, b byte, t int) byte {
	return byte(((3-t)*int(a) + t*int(b) + 1) / 3)
}

func mid(a, b byte) byte {
	return byte((int(a) + int(b) + 1) / 2)
}
