// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package content

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// bc1Block packs a BC1 color block from two RGB565 endpoints and raw
// 2-bit indices.
func bc1Block(c0, c1 uint16, indices uint32) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint16(b, c0)
	binary.LittleEndian.PutUint16(b[2:], c1)
	binary.LittleEndian.PutUint32(b[4:], indices)
	return b
}

func TestDecompressBC1FourColorMode(t *testing.T) {
	// c0 > c1 selects the four-color palette. White and black endpoints
	// interpolate to thirds of gray.
	white := uint16(0xffff)
	black := uint16(0x0000)

	// Texel i uses index i%4.
	var indices uint32
	for i := 0; i < 16; i++ {
		indices |= uint32(i%4) << (i * 2)
	}
	out := decompressBC1(bc1Block(white, black, indices), 4, 4)

	wantPalette := [4][4]byte{
		{255, 255, 255, 255},
		{0, 0, 0, 255},
		{170, 170, 170, 255},
		{85, 85, 85, 255},
	}
	for i := 0; i < 16; i++ {
		got := out[i*4 : i*4+4]
		want := wantPalette[i%4]
		if !bytes.Equal(got, want[:]) {
			t.Fatalf("texel %d = %v, want %v", i, got, want)
		}
	}
}

func TestDecompressBC1PunchThrough(t *testing.T) {
	// c0 <= c1 selects the three-color mode where index 3 is transparent
	// black.
	var indices uint32
	for i := 0; i < 16; i++ {
		indices |= 3 << (i * 2)
	}
	out := decompressBC1(bc1Block(0, 0xffff, indices), 4, 4)
	for i := 0; i < 16; i++ {
		got := out[i*4 : i*4+4]
		if !bytes.Equal(got, []byte{0, 0, 0, 0}) {
			t.Fatalf("texel %d = %v, want transparent black", i, got)
		}
	}
}

func TestDecompressBC2ExplicitAlpha(t *testing.T) {
	block := make([]byte, 16)
	// Alpha nibbles 0x0 and 0xf alternating; 0xf expands to 255, 0x0 to 0.
	for i := 0; i < 8; i++ {
		block[i] = 0xf0
	}
	// Solid white color block.
	binary.LittleEndian.PutUint16(block[8:], 0xffff)
	binary.LittleEndian.PutUint16(block[10:], 0xffff)

	out := decompressBC2(block, 4, 4)
	for i := 0; i < 16; i++ {
		wantAlpha := byte(0)
		if i%2 == 1 {
			wantAlpha = 255
		}
		if got := out[i*4+3]; got != wantAlpha {
			t.Fatalf("texel %d alpha = %d, want %d", i, got, wantAlpha)
		}
		if out[i*4] != 255 || out[i*4+1] != 255 || out[i*4+2] != 255 {
			t.Fatalf("texel %d color = %v, want white", i, out[i*4:i*4+3])
		}
	}
}

func TestDecodeAlphaBlockEightValueMode(t *testing.T) {
	block := make([]byte, 8)
	block[0] = 255 // a0 > a1: eight interpolated values
	block[1] = 0

	var values [16]byte
	decodeAlphaBlock(block, &values)
	// All indices zero select a0.
	for i, v := range values {
		if v != 255 {
			t.Fatalf("value %d = %d, want 255", i, v)
		}
	}

	// Index 1 selects a1.
	for i := 0; i < 6; i++ {
		block[2+i] = 0
	}
	block[2] = 1 // texel 0 index 1
	decodeAlphaBlock(block, &values)
	if values[0] != 0 {
		t.Errorf("texel 0 = %d, want 0", values[0])
	}
	if values[1] != 255 {
		t.Errorf("texel 1 = %d, want 255", values[1])
	}
}

func TestDecodeAlphaBlockSixValueMode(t *testing.T) {
	block := make([]byte, 8)
	block[0] = 0 // a0 <= a1: six values plus literal 0 and 255
	block[1] = 100

	// Texel 0 index 6 (literal 0), texel 1 index 7 (literal 255).
	bits := uint64(6) | uint64(7)<<3
	block[2] = byte(bits)
	block[3] = byte(bits >> 8)

	var values [16]byte
	decodeAlphaBlock(block, &values)
	if values[0] != 0 {
		t.Errorf("texel 0 = %d, want 0", values[0])
	}
	if values[1] != 255 {
		t.Errorf("texel 1 = %d, want 255", values[1])
	}
}

func TestDecompressBC4SingleChannel(t *testing.T) {
	block := make([]byte, 8)
	block[0] = 200
	block[1] = 100
	out := decompressBC4(block, 4, 4)
	if len(out) != 16 {
		t.Fatalf("got %d bytes, want 16 for R8", len(out))
	}
	for i, v := range out {
		if v != 200 {
			t.Fatalf("texel %d = %d, want 200", i, v)
		}
	}
}

func TestDecompressBC5TwoChannels(t *testing.T) {
	block := make([]byte, 16)
	block[0] = 10  // red endpoints
	block[1] = 10
	block[8] = 20 // green endpoints
	block[9] = 20
	out := decompressBC5(block, 4, 4)
	for i := 0; i < 16; i++ {
		px := out[i*4 : i*4+4]
		if px[0] != 10 || px[1] != 20 || px[2] != 0 || px[3] != 255 {
			t.Fatalf("texel %d = %v, want [10 20 0 255]", i, px)
		}
	}
}

func TestDecompressBCClipsPartialBlocks(t *testing.T) {
	// A 2x2 BC1 image still occupies one full block; only the covered
	// texels are written.
	out := decompressBC1(bc1Block(0xf800, 0xf800, 0), 2, 2)
	if len(out) != 2*2*4 {
		t.Fatalf("got %d bytes, want %d", len(out), 2*2*4)
	}
	for i := 0; i < 4; i++ {
		px := out[i*4 : i*4+4]
		if px[0] != 255 || px[3] != 255 {
			t.Fatalf("texel %d = %v, want opaque red", i, px)
		}
	}
}
