// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package content

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/ember/gpu"
)

// errNotDDS marks data that is not a DDS container at all, as opposed to
// a DDS container with invalid contents.
var errNotDDS = errors.New("content: not a dds image")

const (
	ddsMagic           = 0x20534444 // "DDS "
	ddsHeaderSize      = 124
	ddsPixelFormatSize = 32
	ddsDX10HeaderSize  = 20
)

// Pixel format flags.
const (
	ddpfFourCC    = 0x00000004
	ddpfRGB       = 0x00000040
	ddpfLuminance = 0x00020000
	ddpfAlpha     = 0x00000002
)

// Header flags and caps.
const (
	ddsFlagHeight      = 0x00000002
	ddsFlagVolume      = 0x00800000
	ddsCaps2Cubemap    = 0x00000200
	ddsMiscTextureCube = 0x4
)

// D3D11 resource limits the loader enforces.
const (
	d3d11ResourceDimensionTexture1D = 2
	d3d11ResourceDimensionTexture2D = 3
	d3d11ResourceDimensionTexture3D = 4

	d3d11ReqMipLevels             = 15
	d3d11ReqTexture1DDimension    = 16384
	d3d11ReqTexture2DDimension    = 16384
	d3d11ReqTexture3DDimension    = 2048
	d3d11ReqTextureArrayDimension = 2048
)

// dxgiFormat is the DXGI format tag carried by DX10-extended DDS files
// and synthesized from legacy pixel-format bitmasks.
type dxgiFormat uint32

const (
	dxgiUnknown        dxgiFormat = 0
	dxgiRGBA32Float    dxgiFormat = 2
	dxgiRGBA16Float    dxgiFormat = 10
	dxgiRGBA16Unorm    dxgiFormat = 11
	dxgiRGBA16Snorm    dxgiFormat = 13
	dxgiRG32Float      dxgiFormat = 16
	dxgiRGB10A2Unorm   dxgiFormat = 24
	dxgiRGBA8Unorm     dxgiFormat = 28
	dxgiRGBA8UnormSRGB dxgiFormat = 29
	dxgiRG16Float      dxgiFormat = 34
	dxgiRG16Unorm      dxgiFormat = 35
	dxgiR32Float       dxgiFormat = 41
	dxgiRG8Unorm       dxgiFormat = 49
	dxgiR16Float       dxgiFormat = 54
	dxgiR16Unorm       dxgiFormat = 56
	dxgiR8Unorm        dxgiFormat = 61
	dxgiA8Unorm        dxgiFormat = 65
	dxgiRG8BG8Unorm    dxgiFormat = 68
	dxgiGR8GB8Unorm    dxgiFormat = 69
	dxgiBC1Unorm       dxgiFormat = 71
	dxgiBC2Unorm       dxgiFormat = 74
	dxgiBC3Unorm       dxgiFormat = 77
	dxgiBC4Unorm       dxgiFormat = 80
	dxgiBC4Snorm       dxgiFormat = 81
	dxgiBC5Unorm       dxgiFormat = 83
	dxgiBC5Snorm       dxgiFormat = 84
	dxgiB5G6R5Unorm    dxgiFormat = 85
	dxgiB5G5R5A1Unorm  dxgiFormat = 86
	dxgiBGRA8Unorm     dxgiFormat = 87
	dxgiBGRX8Unorm     dxgiFormat = 88
	dxgiB4G4R4A4Unorm  dxgiFormat = 115
)

func fourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

type ddsPixelFormat struct {
	size        uint32
	flags       uint32
	fourCC      uint32
	rgbBitCount uint32
	rMask       uint32
	gMask       uint32
	bMask       uint32
	aMask       uint32
}

type ddsHeader struct {
	size        uint32
	flags       uint32
	height      uint32
	width       uint32
	depth       uint32
	mipMapCount uint32
	pf          ddsPixelFormat
	caps        uint32
	caps2       uint32
}

// ddsDescription is the parsed, tagged description of a DDS file: header
// fields, the resolved format tag, and raw per-face, per-mip payload
// slices into the source buffer.
type ddsDescription struct {
	width     int
	height    int
	depth     int
	arraySize int
	format    dxgiFormat

	// faces[faceIndex][mipIndex] references the raw surface bytes.
	faces [][][]byte
}

// decodeDDS parses a DDS container and converts its first face into an
// engine pixel format, decompressing BC surfaces on the CPU.
func decodeDDS(data []byte) (*Image, error) {
	desc, err := parseDDS(data)
	if err != nil {
		return nil, err
	}
	return convertDDS(desc)
}

// parseDDS validates the container and slices out the raw surfaces.
func parseDDS(data []byte) (*ddsDescription, error) {
	if len(data) < 4+ddsHeaderSize {
		return nil, errNotDDS
	}
	if binary.LittleEndian.Uint32(data) != ddsMagic {
		return nil, errNotDDS
	}

	h := readHeader(data[4:])
	if h.size != ddsHeaderSize || h.pf.size != ddsPixelFormatSize {
		return nil, errors.New("content: dds: invalid header")
	}

	desc := &ddsDescription{
		width:     int(h.width),
		height:    int(h.height),
		depth:     int(h.depth),
		arraySize: 1,
	}
	mipCount := int(h.mipMapCount)
	if mipCount == 0 {
		mipCount = 1
	}

	var resDim uint32
	payloadOffset := 4 + ddsHeaderSize

	if h.pf.flags&ddpfFourCC != 0 && h.pf.fourCC == fourCC('D', 'X', '1', '0') {
		if len(data) < 4+ddsHeaderSize+ddsDX10HeaderSize {
			return nil, errors.New("content: dds: truncated dx10 header")
		}
		ext := data[4+ddsHeaderSize:]
		desc.format = dxgiFormat(binary.LittleEndian.Uint32(ext))
		resDim = binary.LittleEndian.Uint32(ext[4:])
		miscFlag := binary.LittleEndian.Uint32(ext[8:])
		desc.arraySize = int(binary.LittleEndian.Uint32(ext[12:]))
		payloadOffset += ddsDX10HeaderSize

		if desc.arraySize == 0 {
			return nil, errors.New("content: dds: invalid array size 0")
		}
		if bitsPerPixelDXGI(desc.format) == 0 {
			return nil, fmt.Errorf("content: dds: invalid dxgi format %d", desc.format)
		}

		switch resDim {
		case d3d11ResourceDimensionTexture1D:
			// D3DX writes 1D textures with a fixed height of 1.
			if h.flags&ddsFlagHeight != 0 && desc.height != 1 {
				return nil, fmt.Errorf("content: dds: invalid 1d image height %d", desc.height)
			}
			desc.height, desc.depth = 1, 1
		case d3d11ResourceDimensionTexture2D:
			if miscFlag&ddsMiscTextureCube != 0 {
				return nil, errors.New("content: dds: cubemaps are not supported")
			}
			desc.depth = 1
		case d3d11ResourceDimensionTexture3D:
			if h.flags&ddsFlagVolume == 0 {
				return nil, errors.New("content: dds: invalid 3d image flags")
			}
			if desc.arraySize > 1 {
				return nil, fmt.Errorf("content: dds: invalid array size %d for 3d image", desc.arraySize)
			}
		default:
			return nil, fmt.Errorf("content: dds: invalid resource dimension %d", resDim)
		}
	} else {
		desc.format = formatFromPixelFormat(h.pf)
		if desc.format == dxgiUnknown {
			return nil, errors.New("content: dds: unrecognized pixel format")
		}
		if h.flags&ddsFlagVolume != 0 {
			resDim = d3d11ResourceDimensionTexture3D
		} else {
			if h.caps2&ddsCaps2Cubemap != 0 {
				return nil, errors.New("content: dds: cubemaps are not supported")
			}
			desc.depth = 1
			resDim = d3d11ResourceDimensionTexture2D
		}
	}

	if mipCount > d3d11ReqMipLevels {
		return nil, fmt.Errorf("content: dds: %d mip levels exceed the limit of %d", mipCount, d3d11ReqMipLevels)
	}
	switch resDim {
	case d3d11ResourceDimensionTexture1D:
		if desc.arraySize > d3d11ReqTextureArrayDimension || desc.width > d3d11ReqTexture1DDimension {
			return nil, errors.New("content: dds: invalid 1d dimensions")
		}
	case d3d11ResourceDimensionTexture2D:
		if desc.arraySize > d3d11ReqTextureArrayDimension ||
			desc.width > d3d11ReqTexture2DDimension ||
			desc.height > d3d11ReqTexture2DDimension {
			return nil, errors.New("content: dds: invalid 2d dimensions")
		}
	case d3d11ResourceDimensionTexture3D:
		if desc.arraySize > 1 ||
			desc.width > d3d11ReqTexture3DDimension ||
			desc.height > d3d11ReqTexture3DDimension ||
			desc.depth > d3d11ReqTexture3DDimension {
			return nil, errors.New("content: dds: invalid 3d dimensions")
		}
	}

	if err := sliceSurfaces(desc, mipCount, data[payloadOffset:]); err != nil {
		return nil, err
	}
	return desc, nil
}

func readHeader(b []byte) ddsHeader {
	var h ddsHeader
	h.size = binary.LittleEndian.Uint32(b)
	h.flags = binary.LittleEndian.Uint32(b[4:])
	h.height = binary.LittleEndian.Uint32(b[8:])
	h.width = binary.LittleEndian.Uint32(b[12:])
	// pitchOrLinearSize at 16 is unreliable in the wild and recomputed.
	h.depth = binary.LittleEndian.Uint32(b[20:])
	h.mipMapCount = binary.LittleEndian.Uint32(b[24:])
	// reserved1[11] occupies 28..72.
	pf := b[72:]
	h.pf.size = binary.LittleEndian.Uint32(pf)
	h.pf.flags = binary.LittleEndian.Uint32(pf[4:])
	h.pf.fourCC = binary.LittleEndian.Uint32(pf[8:])
	h.pf.rgbBitCount = binary.LittleEndian.Uint32(pf[12:])
	h.pf.rMask = binary.LittleEndian.Uint32(pf[16:])
	h.pf.gMask = binary.LittleEndian.Uint32(pf[20:])
	h.pf.bMask = binary.LittleEndian.Uint32(pf[24:])
	h.pf.aMask = binary.LittleEndian.Uint32(pf[28:])
	h.caps = binary.LittleEndian.Uint32(b[104:])
	h.caps2 = binary.LittleEndian.Uint32(b[108:])
	return h
}

// sliceSurfaces walks the mip chains of every face and records the raw
// byte range of each surface.
func sliceSurfaces(desc *ddsDescription, mipCount int, payload []byte) error {
	desc.faces = make([][][]byte, desc.arraySize)
	offset := 0
	for face := 0; face < desc.arraySize; face++ {
		w, h, d := desc.width, desc.height, max(desc.depth, 1)
		mips := make([][]byte, mipCount)
		for mip := 0; mip < mipCount; mip++ {
			numBytes, _, _ := surfaceInfo(w, h, desc.format)
			end := offset + numBytes*d
			if end > len(payload) {
				return errors.New("content: dds: truncated surface data")
			}
			mips[mip] = payload[offset : offset+numBytes]
			offset = end
			w = max(w/2, 1)
			h = max(h/2, 1)
			d = max(d/2, 1)
		}
		desc.faces[face] = mips
	}
	return nil
}

// surfaceInfo returns the byte size, row pitch and row count of one
// surface, honoring block-compressed and packed layouts.
func surfaceInfo(width, height int, format dxgiFormat) (numBytes, rowBytes, numRows int) {
	switch format {
	case dxgiBC1Unorm, dxgiBC4Unorm, dxgiBC4Snorm:
		return bcSurfaceInfo(width, height, 8)
	case dxgiBC2Unorm, dxgiBC3Unorm, dxgiBC5Unorm, dxgiBC5Snorm:
		return bcSurfaceInfo(width, height, 16)
	case dxgiRG8BG8Unorm, dxgiGR8GB8Unorm:
		rowBytes = ((width + 1) / 2) * 4
		return rowBytes * height, rowBytes, height
	default:
		bpp := bitsPerPixelDXGI(format)
		rowBytes = (width*bpp + 7) / 8
		return rowBytes * height, rowBytes, height
	}
}

func bcSurfaceInfo(width, height, blockBytes int) (numBytes, rowBytes, numRows int) {
	blocksWide := max(1, (width+3)/4)
	blocksHigh := max(1, (height+3)/4)
	rowBytes = blocksWide * blockBytes
	return rowBytes * blocksHigh, rowBytes, blocksHigh
}

func bitsPerPixelDXGI(f dxgiFormat) int {
	switch f {
	case dxgiRGBA32Float:
		return 128
	case dxgiRGBA16Float, dxgiRGBA16Unorm, dxgiRGBA16Snorm, dxgiRG32Float:
		return 64
	case dxgiRGB10A2Unorm, dxgiRGBA8Unorm, dxgiRGBA8UnormSRGB, dxgiRG16Float,
		dxgiRG16Unorm, dxgiR32Float, dxgiRG8BG8Unorm, dxgiGR8GB8Unorm,
		dxgiBGRA8Unorm, dxgiBGRX8Unorm:
		return 32
	case dxgiRG8Unorm, dxgiR16Float, dxgiR16Unorm, dxgiB5G6R5Unorm,
		dxgiB5G5R5A1Unorm, dxgiB4G4R4A4Unorm:
		return 16
	case dxgiR8Unorm, dxgiA8Unorm:
		return 8
	case dxgiBC1Unorm, dxgiBC4Unorm, dxgiBC4Snorm:
		return 4
	case dxgiBC2Unorm, dxgiBC3Unorm, dxgiBC5Unorm, dxgiBC5Snorm:
		return 8
	default:
		return 0
	}
}

// formatFromPixelFormat resolves a legacy (non-DX10) pixel format block
// to a DXGI tag, matching the D3DX conventions.
func formatFromPixelFormat(pf ddsPixelFormat) dxgiFormat {
	masks := func(r, g, b, a uint32) bool {
		return pf.rMask == r && pf.gMask == g && pf.bMask == b && pf.aMask == a
	}

	switch {
	case pf.flags&ddpfRGB != 0:
		switch pf.rgbBitCount {
		case 32:
			switch {
			case masks(0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000):
				return dxgiRGBA8Unorm
			case masks(0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000):
				return dxgiBGRA8Unorm
			case masks(0x00ff0000, 0x0000ff00, 0x000000ff, 0x00000000):
				return dxgiBGRX8Unorm
			case masks(0x3ff00000, 0x000ffc00, 0x000003ff, 0xc0000000):
				return dxgiRGB10A2Unorm
			case masks(0x0000ffff, 0xffff0000, 0x00000000, 0x00000000):
				return dxgiRG16Unorm
			case masks(0xffffffff, 0x00000000, 0x00000000, 0x00000000):
				return dxgiR32Float
			}
		case 16:
			switch {
			case masks(0x7c00, 0x03e0, 0x001f, 0x8000):
				return dxgiB5G5R5A1Unorm
			case masks(0xf800, 0x07e0, 0x001f, 0x0000):
				return dxgiB5G6R5Unorm
			case masks(0x0f00, 0x00f0, 0x000f, 0xf000):
				return dxgiB4G4R4A4Unorm
			}
		}
	case pf.flags&ddpfLuminance != 0:
		switch pf.rgbBitCount {
		case 8:
			if masks(0x000000ff, 0, 0, 0) {
				return dxgiR8Unorm
			}
		case 16:
			if masks(0x0000ffff, 0, 0, 0) {
				return dxgiR16Unorm
			}
			if masks(0x000000ff, 0, 0, 0x0000ff00) {
				return dxgiRG8Unorm
			}
		}
	case pf.flags&ddpfAlpha != 0:
		if pf.rgbBitCount == 8 {
			return dxgiA8Unorm
		}
	case pf.flags&ddpfFourCC != 0:
		switch pf.fourCC {
		case fourCC('D', 'X', 'T', '1'):
			return dxgiBC1Unorm
		case fourCC('D', 'X', 'T', '2'), fourCC('D', 'X', 'T', '3'):
			return dxgiBC2Unorm
		case fourCC('D', 'X', 'T', '4'), fourCC('D', 'X', 'T', '5'):
			return dxgiBC3Unorm
		case fourCC('A', 'T', 'I', '1'), fourCC('B', 'C', '4', 'U'):
			return dxgiBC4Unorm
		case fourCC('B', 'C', '4', 'S'):
			return dxgiBC4Snorm
		case fourCC('A', 'T', 'I', '2'), fourCC('B', 'C', '5', 'U'):
			return dxgiBC5Unorm
		case fourCC('B', 'C', '5', 'S'):
			return dxgiBC5Snorm
		case fourCC('R', 'G', 'B', 'G'):
			return dxgiRG8BG8Unorm
		case fourCC('G', 'R', 'G', 'B'):
			return dxgiGR8GB8Unorm
		case 36:
			return dxgiRGBA16Unorm
		case 110:
			return dxgiRGBA16Snorm
		case 111:
			return dxgiR16Float
		case 112:
			return dxgiRG16Float
		case 113:
			return dxgiRGBA16Float
		case 114:
			return dxgiR32Float
		case 115:
			return dxgiRG32Float
		case 116:
			return dxgiRGBA32Float
		}
	}
	return dxgiUnknown
}

// convertDDS turns the first face of a parsed DDS into engine pixel data,
// decompressing or swizzling each mip level as needed.
func convertDDS(desc *ddsDescription) (*Image, error) {
	mips := desc.faces[0]
	img := &Image{
		Width:  desc.width,
		Height: desc.height,
		Levels: make([][]byte, len(mips)),
	}

	w, h := desc.width, desc.height
	for i, raw := range mips {
		converted, format, tag, err := convertSurface(raw, w, h, desc.format)
		if err != nil {
			return nil, err
		}
		img.Levels[i] = converted
		img.Format = format
		img.Container = "dds/" + tag
		w = max(w/2, 1)
		h = max(h/2, 1)
	}
	return img, nil
}

func convertSurface(raw []byte, w, h int, format dxgiFormat) ([]byte, gpu.PixelFormat, string, error) {
	switch format {
	case dxgiRGBA8Unorm:
		return append([]byte(nil), raw...), gpu.FormatRGBA8, "rgba8", nil
	case dxgiRGBA8UnormSRGB:
		return append([]byte(nil), raw...), gpu.FormatSRGBA8, "srgba8", nil
	case dxgiRGBA32Float:
		return append([]byte(nil), raw...), gpu.FormatRGBA32F, "rgba32f", nil
	case dxgiBGRA8Unorm:
		return swizzleBGRA(raw, false), gpu.FormatRGBA8, "bgra8", nil
	case dxgiBGRX8Unorm:
		return swizzleBGRA(raw, true), gpu.FormatRGBA8, "bgrx8", nil
	case dxgiBC1Unorm:
		return decompressBC1(raw, w, h), gpu.FormatRGBA8, "bc1", nil
	case dxgiBC2Unorm:
		return decompressBC2(raw, w, h), gpu.FormatRGBA8, "bc2", nil
	case dxgiBC3Unorm:
		return decompressBC3(raw, w, h), gpu.FormatRGBA8, "bc3", nil
	case dxgiBC4Unorm:
		return decompressBC4(raw, w, h), gpu.FormatR8, "bc4", nil
	case dxgiBC5Unorm:
		return decompressBC5(raw, w, h), gpu.FormatRGBA8, "bc5", nil
	default:
		return nil, gpu.FormatUndefined, "", fmt.Errorf("content: dds: no engine format for dxgi format %d", format)
	}
}

// swizzleBGRA reorders BGRA bytes to RGBA. When opaqueX is set the source
// alpha channel is padding and forced to 255.
func swizzleBGRA(raw []byte, opaqueX bool) []byte {
	out := make([]byte, len(raw))
	for i := 0; i+4 <= len(raw); i += 4 {
		out[i] = raw[i+2]
		out[i+1] = raw[i+1]
		out[i+2] = raw[i]
		if opaqueX {
			out[i+3] = 0xff
		} else {
			out[i+3] = raw[i+3]
		}
	}
	return out
}
