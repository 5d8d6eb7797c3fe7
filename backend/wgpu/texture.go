// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"github.com/gogpu/wgpu/core"

	"github.com/gogpu/ember/gpu"
)

// Texture is a GPU texture. Pixel contents are mirrored CPU-side so
// uploads and read-back behave; textureID and viewID stay zero until
// the wgpu texture APIs are wired up.
type Texture struct {
	textureID core.TextureID
	viewID    core.TextureViewID

	label        string
	width        int
	height       int
	format       gpu.PixelFormat
	renderTarget bool

	// levels holds the CPU mirror of each mip level, top-down rows.
	levels [][]byte

	sampler    gpu.Sampler
	hasSampler bool

	destroyed bool
}

var _ gpu.Texture = (*Texture)(nil)

func (t *Texture) Width() int              { return t.width }
func (t *Texture) Height() int             { return t.height }
func (t *Texture) Format() gpu.PixelFormat { return t.format }

// Label returns the debug label.
func (t *Texture) Label() string { return t.label }

// Destroy releases the texture.
func (t *Texture) Destroy() {
	if t.destroyed {
		return
	}
	t.destroyed = true

	// TODO: Release the GPU texture when wgpu supports it
	//
	// if !t.viewID.IsZero() {
	//     core.TextureViewDrop(t.viewID)
	// }
	// if !t.textureID.IsZero() {
	//     core.TextureDrop(t.textureID)
	// }
	t.textureID = core.TextureID{}
	t.viewID = core.TextureViewID{}
	t.levels = nil
}

// CreateTexture creates a texture, optionally initialized with one pixel
// slice per mip level.
func (g *Backend) CreateTexture(desc gpu.TextureDescriptor, levels [][]byte) (gpu.Texture, error) {
	return g.createTexture(desc, levels, false)
}

// CreateRenderTarget creates a drawable texture.
func (g *Backend) CreateRenderTarget(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	return g.createTexture(desc, nil, true)
}

func (g *Backend) createTexture(desc gpu.TextureDescriptor, levels [][]byte, renderTarget bool) (gpu.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, errInvalidf("texture size %dx%d", desc.Width, desc.Height)
	}
	format, err := convertTextureFormat(desc.Format)
	if err != nil {
		return nil, err
	}
	_ = format

	mips := desc.MipLevelCount
	if mips <= 0 {
		mips = 1
	}

	// TODO: Create the GPU texture once core exposes texture creation
	//
	// usage := gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding
	// if renderTarget {
	//     usage |= gputypes.TextureUsageCopySrc | gputypes.TextureUsageRenderAttachment
	// }
	// textureID, err := core.CreateTexture(g.device, &gputypes.TextureDescriptor{
	//     Label: desc.Label,
	//     Size: gputypes.Extent3D{
	//         Width:              uint32(desc.Width),
	//         Height:             uint32(desc.Height),
	//         DepthOrArrayLayers: 1,
	//     },
	//     MipLevelCount: uint32(mips),
	//     SampleCount:   1,
	//     Dimension:     gputypes.TextureDimension2D,
	//     Format:        format,
	//     Usage:         usage,
	// })

	t := &Texture{
		label:        desc.Label,
		width:        desc.Width,
		height:       desc.Height,
		format:       desc.Format,
		renderTarget: renderTarget,
	}
	w, h := desc.Width, desc.Height
	for i := 0; i < mips; i++ {
		size := desc.Format.SlicePitch(w, h)
		pix := make([]byte, size)
		if i < len(levels) && levels[i] != nil {
			if len(levels[i]) != size {
				return nil, errInvalidf("level %d has %d bytes, want %d", i, len(levels[i]), size)
			}
			copy(pix, levels[i])
			// TODO: core.QueueWriteTexture(g.queue, ...) per level once
			// queue texture writes land.
		}
		t.levels = append(t.levels, pix)
		w = max(1, w/2)
		h = max(1, h/2)
	}
	return t, nil
}

// UpdateTexture replaces the given region of mip level 0.
func (g *Backend) UpdateTexture(tex gpu.Texture, x, y, w, h int, data []byte) error {
	t, ok := tex.(*Texture)
	if !ok || t.destroyed {
		return errInvalidf("foreign texture")
	}
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > t.width || y+h > t.height {
		return errInvalidf("update region (%d,%d %dx%d) out of bounds for %dx%d", x, y, w, h, t.width, t.height)
	}
	rowPitch := t.format.RowPitch(w)
	if len(data) != t.format.SlicePitch(w, h) {
		return errInvalidf("update data %d bytes, want %d", len(data), t.format.SlicePitch(w, h))
	}
	dstPitch := t.format.RowPitch(t.width)
	pixelBytes := t.format.BitsPerPixel() / 8
	for row := 0; row < h; row++ {
		dst := t.levels[0][(y+row)*dstPitch+x*pixelBytes:]
		copy(dst[:rowPitch], data[row*rowPitch:(row+1)*rowPitch])
	}

	// TODO: GPU-side region upload once queue texture writes land
	//
	// core.QueueWriteTexture(g.queue, &gputypes.ImageCopyTexture{
	//     Texture:  t.textureID,
	//     MipLevel: 0,
	//     Origin:   gputypes.Origin3D{X: uint32(x), Y: uint32(y)},
	//     Aspect:   gputypes.TextureAspectAll,
	// }, data, &gputypes.TextureDataLayout{
	//     BytesPerRow:  uint32(rowPitch),
	//     RowsPerImage: uint32(h),
	// }, &gputypes.Extent3D{
	//     Width:              uint32(w),
	//     Height:             uint32(h),
	//     DepthOrArrayLayers: 1,
	// })
	return nil
}

// ReadPixels reads a region of a render target, rows bottom-up.
func (g *Backend) ReadPixels(tex gpu.Texture, x, y, w, h int) ([]byte, error) {
	t, ok := tex.(*Texture)
	if !ok || t.destroyed {
		return nil, errInvalidf("foreign texture")
	}
	if !t.renderTarget {
		return nil, errInvalidf("texture is not a render target")
	}
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > t.width || y+h > t.height {
		return nil, errInvalidf("read region (%d,%d %dx%d) out of bounds for %dx%d", x, y, w, h, t.width, t.height)
	}

	// TODO: GPU read-back through a staging buffer once wgpu supports it:
	// copy texture to a MapRead buffer, map, read, unmap. Until then the
	// CPU mirror carries the cleared and uploaded contents.
	pixelBytes := t.format.BitsPerPixel() / 8
	srcPitch := t.format.RowPitch(t.width)
	rowPitch := t.format.RowPitch(w)
	out := make([]byte, rowPitch*h)
	for row := 0; row < h; row++ {
		src := t.levels[0][(y+row)*srcPitch+x*pixelBytes:]
		dst := out[(h-1-row)*rowPitch:]
		copy(dst[:rowPitch], src[:rowPitch])
	}
	return out, nil
}

// BindTexture binds t to the given texture slot.
func (g *Backend) BindTexture(slot int, t gpu.Texture) {
	g.bound[slot] = t

	// TODO: core.RenderPassSetBindGroup once bind groups are created.
}

// ApplySampler sets the sampler state used when t is next sampled.
func (g *Backend) ApplySampler(t gpu.Texture, s gpu.Sampler) {
	tex, ok := t.(*Texture)
	if !ok {
		return
	}
	if tex.hasSampler && tex.sampler == s {
		return
	}
	tex.sampler = s
	tex.hasSampler = true

	// TODO: Create the sampler once core exposes sampler creation,
	// mapping s.Filter, s.AddressU/V, s.CompareOp and s.BorderColor.
	//
	// samplerID, err := core.CreateSampler(g.device, &gputypes.SamplerDescriptor{
	//     AddressModeU: gputypes.AddressModeClampToEdge,
	//     AddressModeV: gputypes.AddressModeClampToEdge,
	//     MagFilter:    gputypes.FilterModeLinear,
	//     MinFilter:    gputypes.FilterModeLinear,
	// })
}
