// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package headless provides a pure-CPU gpu.Backend implementation. It
// stores texture and render-target pixels in memory, executes clears and
// read-backs for real, and records programs, uniforms, state changes and
// draw calls so behavior can be asserted in tests without a GPU.
package headless

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/ember/gpu"
)

// Surface is an in-memory drawable surface.
type Surface struct {
	width  int
	height int
}

// NewSurface creates a surface with the given pixel size.
func NewSurface(width, height int) *Surface {
	return &Surface{width: width, height: height}
}

// SizePixels returns the surface size.
func (s *Surface) SizePixels() (int, int) { return s.width, s.height }

// Resize changes the surface size, taking effect at the next BeginFrame.
func (s *Surface) Resize(width, height int) {
	s.width = width
	s.height = height
}

// Texture is a CPU-stored texture.
type Texture struct {
	label        string
	width        int
	height       int
	format       gpu.PixelFormat
	renderTarget bool

	levels [][]byte

	sampler    gpu.Sampler
	hasSampler bool

	destroyed bool
}

func (t *Texture) Width() int              { return t.width }
func (t *Texture) Height() int             { return t.height }
func (t *Texture) Format() gpu.PixelFormat { return t.format }
func (t *Texture) Destroy()                { t.destroyed = true }

// Pixels returns the level-0 pixel storage, top-down rows.
func (t *Texture) Pixels() []byte { return t.levels[0] }

// LevelCount returns the number of stored mip levels.
func (t *Texture) LevelCount() int { return len(t.levels) }

// Sampler returns the sampler state last applied to the texture.
func (t *Texture) Sampler() (gpu.Sampler, bool) { return t.sampler, t.hasSampler }

// Program is a recorded shading program.
type Program struct {
	label    string
	vertex   string
	fragment string

	uniforms map[string][]byte

	destroyed bool
}

func (p *Program) Destroy() { p.destroyed = true }

// Label returns the program's debug label.
func (p *Program) Label() string { return p.label }

// FragmentSource returns the program's fragment stage source.
func (p *Program) FragmentSource() string { return p.fragment }

// Uniform returns the bytes last uploaded for a uniform, or nil.
func (p *Program) Uniform(name string) []byte { return p.uniforms[name] }

// Buffer is a CPU-stored vertex or index buffer.
type Buffer struct {
	data      []byte
	index     bool
	destroyed bool
}

func (b *Buffer) Size() int { return len(b.data) }
func (b *Buffer) Destroy()  { b.destroyed = true }

// Data returns the buffer contents.
func (b *Buffer) Data() []byte { return b.data }

// DrawCall records one DrawIndexed submission with the state it ran
// under.
type DrawCall struct {
	Program    *Program
	Texture    gpu.Texture // slot 0 binding
	Target     gpu.Texture // nil means the surface backbuffer
	IndexCount int
	FirstIndex int
	Blend      gpu.BlendState
	Scissors   []gpu.ScissorRect

	// VertexData is a snapshot of the vertex bytes the call covered,
	// taken at submission time since the ring buffer gets reused.
	VertexData []byte

	// Uniforms snapshots the program's uniform values at submission.
	Uniforms map[string][]byte
}

// backbuffer is the pixel storage behind one surface.
type backbuffer struct {
	width  int
	height int
	pixels []byte // RGBA8, top-down
}

// Backend implements gpu.Backend on the CPU.
type Backend struct {
	surfaces map[gpu.Surface]*backbuffer
	current  gpu.Surface

	target   *Texture // nil means current surface backbuffer
	viewport [2]int
	blend    gpu.BlendState
	scissors []gpu.ScissorRect

	program  *Program
	bound    map[int]gpu.Texture
	vertices *Buffer
	indices  *Buffer

	swapInterval int

	// Recordings for assertions.
	Calls           []DrawCall
	Presented       map[gpu.Surface]int
	SwapIntervals   []int
	SamplerApplies  []SamplerApply
	ProgramSwitches int
}

// SamplerApply records one ApplySampler call.
type SamplerApply struct {
	Texture gpu.Texture
	Sampler gpu.Sampler
}

// New creates a headless backend.
func New() *Backend {
	return &Backend{
		surfaces:  make(map[gpu.Surface]*backbuffer),
		bound:     make(map[int]gpu.Texture),
		Presented: make(map[gpu.Surface]int),
	}
}

var _ gpu.Backend = (*Backend)(nil)

// Name identifies the backend.
func (b *Backend) Name() string { return "headless" }

// Reset clears the recorded calls, keeping resources and state.
func (b *Backend) Reset() {
	b.Calls = nil
	b.SamplerApplies = nil
	b.SwapIntervals = nil
	b.ProgramSwitches = 0
}

func (b *Backend) BeginFrame(surface gpu.Surface) error {
	if surface == nil {
		return errors.New("headless: nil surface")
	}
	w, h := surface.SizePixels()
	bb := b.surfaces[surface]
	if bb == nil || bb.width != w || bb.height != h {
		bb = &backbuffer{width: w, height: h, pixels: make([]byte, w*h*4)}
		b.surfaces[surface] = bb
	}
	b.current = surface
	return nil
}

func (b *Backend) Present(surface gpu.Surface) error {
	if surface == nil {
		return errors.New("headless: nil surface")
	}
	b.Presented[surface]++
	return nil
}

func (b *Backend) SetSwapInterval(interval int) {
	b.swapInterval = interval
	b.SwapIntervals = append(b.SwapIntervals, interval)
}

func (b *Backend) CreateTexture(desc gpu.TextureDescriptor, levels [][]byte) (gpu.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("headless: invalid texture size %dx%d", desc.Width, desc.Height)
	}
	mips := desc.MipLevelCount
	if mips <= 0 {
		mips = 1
	}
	t := &Texture{
		label:  desc.Label,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
	}
	w, h := desc.Width, desc.Height
	for i := 0; i < mips; i++ {
		size := desc.Format.SlicePitch(w, h)
		pix := make([]byte, size)
		if i < len(levels) && levels[i] != nil {
			if len(levels[i]) != size {
				return nil, fmt.Errorf("headless: level %d has %d bytes, want %d", i, len(levels[i]), size)
			}
			copy(pix, levels[i])
		}
		t.levels = append(t.levels, pix)
		w = max(1, w/2)
		h = max(1, h/2)
	}
	return t, nil
}

func (b *Backend) CreateRenderTarget(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	t, err := b.CreateTexture(desc, nil)
	if err != nil {
		return nil, err
	}
	t.(*Texture).renderTarget = true
	return t, nil
}

func (b *Backend) UpdateTexture(tex gpu.Texture, x, y, w, h int, data []byte) error {
	t, ok := tex.(*Texture)
	if !ok {
		return errors.New("headless: foreign texture")
	}
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > t.width || y+h > t.height {
		return fmt.Errorf("headless: update region (%d,%d %dx%d) out of bounds for %dx%d", x, y, w, h, t.width, t.height)
	}
	rowPitch := t.format.RowPitch(w)
	if len(data) != t.format.SlicePitch(w, h) {
		return fmt.Errorf("headless: update data %d bytes, want %d", len(data), t.format.SlicePitch(w, h))
	}
	dstPitch := t.format.RowPitch(t.width)
	pixelBytes := t.format.BitsPerPixel() / 8
	for row := 0; row < h; row++ {
		dst := t.levels[0][(y+row)*dstPitch+x*pixelBytes:]
		copy(dst[:rowPitch], data[row*rowPitch:(row+1)*rowPitch])
	}
	return nil
}

func (b *Backend) ReadPixels(tex gpu.Texture, x, y, w, h int) ([]byte, error) {
	t, ok := tex.(*Texture)
	if !ok {
		return nil, errors.New("headless: foreign texture")
	}
	if !t.renderTarget {
		return nil, errors.New("headless: texture is not a render target")
	}
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > t.width || y+h > t.height {
		return nil, fmt.Errorf("headless: read region (%d,%d %dx%d) out of bounds for %dx%d", x, y, w, h, t.width, t.height)
	}
	pixelBytes := t.format.BitsPerPixel() / 8
	srcPitch := t.format.RowPitch(t.width)
	rowPitch := t.format.RowPitch(w)
	out := make([]byte, rowPitch*h)
	// Pixels are stored top-down; the contract returns bottom-up rows.
	for row := 0; row < h; row++ {
		src := t.levels[0][(y+row)*srcPitch+x*pixelBytes:]
		dst := out[(h-1-row)*rowPitch:]
		copy(dst[:rowPitch], src[:rowPitch])
	}
	return out, nil
}

func (b *Backend) CompileProgram(desc gpu.ProgramDescriptor) (gpu.Program, error) {
	if desc.VertexSource == "" || desc.FragmentSource == "" {
		return nil, errors.New("headless: program requires vertex and fragment sources")
	}
	return &Program{
		label:    desc.Label,
		vertex:   desc.VertexSource,
		fragment: desc.FragmentSource,
		uniforms: make(map[string][]byte),
	}, nil
}

func (b *Backend) UseProgram(p gpu.Program) {
	prog, _ := p.(*Program)
	if prog != b.program {
		b.ProgramSwitches++
	}
	b.program = prog
}

func (b *Backend) SetUniform(p gpu.Program, name string, _ gpu.UniformType, _ int, data []byte) error {
	prog, ok := p.(*Program)
	if !ok {
		return errors.New("headless: foreign program")
	}
	prog.uniforms[name] = append([]byte(nil), data...)
	return nil
}

func (b *Backend) BindTexture(slot int, t gpu.Texture) {
	b.bound[slot] = t
}

func (b *Backend) ApplySampler(t gpu.Texture, s gpu.Sampler) {
	if tex, ok := t.(*Texture); ok {
		tex.sampler = s
		tex.hasSampler = true
	}
	b.SamplerApplies = append(b.SamplerApplies, SamplerApply{Texture: t, Sampler: s})
}

func (b *Backend) CreateVertexBuffer(byteSize int) (gpu.Buffer, error) {
	if byteSize <= 0 {
		return nil, errors.New("headless: invalid vertex buffer size")
	}
	return &Buffer{data: make([]byte, byteSize)}, nil
}

func (b *Backend) WriteVertexBuffer(buf gpu.Buffer, byteOffset int, data []byte) error {
	bb, ok := buf.(*Buffer)
	if !ok {
		return errors.New("headless: foreign buffer")
	}
	if byteOffset < 0 || byteOffset+len(data) > len(bb.data) {
		return fmt.Errorf("headless: write of %d bytes at %d exceeds buffer size %d", len(data), byteOffset, len(bb.data))
	}
	copy(bb.data[byteOffset:], data)
	return nil
}

func (b *Backend) CreateIndexBuffer(data []byte) (gpu.Buffer, error) {
	if len(data) == 0 {
		return nil, errors.New("headless: empty index buffer")
	}
	return &Buffer{data: append([]byte(nil), data...), index: true}, nil
}

func (b *Backend) BindBuffers(vertices, indices gpu.Buffer) {
	b.vertices, _ = vertices.(*Buffer)
	b.indices, _ = indices.(*Buffer)
}

func (b *Backend) DrawIndexed(indexCount, firstIndex int) {
	call := DrawCall{
		Program:    b.program,
		Texture:    b.bound[0],
		IndexCount: indexCount,
		FirstIndex: firstIndex,
		Blend:      b.blend,
		Scissors:   append([]gpu.ScissorRect(nil), b.scissors...),
		Uniforms:   make(map[string][]byte, len(b.program.uniforms)),
	}
	if b.target != nil {
		call.Target = b.target
	}
	for k, v := range b.program.uniforms {
		call.Uniforms[k] = append([]byte(nil), v...)
	}
	if b.vertices != nil {
		// 6 indices per sprite, 4 vertices of 40 bytes each.
		spriteStart := firstIndex / 6
		spriteCount := indexCount / 6
		start := spriteStart * 4 * 40
		end := start + spriteCount*4*40
		if start >= 0 && end <= len(b.vertices.data) {
			call.VertexData = append([]byte(nil), b.vertices.data[start:end]...)
		}
	}
	b.Calls = append(b.Calls, call)
}

func (b *Backend) BindRenderTarget(t gpu.Texture) {
	if t == nil {
		b.target = nil
		return
	}
	b.target, _ = t.(*Texture)
}

func (b *Backend) SetViewport(width, height int) {
	b.viewport = [2]int{width, height}
}

func (b *Backend) Clear(color [4]float32) {
	if b.target != nil {
		clearPixels(b.target.levels[0], b.target.format, color)
		return
	}
	if bb := b.surfaces[b.current]; bb != nil {
		clearPixels(bb.pixels, gpu.FormatRGBA8, color)
	}
}

func (b *Backend) ApplyBlendState(s gpu.BlendState) { b.blend = s }

func (b *Backend) SetScissorRects(rects []gpu.ScissorRect) error {
	if len(rects) > b.MaxScissorRects() {
		return fmt.Errorf("headless: %d scissor rects exceed limit %d", len(rects), b.MaxScissorRects())
	}
	b.scissors = append(b.scissors[:0], rects...)
	return nil
}

// MaxScissorRects reports the single-rectangle limit, matching common GL
// hardware.
func (b *Backend) MaxScissorRects() int { return 1 }

// BackbufferPixels returns the RGBA8 pixels of a surface's backbuffer,
// top-down rows.
func (b *Backend) BackbufferPixels(surface gpu.Surface) []byte {
	if bb := b.surfaces[surface]; bb != nil {
		return bb.pixels
	}
	return nil
}

// clearPixels fills pixel storage with a color encoded per format.
func clearPixels(dst []byte, format gpu.PixelFormat, color [4]float32) {
	switch format {
	case gpu.FormatR8:
		v := encodeUnorm8(color[0])
		for i := range dst {
			dst[i] = v
		}
	case gpu.FormatRGBA8, gpu.FormatSRGBA8:
		var px [4]byte
		for i := 0; i < 4; i++ {
			px[i] = encodeUnorm8(color[i])
		}
		for i := 0; i+4 <= len(dst); i += 4 {
			copy(dst[i:], px[:])
		}
	case gpu.FormatRGBA32F:
		var px [16]byte
		for i := 0; i < 4; i++ {
			putFloat32(px[i*4:], color[i])
		}
		for i := 0; i+16 <= len(dst); i += 16 {
			copy(dst[i:], px[:])
		}
	}
}

func putFloat32(dst []byte, v float32) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
}

func encodeUnorm8(v float32) byte {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}
