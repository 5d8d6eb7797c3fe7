// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu defines the backend abstraction the ember renderer draws
// through. A Backend owns GPU resources (textures, buffers, programs) and
// executes the state changes and indexed draws the sprite batch emits.
//
// Two implementations ship with ember: backend/headless, a pure-CPU
// recording backend used for tests, and backend/wgpu on top of
// github.com/gogpu/wgpu.
package gpu

// Surface is the drawable target a host window system provides. ember
// never creates windows; the host passes a Surface into frame calls.
type Surface interface {
	// SizePixels returns the current drawable size in pixels.
	SizePixels() (width, height int)
}

// Texture is a GPU texture resource. Render-target textures additionally
// carry a framebuffer on backends that need one.
type Texture interface {
	Width() int
	Height() int
	Format() PixelFormat

	// Destroy releases the GPU resources of the texture.
	Destroy()
}

// Program is a compiled sprite shading program.
type Program interface {
	Destroy()
}

// Buffer is a GPU vertex or index buffer.
type Buffer interface {
	// Size returns the buffer capacity in bytes.
	Size() int

	Destroy()
}

// TextureDescriptor describes parameters for creating a texture.
type TextureDescriptor struct {
	// Label is an optional debug label.
	Label string

	Width  int
	Height int
	Format PixelFormat

	// MipLevelCount is the number of mip levels. Zero means 1.
	MipLevelCount int

	// RenderTarget marks the texture as drawable.
	RenderTarget bool
}

// ProgramDescriptor describes a sprite shading program. Sources are WGSL;
// backends targeting other APIs translate them.
type ProgramDescriptor struct {
	// Label is an optional debug label.
	Label string

	VertexSource   string
	FragmentSource string
}

// UniformType identifies the element type of a uniform upload.
type UniformType uint8

const (
	UniformFloat UniformType = iota
	UniformInt
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat4
)

// Backend executes rendering commands for the ember device. Implementations
// are not required to be safe for concurrent use; the device serializes all
// calls.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string

	// BeginFrame makes the surface current and applies pending per-surface
	// state such as the swap interval.
	BeginFrame(surface Surface) error

	// Present swaps the surface's backbuffer.
	Present(surface Surface) error

	// SetSwapInterval sets the v-sync interval applied at the next
	// BeginFrame of each surface.
	SetSwapInterval(interval int)

	// CreateTexture creates a texture, optionally initialized with one
	// pixel slice per mip level.
	CreateTexture(desc TextureDescriptor, levels [][]byte) (Texture, error)

	// CreateRenderTarget creates a drawable texture.
	CreateRenderTarget(desc TextureDescriptor) (Texture, error)

	// UpdateTexture replaces the given region of mip level 0.
	UpdateTexture(t Texture, x, y, w, h int, data []byte) error

	// ReadPixels reads a region of a render target. Rows are returned
	// bottom-up, matching GPU framebuffer layout; callers flip them.
	ReadPixels(t Texture, x, y, w, h int) ([]byte, error)

	// CompileProgram builds a shading program from WGSL sources.
	CompileProgram(desc ProgramDescriptor) (Program, error)

	// UseProgram makes p the active program. Backends cache the active
	// program and ignore redundant calls.
	UseProgram(p Program)

	// SetUniform uploads count elements of the named uniform of the
	// active program. Data is the little-endian std140-packed byte range
	// of the uniform (16-byte element stride for arrays).
	SetUniform(p Program, name string, typ UniformType, count int, data []byte) error

	// BindTexture binds t to the given texture slot. Slot 0 carries the
	// sprite texture; user shader images occupy the following slots.
	BindTexture(slot int, t Texture)

	// ApplySampler sets the sampler state used when t is next sampled.
	ApplySampler(t Texture, s Sampler)

	// CreateVertexBuffer creates a writable vertex buffer of byteSize bytes.
	CreateVertexBuffer(byteSize int) (Buffer, error)

	// WriteVertexBuffer writes data into b at byteOffset.
	WriteVertexBuffer(b Buffer, byteOffset int, data []byte) error

	// CreateIndexBuffer creates an immutable 16-bit index buffer.
	CreateIndexBuffer(data []byte) (Buffer, error)

	// BindBuffers binds the vertex and index buffers for following draws.
	BindBuffers(vertices, indices Buffer)

	// DrawIndexed draws indexCount 16-bit indices starting at firstIndex.
	DrawIndexed(indexCount, firstIndex int)

	// BindRenderTarget directs following draws into t, or into the current
	// surface's backbuffer when t is nil.
	BindRenderTarget(t Texture)

	// SetViewport sets the pixel size of the current target.
	SetViewport(width, height int)

	// Clear fills the current target with the given RGBA color.
	Clear(color [4]float32)

	// ApplyBlendState sets fixed-function blending for following draws.
	ApplyBlendState(s BlendState)

	// SetScissorRects replaces the active scissor rectangles. An empty
	// slice disables scissoring. Backends reject more rectangles than
	// MaxScissorRects.
	SetScissorRects(rects []ScissorRect) error

	// MaxScissorRects returns the number of simultaneous scissor
	// rectangles the backend supports.
	MaxScissorRects() int
}
