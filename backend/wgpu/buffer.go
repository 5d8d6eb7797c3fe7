// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"github.com/gogpu/ember/gpu"
)

// StubBufferID is a placeholder for the wgpu buffer ID. It will be
// replaced with the core ID type once buffer creation is exposed on core
// devices.
type StubBufferID uint64

// Buffer is a vertex or index buffer. Contents are mirrored CPU-side;
// bufferID stays zero until wgpu buffer creation is wired up.
type Buffer struct {
	bufferID StubBufferID

	data      []byte
	index     bool
	destroyed bool
}

var _ gpu.Buffer = (*Buffer)(nil)

// Size returns the buffer capacity in bytes.
func (b *Buffer) Size() int { return len(b.data) }

// Destroy releases the buffer.
func (b *Buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true

	// TODO: Release the GPU buffer when wgpu supports it
	//
	// if b.bufferID != 0 {
	//     core.BufferDrop(b.bufferID)
	// }
	b.bufferID = 0
	b.data = nil
}

// CreateVertexBuffer creates a writable vertex buffer of byteSize bytes.
func (g *Backend) CreateVertexBuffer(byteSize int) (gpu.Buffer, error) {
	if byteSize <= 0 {
		return nil, errInvalidf("vertex buffer size %d", byteSize)
	}

	// TODO: core.CreateBuffer with BufferUsageVertex|BufferUsageCopyDst
	// once buffer creation is exposed.
	return &Buffer{data: make([]byte, byteSize)}, nil
}

// WriteVertexBuffer writes data into b at byteOffset.
func (g *Backend) WriteVertexBuffer(b gpu.Buffer, byteOffset int, data []byte) error {
	buf, ok := b.(*Buffer)
	if !ok || buf.destroyed || buf.index {
		return errInvalidf("not a writable vertex buffer")
	}
	if byteOffset < 0 || byteOffset+len(data) > len(buf.data) {
		return errInvalidf("write of %d bytes at %d exceeds buffer size %d",
			len(data), byteOffset, len(buf.data))
	}
	copy(buf.data[byteOffset:], data)

	// TODO: core.QueueWriteBuffer(g.queue, buf.bufferID, uint64(byteOffset), data)
	return nil
}

// CreateIndexBuffer creates an immutable 16-bit index buffer.
func (g *Backend) CreateIndexBuffer(data []byte) (gpu.Buffer, error) {
	if len(data) == 0 || len(data)%2 != 0 {
		return nil, errInvalidf("index data must be a non-empty multiple of 2 bytes, got %d", len(data))
	}

	// TODO: core.CreateBuffer with BufferUsageIndex and an initial
	// QueueWriteBuffer upload.
	buf := &Buffer{data: make([]byte, len(data)), index: true}
	copy(buf.data, data)
	return buf, nil
}

// BindBuffers binds the vertex and index buffers for following draws.
func (g *Backend) BindBuffers(vertices, indices gpu.Buffer) {
	g.vertices, _ = vertices.(*Buffer)
	g.indices, _ = indices.(*Buffer)
}
