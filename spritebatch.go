package ember

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"

	"github.com/gogpu/ember/gpu"
)

// Batching limits. A draw call covers at most maxBatchSize sprites; the
// ring vertex buffer wraps to the start when fewer than minBatchSize
// sprite slots remain.
const (
	maxBatchSize     = 2048
	minBatchSize     = 128
	initialQueueSize = 512

	verticesPerSprite = 4
	indicesPerSprite  = 6

	// vertexStride is the byte size of one vertex: position (4 x f32,
	// z = 0 and w = 1), color (4 x f32), uv (2 x f32).
	vertexStride = 40
)

// SpriteFlip mirrors a sprite's texture coordinates.
type SpriteFlip uint8

const (
	FlipNone         SpriteFlip = 0
	FlipHorizontally SpriteFlip = 1 << 0
	FlipVertically   SpriteFlip = 1 << 1
	FlipBoth                    = FlipHorizontally | FlipVertically
)

// Sprite describes one textured quad.
type Sprite struct {
	// Image is the sprite's texture. Sprites without an image are
	// ignored.
	Image *Image

	// DstRect is the destination in target pixels.
	DstRect Rectangle

	// SrcRect selects the texels to draw. Nil means the whole image.
	SrcRect *Rectangle

	// Color tints the sprite; use White for no tint.
	Color Color

	// Origin is the rotation center in source-texel units.
	Origin Vector2

	// Rotation is the clockwise rotation around Origin, in radians.
	Rotation float32

	Flip SpriteFlip
}

// spriteShaderKind selects between the default textured fragment stage and
// the monochromatic stage used for glyph pages.
type spriteShaderKind uint8

const (
	shaderKindDefault spriteShaderKind = iota
	shaderKindMonochromatic
)

// batchSprite is the queued, resolved form of a sprite.
type batchSprite struct {
	texture gpu.Texture
	// owner is the Image wrapping texture, nil for glyph pages. Used to
	// skip redundant sampler changes.
	owner *Image
	kind  spriteShaderKind

	texW, texH float32

	dst      Rectangle
	src      Rectangle
	color    Color
	origin   Vector2
	rotation float32
	flip     uint8
}

// spriteBatch queues sprites between begin and end and turns them into as
// few indexed draws as possible: consecutive sprites sharing a texture and
// shader kind render in one call, split only by the maxBatchSize limit.
type spriteBatch struct {
	backend gpu.Backend
	stats   *FrameStats

	sprites []batchSprite

	vertices  gpu.Buffer
	indices   gpu.Buffer
	bufferPos int

	defaultProgram gpu.Program
	monoProgram    gpu.Program

	// white is a 1x1 opaque image backing untextured fills.
	white *Image

	active    bool
	transform Matrix
	blend     BlendState
	shader    *Shader
	sampler   Sampler

	scratch []byte
}

func newSpriteBatch(device *Device) (*spriteBatch, error) {
	b := &spriteBatch{
		backend: device.backend,
		stats:   &device.stats,
		sprites: make([]batchSprite, 0, initialQueueSize),
	}

	var err error
	b.vertices, err = device.backend.CreateVertexBuffer(maxBatchSize * verticesPerSprite * vertexStride)
	if err != nil {
		return nil, WrapError(KindRuntime, "creating sprite vertex buffer", err)
	}

	b.indices, err = device.backend.CreateIndexBuffer(buildSpriteIndices())
	if err != nil {
		return nil, WrapError(KindRuntime, "creating sprite index buffer", err)
	}

	b.defaultProgram, err = device.backend.CompileProgram(gpu.ProgramDescriptor{
		Label:          "sprite-default",
		VertexSource:   spriteVertexSource,
		FragmentSource: spriteFragmentDefaultSource,
	})
	if err != nil {
		return nil, WrapError(KindRuntime, "compiling default sprite program", err)
	}

	b.monoProgram, err = device.backend.CompileProgram(gpu.ProgramDescriptor{
		Label:          "sprite-monochromatic",
		VertexSource:   spriteVertexSource,
		FragmentSource: spriteFragmentMonochromaticSource,
	})
	if err != nil {
		return nil, WrapError(KindRuntime, "compiling monochromatic sprite program", err)
	}

	b.white, err = NewImage(device, 1, 1, FormatRGBA8, []byte{0xFF, 0xFF, 0xFF, 0xFF})
	if err != nil {
		return nil, err
	}

	return b, nil
}

// buildSpriteIndices builds the static 16-bit index pattern
// {0, 1, 2, 1, 3, 2} for every sprite slot.
func buildSpriteIndices() []byte {
	pattern := [indicesPerSprite]uint16{0, 1, 2, 1, 3, 2}
	data := make([]byte, maxBatchSize*indicesPerSprite*2)
	for i := 0; i < maxBatchSize; i++ {
		base := uint16(i * verticesPerSprite)
		for j, p := range pattern {
			binary.LittleEndian.PutUint16(data[(i*indicesPerSprite+j)*2:], base+p)
		}
	}
	return data
}

func (b *spriteBatch) destroy() {
	if b.vertices != nil {
		b.vertices.Destroy()
	}
	if b.indices != nil {
		b.indices.Destroy()
	}
	if b.defaultProgram != nil {
		b.defaultProgram.Destroy()
	}
	if b.monoProgram != nil {
		b.monoProgram.Destroy()
	}
	b.white.Destroy()
}

// begin opens a batching pass with the given pass-level state.
func (b *spriteBatch) begin(transform Matrix, blend BlendState, shader *Shader, sampler Sampler) {
	b.transform = transform
	b.blend = blend
	b.shader = shader
	b.sampler = sampler
	b.active = true
}

// end flushes the queue and closes the pass.
func (b *spriteBatch) end() error {
	err := b.flush()
	b.active = false
	return err
}

// drawSprite queues a resolved sprite.
func (b *spriteBatch) drawSprite(sp batchSprite) {
	b.sprites = append(b.sprites, sp)
	b.stats.SpritesDrawn++
}

// queueSprite resolves a public Sprite and queues it.
func (b *spriteBatch) queueSprite(sprite Sprite) {
	if sprite.Image == nil || sprite.Image.destroyed {
		return
	}
	img := sprite.Image

	src := Rectangle{W: float32(img.width), H: float32(img.height)}
	if sprite.SrcRect != nil {
		src = *sprite.SrcRect
	}

	flip := uint8(sprite.Flip) & 3
	if img.canvas {
		// Canvas contents are stored bottom-up; drawing them flips
		// vertically to compensate.
		flip |= uint8(FlipVertically)
	}

	b.drawSprite(batchSprite{
		texture:  img.texture,
		owner:    img,
		kind:     shaderKindDefault,
		texW:     float32(img.width),
		texH:     float32(img.height),
		dst:      sprite.DstRect,
		src:      src,
		color:    sprite.Color,
		origin:   sprite.Origin,
		rotation: sprite.Rotation,
		flip:     flip,
	})
}

// queueFillRectangle queues a solid rectangle backed by the white image.
func (b *spriteBatch) queueFillRectangle(rect Rectangle, color Color, rotation float32, origin Vector2) {
	b.drawSprite(batchSprite{
		texture:  b.white.texture,
		owner:    b.white,
		kind:     shaderKindDefault,
		texW:     1,
		texH:     1,
		dst:      rect,
		src:      Rectangle{W: 1, H: 1},
		color:    color,
		origin:   origin,
		rotation: rotation,
	})
}

// flush renders the queued sprites. A single scan groups consecutive
// sprites that share a texture and shader kind into runs; each run issues
// one or more draws depending on ring-buffer space.
func (b *spriteBatch) flush() error {
	if len(b.sprites) == 0 {
		return nil
	}

	b.backend.ApplyBlendState(b.blend)
	b.backend.BindBuffers(b.vertices, b.indices)

	start := 0
	for start < len(b.sprites) {
		run := 1
		for start+run < len(b.sprites) &&
			b.sprites[start+run].texture == b.sprites[start].texture &&
			b.sprites[start+run].kind == b.sprites[start].kind {
			run++
		}
		if err := b.renderRun(b.sprites[start : start+run]); err != nil {
			b.sprites = b.sprites[:0]
			return err
		}
		start += run
	}

	b.sprites = b.sprites[:0]
	return nil
}

// renderRun draws one texture/kind run, splitting it over the ring vertex
// buffer.
func (b *spriteBatch) renderRun(sprites []batchSprite) error {
	if _, err := b.setUpBatch(&sprites[0]); err != nil {
		return err
	}

	offset := 0
	for offset < len(sprites) {
		batchSize := len(sprites) - offset
		remaining := maxBatchSize - b.bufferPos
		if batchSize > remaining {
			if remaining < minBatchSize {
				b.bufferPos = 0
				if batchSize > maxBatchSize {
					batchSize = maxBatchSize
				}
			} else {
				batchSize = remaining
			}
		}

		chunk := sprites[offset : offset+batchSize]
		b.fillVertices(chunk)
		byteOffset := b.bufferPos * verticesPerSprite * vertexStride
		if err := b.backend.WriteVertexBuffer(b.vertices, byteOffset, b.scratch[:len(chunk)*verticesPerSprite*vertexStride]); err != nil {
			return WrapError(KindRuntime, "uploading sprite vertices", err)
		}

		b.backend.DrawIndexed(len(chunk)*indicesPerSprite, b.bufferPos*indicesPerSprite)
		b.stats.DrawCalls++

		b.bufferPos += len(chunk)
		offset += len(chunk)
	}
	return nil
}

// setUpBatch selects and prepares the program, textures and samplers for
// one run.
func (b *spriteBatch) setUpBatch(first *batchSprite) (gpu.Program, error) {
	var program gpu.Program
	switch {
	case first.kind == shaderKindMonochromatic:
		program = b.monoProgram
	case b.shader != nil:
		if b.shader.program == nil {
			p, err := b.backend.CompileProgram(gpu.ProgramDescriptor{
				Label:          b.shader.name,
				VertexSource:   spriteVertexSource,
				FragmentSource: b.shader.source,
			})
			if err != nil {
				return nil, WrapError(KindRuntime, "compiling shader "+b.shader.name, err)
			}
			b.shader.program = p
		}
		program = b.shader.program
	default:
		program = b.defaultProgram
	}

	b.backend.UseProgram(program)

	// Upload the user shader's dirty parameters now that its program is
	// active.
	if first.kind == shaderKindDefault && b.shader != nil {
		s := b.shader
		for p := range s.dirtyScalar {
			count := 1
			if p.typ.IsArray() {
				count = p.arraySize
			}
			data := s.cbuffer[p.offset : p.offset+p.typ.sizeInBytes(p.arraySize)]
			if err := b.backend.SetUniform(program, p.name, uniformTypeOf(p.typ), count, data); err != nil {
				return nil, WrapError(KindRuntime, "uploading parameter "+p.name, err)
			}
		}
		clear(s.dirtyScalar)

		for p := range s.dirtyImage {
			if p.image != nil && p.image.texture != nil {
				b.backend.BindTexture(1+p.offset, p.image.texture)
				// Keep the image's own sampler state; fall back to the
				// pass sampler for images that never had one applied.
				sampler := b.sampler
				if p.image.hasLastSampler {
					sampler = p.image.lastSampler
				}
				b.backend.ApplySampler(p.image.texture, sampler)
				p.image.lastSampler = sampler
				p.image.hasLastSampler = true
			}
		}
		clear(s.dirtyImage)
	}

	if err := b.backend.SetUniform(program, transformationUniform, gpu.UniformMat4, 1, f32SliceBytes(b.transform[:]...)); err != nil {
		return nil, WrapError(KindRuntime, "uploading transformation", err)
	}

	b.backend.BindTexture(0, first.texture)

	switch {
	case first.kind == shaderKindMonochromatic:
		// Glyph pages always sample point-clamp so coverage texels
		// never blur across glyph boundaries.
		b.backend.ApplySampler(first.texture, gpu.SamplerPointClamp)
	case first.owner != nil:
		if !first.owner.hasLastSampler || first.owner.lastSampler != b.sampler {
			b.backend.ApplySampler(first.texture, b.sampler)
			first.owner.lastSampler = b.sampler
			first.owner.hasLastSampler = true
		}
	default:
		b.backend.ApplySampler(first.texture, b.sampler)
	}

	return program, nil
}

// fillVertices encodes the vertices of the given sprites into the scratch
// buffer.
func (b *spriteBatch) fillVertices(sprites []batchSprite) {
	need := len(sprites) * verticesPerSprite * vertexStride
	if cap(b.scratch) < need {
		b.scratch = make([]byte, need)
	}
	buf := b.scratch[:need]

	o := 0
	put := func(v float32) {
		binary.LittleEndian.PutUint32(buf[o:], math.Float32bits(v))
		o += 4
	}

	for i := range sprites {
		sp := &sprites[i]

		// Normalize the origin to the source rectangle so rotation
		// pivots stay proportional regardless of source size.
		var originX, originY float32
		if sp.src.W != 0 {
			originX = sp.origin.X / sp.src.W
		} else {
			originX = sp.origin.X / sp.texW
		}
		if sp.src.H != 0 {
			originY = sp.origin.Y / sp.src.H
		} else {
			originY = sp.origin.Y / sp.texH
		}

		sin, cos := math32.Sincos(sp.rotation)

		uvX := sp.src.X / sp.texW
		uvY := sp.src.Y / sp.texH
		uvW := sp.src.W / sp.texW
		uvH := sp.src.H / sp.texH

		for corner := 0; corner < verticesPerSprite; corner++ {
			cx := float32(corner & 1)
			cy := float32(corner >> 1)

			px := (cx - originX) * sp.dst.W
			py := (cy - originY) * sp.dst.H
			x := px*cos - py*sin + sp.dst.X
			y := px*sin + py*cos + sp.dst.Y

			m := corner ^ int(sp.flip)
			u := float32(m&1)*uvW + uvX
			v := float32(m>>1)*uvH + uvY

			put(x)
			put(y)
			put(0)
			put(1)
			put(sp.color.R)
			put(sp.color.G)
			put(sp.color.B)
			put(sp.color.A)
			put(u)
			put(v)
		}
	}
}
