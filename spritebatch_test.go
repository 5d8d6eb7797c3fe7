package ember

import (
	"testing"

	"github.com/chewxy/math32"

	"github.com/gogpu/ember/gpu"
)

func newTestImage(t *testing.T, d *Device, w, h int) *Image {
	t.Helper()
	img, err := NewImage(d, w, h, FormatRGBA8, make([]byte, w*h*4))
	if err != nil {
		t.Fatal(err)
	}
	return img
}

// drawFrame runs fn between BeginFrame and EndFrame.
func drawFrame(t *testing.T, d *Device, win Window, fn func()) {
	t.Helper()
	if err := d.BeginFrame(win); err != nil {
		t.Fatal(err)
	}
	fn()
	if err := d.EndFrame(win); err != nil {
		t.Fatal(err)
	}
}

func TestBatchGrouping(t *testing.T) {
	d, be, win := newTestDevice(t)
	a := newTestImage(t, d, 2, 2)
	b := newTestImage(t, d, 2, 2)

	// Alternating textures break the batch.
	drawFrame(t, d, win, func() {
		for _, img := range []*Image{a, b, a} {
			if err := d.DrawSprite(Sprite{Image: img, DstRect: Rectangle{W: 1, H: 1}, Color: White}); err != nil {
				t.Fatal(err)
			}
		}
	})
	if len(be.Calls) != 3 {
		t.Fatalf("alternating textures: %d draw calls, want 3", len(be.Calls))
	}
	for i, want := range []*Image{a, b, a} {
		if be.Calls[i].Texture != want.texture {
			t.Errorf("call %d bound the wrong texture", i)
		}
	}

	// Consecutive same-texture sprites share a call.
	be.Reset()
	drawFrame(t, d, win, func() {
		for _, img := range []*Image{a, a, b} {
			if err := d.DrawSprite(Sprite{Image: img, DstRect: Rectangle{W: 1, H: 1}, Color: White}); err != nil {
				t.Fatal(err)
			}
		}
	})
	if len(be.Calls) != 2 {
		t.Fatalf("grouped textures: %d draw calls, want 2", len(be.Calls))
	}
	if be.Calls[0].IndexCount != 12 || be.Calls[1].IndexCount != 6 {
		t.Errorf("index counts = %d, %d; want 12, 6", be.Calls[0].IndexCount, be.Calls[1].IndexCount)
	}
}

func TestBatchRingBufferSplit(t *testing.T) {
	d, be, win := newTestDevice(t)
	img := newTestImage(t, d, 2, 2)

	drawFrame(t, d, win, func() {
		for i := 0; i < maxBatchSize+2; i++ {
			if err := d.DrawSprite(Sprite{Image: img, DstRect: Rectangle{W: 1, H: 1}, Color: White}); err != nil {
				t.Fatal(err)
			}
		}
	})

	if len(be.Calls) != 2 {
		t.Fatalf("%d draw calls, want 2", len(be.Calls))
	}
	first, second := be.Calls[0], be.Calls[1]
	if first.IndexCount != maxBatchSize*indicesPerSprite || first.FirstIndex != 0 {
		t.Errorf("first call = (%d, %d), want (%d, 0)", first.IndexCount, first.FirstIndex, maxBatchSize*indicesPerSprite)
	}
	// Fewer than minBatchSize slots remain, so the ring wraps to the start.
	if second.IndexCount != 2*indicesPerSprite || second.FirstIndex != 0 {
		t.Errorf("second call = (%d, %d), want (%d, 0)", second.IndexCount, second.FirstIndex, 2*indicesPerSprite)
	}

	stats := d.Stats()
	if stats.DrawCalls != 2 || stats.SpritesDrawn != maxBatchSize+2 {
		t.Errorf("stats = %+v, want 2 draw calls, %d sprites", stats, maxBatchSize+2)
	}
}

// vertexAt decodes vertex i of a draw call's vertex snapshot into its ten
// floats: x, y, z, w, r, g, b, a, u, v.
func vertexAt(t *testing.T, data []byte, i int) []float32 {
	t.Helper()
	if len(data) < (i+1)*vertexStride {
		t.Fatalf("vertex data has %d bytes, need %d", len(data), (i+1)*vertexStride)
	}
	return bytesToF32(data[i*vertexStride : (i+1)*vertexStride])
}

func TestSpriteVertexLayout(t *testing.T) {
	d, be, win := newTestDevice(t)
	img := newTestImage(t, d, 2, 2)

	tint := Color{R: 1, G: 0.5, B: 0.25, A: 1}
	drawFrame(t, d, win, func() {
		err := d.DrawSprite(Sprite{
			Image:   img,
			DstRect: Rectangle{X: 10, Y: 20, W: 30, H: 40},
			Color:   tint,
		})
		if err != nil {
			t.Fatal(err)
		}
	})

	if len(be.Calls) != 1 {
		t.Fatalf("%d draw calls, want 1", len(be.Calls))
	}
	call := be.Calls[0]

	wantPos := [4][2]float32{{10, 20}, {40, 20}, {10, 60}, {40, 60}}
	wantUV := [4][2]float32{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	for i := 0; i < 4; i++ {
		v := vertexAt(t, call.VertexData, i)
		if v[0] != wantPos[i][0] || v[1] != wantPos[i][1] {
			t.Errorf("vertex %d position = (%g, %g), want %v", i, v[0], v[1], wantPos[i])
		}
		if v[2] != 0 || v[3] != 1 {
			t.Errorf("vertex %d zw = (%g, %g), want (0, 1)", i, v[2], v[3])
		}
		if v[4] != tint.R || v[5] != tint.G || v[6] != tint.B || v[7] != tint.A {
			t.Errorf("vertex %d color = %v, want %v", i, v[4:8], tint)
		}
		if v[8] != wantUV[i][0] || v[9] != wantUV[i][1] {
			t.Errorf("vertex %d uv = (%g, %g), want %v", i, v[8], v[9], wantUV[i])
		}
	}

	// The transformation uniform carries the combined world/viewport
	// matrix; with an identity world transform that is the 640x480
	// viewport projection.
	m := bytesToF32(call.Uniforms[transformationUniform])
	if len(m) != 16 {
		t.Fatalf("transformation uniform has %d floats, want 16", len(m))
	}
	if m[0] != 2.0/640 || m[5] != -2.0/480 || m[12] != -1 || m[13] != 1 {
		t.Errorf("projection elements = %g, %g, %g, %g; want 2/640, -2/480, -1, 1",
			m[0], m[5], m[12], m[13])
	}
}

func TestSpriteFlipUV(t *testing.T) {
	d, be, win := newTestDevice(t)
	img := newTestImage(t, d, 2, 2)

	drawFrame(t, d, win, func() {
		err := d.DrawSprite(Sprite{
			Image:   img,
			DstRect: Rectangle{W: 1, H: 1},
			Color:   White,
			Flip:    FlipHorizontally,
		})
		if err != nil {
			t.Fatal(err)
		}
	})

	call := be.Calls[0]
	wantU := [4]float32{1, 0, 1, 0}
	wantV := [4]float32{0, 0, 1, 1}
	for i := 0; i < 4; i++ {
		v := vertexAt(t, call.VertexData, i)
		if v[8] != wantU[i] || v[9] != wantV[i] {
			t.Errorf("vertex %d uv = (%g, %g), want (%g, %g)", i, v[8], v[9], wantU[i], wantV[i])
		}
	}
}

func TestCanvasSpriteAutoFlip(t *testing.T) {
	d, be, win := newTestDevice(t)
	canvas, err := NewCanvas(d, win, 4, 4, FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}

	// Canvas contents are stored bottom-up, so drawing a canvas flips the
	// V coordinate.
	drawFrame(t, d, win, func() {
		err := d.DrawSprite(Sprite{Image: canvas, DstRect: Rectangle{W: 4, H: 4}, Color: White})
		if err != nil {
			t.Fatal(err)
		}
	})

	top := vertexAt(t, be.Calls[0].VertexData, 0)
	bottom := vertexAt(t, be.Calls[0].VertexData, 2)
	if top[9] != 1 || bottom[9] != 0 {
		t.Errorf("canvas sprite v = %g (top), %g (bottom); want 1, 0", top[9], bottom[9])
	}
}

func TestSpriteRotationAroundOrigin(t *testing.T) {
	d, be, win := newTestDevice(t)
	img := newTestImage(t, d, 2, 2)

	// Quarter turn around the source center: origin (1,1) texels is half
	// of the 2x2 source, so the pivot sits at the center of the
	// destination rectangle.
	drawFrame(t, d, win, func() {
		err := d.DrawSprite(Sprite{
			Image:    img,
			DstRect:  Rectangle{X: 100, Y: 100, W: 10, H: 10},
			Color:    White,
			Origin:   Vector2{X: 1, Y: 1},
			Rotation: math32.Pi / 2,
		})
		if err != nil {
			t.Fatal(err)
		}
	})

	// Corner 0 starts at (-5, -5) relative to the pivot; a clockwise
	// quarter turn maps it to (5, -5), so (105, 95) absolute.
	v := vertexAt(t, be.Calls[0].VertexData, 0)
	const eps = 1e-4
	if dx, dy := v[0]-105, v[1]-95; dx > eps || dx < -eps || dy > eps || dy < -eps {
		t.Errorf("rotated corner = (%g, %g), want (105, 95)", v[0], v[1])
	}
}

func TestFillRectangle(t *testing.T) {
	d, be, win := newTestDevice(t)

	cyan := Color{G: 1, B: 1, A: 1}
	drawFrame(t, d, win, func() {
		if err := d.FillRectangle(Rectangle{X: 1, Y: 2, W: 3, H: 4}, cyan, 0, Vector2{}); err != nil {
			t.Fatal(err)
		}
	})

	if len(be.Calls) != 1 {
		t.Fatalf("%d draw calls, want 1", len(be.Calls))
	}
	call := be.Calls[0]
	if call.Texture != d.batch.white.texture {
		t.Error("fill should draw the shared white texture")
	}
	v := vertexAt(t, call.VertexData, 0)
	if v[4] != 0 || v[5] != 1 || v[6] != 1 || v[7] != 1 {
		t.Errorf("fill color = %v, want cyan", v[4:8])
	}
}

func TestDrawStringMonochromatic(t *testing.T) {
	d, be, win := newTestDevice(t)
	font, err := BuiltinFont()
	if err != nil {
		t.Fatal(err)
	}

	drawFrame(t, d, win, func() {
		if err := d.DrawString("Hi", font, 24, Vector2{X: 10, Y: 10}, White, nil); err != nil {
			t.Fatal(err)
		}
	})

	if len(be.Calls) == 0 {
		t.Fatal("no draw calls recorded")
	}
	var mono int
	for _, call := range be.Calls {
		if call.Program.Label() == "sprite-monochromatic" {
			mono++
		}
	}
	if mono == 0 {
		t.Error("glyphs should render with the monochromatic program")
	}

	// Glyph pages sample point-clamp regardless of the device sampler.
	var pointClamp bool
	for _, a := range be.SamplerApplies {
		if a.Sampler == SamplerPointClamp {
			pointClamp = true
		}
	}
	if !pointClamp {
		t.Error("glyph page should use the point-clamp sampler")
	}
}

func TestSamplerAppliedOncePerImage(t *testing.T) {
	d, be, win := newTestDevice(t)
	img := newTestImage(t, d, 2, 2)

	draw := func() {
		drawFrame(t, d, win, func() {
			if err := d.DrawSprite(Sprite{Image: img, DstRect: Rectangle{W: 1, H: 1}, Color: White}); err != nil {
				t.Fatal(err)
			}
		})
	}
	draw()
	draw()

	// The image tracks its last-applied sampler, so the second frame
	// skips the redundant change.
	var applies int
	for _, a := range be.SamplerApplies {
		if a.Texture == img.texture {
			applies++
		}
	}
	if applies != 1 {
		t.Errorf("sampler applied %d times, want 1", applies)
	}
	if s, ok := img.texture.(interface{ Sampler() (Sampler, bool) }); ok {
		if got, has := s.Sampler(); !has || got != SamplerLinearRepeat {
			t.Errorf("texture sampler = %v, want linear-repeat device default", got)
		}
	}

	// Switching the device sampler re-applies it on the next draw.
	if err := d.SetSampler(SamplerPointRepeat); err != nil {
		t.Fatal(err)
	}
	draw()
	applies = 0
	for _, a := range be.SamplerApplies {
		if a.Texture == img.texture {
			applies++
		}
	}
	if applies != 2 {
		t.Errorf("sampler applied %d times after switch, want 2", applies)
	}
}

func TestSamplerCompareBorderFields(t *testing.T) {
	d, be, win := newTestDevice(t)
	img := newTestImage(t, d, 2, 2)

	border := Sampler{
		Filter:      gpu.FilterLinear,
		AddressU:    gpu.AddressClampToBorder,
		AddressV:    gpu.AddressClampToBorder,
		CompareOp:   gpu.CompareLessEqual,
		BorderColor: gpu.BorderColorOpaqueWhite,
	}
	if err := d.SetSampler(border); err != nil {
		t.Fatal(err)
	}
	drawFrame(t, d, win, func() {
		if err := d.DrawSprite(Sprite{Image: img, DstRect: Rectangle{W: 1, H: 1}, Color: White}); err != nil {
			t.Fatal(err)
		}
	})

	last := be.SamplerApplies[len(be.SamplerApplies)-1]
	if last.Sampler != border {
		t.Errorf("applied sampler = %+v, want %+v", last.Sampler, border)
	}

	// A sampler differing only in comparison state is a distinct value
	// and re-applies on the next draw.
	compare := border
	compare.CompareOp = gpu.CompareGreater
	if err := d.SetSampler(compare); err != nil {
		t.Fatal(err)
	}
	drawFrame(t, d, win, func() {
		if err := d.DrawSprite(Sprite{Image: img, DstRect: Rectangle{W: 1, H: 1}, Color: White}); err != nil {
			t.Fatal(err)
		}
	})

	var applies int
	for _, a := range be.SamplerApplies {
		if a.Texture == img.texture {
			applies++
		}
	}
	if applies != 2 {
		t.Errorf("sampler applied %d times, want 2 across the compare-op change", applies)
	}
}

func TestShaderImageParameterSampler(t *testing.T) {
	d, be, win := newTestDevice(t)
	mask := newTestImage(t, d, 2, 2)
	sprite := newTestImage(t, d, 2, 2)

	s := newTestShader(t, d, []ParameterDecl{{Name: "Mask", Type: ParameterImage}})
	if err := s.SetImage("Mask", mask); err != nil {
		t.Fatal(err)
	}
	if err := d.SetSpriteShader(s); err != nil {
		t.Fatal(err)
	}

	drawFrame(t, d, win, func() {
		if err := d.DrawSprite(Sprite{Image: sprite, DstRect: Rectangle{W: 1, H: 1}, Color: White}); err != nil {
			t.Fatal(err)
		}
	})

	// The image parameter keeps its own sampler state (linear-clamp at
	// creation) instead of a hard-coded batch default.
	var got Sampler
	var found bool
	for _, a := range be.SamplerApplies {
		if a.Texture == mask.texture {
			got, found = a.Sampler, true
		}
	}
	if !found {
		t.Fatal("image parameter sampler never applied")
	}
	if got != SamplerLinearClamp {
		t.Errorf("image parameter sampler = %+v, want linear-clamp", got)
	}
}

func TestDestroyedImageIgnored(t *testing.T) {
	d, be, win := newTestDevice(t)
	img := newTestImage(t, d, 2, 2)
	img.Destroy()

	drawFrame(t, d, win, func() {
		if err := d.DrawSprite(Sprite{Image: img, DstRect: Rectangle{W: 1, H: 1}, Color: White}); err != nil {
			t.Fatal(err)
		}
		if err := d.DrawSprite(Sprite{DstRect: Rectangle{W: 1, H: 1}, Color: White}); err != nil {
			t.Fatal(err)
		}
	})
	if len(be.Calls) != 0 {
		t.Errorf("%d draw calls, want 0 for destroyed and imageless sprites", len(be.Calls))
	}
}

func TestStateChangeFlushes(t *testing.T) {
	d, be, win := newTestDevice(t)
	img := newTestImage(t, d, 2, 2)

	drawFrame(t, d, win, func() {
		if err := d.DrawSprite(Sprite{Image: img, DstRect: Rectangle{W: 1, H: 1}, Color: White}); err != nil {
			t.Fatal(err)
		}
		if err := d.SetBlendState(BlendAdditive); err != nil {
			t.Fatal(err)
		}
		if err := d.DrawSprite(Sprite{Image: img, DstRect: Rectangle{W: 1, H: 1}, Color: White}); err != nil {
			t.Fatal(err)
		}
	})

	if len(be.Calls) != 2 {
		t.Fatalf("%d draw calls, want 2 around the blend change", len(be.Calls))
	}
	if be.Calls[0].Blend != BlendNonPremultiplied || be.Calls[1].Blend != BlendAdditive {
		t.Errorf("blend states = %v, %v", be.Calls[0].Blend, be.Calls[1].Blend)
	}
}
