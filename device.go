package ember

import (
	"github.com/gogpu/ember/geom"
	"github.com/gogpu/ember/gpu"
)

// DeviceOptions configures device creation. The zero value is ready to
// use.
type DeviceOptions struct {
	// SwapInterval is the v-sync interval. Zero means 1 (v-sync on);
	// negative values disable v-sync.
	SwapInterval int
}

// Device is the central rendering object. It owns the sprite batch,
// caches pipeline state, and tracks the per-frame canvas and window.
//
// A Device is not safe for concurrent use.
type Device struct {
	backend gpu.Backend
	batch   *spriteBatch

	stats FrameStats

	window  Window
	inFrame bool

	canvas            *Image
	windowClearColor  *Color
	clearedCanvases   map[*Image]bool
	windowCleared     bool
	viewport          Rectangle
	viewportTransform Matrix

	transform Matrix
	combined  Matrix

	blend        BlendState
	sampler      Sampler
	spriteShader *Shader

	swapInterval int
	perWindow    map[Window]*windowState

	pageTextures map[pageTexKey]*pageTexture

	resources map[any]struct{}

	destroyed bool
}

type windowState struct {
	swapInterval    int
	hasSwapInterval bool
}

type pageTexKey struct {
	font  *Font
	index int
}

type pageTexture struct {
	tex     gpu.Texture
	version uint64
}

// NewDevice creates a rendering device on the given backend.
func NewDevice(backend gpu.Backend, opts DeviceOptions) (*Device, error) {
	if backend == nil {
		return nil, errInvalidArgf("device: backend is nil")
	}

	swapInterval := opts.SwapInterval
	switch {
	case swapInterval == 0:
		swapInterval = 1
	case swapInterval < 0:
		swapInterval = 0
	}

	d := &Device{
		backend:         backend,
		transform:       geom.Identity(),
		combined:        geom.Identity(),
		blend:           BlendNonPremultiplied,
		sampler:         SamplerLinearRepeat,
		swapInterval:    swapInterval,
		perWindow:       make(map[Window]*windowState),
		pageTextures:    make(map[pageTexKey]*pageTexture),
		clearedCanvases: make(map[*Image]bool),
		resources:       make(map[any]struct{}),
	}

	batch, err := newSpriteBatch(d)
	if err != nil {
		return nil, err
	}
	d.batch = batch

	Logger().Info("device created", "backend", backend.Name(), "swapInterval", swapInterval)
	return d, nil
}

// Destroy releases the device's GPU resources. Live images and shaders
// created on the device stay valid to destroy individually but can no
// longer be drawn.
func (d *Device) Destroy() {
	if d == nil || d.destroyed {
		return
	}
	d.destroyed = true
	if n := len(d.resources); n > 0 {
		Logger().Warn("device destroyed with live resources", "count", n)
	}
	for _, pt := range d.pageTextures {
		pt.tex.Destroy()
	}
	d.pageTextures = nil
	d.batch.destroy()
}

// Backend returns the backend the device renders through.
func (d *Device) Backend() gpu.Backend { return d.backend }

// Stats returns the statistics accumulated since the last BeginFrame.
func (d *Device) Stats() FrameStats { return d.stats }

func (d *Device) registerResource(r any) { d.resources[r] = struct{}{} }

func (d *Device) notifyImageDestroyed(img *Image) {
	delete(d.resources, img)
	if d.canvas == img {
		d.canvas = nil
	}
}

func (d *Device) notifyShaderDestroyed(s *Shader) {
	delete(d.resources, s)
	if d.spriteShader == s {
		d.spriteShader = nil
	}
}

func (d *Device) windowState(w Window) *windowState {
	ws := d.perWindow[w]
	if ws == nil {
		ws = &windowState{}
		d.perWindow[w] = ws
	}
	return ws
}

// BeginFrame opens a frame on the given window. Frame statistics reset,
// the render target returns to the window's backbuffer, and the canvas
// clear policy re-arms.
func (d *Device) BeginFrame(window Window) error {
	if window == nil {
		return errInvalidArgf("BeginFrame: window is nil")
	}
	if d.inFrame {
		return errLogicf("BeginFrame called before EndFrame")
	}

	d.window = window
	d.stats = FrameStats{}
	d.windowCleared = false
	clear(d.clearedCanvases)

	ws := d.windowState(window)
	if !ws.hasSwapInterval || ws.swapInterval != d.swapInterval {
		d.backend.SetSwapInterval(d.swapInterval)
		ws.swapInterval = d.swapInterval
		ws.hasSwapInterval = true
	}

	if err := d.backend.BeginFrame(window); err != nil {
		return WrapError(KindRuntime, "beginning frame", err)
	}

	d.inFrame = true
	if d.spriteShader != nil {
		d.spriteShader.inUse = true
	}
	return d.setCanvas(nil, true)
}

// EndFrame flushes pending draws and presents the window.
func (d *Device) EndFrame(window Window) error {
	if !d.inFrame {
		return errLogicf("EndFrame called without BeginFrame")
	}
	if window != d.window {
		return errInvalidArgf("EndFrame: window differs from the frame's window")
	}

	if err := d.flushDrawCalls(); err != nil {
		return err
	}
	if err := d.backend.Present(window); err != nil {
		return WrapError(KindRuntime, "presenting frame", err)
	}

	d.inFrame = false
	d.window = nil
	d.canvas = nil
	if d.spriteShader != nil {
		d.spriteShader.inUse = false
	}
	return nil
}

// SetWindowClearColor sets the color the window backbuffer is cleared to
// at the start of each frame. Nil disables clearing.
func (d *Device) SetWindowClearColor(c *Color) {
	if c == nil {
		d.windowClearColor = nil
		return
	}
	cc := *c
	d.windowClearColor = &cc
}

// SetCanvas redirects drawing into a canvas image, or back to the window
// backbuffer when canvas is nil. The canvas must belong to the current
// frame's window.
func (d *Device) SetCanvas(canvas *Image) error {
	if !d.inFrame {
		return errLogicf("SetCanvas called outside a frame")
	}
	if canvas != nil && !canvas.canvas {
		return errInvalidArgf("SetCanvas: image is not a canvas")
	}
	return d.setCanvas(canvas, false)
}

// CurrentCanvas returns the active canvas, or nil when drawing into the
// window backbuffer.
func (d *Device) CurrentCanvas() *Image { return d.canvas }

// ViewportSize returns the pixel size of the current render target.
func (d *Device) ViewportSize() Vector2 { return d.viewport.Size() }

func (d *Device) setCanvas(canvas *Image, force bool) error {
	if !force && canvas == d.canvas {
		return nil
	}
	if canvas != nil && canvas.window != d.window {
		return errInvalidArgf("SetCanvas: canvas belongs to a different window")
	}
	if err := d.flushDrawCalls(); err != nil {
		return err
	}

	d.canvas = canvas

	var width, height int
	var clearColor *Color
	var alreadyCleared bool

	if canvas != nil {
		d.backend.BindRenderTarget(canvas.texture)
		width, height = canvas.width, canvas.height
		clearColor = canvas.clearColor
		alreadyCleared = d.clearedCanvases[canvas]
	} else {
		d.backend.BindRenderTarget(nil)
		width, height = d.window.SizePixels()
		clearColor = d.windowClearColor
		alreadyCleared = d.windowCleared
	}

	d.backend.SetViewport(width, height)
	d.viewport = Rectangle{W: float32(width), H: float32(height)}
	d.viewportTransform = geom.Viewport(float32(width), float32(height))
	d.recomputeCombined()

	// Clear policy: a target with a clear color set is cleared the first
	// time it becomes the render target in a frame.
	if clearColor != nil && !alreadyCleared {
		d.backend.Clear([4]float32{clearColor.R, clearColor.G, clearColor.B, clearColor.A})
		if canvas != nil {
			d.clearedCanvases[canvas] = true
		} else {
			d.windowCleared = true
		}
	}
	return nil
}

func (d *Device) recomputeCombined() {
	d.combined = d.transform.Mul(d.viewportTransform)
}

// SetTransformation sets the world transform applied to following draws.
func (d *Device) SetTransformation(m Matrix) error {
	if m == d.transform {
		return nil
	}
	if err := d.flushDrawCalls(); err != nil {
		return err
	}
	d.transform = m
	d.recomputeCombined()
	return nil
}

// Transformation returns the current world transform.
func (d *Device) Transformation() Matrix { return d.transform }

// SetBlendState sets the blend state applied to following draws.
func (d *Device) SetBlendState(bs BlendState) error {
	if bs == d.blend {
		return nil
	}
	if err := d.flushDrawCalls(); err != nil {
		return err
	}
	d.blend = bs
	return nil
}

// BlendStateValue returns the current blend state.
func (d *Device) BlendStateValue() BlendState { return d.blend }

// SetSampler sets the sampler applied to following sprite draws.
func (d *Device) SetSampler(s Sampler) error {
	if s == d.sampler {
		return nil
	}
	if err := d.flushDrawCalls(); err != nil {
		return err
	}
	d.sampler = s
	return nil
}

// SamplerValue returns the current sprite sampler.
func (d *Device) SamplerValue() Sampler { return d.sampler }

// SetSpriteShader sets the custom sprite shader applied to following
// sprite draws, or restores the default pipeline when shader is nil. The
// active shader's parameters are locked until it is unset or the frame
// ends.
func (d *Device) SetSpriteShader(shader *Shader) error {
	if shader == d.spriteShader {
		return nil
	}
	if err := d.flushDrawCalls(); err != nil {
		return err
	}
	if d.spriteShader != nil {
		d.spriteShader.inUse = false
	}
	d.spriteShader = shader
	if shader != nil {
		shader.inUse = true
	}
	return nil
}

// SpriteShader returns the active custom sprite shader, or nil.
func (d *Device) SpriteShader() *Shader { return d.spriteShader }

// SetScissorRects replaces the scissor rectangles clipping following
// draws. No arguments disables scissoring.
func (d *Device) SetScissorRects(rects ...ScissorRect) error {
	if err := d.flushDrawCalls(); err != nil {
		return err
	}
	if maxRects := d.backend.MaxScissorRects(); len(rects) > maxRects {
		return errInvalidArgf("SetScissorRects: %d rectangles exceed the backend limit of %d", len(rects), maxRects)
	}
	if err := d.backend.SetScissorRects(rects); err != nil {
		return WrapError(KindRuntime, "setting scissor rects", err)
	}
	return nil
}

// ensureBatchActive opens the sprite batch pass with the current combined
// transform and pass state.
func (d *Device) ensureBatchActive() error {
	if !d.inFrame {
		return errLogicf("drawing outside a frame")
	}
	if !d.batch.active {
		d.batch.begin(d.combined, d.blend, d.spriteShader, d.sampler)
	}
	return nil
}

// flushDrawCalls submits any queued sprites and closes the batch pass.
func (d *Device) flushDrawCalls() error {
	if d.batch == nil || !d.batch.active {
		return nil
	}
	return d.batch.end()
}

// DrawSprite queues one sprite. Sprites without an image are ignored.
func (d *Device) DrawSprite(sprite Sprite) error {
	if err := d.ensureBatchActive(); err != nil {
		return err
	}
	d.batch.queueSprite(sprite)
	return nil
}

// FillRectangle queues a solid rectangle.
func (d *Device) FillRectangle(rect Rectangle, color Color, rotation float32, origin Vector2) error {
	if err := d.ensureBatchActive(); err != nil {
		return err
	}
	d.batch.queueFillRectangle(rect, color, rotation, origin)
	return nil
}

// DrawString shapes and queues a string. decoration may be nil.
func (d *Device) DrawString(s string, font *Font, size float64, position Vector2, color Color, decoration TextDecoration) error {
	if font == nil {
		return errInvalidArgf("DrawString: font is nil")
	}
	if err := d.ensureBatchActive(); err != nil {
		return err
	}

	var glyphs []shapedGlyph
	var decorations []decorationQuad
	err := shapeText(s, font, size, decoration, func(g shapedGlyph) {
		glyphs = append(glyphs, g)
	}, func(q decorationQuad) {
		decorations = append(decorations, q)
	})
	if err != nil {
		return err
	}
	return d.queueShapedText(font, glyphs, decorations, position, color)
}

// DrawText queues a pre-shaped text object.
func (d *Device) DrawText(t *Text, position Vector2, color Color) error {
	if t == nil {
		return errInvalidArgf("DrawText: text is nil")
	}
	if err := d.ensureBatchActive(); err != nil {
		return err
	}
	return d.queueShapedText(t.font, t.glyphs, t.decorations, position, color)
}

func (d *Device) queueShapedText(font *Font, glyphs []shapedGlyph, decorations []decorationQuad, position Vector2, color Color) error {
	for _, g := range glyphs {
		tex, texW, texH, err := d.glyphPageTexture(font, g.pageIndex)
		if err != nil {
			return err
		}
		d.batch.drawSprite(batchSprite{
			texture: tex,
			kind:    shaderKindMonochromatic,
			texW:    texW,
			texH:    texH,
			dst:     g.dst.Offset(position.X, position.Y),
			src:     g.src,
			color:   color,
		})
	}
	for _, q := range decorations {
		c := color
		if q.color != nil {
			c = *q.color
		}
		d.batch.queueFillRectangle(q.rect.Offset(position.X, position.Y), c, 0, Vector2{})
	}
	return nil
}

// glyphPageTexture returns the GPU texture for a glyph atlas page,
// creating it on first use and re-uploading it when the page version
// changed since the last upload.
func (d *Device) glyphPageTexture(font *Font, index int) (gpu.Texture, float32, float32, error) {
	page := font.PageAt(index)
	key := pageTexKey{font: font, index: index}

	pt := d.pageTextures[key]
	switch {
	case pt == nil:
		tex, err := d.backend.CreateTexture(gpu.TextureDescriptor{
			Label:  "glyph-page",
			Width:  page.Width,
			Height: page.Height,
			Format: gpu.FormatR8,
		}, [][]byte{page.Pixels})
		if err != nil {
			return nil, 0, 0, WrapError(KindRuntime, "creating glyph page texture", err)
		}
		pt = &pageTexture{tex: tex, version: page.Version}
		d.pageTextures[key] = pt
	case pt.version != page.Version:
		if err := d.backend.UpdateTexture(pt.tex, 0, 0, page.Width, page.Height, page.Pixels); err != nil {
			return nil, 0, 0, WrapError(KindRuntime, "updating glyph page texture", err)
		}
		pt.version = page.Version
	}
	return pt.tex, float32(page.Width), float32(page.Height), nil
}

// ReadCanvasData reads back a region of a canvas as top-down pixel rows.
// The canvas must not be the current render target.
func (d *Device) ReadCanvasData(canvas *Image, x, y, width, height int) ([]byte, error) {
	if canvas == nil {
		return nil, errInvalidArgf("ReadCanvasData: canvas is nil")
	}
	if !canvas.canvas {
		return nil, errInvalidArgf("ReadCanvasData: image is not a canvas")
	}
	if canvas == d.canvas {
		return nil, errLogicf("ReadCanvasData: canvas is currently being drawn to")
	}
	if x < 0 || y < 0 || width <= 0 || height <= 0 ||
		x+width > canvas.width || y+height > canvas.height {
		return nil, errInvalidArgf("ReadCanvasData: region (%d,%d %dx%d) exceeds canvas size %dx%d",
			x, y, width, height, canvas.width, canvas.height)
	}

	if err := d.flushDrawCalls(); err != nil {
		return nil, err
	}

	raw, err := d.backend.ReadPixels(canvas.texture, x, y, width, height)
	if err != nil {
		return nil, WrapError(KindRuntime, "reading canvas", err)
	}

	// The backend returns bottom-up rows; flip into top-down order.
	rowPitch := canvas.format.RowPitch(width)
	out := make([]byte, len(raw))
	for row := 0; row < height; row++ {
		src := raw[(height-1-row)*rowPitch : (height-row)*rowPitch]
		copy(out[row*rowPitch:], src)
	}
	return out, nil
}
