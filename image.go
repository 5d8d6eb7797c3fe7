package ember

import (
	"github.com/gogpu/ember/gpu"
)

// Image is a 2D texture. Regular images are immutable after creation;
// canvas images are additionally drawable through [Device.SetCanvas].
type Image struct {
	device *Device
	label  string

	width    int
	height   int
	format   gpu.PixelFormat
	mipCount int

	texture gpu.Texture

	canvas bool
	window Window

	// clearColor, when set on a canvas, clears the canvas the first time
	// it becomes the render target each frame.
	clearColor *Color

	// lastSampler tracks the sampler most recently applied to the
	// texture, so redundant sampler changes are skipped at draw time.
	lastSampler    Sampler
	hasLastSampler bool

	destroyed bool
}

// NewImage creates an image from pixel data. The pixel slice must hold
// exactly width*height pixels in the given format, or be nil for an
// uninitialized image.
func NewImage(device *Device, width, height int, format PixelFormat, pixels []byte) (*Image, error) {
	return newImageWithLevels(device, width, height, format, [][]byte{pixels}, "image")
}

// NewImageWithMipmaps creates an image and generates a full mip chain on
// the CPU by successive halving. Only FormatRGBA8 and FormatSRGBA8 pixel
// data can be filtered this way.
func NewImageWithMipmaps(device *Device, width, height int, format PixelFormat, pixels []byte) (*Image, error) {
	if format != FormatRGBA8 && format != FormatSRGBA8 {
		return nil, errInvalidArgf("mipmap generation requires an 8-bit RGBA format, got %v", format)
	}
	if pixels == nil {
		return nil, errInvalidArgf("mipmap generation requires pixel data")
	}
	levels, err := buildMipChain(width, height, pixels)
	if err != nil {
		return nil, err
	}
	return newImageWithLevels(device, width, height, format, levels, "image")
}

// NewImageWithLevels creates an image from an explicit mip chain. Level 0
// has the given size; each following level halves both dimensions (minimum
// 1 pixel).
func NewImageWithLevels(device *Device, width, height int, format PixelFormat, levels [][]byte) (*Image, error) {
	return newImageWithLevels(device, width, height, format, levels, "image")
}

func newImageWithLevels(device *Device, width, height int, format PixelFormat, levels [][]byte, label string) (*Image, error) {
	if device == nil {
		return nil, errInvalidArgf("image: device is nil")
	}
	if width <= 0 || height <= 0 {
		return nil, errInvalidArgf("image size %dx%d is invalid", width, height)
	}
	if format.BitsPerPixel() == 0 {
		return nil, errInvalidArgf("image format %v is invalid", format)
	}
	if len(levels) == 0 {
		levels = [][]byte{nil}
	}
	w, h := width, height
	for i, lv := range levels {
		if lv != nil && len(lv) != format.SlicePitch(w, h) {
			return nil, errInvalidArgf("image level %d: got %d bytes, want %d for %dx%d %v",
				i, len(lv), format.SlicePitch(w, h), w, h, format)
		}
		w = max(1, w/2)
		h = max(1, h/2)
	}

	tex, err := device.backend.CreateTexture(gpu.TextureDescriptor{
		Label:         label,
		Width:         width,
		Height:        height,
		Format:        format,
		MipLevelCount: len(levels),
	}, levels)
	if err != nil {
		return nil, WrapError(KindRuntime, "creating texture", err)
	}

	img := &Image{
		device:   device,
		label:    label,
		width:    width,
		height:   height,
		format:   format,
		mipCount: len(levels),
		texture:  tex,

		// Textures start out with linear-clamp sampling.
		lastSampler:    SamplerLinearClamp,
		hasLastSampler: true,
	}
	device.registerResource(img)
	return img, nil
}

// NewCanvas creates a drawable image bound to the given window. Drawing
// into the canvas is only valid while its window is the current frame's
// window.
func NewCanvas(device *Device, window Window, width, height int, format PixelFormat) (*Image, error) {
	if device == nil {
		return nil, errInvalidArgf("canvas: device is nil")
	}
	if window == nil {
		return nil, errInvalidArgf("canvas: window is nil")
	}
	if width <= 0 || height <= 0 {
		return nil, errInvalidArgf("canvas size %dx%d is invalid", width, height)
	}
	if format.BitsPerPixel() == 0 {
		return nil, errInvalidArgf("canvas format %v is invalid", format)
	}

	tex, err := device.backend.CreateRenderTarget(gpu.TextureDescriptor{
		Label:        "canvas",
		Width:        width,
		Height:       height,
		Format:       format,
		RenderTarget: true,
	})
	if err != nil {
		return nil, WrapError(KindRuntime, "creating render target", err)
	}

	img := &Image{
		device:  device,
		label:   "canvas",
		width:   width,
		height:  height,
		format:  format,
		canvas:  true,
		window:  window,
		texture: tex,

		lastSampler:    SamplerLinearClamp,
		hasLastSampler: true,
	}
	img.mipCount = 1
	device.registerResource(img)
	return img, nil
}

// Width returns the width of mip level 0 in pixels.
func (img *Image) Width() int { return img.width }

// Height returns the height of mip level 0 in pixels.
func (img *Image) Height() int { return img.height }

// Size returns the image size as a vector.
func (img *Image) Size() Vector2 {
	return Vector2{X: float32(img.width), Y: float32(img.height)}
}

// Format returns the pixel format.
func (img *Image) Format() PixelFormat { return img.format }

// MipmapCount returns the number of mip levels.
func (img *Image) MipmapCount() int { return img.mipCount }

// IsCanvas reports whether the image is drawable.
func (img *Image) IsCanvas() bool { return img.canvas }

// Window returns the window a canvas is bound to, or nil for regular
// images.
func (img *Image) Window() Window { return img.window }

// SetClearColor sets the color the canvas is cleared to the first time it
// becomes the render target in a frame. Nil disables clearing. Only
// meaningful on canvases.
func (img *Image) SetClearColor(c *Color) {
	if c == nil {
		img.clearColor = nil
		return
	}
	cc := *c
	img.clearColor = &cc
}

// ClearColor returns the canvas clear color, or nil when clearing is
// disabled.
func (img *Image) ClearColor() *Color { return img.clearColor }

// Destroy releases the image's GPU resources.
func (img *Image) Destroy() {
	if img == nil || img.destroyed {
		return
	}
	img.destroyed = true
	Logger().Debug("image destroyed", "label", img.label, "size", img.Size())
	img.device.notifyImageDestroyed(img)
	if img.texture != nil {
		img.texture.Destroy()
		img.texture = nil
	}
}

// buildMipChain box-filters RGBA8 pixels into a full mip chain, level 0
// included.
func buildMipChain(width, height int, pixels []byte) ([][]byte, error) {
	if len(pixels) != width*height*4 {
		return nil, errInvalidArgf("mip chain: got %d bytes, want %d for %dx%d RGBA",
			len(pixels), width*height*4, width, height)
	}
	levels := [][]byte{pixels}
	w, h := width, height
	src := pixels
	for w > 1 || h > 1 {
		nw, nh := max(1, w/2), max(1, h/2)
		dst := make([]byte, nw*nh*4)
		for y := 0; y < nh; y++ {
			for x := 0; x < nw; x++ {
				// Sample the up-to-four source pixels under this texel.
				x0, y0 := x*2, y*2
				x1, y1 := min(x0+1, w-1), min(y0+1, h-1)
				for c := 0; c < 4; c++ {
					sum := int(src[(y0*w+x0)*4+c]) + int(src[(y0*w+x1)*4+c]) +
						int(src[(y1*w+x0)*4+c]) + int(src[(y1*w+x1)*4+c])
					dst[(y*nw+x)*4+c] = uint8(sum / 4)
				}
			}
		}
		levels = append(levels, dst)
		src = dst
		w, h = nw, nh
	}
	return levels, nil
}
