package ember

import (
	"bytes"
	"testing"

	"github.com/gogpu/ember/backend/headless"
)

// newTestDevice creates a device on a headless backend with a 640x480
// window surface.
func newTestDevice(t *testing.T) (*Device, *headless.Backend, *headless.Surface) {
	t.Helper()
	be := headless.New()
	d, err := NewDevice(be, DeviceOptions{})
	if err != nil {
		t.Fatal(err)
	}
	win := headless.NewSurface(640, 480)
	return d, be, win
}

func TestDeviceFrameLifecycle(t *testing.T) {
	d, _, win := newTestDevice(t)

	if err := d.EndFrame(win); KindOf(err) != KindLogic {
		t.Errorf("EndFrame before BeginFrame: kind %v, want Logic", KindOf(err))
	}
	if err := d.DrawSprite(Sprite{}); KindOf(err) != KindLogic {
		t.Errorf("DrawSprite outside frame: kind %v, want Logic", KindOf(err))
	}
	if err := d.SetCanvas(nil); KindOf(err) != KindLogic {
		t.Errorf("SetCanvas outside frame: kind %v, want Logic", KindOf(err))
	}

	if err := d.BeginFrame(win); err != nil {
		t.Fatal(err)
	}
	if err := d.BeginFrame(win); KindOf(err) != KindLogic {
		t.Errorf("nested BeginFrame: kind %v, want Logic", KindOf(err))
	}

	other := headless.NewSurface(100, 100)
	if err := d.EndFrame(other); KindOf(err) != KindInvalidArgument {
		t.Errorf("EndFrame on wrong window: kind %v, want InvalidArgument", KindOf(err))
	}
	if err := d.EndFrame(win); err != nil {
		t.Fatal(err)
	}

	if err := d.BeginFrame(nil); KindOf(err) != KindInvalidArgument {
		t.Errorf("BeginFrame(nil): kind %v, want InvalidArgument", KindOf(err))
	}
}

func TestDeviceSwapIntervalForwarding(t *testing.T) {
	d, be, win := newTestDevice(t)

	for i := 0; i < 3; i++ {
		if err := d.BeginFrame(win); err != nil {
			t.Fatal(err)
		}
		if err := d.EndFrame(win); err != nil {
			t.Fatal(err)
		}
	}
	// The default interval 1 is forwarded once per window, not per frame.
	if len(be.SwapIntervals) != 1 || be.SwapIntervals[0] != 1 {
		t.Errorf("SwapIntervals = %v, want [1]", be.SwapIntervals)
	}

	// Negative disables v-sync.
	d2, be2, win2 := func() (*Device, *headless.Backend, *headless.Surface) {
		be := headless.New()
		d, err := NewDevice(be, DeviceOptions{SwapInterval: -1})
		if err != nil {
			t.Fatal(err)
		}
		return d, be, headless.NewSurface(64, 64)
	}()
	if err := d2.BeginFrame(win2); err != nil {
		t.Fatal(err)
	}
	if err := d2.EndFrame(win2); err != nil {
		t.Fatal(err)
	}
	if len(be2.SwapIntervals) != 1 || be2.SwapIntervals[0] != 0 {
		t.Errorf("SwapIntervals = %v, want [0]", be2.SwapIntervals)
	}
}

func TestWindowClearColor(t *testing.T) {
	d, be, win := newTestDevice(t)

	blue := Blue
	d.SetWindowClearColor(&blue)
	if err := d.BeginFrame(win); err != nil {
		t.Fatal(err)
	}
	if err := d.EndFrame(win); err != nil {
		t.Fatal(err)
	}

	px := be.BackbufferPixels(win)
	if !bytes.Equal(px[:4], []byte{0, 0, 255, 255}) {
		t.Errorf("backbuffer pixel = %v, want blue", px[:4])
	}
	if be.Presented[win] != 1 {
		t.Errorf("Presented = %d, want 1", be.Presented[win])
	}
}

func TestCanvasClearOncePerFrame(t *testing.T) {
	d, _, win := newTestDevice(t)

	canvas, err := NewCanvas(d, win, 4, 4, FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}
	red := Red
	canvas.SetClearColor(&red)

	if err := d.BeginFrame(win); err != nil {
		t.Fatal(err)
	}
	if err := d.SetCanvas(canvas); err != nil {
		t.Fatal(err)
	}
	if err := d.SetCanvas(nil); err != nil {
		t.Fatal(err)
	}

	// Re-binding within the same frame must not clear again, even with a
	// new clear color.
	green := Green
	canvas.SetClearColor(&green)
	if err := d.SetCanvas(canvas); err != nil {
		t.Fatal(err)
	}
	if err := d.SetCanvas(nil); err != nil {
		t.Fatal(err)
	}
	if err := d.EndFrame(win); err != nil {
		t.Fatal(err)
	}

	data, err := d.ReadCanvasData(canvas, 0, 0, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{255, 0, 0, 255}) {
		t.Errorf("pixel = %v, want red from the first clear", data)
	}

	// The next frame re-arms the policy.
	if err := d.BeginFrame(win); err != nil {
		t.Fatal(err)
	}
	if err := d.SetCanvas(canvas); err != nil {
		t.Fatal(err)
	}
	if err := d.SetCanvas(nil); err != nil {
		t.Fatal(err)
	}
	if err := d.EndFrame(win); err != nil {
		t.Fatal(err)
	}

	data, err = d.ReadCanvasData(canvas, 0, 0, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{0, 255, 0, 255}) {
		t.Errorf("pixel = %v, want green from the second frame's clear", data)
	}
}

func TestSetCanvasValidation(t *testing.T) {
	d, _, win := newTestDevice(t)

	img, err := NewImage(d, 2, 2, FormatRGBA8, make([]byte, 16))
	if err != nil {
		t.Fatal(err)
	}
	otherWin := headless.NewSurface(32, 32)
	foreign, err := NewCanvas(d, otherWin, 4, 4, FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}

	if err := d.BeginFrame(win); err != nil {
		t.Fatal(err)
	}
	if err := d.SetCanvas(img); KindOf(err) != KindInvalidArgument {
		t.Errorf("SetCanvas(non-canvas): kind %v, want InvalidArgument", KindOf(err))
	}
	if err := d.SetCanvas(foreign); KindOf(err) != KindInvalidArgument {
		t.Errorf("SetCanvas(foreign window): kind %v, want InvalidArgument", KindOf(err))
	}
	if err := d.EndFrame(win); err != nil {
		t.Fatal(err)
	}
}

func TestReadCanvasDataValidation(t *testing.T) {
	d, _, win := newTestDevice(t)

	canvas, err := NewCanvas(d, win, 4, 4, FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}
	img, err := NewImage(d, 2, 2, FormatRGBA8, make([]byte, 16))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := d.ReadCanvasData(nil, 0, 0, 1, 1); KindOf(err) != KindInvalidArgument {
		t.Errorf("nil canvas: kind %v, want InvalidArgument", KindOf(err))
	}
	if _, err := d.ReadCanvasData(img, 0, 0, 1, 1); KindOf(err) != KindInvalidArgument {
		t.Errorf("non-canvas: kind %v, want InvalidArgument", KindOf(err))
	}
	if _, err := d.ReadCanvasData(canvas, 0, 0, 5, 4); KindOf(err) != KindInvalidArgument {
		t.Errorf("out of bounds: kind %v, want InvalidArgument", KindOf(err))
	}

	if err := d.BeginFrame(win); err != nil {
		t.Fatal(err)
	}
	if err := d.SetCanvas(canvas); err != nil {
		t.Fatal(err)
	}
	if _, err := d.ReadCanvasData(canvas, 0, 0, 1, 1); KindOf(err) != KindLogic {
		t.Errorf("current canvas: kind %v, want Logic", KindOf(err))
	}
	if err := d.EndFrame(win); err != nil {
		t.Fatal(err)
	}
}

func TestReadCanvasDataTopDown(t *testing.T) {
	d, be, win := newTestDevice(t)

	canvas, err := NewCanvas(d, win, 2, 2, FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}

	// Distinct rows uploaded top-down: red above green.
	rows := []byte{
		255, 0, 0, 255, 255, 0, 0, 255,
		0, 255, 0, 255, 0, 255, 0, 255,
	}
	if err := be.UpdateTexture(canvas.texture, 0, 0, 2, 2, rows); err != nil {
		t.Fatal(err)
	}

	data, err := d.ReadCanvasData(canvas, 0, 0, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, rows) {
		t.Errorf("ReadCanvasData = %v, want top-down rows %v", data, rows)
	}
}

func TestDeviceScissorLimit(t *testing.T) {
	d, _, win := newTestDevice(t)

	if err := d.BeginFrame(win); err != nil {
		t.Fatal(err)
	}
	if err := d.SetScissorRects(ScissorRect{W: 10, H: 10}); err != nil {
		t.Errorf("single rect: %v", err)
	}
	err := d.SetScissorRects(ScissorRect{W: 10, H: 10}, ScissorRect{X: 10, W: 10, H: 10})
	if KindOf(err) != KindInvalidArgument {
		t.Errorf("two rects: kind %v, want InvalidArgument", KindOf(err))
	}
	if err := d.EndFrame(win); err != nil {
		t.Fatal(err)
	}
}

func TestViewportSize(t *testing.T) {
	d, _, win := newTestDevice(t)

	if err := d.BeginFrame(win); err != nil {
		t.Fatal(err)
	}
	if got := d.ViewportSize(); got.X != 640 || got.Y != 480 {
		t.Errorf("ViewportSize = %v, want 640x480", got)
	}

	canvas, err := NewCanvas(d, win, 128, 64, FormatRGBA8)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.SetCanvas(canvas); err != nil {
		t.Fatal(err)
	}
	if got := d.ViewportSize(); got.X != 128 || got.Y != 64 {
		t.Errorf("ViewportSize = %v, want 128x64", got)
	}
	if d.CurrentCanvas() != canvas {
		t.Error("CurrentCanvas should be the bound canvas")
	}
	if err := d.EndFrame(win); err != nil {
		t.Fatal(err)
	}
}
