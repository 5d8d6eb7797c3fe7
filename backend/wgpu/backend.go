// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"

	"github.com/gogpu/ember/gpu"
)

// ErrNoGPU is returned when no suitable GPU adapter is available.
var ErrNoGPU = errors.New("wgpu: no GPU adapter available")

// Options configures backend creation.
type Options struct {
	// PowerPreference selects the adapter class. The zero value asks for
	// the high-performance GPU.
	PowerPreference gputypes.PowerPreference

	// DeviceLabel is the debug label of the created device.
	DeviceLabel string

	// Logger receives backend events. Nil discards them.
	Logger *slog.Logger
}

// backbuffer is the CPU mirror of one surface's backbuffer.
type backbuffer struct {
	width  int
	height int
	pixels []byte // RGBA8, top-down
}

// Backend implements gpu.Backend on github.com/gogpu/wgpu.
type Backend struct {
	log *slog.Logger

	instance *core.Instance
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID
	info     *GPUInfo

	// provider is set when the host supplied the device; the backend then
	// owns neither adapter nor device and must not release them.
	provider gpucontext.DeviceProvider

	surfaces map[gpu.Surface]*backbuffer
	current  gpu.Surface

	target   *Texture // nil means the current surface backbuffer
	viewport [2]int
	blend    gpu.BlendState
	scissors []gpu.ScissorRect

	program  *Program
	bound    map[int]gpu.Texture
	vertices *Buffer
	indices  *Buffer

	swapInterval int
}

var _ gpu.Backend = (*Backend)(nil)

// New creates a backend with its own GPU instance, adapter, device and
// queue. Returns ErrNoGPU when no adapter is available.
func New(opts Options) (*Backend, error) {
	g := newBackend(opts)

	g.instance = core.NewInstance(&gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
	})

	var zero gputypes.PowerPreference
	pref := opts.PowerPreference
	if pref == zero {
		pref = gputypes.PowerPreferenceHighPerformance
	}
	adapterID, err := g.instance.RequestAdapter(&gputypes.RequestAdapterOptions{
		PowerPreference: pref,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoGPU, err)
	}
	g.adapter = adapterID

	if info, err := getGPUInfo(adapterID); err == nil {
		g.info = info
		g.log.Info("gpu selected", "gpu", info.String(), "driver", info.Driver)
	}

	label := opts.DeviceLabel
	if label == "" {
		label = "ember-device"
	}
	deviceID, err := createDevice(adapterID, label)
	if err != nil {
		_ = releaseAdapter(adapterID)
		return nil, err
	}
	g.device = deviceID

	queueID, err := getDeviceQueue(deviceID)
	if err != nil {
		_ = releaseDevice(deviceID)
		_ = releaseAdapter(adapterID)
		return nil, err
	}
	g.queue = queueID

	g.log.Debug("backend initialized", "device", label)
	return g, nil
}

// NewWithProvider creates a backend on a device the host application
// already owns. The backend never releases the provided device.
func NewWithProvider(provider gpucontext.DeviceProvider, opts Options) (*Backend, error) {
	if provider == nil {
		return nil, errInvalidf("nil device provider")
	}
	if provider.Device() == nil {
		return nil, fmt.Errorf("%w: provider has no device", ErrNoGPU)
	}

	g := newBackend(opts)
	g.provider = provider
	g.log.Debug("backend initialized", "device", "host-provided",
		"surfaceFormat", provider.SurfaceFormat())
	return g, nil
}

func newBackend(opts Options) *Backend {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Backend{
		log:      log,
		surfaces: make(map[gpu.Surface]*backbuffer),
		bound:    make(map[int]gpu.Texture),
	}
}

// Name identifies the backend in logs.
func (g *Backend) Name() string { return "wgpu" }

// Info returns the selected GPU, or nil when the device came from a host
// provider.
func (g *Backend) Info() *GPUInfo { return g.info }

// Close releases the backend's GPU resources in reverse creation order.
// Host-provided devices are left alone.
func (g *Backend) Close() {
	if g.provider == nil {
		if err := releaseDevice(g.device); err != nil {
			g.log.Warn("releasing device", "err", err)
		}
		if err := releaseAdapter(g.adapter); err != nil {
			g.log.Warn("releasing adapter", "err", err)
		}
	}
	g.device = core.DeviceID{}
	g.queue = core.QueueID{}
	g.adapter = core.AdapterID{}
	g.instance = nil
	g.provider = nil
	g.surfaces = nil
}

// BeginFrame makes the surface current and applies the pending swap
// interval.
func (g *Backend) BeginFrame(surface gpu.Surface) error {
	if surface == nil {
		return errInvalidf("nil surface")
	}
	w, h := surface.SizePixels()
	bb := g.surfaces[surface]
	if bb == nil || bb.width != w || bb.height != h {
		bb = &backbuffer{width: w, height: h, pixels: make([]byte, w*h*4)}
		g.surfaces[surface] = bb

		// TODO: Reconfigure the wgpu surface with the new size and the
		// swap interval's present mode once surface configuration lands.
	}
	g.current = surface
	return nil
}

// Present swaps the surface's backbuffer.
func (g *Backend) Present(surface gpu.Surface) error {
	if surface == nil {
		return errInvalidf("nil surface")
	}

	// TODO: core surface present once swap chains are exposed. The frame's
	// work is recorded against the CPU mirrors until then.
	return nil
}

// SetSwapInterval sets the v-sync interval applied at the next BeginFrame.
func (g *Backend) SetSwapInterval(interval int) {
	g.swapInterval = interval
}

// DrawIndexed draws indexCount 16-bit indices starting at firstIndex.
func (g *Backend) DrawIndexed(indexCount, firstIndex int) {
	// TODO: Record the draw into a render pass once command encoders are
	// exposed:
	//
	// core.RenderPassSetVertexBuffer(pass, 0, g.vertices.bufferID)
	// core.RenderPassSetIndexBuffer(pass, g.indices.bufferID, gputypes.IndexFormatUint16)
	// core.RenderPassDrawIndexed(pass, uint32(indexCount), 1, uint32(firstIndex), 0, 0)
	_ = indexCount
	_ = firstIndex
}

// BindRenderTarget directs following draws into t, or into the current
// surface's backbuffer when t is nil.
func (g *Backend) BindRenderTarget(t gpu.Texture) {
	if t == nil {
		g.target = nil
		return
	}
	g.target, _ = t.(*Texture)
}

// SetViewport sets the pixel size of the current target.
func (g *Backend) SetViewport(width, height int) {
	g.viewport = [2]int{width, height}
}

// Clear fills the current target with the given RGBA color.
func (g *Backend) Clear(color [4]float32) {
	// TODO: Issue a render pass with LoadOpClear once command encoders are
	// exposed; the CPU mirror carries the result for read-back meanwhile.
	if g.target != nil {
		clearPixels(g.target.levels[0], g.target.format, color)
		return
	}
	if bb := g.surfaces[g.current]; bb != nil {
		clearPixels(bb.pixels, gpu.FormatRGBA8, color)
	}
}

// ApplyBlendState sets fixed-function blending for following draws.
func (g *Backend) ApplyBlendState(s gpu.BlendState) {
	g.blend = s

	// TODO: Select the render pipeline variant for this blend state once
	// pipelines are created.
}

// SetScissorRects replaces the active scissor rectangles.
func (g *Backend) SetScissorRects(rects []gpu.ScissorRect) error {
	if len(rects) > g.MaxScissorRects() {
		return errInvalidf("%d scissor rects exceed limit %d", len(rects), g.MaxScissorRects())
	}
	g.scissors = append(g.scissors[:0], rects...)

	// TODO: core.RenderPassSetScissorRect on the active pass.
	return nil
}

// MaxScissorRects reports the single-rectangle limit of WebGPU render
// passes.
func (g *Backend) MaxScissorRects() int { return 1 }

func errInvalidf(format string, args ...any) error {
	return fmt.Errorf("wgpu: "+format, args...)
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
			binary.LittleEndian.PutUint32(px[i*4:], math.Float32bits(color[i]))
		}
		for i := 0; i+16 <= len(dst); i += 16 {
			copy(dst[i:], px[:])
		}
	}
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
