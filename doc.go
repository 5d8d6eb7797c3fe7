// Package ember is a 2D sprite graphics core for the GoGPU ecosystem.
//
// # Overview
//
// ember renders textured quads (sprites) and text through a batching
// renderer with a small, explicit state model. It owns images, canvases,
// fonts, sprite shaders and their parameters; windowing and input stay
// with the host application, which hands ember a drawable surface each
// frame.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/ember"
//	    "github.com/gogpu/ember/backend/headless"
//	)
//
//	dev, _ := ember.NewDevice(headless.New(), ember.DeviceOptions{})
//	surface := headless.NewSurface(800, 600)
//
//	clear := ember.Black
//	dev.SetWindowClearColor(&clear)
//
//	dev.BeginFrame(surface)
//	dev.DrawSprite(ember.Sprite{
//	    Image:    img,
//	    DstRect:  ember.Rectangle{X: 100, Y: 100, W: 64, H: 64},
//	    Color:    ember.White,
//	    Rotation: 0.5,
//	})
//	dev.EndFrame(surface)
//
// # Architecture
//
// The library is organized into:
//   - Public API: Device, Image, Shader, Font, Sprite, Text
//   - gpu/: the backend interface the renderer draws through
//   - backend/headless: CPU recording backend (tests, server-side use)
//   - backend/wgpu: WebGPU backend on github.com/gogpu/wgpu
//   - text/: font parsing, glyph rasterization and atlas packing
//   - content/: asset loading (PNG/JPEG/BMP/TGA/HDR/DDS)
//
// # Coordinate System
//
// Uses standard computer graphics coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Angles in radians
package ember

// Version information
const (
	// Version is the current version of the library
	Version = "0.2.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 2

	// VersionPatch is the patch version
	VersionPatch = 0
)
