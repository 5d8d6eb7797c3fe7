// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"fmt"

	"github.com/gogpu/naga"

	"github.com/gogpu/ember/gpu"
)

// StubShaderModuleID is a placeholder for the wgpu shader module ID.
// It will be replaced with the core ID type once shader module creation
// is exposed on core devices.
type StubShaderModuleID uint64

// Program is a compiled sprite shading program. WGSL sources are compiled
// to SPIR-V eagerly so invalid shaders fail at CompileProgram time; the
// pipeline objects stay zero until wgpu render pipelines are wired up.
type Program struct {
	label string

	vertexSPIRV   []uint32
	fragmentSPIRV []uint32

	vertexModule   StubShaderModuleID
	fragmentModule StubShaderModuleID

	// Uniform staging area, std140-packed little-endian bytes per name.
	uniforms map[string][]byte

	destroyed bool
}

var _ gpu.Program = (*Program)(nil)

// Destroy releases the program.
func (p *Program) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true

	// TODO: Release shader modules and the pipeline when wgpu supports it
	//
	// if p.vertexModule != 0 {
	//     core.ShaderModuleDrop(p.vertexModule)
	// }
	// if p.fragmentModule != 0 {
	//     core.ShaderModuleDrop(p.fragmentModule)
	// }
	p.vertexModule = 0
	p.fragmentModule = 0
	p.uniforms = nil
}

// spirvWords compiles WGSL source to SPIR-V words. SPIR-V is
// little-endian 32-bit words.
func spirvWords(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, err
	}

	code := make([]uint32, len(spirvBytes)/4)
	for i := range code {
		code[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return code, nil
}

// CompileProgram builds a shading program from WGSL sources.
func (g *Backend) CompileProgram(desc gpu.ProgramDescriptor) (gpu.Program, error) {
	vertex, err := spirvWords(desc.VertexSource)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compiling vertex shader %q: %w", desc.Label, err)
	}
	fragment, err := spirvWords(desc.FragmentSource)
	if err != nil {
		return nil, fmt.Errorf("wgpu: compiling fragment shader %q: %w", desc.Label, err)
	}

	// TODO: Create shader modules and the render pipeline once the core
	// device API exposes them
	//
	// vertexModule, err := core.CreateShaderModule(g.device, &gputypes.ShaderModuleDescriptor{
	//     Label:  desc.Label + ".vert",
	//     SPIRV:  vertex,
	// })

	g.log.Debug("program compiled",
		"label", desc.Label,
		"vertexWords", len(vertex),
		"fragmentWords", len(fragment))

	return &Program{
		label:         desc.Label,
		vertexSPIRV:   vertex,
		fragmentSPIRV: fragment,
		uniforms:      make(map[string][]byte),
	}, nil
}

// UseProgram makes p the active program.
func (g *Backend) UseProgram(p gpu.Program) {
	prog, _ := p.(*Program)
	if prog == g.program {
		return
	}
	g.program = prog

	// TODO: core.RenderPassSetPipeline once render passes are recorded.
}

// SetUniform uploads count elements of the named uniform of the active
// program. Data is std140-packed little-endian bytes.
func (g *Backend) SetUniform(p gpu.Program, name string, typ gpu.UniformType, count int, data []byte) error {
	prog, ok := p.(*Program)
	if !ok || prog.destroyed {
		return errInvalidf("not a program")
	}
	if count <= 0 || len(data) == 0 {
		return errInvalidf("uniform %q: empty upload", name)
	}

	staged := make([]byte, len(data))
	copy(staged, data)
	prog.uniforms[name] = staged

	// TODO: core.QueueWriteBuffer into the program's uniform buffer at the
	// member offset once uniform buffers are created GPU-side.
	return nil
}
