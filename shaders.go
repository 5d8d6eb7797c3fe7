package ember

// Built-in WGSL sources for the sprite pipeline. User shaders replace only
// the fragment stage; the vertex stage is always spriteVertexSource.

// spriteVertexSource transforms the pre-built sprite vertices by the
// combined world/viewport matrix bound as the "Transformation" uniform.
const spriteVertexSource = `
struct Uniforms {
    Transformation: mat4x4<f32>,
};

@group(0) @binding(0) var<uniform> u: Uniforms;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
    @location(1) uv: vec2<f32>,
};

@vertex
fn vs_main(
    @location(0) position: vec4<f32>,
    @location(1) color: vec4<f32>,
    @location(2) uv: vec2<f32>,
) -> VertexOutput {
    var out: VertexOutput;
    out.position = position * u.Transformation;
    out.color = color;
    out.uv = uv;
    return out;
}
`

// spriteFragmentDefaultSource modulates the sprite texture by the vertex
// color.
const spriteFragmentDefaultSource = `
@group(1) @binding(0) var sprite_texture: texture_2d<f32>;
@group(1) @binding(1) var sprite_sampler: sampler;

@fragment
fn fs_main(
    @location(0) color: vec4<f32>,
    @location(1) uv: vec2<f32>,
) -> @location(0) vec4<f32> {
    return textureSample(sprite_texture, sprite_sampler, uv) * color;
}
`

// spriteFragmentMonochromaticSource replicates the single coverage channel
// of glyph atlas pages across all components before tinting, so text is
// rendered from R8 textures.
const spriteFragmentMonochromaticSource = `
@group(1) @binding(0) var sprite_texture: texture_2d<f32>;
@group(1) @binding(1) var sprite_sampler: sampler;

@fragment
fn fs_main(
    @location(0) color: vec4<f32>,
    @location(1) uv: vec2<f32>,
) -> @location(0) vec4<f32> {
    let coverage = textureSample(sprite_texture, sprite_sampler, uv).r;
    return vec4<f32>(coverage) * color;
}
`

// transformationUniform is the uniform name the vertex stage exposes.
const transformationUniform = "Transformation"
