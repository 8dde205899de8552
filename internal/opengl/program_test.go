package opengl_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodegl/core"
	"nodegl/internal/opengl"
	"nodegl/internal/opengl/gltest"
)

const testVertex = `#version 430
in vec4 ngl_position;
in vec2 ngl_uvcoord;
in mat4 instance_matrix;
uniform mat4 ngl_modelview_matrix;
uniform mat4 ngl_projection_matrix;
uniform float weights[4];
layout(std140, binding = 2) uniform Globals {
    vec4 tint;
};
layout(std430, binding = 5) buffer Particles {
    vec4 positions[];
};
void main() {
    gl_Position = ngl_projection_matrix * ngl_modelview_matrix * instance_matrix * ngl_position;
}
`

const testFragment = `#version 430
uniform sampler2D tex0;
out vec4 color;
void main() {
    color = vec4(1.0);
}
`

func TestLoadProgramAndProbe(t *testing.T) {
	env := gltest.Desktop43()
	b, _ := configure(t, env, env.Config())
	ctx := b.GL()
	f := ctx.GL()

	prog, err := opengl.LoadProgram(f, testVertex, testFragment)
	require.NoError(t, err)
	assert.NotZero(t, prog)

	attrs := opengl.ProbeAttributes("render", f, prog)
	require.Contains(t, attrs, "ngl_position")
	assert.Equal(t, 0, attrs["ngl_position"].Location)
	assert.Equal(t, 1, attrs["ngl_uvcoord"].Location)
	assert.Equal(t, uint32(opengl.FLOAT_MAT4), attrs["instance_matrix"].Type)

	uniforms := opengl.ProbeUniforms("render", f, prog)
	assert.Contains(t, uniforms, "ngl_modelview_matrix")
	assert.Contains(t, uniforms, "tex0")
	require.Contains(t, uniforms, "weights", "array suffix is stripped")
	assert.Equal(t, 4, uniforms["weights"].Size)

	blocks := opengl.ProbeBufferBlocks("render", ctx, prog)
	assert.Equal(t, opengl.BlockInfo{Type: opengl.UNIFORM_BUFFER, Binding: 2}, blocks["Globals"])
	assert.Equal(t, opengl.BlockInfo{Type: opengl.SHADER_STORAGE_BUFFER, Binding: 5}, blocks["Particles"])
}

func TestProbeBufferBlocksWithoutStorage(t *testing.T) {
	env := gltest.Desktop()
	b, _ := configure(t, env, env.Config())
	ctx := b.GL()

	prog, err := opengl.LoadProgram(ctx.GL(), testVertex, testFragment)
	require.NoError(t, err)

	blocks := opengl.ProbeBufferBlocks("render", ctx, prog)
	assert.Contains(t, blocks, "Globals")
	assert.NotContains(t, blocks, "Particles")
}

func TestProbeBufferBlocksWithoutUniformBuffers(t *testing.T) {
	env := gltest.GLES2()
	b, _ := configure(t, env, env.Config())
	ctx := b.GL()

	prog, err := opengl.LoadProgram(ctx.GL(), testVertex, testFragment)
	require.NoError(t, err)
	assert.Empty(t, opengl.ProbeBufferBlocks("render", ctx, prog))
}

func TestLoadProgramCompileFailure(t *testing.T) {
	env := gltest.Desktop()
	env.CompileFail = true
	b, s := configure(t, env, env.Config())

	_, err := opengl.LoadProgram(b.GL().GL(), testVertex, testFragment)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
	assert.Contains(t, err.Error(), "syntax error")
	assert.NotContains(t, err.Error(), "\n")
	assert.Equal(t, 0, s.GL().Count("CreateProgram"))
}

func TestTextureAndBufferHelpers(t *testing.T) {
	env := gltest.Desktop()
	b, s := configure(t, env, env.Config())
	f := b.GL().GL()

	params := opengl.DefaultTextureParams()
	params.Width, params.Height = 2, 2
	_, err := opengl.NewTexture2D(f, params, make([]byte, 4))
	assert.Error(t, err, "short pixel data")

	tex, err := opengl.NewTexture2D(f, params, make([]byte, 16))
	require.NoError(t, err)
	tex.Upload(make([]byte, 16))
	tex.Release()
	tex.Release()
	assert.Equal(t, 1, s.GL().Count("DeleteTexture"))

	buf := opengl.NewBuffer(f, 8, nil, opengl.STATIC_DRAW)
	buf.Upload(make([]byte, 4))
	assert.Equal(t, 8, buf.Size)
	buf.Upload(make([]byte, 16))
	assert.Equal(t, 16, buf.Size)
	assert.Equal(t, 1, s.GL().LiveBuffers())
	buf.Release()
	assert.Equal(t, 0, s.GL().LiveBuffers())
}
