package io

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodegl/core"
)

const quadOBJ = `# a unit quad
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1 4/4/1
`

func TestReadOBJ(t *testing.T) {
	m, err := ReadOBJ(strings.NewReader(quadOBJ), "quad.obj")
	require.NoError(t, err)
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, m.Indices, "fan triangulated")
	assert.Equal(t, []float32{0, 0, 1, 0, 1, 1, 0, 1}, m.UVs)
	assert.Len(t, m.Normals, 12)
	assert.Equal(t, "quad.obj", m.Name)
}

func TestReadOBJSharesVertices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nv 1 1 0\nf 1 2 3\nf 3 2 4\n"
	m, err := ReadOBJ(strings.NewReader(src), "shared")
	require.NoError(t, err)
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, m.Indices)
	assert.Nil(t, m.UVs)
	assert.Nil(t, m.Normals)
}

func TestReadOBJNegativeIndices(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -3 -2 -1\n"
	m, err := ReadOBJ(strings.NewReader(src), "neg")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, m.Positions)
}

func TestReadOBJPartialAttributesDropped(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nvt 0 0\nf 1/1 2 3\n"
	m, err := ReadOBJ(strings.NewReader(src), "partial")
	require.NoError(t, err)
	assert.Nil(t, m.UVs, "not every vertex has a uv")
}

func TestReadOBJErrors(t *testing.T) {
	tests := map[string]string{
		"no faces":       "v 0 0 0\n",
		"short vertex":   "v 0 0\n",
		"bad number":     "v 0 x 0\n",
		"out of range":   "v 0 0 0\nf 1 2 3\n",
		"degenerate":     "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"no position":    "v 0 0 0\nf /1 1 1\n",
		"too many parts": "v 0 0 0\nf 1/1/1/1 1 1\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadOBJ(strings.NewReader(src), name)
			assert.ErrorIs(t, err, core.ErrValidation)
		})
	}
}

func TestLoadOBJ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))

	g, err := LoadOBJ(path)
	require.NoError(t, err)
	defer g.Unref()
	assert.Equal(t, "Geometry", g.Class().Name)
	assert.Len(t, g.Child("vertices").Data("data"), 4*3*4)
	assert.Len(t, g.Child("uvcoords").Data("data"), 4*2*4)
	assert.Equal(t, "BufferUShort", g.Child("indices").Class().Name)

	_, err = LoadOBJ(filepath.Join(t.TempDir(), "missing.obj"))
	assert.ErrorIs(t, err, core.ErrIO)
}
