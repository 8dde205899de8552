package io

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodegl/core"
	"nodegl/math"
)

const sharedScene = `
nodes:
  - label: quad
    class: Quad
    params:
      corner: [-1, -1, 0]
      width: [2, 0, 0]
      height: [0, 2, 0]
root:
  class: Group
  label: root
  params:
    children:
      - class: Render
        params:
          geometry: {ref: quad}
          uniforms:
            color: {class: UniformVec4, params: {value: [1, 0.5, 0, 1]}}
      - class: Translate
        params:
          vector: [1, 2, 3]
          child:
            class: Render
            params:
              geometry: {ref: quad}
`

func TestDecodeScene(t *testing.T) {
	root, err := DecodeScene(strings.NewReader(sharedScene))
	require.NoError(t, err)
	defer root.Unref()

	assert.Equal(t, "root", root.Label())
	assert.Equal(t, 1, root.RefCount())
	children := root.List("children")
	require.Len(t, children, 2)

	first := children[0]
	second := children[1].Child("child")
	assert.Equal(t, "Render", first.Class().Name)
	assert.Same(t, first.Child("geometry"), second.Child("geometry"), "references share one node")

	quad := first.Child("geometry")
	assert.Equal(t, "quad", quad.Label())
	assert.Equal(t, 2, quad.RefCount())
	assert.Equal(t, math.NewVec3(2, 0, 0), quad.Vec3("width"))

	assert.Equal(t, math.NewVec3(1, 2, 3), children[1].Vec3("vector"))
	_, uniforms := first.Dict("uniforms")
	assert.Equal(t, math.NewVec4(1, 0.5, 0, 1), uniforms["color"].Vec4("value"))
}

func TestDecodeSceneJSON(t *testing.T) {
	root, err := DecodeScene(strings.NewReader(`{"root": {"class": "Triangle", "params": {"edge0": [2, -1, 0]}}}`))
	require.NoError(t, err)
	defer root.Unref()
	assert.Equal(t, math.NewVec3(2, -1, 0), root.Vec3("edge0"))
}

func TestDecodeSceneErrors(t *testing.T) {
	tests := map[string]string{
		"empty":           "",
		"syntax":          "root: [",
		"no root":         "nodes: []",
		"unknown ref":     "root: {ref: nope}",
		"unknown class":   "root: {class: Nope}",
		"class and ref":   "root: {class: Quad, ref: quad}",
		"missing label":   "nodes: [{class: Quad}]\nroot: {class: Quad}",
		"duplicate label": "nodes: [{label: a, class: Quad}, {label: a, class: Quad}]\nroot: {ref: a}",
		"bad param":       "root: {class: Quad, params: {width: [1, 2]}}",
		"cycle": `
nodes:
  - {label: a, class: Translate, params: {child: {ref: b}}}
  - {label: b, class: Translate, params: {child: {ref: a}}}
root: {ref: a}`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeScene(strings.NewReader(src))
			assert.ErrorIs(t, err, core.ErrValidation)
		})
	}
}

func TestLoadSceneRelativeFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quad.obj"), []byte(quadOBJ), 0o644))
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
root:
  class: Render
  params:
    geometry: {obj: quad.obj, label: mesh}
`), 0o644))

	root, err := LoadScene(path)
	require.NoError(t, err)
	defer root.Unref()
	geom := root.Child("geometry")
	assert.Equal(t, "Geometry", geom.Class().Name)
	assert.Equal(t, "mesh", geom.Label())
	assert.Equal(t, 1, geom.RefCount())
}

func TestLoadSceneMissingFile(t *testing.T) {
	_, err := LoadScene(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, core.ErrIO)
}

func TestExampleScene(t *testing.T) {
	root, err := LoadScene(filepath.Join("..", "examples", "scenes", "quad.yaml"))
	require.NoError(t, err)
	defer root.Unref()
	assert.Len(t, root.List("children"), 2)
}
