package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodegl/core"
	"nodegl/internal/opengl/gltest"
	"nodegl/math"
)

func assertVec3(t *testing.T, want, got math.Vec3) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, 1e-5)
	assert.InDelta(t, want.Y, got.Y, 1e-5)
	assert.InDelta(t, want.Z, got.Z, 1e-5)
}

func apply(m math.Mat4, p math.Vec3) math.Vec3 {
	return p.ToVec4(1).MulMat(m).ToVec3()
}

func TestRotateAroundAnchor(t *testing.T) {
	ctx, _ := newContext(t, gltest.Desktop())
	n := create(t, "Rotate", map[string]any{
		"child":  create(t, "Identity", nil),
		"angle":  90,
		"anchor": [3]float32{1, 0, 0},
	})
	require.NoError(t, ctx.SetScene(n))
	tr, _ := implOf[*transform](n)
	assertVec3(t, math.NewVec3(1, 1, 0), apply(tr.matrix, math.NewVec3(2, 0, 0)))
	assertVec3(t, math.NewVec3(1, 0, 0), apply(tr.matrix, math.NewVec3(1, 0, 0)))
}

func TestRotateQuatAroundAnchor(t *testing.T) {
	ctx, _ := newContext(t, gltest.Desktop())
	s := math32.Sqrt2 / 2
	n := create(t, "RotateQuat", map[string]any{
		"child":  create(t, "Identity", nil),
		"quat":   [4]float32{0, 0, s, s},
		"anchor": [3]float32{1, 0, 0},
	})
	require.NoError(t, ctx.SetScene(n))
	tr, _ := implOf[*transform](n)
	assertVec3(t, math.NewVec3(1, 1, 0), apply(tr.matrix, math.NewVec3(2, 0, 0)))

	id := create(t, "RotateQuat", map[string]any{"child": create(t, "Identity", nil)})
	require.NoError(t, ctx.SetScene(id))
	tr, _ = implOf[*transform](id)
	assert.Equal(t, math.Mat4Identity(), tr.matrix)
}

func TestScaleAroundAnchor(t *testing.T) {
	ctx, _ := newContext(t, gltest.Desktop())
	n := create(t, "Scale", map[string]any{
		"child":   create(t, "Identity", nil),
		"factors": [3]float32{2, 2, 2},
		"anchor":  [3]float32{1, 1, 1},
	})
	require.NoError(t, ctx.SetScene(n))
	tr, _ := implOf[*transform](n)
	assertVec3(t, math.NewVec3(3, 3, 3), apply(tr.matrix, math.NewVec3(2, 2, 2)))
}

func TestChainMatrix(t *testing.T) {
	ctx, _ := newContext(t, gltest.Desktop())
	scale := create(t, "Scale", map[string]any{
		"child":   create(t, "Identity", nil),
		"factors": [3]float32{2, 2, 2},
	})
	translate := create(t, "Translate", map[string]any{"child": scale, "vector": [3]float32{1, 0, 0}})
	require.NoError(t, ctx.SetScene(translate))

	assertVec3(t, math.NewVec3(3, 0, 0), apply(chainMatrix(translate), math.NewVec3(1, 0, 0)))
	assert.Equal(t, math.Mat4Identity(), chainMatrix(nil))
}

func TestTransformMatrixParam(t *testing.T) {
	m := math.Mat4Translation(math.NewVec3(1, 2, 3))
	n := create(t, "Transform", map[string]any{"child": create(t, "Identity", nil), "matrix": m.Floats()})
	assert.Equal(t, m, n.Mat4("matrix"))
}

// renderedMatrix returns the last value uploaded at the location r uses
// for a builtin uniform.
func renderedMatrix(t *testing.T, gl *gltest.Functions, r *Node, uniform string) []float32 {
	t.Helper()
	ri, ok := implOf[*render](r)
	require.True(t, ok)
	loc := ri.program.uniform(uniform)
	require.GreaterOrEqual(t, loc, 0)
	return gl.Uniform(loc)
}

func TestTransformsStackDuringDraw(t *testing.T) {
	ctx, gl := newContext(t, gltest.Desktop())
	r := create(t, "Render", map[string]any{"geometry": create(t, "Triangle", nil)})
	inner := create(t, "Scale", map[string]any{"child": r, "factors": [3]float32{2, 2, 2}})
	outer := create(t, "Translate", map[string]any{"child": inner, "vector": [3]float32{1, 2, 3}})
	sibling := create(t, "Render", map[string]any{"geometry": create(t, "Triangle", nil)})

	// Both renders use a default program with the same uniform locations:
	// the last draw wins.
	require.NoError(t, ctx.SetScene(create(t, "Group", map[string]any{"children": []*Node{sibling, outer}})))
	require.NoError(t, ctx.Draw(0))
	require.Len(t, gl.DrawCalls(), 2)
	want := math.Mat4Scale(math.NewVec3(2, 2, 2)).Mul(math.Mat4Translation(math.NewVec3(1, 2, 3)))
	assert.Equal(t, want.Floats(), [16]float32(renderedMatrix(t, gl, r, "ngl_modelview_matrix")))
	assert.Equal(t, math.Mat4Identity(), ctx.ModelView())

	require.NoError(t, ctx.SetScene(create(t, "Group", map[string]any{"children": []*Node{outer, sibling}})))
	require.NoError(t, ctx.Draw(0))
	mv := renderedMatrix(t, gl, sibling, "ngl_modelview_matrix")
	assert.Equal(t, math.Mat4Identity().Floats(), [16]float32(mv), "the stack is restored after the transforms")
}

func TestCameraValidation(t *testing.T) {
	ctx, _ := newContext(t, gltest.Desktop())
	for name, params := range map[string]map[string]any{
		"both projections": {"perspective": [2]float32{60, 1}, "orthographic": [4]float32{-1, 1, -1, 1}},
		"inverted planes":  {"clipping": [2]float32{10, 1}},
	} {
		t.Run(name, func(t *testing.T) {
			params["child"] = create(t, "Identity", nil)
			n := create(t, "Camera", params)
			assert.ErrorIs(t, ctx.SetScene(n), core.ErrValidation)
		})
	}
}

func TestCameraDraw(t *testing.T) {
	ctx, gl := newContext(t, gltest.Desktop())
	r := create(t, "Render", map[string]any{"geometry": create(t, "Quad", nil)})
	cam := create(t, "Camera", map[string]any{
		"child":       r,
		"eye":         [3]float32{0, 0, 2},
		"center":      [3]float32{0, 0, 0},
		"perspective": [2]float32{60, 1.5},
		"clipping":    [2]float32{1, 10},
	})
	require.NoError(t, ctx.SetScene(cam))
	require.NoError(t, ctx.Draw(0))

	fov := float32(60)
	proj := math.Mat4Perspective(fov*math32.Pi/180, 1.5, 1, 10)
	assert.Equal(t, proj.Floats(), [16]float32(renderedMatrix(t, gl, r, "ngl_projection_matrix")))

	view := math.Mat4LookAt(math.NewVec3(0, 0, 2), math.NewVec3(0, 0, 0), math.NewVec3(0, 1, 0))
	assert.Equal(t, view.Floats(), [16]float32(renderedMatrix(t, gl, r, "ngl_modelview_matrix")))
	assert.Equal(t, math.Mat4Identity(), ctx.Projection(), "popped after the draw")
}

func TestCameraEyeTransform(t *testing.T) {
	ctx, _ := newContext(t, gltest.Desktop())
	eyeChain := create(t, "Translate", map[string]any{
		"child":  create(t, "Identity", nil),
		"vector": [3]float32{0, 0, 5},
	})
	cam := create(t, "Camera", map[string]any{
		"child":         create(t, "Identity", nil),
		"eye_transform": eyeChain,
		"orthographic":  [4]float32{-2, 2, -1, 1},
	})
	require.NoError(t, ctx.SetScene(cam))
	c, _ := implOf[*camera](cam)

	view := math.Mat4LookAt(math.NewVec3(0, 0, 5), math.NewVec3(0, 0, -1), math.NewVec3(0, 1, 0))
	assert.Equal(t, view, c.view)
	assert.Equal(t, math.Mat4Orthographic(-2, 2, -1, 1, 0.1, 100), c.projection)
}
