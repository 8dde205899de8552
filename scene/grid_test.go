package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodegl/core"
	"nodegl/internal/opengl"
	"nodegl/internal/opengl/gltest"
	"nodegl/math"
)

func TestGridMesh(t *testing.T) {
	m := gridMesh(2, 2)
	assert.Equal(t, "lines", m.Topology)
	assert.Equal(t, 12, m.VertexCount())
	assert.Len(t, m.Indices, 12)
	assert.Equal(t, []float32{-1, 0, -1, -1, 0, 1}, m.Positions[:6])
	require.NoError(t, m.validate())
}

func TestWireBoxMesh(t *testing.T) {
	m := wireBoxMesh(math.NewVec3(0, 0, 0), math.NewVec3(1, 2, 3))
	assert.Equal(t, 24, m.VertexCount(), "12 edges")
	for i := 0; i < len(m.Positions); i += 6 {
		from := math.NewVec3(m.Positions[i], m.Positions[i+1], m.Positions[i+2])
		to := math.NewVec3(m.Positions[i+3], m.Positions[i+4], m.Positions[i+5])
		d := to.Sub(from)
		nonZero := 0
		for _, c := range []float32{d.X, d.Y, d.Z} {
			if c != 0 {
				nonZero++
			}
		}
		assert.Equal(t, 1, nonZero, "edges are axis aligned")
	}
}

func TestGridDraw(t *testing.T) {
	ctx, gl := newContext(t, gltest.Desktop())
	require.NoError(t, ctx.SetScene(create(t, "Render", map[string]any{"geometry": create(t, "Grid", nil)})))
	require.NoError(t, ctx.Draw(0))
	draws := gl.DrawCalls()
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(opengl.LINES), draws[0].Mode)
	assert.Equal(t, 44, draws[0].Count)

	bad := create(t, "Render", map[string]any{"geometry": create(t, "Grid", map[string]any{"divisions": 0})})
	assert.ErrorIs(t, ctx.SetScene(bad), core.ErrValidation)
}
