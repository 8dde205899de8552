package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodegl/core"
	"nodegl/internal/opengl/gltest"
	"nodegl/math"
)

func TestContextRequiresConfigure(t *testing.T) {
	ctx := NewContext()
	assert.ErrorIs(t, ctx.Draw(0), core.ErrConfiguration)
	assert.ErrorIs(t, ctx.Reconfigure(core.DefaultConfig()), core.ErrConfiguration)
	assert.Nil(t, ctx.GL())
	ctx.Close()
}

func TestSceneAttachedOnConfigure(t *testing.T) {
	env := gltest.Desktop()
	gltest.Install(t, env)
	ctx := NewContext()
	defer ctx.Close()

	n, c := newCounter(t)
	require.NoError(t, ctx.SetScene(n))
	assert.Equal(t, StateCreated, n.State())

	require.NoError(t, ctx.Configure(env.Config()))
	assert.True(t, ctx.Configured())
	assert.Equal(t, StateInitialized, n.State())
	assert.Same(t, n, ctx.Scene())

	require.NoError(t, ctx.Configure(env.Config()), "reconfiguring rebuilds the scene")
	assert.Equal(t, 2, c.inits)
	assert.Equal(t, 1, c.uninits)
}

func TestReconfigure(t *testing.T) {
	env := gltest.Desktop()
	s := gltest.Install(t, env)
	ctx := NewContext()
	cfg := env.Config()
	cfg.Offscreen = false
	require.NoError(t, ctx.Configure(cfg))
	defer ctx.Close()

	cfg.Width, cfg.Height = 200, 100
	cfg.ClearColor = [4]float32{1, 0, 0, 1}
	require.NoError(t, ctx.Reconfigure(cfg))
	assert.Equal(t, 200, ctx.Config().Width)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, ctx.Config().ClearColor)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, s.GL().ClearValue)
}

func TestReconfigureOffscreen(t *testing.T) {
	ctx, _ := newContext(t, gltest.Desktop())
	cfg := ctx.Config()
	cfg.Width = 10
	assert.ErrorIs(t, ctx.Reconfigure(cfg), core.ErrUnsupported)
	assert.Equal(t, 64, ctx.Config().Width)
}

func TestMatrixStacks(t *testing.T) {
	ctx := NewContext()
	m := math.Mat4Translation(math.NewVec3(1, 2, 3))

	ctx.PushModelView(m)
	ctx.PushProjection(m)
	assert.Equal(t, m, ctx.ModelView())
	assert.Equal(t, m, ctx.Projection())

	for i := 0; i < 3; i++ {
		ctx.PopModelView()
		ctx.PopProjection()
	}
	assert.Equal(t, math.Mat4Identity(), ctx.ModelView(), "the base is never popped")
	assert.Equal(t, math.Mat4Identity(), ctx.Projection())
}

func TestDrawReportsUpdateErrors(t *testing.T) {
	log := captureLog(t)
	ctx, _ := newContext(t, gltest.Desktop())
	n, c := newCounter(t)
	c.fail = core.ErrIO
	require.NoError(t, ctx.SetScene(n))

	err := ctx.Draw(0)
	assert.ErrorIs(t, err, core.ErrIO)
	assert.Equal(t, 1, c.draws, "the frame is still drawn")
	assert.Contains(t, log.String(), "could not update scene")
}

func TestCloseIsIdempotent(t *testing.T) {
	ctx, _ := newContext(t, gltest.Desktop())
	n, _ := newCounter(t)
	require.NoError(t, ctx.SetScene(n))
	ctx.Close()
	ctx.Close()
	assert.False(t, ctx.Configured())
	assert.Nil(t, ctx.Scene())
	assert.Equal(t, 1, n.RefCount())
}
