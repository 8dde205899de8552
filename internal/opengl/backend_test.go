package opengl_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodegl/core"
	"nodegl/internal/opengl"
	"nodegl/internal/opengl/gltest"
)

func configure(t *testing.T, env *gltest.Env, cfg core.Config) (*opengl.Backend, *gltest.Session) {
	t.Helper()
	s := gltest.Install(t, env)
	b := opengl.NewBackend()
	require.NoError(t, b.Configure(cfg))
	t.Cleanup(b.Destroy)
	return b, s
}

func TestConfigureDesktop(t *testing.T) {
	var buf bytes.Buffer
	core.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer core.SetLogger(nil)

	env := gltest.Desktop()
	b, s := configure(t, env, env.Config())

	ctx := b.GL()
	assert.Equal(t, "OpenGL", b.Name())
	assert.Equal(t, 3, ctx.Major)
	assert.Equal(t, 3, ctx.Minor)
	assert.True(t, ctx.Features.Has(opengl.FeatureVertexArrayObject))
	assert.True(t, ctx.Features.Has(opengl.FeatureFramebufferObject))
	assert.False(t, ctx.Features.Has(opengl.FeatureComputeShader))
	assert.Equal(t, uint32(opengl.RED), ctx.Settings.Format1Comp)
	assert.Equal(t, 16, ctx.Settings.MaxTextureImageUnits)
	assert.Equal(t, [3]int{}, ctx.Settings.MaxComputeWorkGroupCounts)

	p := s.Platform()
	assert.True(t, p.Created)
	assert.True(t, p.Current)
	assert.Equal(t, -1, p.Interval, "negative swap interval leaves the platform untouched")

	assert.Contains(t, buf.String(), "OpenGL 3.3")
	assert.Contains(t, buf.String(), "OpenGL features")
}

func TestConfigureCompute(t *testing.T) {
	env := gltest.Desktop43()
	b, s := configure(t, env, env.Config())

	ctx := b.GL()
	assert.True(t, ctx.Features.Has(opengl.FeatureComputeShader|opengl.FeatureShaderStorageBufferObject))
	assert.True(t, ctx.Features.Has(opengl.FeatureProgramInterfaceQuery))
	assert.Equal(t, [3]int{65535, 65535, 65535}, ctx.Settings.MaxComputeWorkGroupCounts)
	assert.Equal(t, 3, s.GL().Count("GetIntegeri"))
}

func TestConfigureDropsProgramInterfaceWithoutDriverSupport(t *testing.T) {
	env := gltest.Desktop43()
	env.NoProgramInterface = true
	b, _ := configure(t, env, env.Config())
	assert.False(t, b.GL().Features.Has(opengl.FeatureProgramInterfaceQuery))
	assert.True(t, b.GL().Features.Has(opengl.FeatureShaderStorageBufferObject))
}

func TestConfigureGLES2(t *testing.T) {
	var buf bytes.Buffer
	core.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer core.SetLogger(nil)

	env := gltest.GLES2()
	env.Extensions = []string{"GL_OES_depth_texture_cube_map", "GL_OES_vertex_array_object"}
	b, _ := configure(t, env, env.Config())

	ctx := b.GL()
	assert.Equal(t, "OpenGL ES", b.Name())
	assert.True(t, ctx.ES())
	assert.True(t, ctx.Features.Has(opengl.FeatureVertexArrayObject))
	assert.False(t, ctx.Features.Has(opengl.FeatureDepthTexture), "token match only")
	assert.False(t, ctx.Features.Has(opengl.FeatureFramebufferObject))
	assert.Equal(t, uint32(opengl.LUMINANCE), ctx.Settings.Format1Comp)
	assert.Equal(t, uint32(opengl.LUMINANCE_ALPHA), ctx.Settings.Format2Comp)
	assert.Contains(t, buf.String(), "OpenGL ES 2.0")
}

func TestConfigureVersionFloor(t *testing.T) {
	env := &gltest.Env{Major: 2, Minor: 1, Width: 8, Height: 8}
	gltest.Install(t, env)
	err := opengl.NewBackend().Configure(env.Config())
	assert.True(t, errors.Is(err, core.ErrCapability))

	es := &gltest.Env{ES: true, Major: 1, Minor: 1, Width: 8, Height: 8}
	gltest.Install(t, es)
	err = opengl.NewBackend().Configure(es.Config())
	assert.True(t, errors.Is(err, core.ErrCapability))

	es = &gltest.Env{ES: true, Version: "WebGL 2.0", Width: 8, Height: 8}
	gltest.Install(t, es)
	err = opengl.NewBackend().Configure(es.Config())
	assert.True(t, errors.Is(err, core.ErrCapability))
}

func TestConfigureMissingMandatoryEntryPoint(t *testing.T) {
	env := gltest.Desktop()
	env.Missing = []string{"Viewport"}
	s := gltest.Install(t, env)

	err := opengl.NewBackend().Configure(env.Config())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrCapability))
	assert.Contains(t, err.Error(), "glViewport")
	assert.Equal(t, 1, s.Platform().Uninits, "context released on failure")
}

func TestConfigureMissingOptionalEntryPoint(t *testing.T) {
	env := gltest.Desktop()
	env.Missing = []string{"VertexAttribDivisor"}
	b, _ := configure(t, env, env.Config())
	assert.False(t, b.GL().Features.Has(opengl.FeatureInstancedArray))
	assert.True(t, b.GL().Features.Has(opengl.FeatureDrawInstanced))
}

func TestConfigureErrors(t *testing.T) {
	env := gltest.Desktop()
	gltest.Install(t, env)

	cfg := env.Config()
	cfg.Width = 0
	err := opengl.NewBackend().Configure(cfg)
	assert.True(t, errors.Is(err, core.ErrConfiguration), "offscreen needs positive dimensions")

	cfg = env.Config()
	cfg.Offscreen = false
	cfg.CaptureBuffer = make([]byte, cfg.Width*cfg.Height*4)
	err = opengl.NewBackend().Configure(cfg)
	assert.True(t, errors.Is(err, core.ErrConfiguration), "capture requires offscreen")

	opengl.UnregisterLoader(core.APIOpenGL)
	err = opengl.NewBackend().Configure(env.Config())
	assert.True(t, errors.Is(err, core.ErrCapability), "no loader")
}

func TestConfigureUnregisteredPlatform(t *testing.T) {
	err := opengl.NewBackend().Configure(gltest.Desktop().Config())
	assert.True(t, errors.Is(err, core.ErrConfiguration))
}

func TestConfigureInitialState(t *testing.T) {
	env := gltest.Desktop()
	cfg := env.Config()
	cfg.SwapInterval = 1
	cfg.Viewport = core.Viewport{X: 1, Y: 2, Width: 30, Height: 40}
	cfg.ClearColor = [4]float32{0.1, 0.2, 0.3, 1}
	_, s := configure(t, env, cfg)

	assert.Equal(t, 1, s.Platform().Interval)
	assert.Equal(t, [4]int{1, 2, 30, 40}, s.GL().ViewportRect)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, s.GL().ClearValue)
}

func TestConfigureWrapped(t *testing.T) {
	env := gltest.Desktop()
	cfg := env.Config()
	cfg.Offscreen = false
	cfg.Wrapped = true
	cfg.Display, cfg.Window, cfg.Handle = 1, 2, 3
	_, s := configure(t, env, cfg)

	p := s.Platform()
	assert.False(t, p.Created, "wrapped contexts are adopted")
	assert.Equal(t, [3]uintptr{1, 2, 3}, p.Handles)
}

func TestReconfigureRejected(t *testing.T) {
	for name, mutate := range map[string]func(*core.Config){
		"offscreen": func(c *core.Config) {},
		"wrapped": func(c *core.Config) {
			c.Offscreen = false
			c.Wrapped = true
		},
	} {
		t.Run(name, func(t *testing.T) {
			env := gltest.Desktop()
			cfg := env.Config()
			mutate(&cfg)
			cfg.ClearColor = [4]float32{1, 0, 0, 1}
			b, s := configure(t, env, cfg)

			next := cfg
			next.Width, next.Height = 128, 96
			next.ClearColor = [4]float32{0, 1, 0, 1}
			err := b.Reconfigure(next)
			assert.True(t, errors.Is(err, core.ErrUnsupported))

			assert.Equal(t, cfg.Width, b.Config().Width)
			assert.Equal(t, cfg.Height, b.Config().Height)
			assert.Equal(t, cfg.ClearColor, b.Config().ClearColor)
			assert.Equal(t, [4]float32{1, 0, 0, 1}, s.GL().ClearValue)
			assert.Equal(t, [2]int{cfg.Width, cfg.Height}, s.Platform().Size)
		})
	}
}

func TestReconfigureOnscreen(t *testing.T) {
	env := gltest.Desktop()
	cfg := env.Config()
	cfg.Offscreen = false
	b, s := configure(t, env, cfg)

	next := cfg
	next.Width, next.Height = 200, 100
	next.Viewport = core.Viewport{Width: 200, Height: 100}
	next.ClearColor = [4]float32{0, 0, 1, 1}
	require.NoError(t, b.Reconfigure(next))

	assert.Equal(t, [2]int{200, 100}, s.Platform().Size)
	assert.Equal(t, 200, b.Config().Width)
	assert.Equal(t, [4]int{0, 0, 200, 100}, s.GL().ViewportRect)
	assert.Equal(t, [4]float32{0, 0, 1, 1}, s.GL().ClearValue)
}

func TestPreDrawClears(t *testing.T) {
	env := gltest.Desktop()
	b, s := configure(t, env, env.Config())
	require.NoError(t, b.PreDraw(0))
	assert.Equal(t, 1, s.GL().Count("Clear"))
}

func TestPostDrawSwapsAndStampsPTS(t *testing.T) {
	env := gltest.Desktop()
	b, s := configure(t, env, env.Config())

	require.NoError(t, b.PostDraw(0.5))
	require.NoError(t, b.PostDraw(1.0))
	assert.Equal(t, 2, s.Platform().SwapCount())
	assert.Equal(t, []float64{0.5, 1.0}, s.Platform().PTS)
}

func TestPostDrawReportsGLError(t *testing.T) {
	env := gltest.Desktop()
	b, s := configure(t, env, env.Config())

	s.GL().SetError(opengl.INVALID_OPERATION)
	err := b.PostDraw(0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrGPU))

	var glErr *core.GLError
	require.True(t, errors.As(err, &glErr))
	assert.Equal(t, "GL_INVALID_OPERATION", glErr.Name)
	assert.Equal(t, 1, s.Platform().SwapCount(), "the frame is still presented")
}

// gradient encodes the row index, counted from the bottom, in the red
// channel.
func gradient(x, y int) [4]byte {
	return [4]byte{byte(y), byte(x), 0, 255}
}

func assertTopDown(t *testing.T, buf []byte, width, height int) {
	t.Helper()
	for row := 0; row < height; row++ {
		for x := 0; x < width; x++ {
			p := buf[(row*width+x)*4:]
			require.Equal(t, byte(height-1-row), p[0], "row %d", row)
			require.Equal(t, byte(x), p[1])
		}
	}
}

func TestCaptureWithoutFramebufferObject(t *testing.T) {
	env := gltest.GLES2()
	env.Width, env.Height = 8, 6
	env.Pixel = gradient

	cfg := env.Config()
	cfg.CaptureBuffer = make([]byte, 8*6*4)
	b, s := configure(t, env, cfg)
	require.False(t, b.GL().Features.Has(opengl.FeatureFramebufferObject))

	require.NoError(t, b.PostDraw(0))
	assertTopDown(t, cfg.CaptureBuffer, 8, 6)
	assert.Zero(t, s.GL().Count("BlitFramebuffer"))
}

func TestCaptureWithFramebufferObject(t *testing.T) {
	env := gltest.Desktop()
	env.Width, env.Height = 8, 6
	env.Pixel = gradient

	cfg := env.Config()
	cfg.CaptureBuffer = make([]byte, 8*6*4)
	b, s := configure(t, env, cfg)
	require.True(t, b.GL().Features.Has(opengl.FeatureFramebufferObject))

	require.NoError(t, b.PostDraw(0))
	assertTopDown(t, cfg.CaptureBuffer, 8, 6)
	assert.Equal(t, 1, s.GL().Count("BlitFramebuffer"))
}

func TestCaptureMissingBlitFallsBack(t *testing.T) {
	env := gltest.Desktop()
	env.Width, env.Height = 4, 4
	env.Pixel = gradient
	env.Missing = []string{"BlitFramebuffer"}

	cfg := env.Config()
	cfg.CaptureBuffer = make([]byte, 4*4*4)
	b, _ := configure(t, env, cfg)
	require.False(t, b.GL().Features.Has(opengl.FeatureFramebufferObject))

	require.NoError(t, b.PostDraw(0))
	assertTopDown(t, cfg.CaptureBuffer, 4, 4)
}

func TestDestroyReleasesCapture(t *testing.T) {
	env := gltest.Desktop()
	cfg := env.Config()
	cfg.CaptureBuffer = make([]byte, cfg.Width*cfg.Height*4)
	s := gltest.Install(t, env)

	b := opengl.NewBackend()
	require.NoError(t, b.Configure(cfg))
	f := s.GL()
	assert.Len(t, f.Framebuffers, 1)

	b.Destroy()
	assert.Empty(t, f.Framebuffers)
	assert.Empty(t, f.Textures)
	assert.Equal(t, 1, s.Platform().Uninits)

	b.Destroy()
	assert.Equal(t, 1, s.Platform().Uninits, "destroy is idempotent")
}

func TestConfigureTwiceDestroysPrevious(t *testing.T) {
	env := gltest.Desktop()
	cfg := env.Config()
	cfg.CaptureBuffer = make([]byte, cfg.Width*cfg.Height*4)
	b, s := configure(t, env, cfg)
	first, firstGL := s.Platform(), s.GL()

	require.NoError(t, b.Configure(cfg))
	assert.Equal(t, 1, first.Uninits)
	assert.Empty(t, firstGL.Framebuffers, "the capture framebuffer is released")
	assert.Len(t, s.Platforms(), 2)
	assert.Zero(t, s.Platform().Uninits)
	assert.Len(t, s.GL().Framebuffers, 1)
}
