package core

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformText(t *testing.T) {
	var p Platform
	require.NoError(t, p.UnmarshalText([]byte("egl")))
	assert.Equal(t, PlatformEGL, p)

	b, err := PlatformNSGL.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "nsgl", string(b))

	err = p.UnmarshalText([]byte("x11"))
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestAPIText(t *testing.T) {
	var a API
	require.NoError(t, a.UnmarshalText([]byte("opengles")))
	assert.Equal(t, APIOpenGLES, a)
	assert.Equal(t, "opengl", APIOpenGL.String())
	assert.Error(t, a.UnmarshalText([]byte("vulkan")))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.CaptureBuffer = make([]byte, cfg.Width*cfg.Height*4)
	err := cfg.Validate()
	assert.True(t, errors.Is(err, ErrConfiguration), "capture requires offscreen")

	cfg.Offscreen = true
	assert.NoError(t, cfg.Validate())

	cfg.CaptureBuffer = cfg.CaptureBuffer[:16]
	assert.True(t, errors.Is(cfg.Validate(), ErrConfiguration), "short capture buffer")

	cfg = DefaultConfig()
	cfg.Width = -1
	assert.True(t, errors.Is(cfg.Validate(), ErrConfiguration))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "player.toml")
	data := `
platform = "glx"
api = "opengl"
offscreen = true
width = 320
height = 240
samples = 4
swap_interval = 1
clear_color = [0.1, 0.2, 0.3, 1.0]

[viewport]
x = 0
y = 0
width = 320
height = 240
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, PlatformGLX, cfg.Platform)
	assert.Equal(t, APIOpenGL, cfg.API)
	assert.True(t, cfg.Offscreen)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 240, cfg.Height)
	assert.Equal(t, 4, cfg.Samples)
	assert.Equal(t, 1, cfg.SwapInterval)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1.0}, cfg.ClearColor)
	assert.Equal(t, Viewport{Width: 320, Height: 240}, cfg.Viewport)
}

func TestLoadConfigDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.toml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`platform = "amiga"`), 0o644))

	_, err := LoadConfig(path)
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
