package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerDefaultIsSilent(t *testing.T) {
	l := Logger()
	assert.NotNil(t, l)
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}

func TestSetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(nil)

	Logger().Info("OpenGL 3.3")
	assert.Contains(t, buf.String(), "OpenGL 3.3")

	SetLogger(nil)
	Logger().Info("dropped")
	assert.NotContains(t, buf.String(), "dropped")
}

func TestGLErrorIsGPU(t *testing.T) {
	var err error = &GLError{Code: 0x0502, Name: "GL_INVALID_OPERATION", Op: "post draw"}
	wrapped := fmt.Errorf("draw: %w", err)

	assert.True(t, errors.Is(wrapped, ErrGPU))
	assert.False(t, errors.Is(wrapped, ErrIO))

	var glErr *GLError
	assert.True(t, errors.As(wrapped, &glErr))
	assert.Equal(t, "GL_INVALID_OPERATION", glErr.Name)
	assert.Contains(t, err.Error(), "0x0502")
}

func TestColorRGBA8(t *testing.T) {
	c := Color{R: 1, G: 0.5, B: -1, A: 2}
	assert.Equal(t, [4]uint8{255, 128, 0, 255}, c.RGBA8())
	assert.Equal(t, Color{0, 0, 0, 0.8}, ColorFromVec4([4]float32{0, 0, 0, 0.8}))
}
