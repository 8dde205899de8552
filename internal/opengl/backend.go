package opengl

import (
	"errors"
	"fmt"

	"nodegl/core"
)

// Backend drives an OpenGL or OpenGL ES context through the frame life
// cycle: configure, (pre draw, post draw)*, destroy.
type Backend struct {
	config  core.Config
	ctx     *Context
	capture capturer
}

func NewBackend() *Backend {
	return &Backend{}
}

// Name is "OpenGL" or "OpenGL ES" once configured.
func (b *Backend) Name() string {
	if b.ctx != nil && b.ctx.ES() {
		return "OpenGL ES"
	}
	return "OpenGL"
}

// GL returns the active context, nil before Configure.
func (b *Backend) GL() *Context { return b.ctx }

// Config returns the configuration currently applied.
func (b *Backend) Config() core.Config { return b.config }

// Configure brings up the native context, loads the entry points, probes
// capabilities and applies the initial state. A context already configured
// is destroyed first.
func (b *Backend) Configure(cfg core.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	b.Destroy()
	b.config = cfg

	ctx, err := NewContext(cfg)
	if err != nil {
		return err
	}
	b.ctx = ctx

	if err := ctx.MakeCurrent(true); err != nil {
		b.Destroy()
		return fmt.Errorf("failed to make context current: %w", err)
	}
	if err := ctx.LoadExtensions(); err != nil {
		b.Destroy()
		return err
	}

	if cfg.SwapInterval >= 0 {
		if err := ctx.SetSwapInterval(cfg.SwapInterval); err != nil {
			core.Logger().Warn("could not set swap interval", "interval", cfg.SwapInterval, "error", err)
		}
	}

	f := ctx.GL()
	if vp := cfg.Viewport; vp.Valid() {
		f.Viewport(vp.X, vp.Y, vp.Width, vp.Height)
	}
	c := cfg.ClearColor
	f.ClearColor(c[0], c[1], c[2], c[3])

	if err := b.captureInit(); err != nil {
		b.Destroy()
		return err
	}
	return nil
}

// Reconfigure resizes the surface and updates viewport and clear color in
// place. Offscreen and wrapped contexts reject it and keep their state.
func (b *Backend) Reconfigure(cfg core.Config) error {
	if b.ctx == nil {
		return fmt.Errorf("%w: backend is not configured", core.ErrConfiguration)
	}
	if err := b.ctx.Resize(cfg.Width, cfg.Height); err != nil {
		return err
	}
	b.config.Width = cfg.Width
	b.config.Height = cfg.Height

	f := b.ctx.GL()
	if vp := cfg.Viewport; vp.Valid() {
		f.Viewport(vp.X, vp.Y, vp.Width, vp.Height)
		b.config.Viewport = vp
	}
	c := cfg.ClearColor
	f.ClearColor(c[0], c[1], c[2], c[3])
	b.config.ClearColor = c
	return nil
}

func (b *Backend) PreDraw(t float64) error {
	b.ctx.GL().Clear(COLOR_BUFFER_BIT | DEPTH_BUFFER_BIT | STENCIL_BUFFER_BIT)
	return nil
}

// PostDraw captures the frame, checks for GL errors, stamps the
// presentation time and swaps. A failed capture does not prevent the swap.
func (b *Backend) PostDraw(t float64) error {
	log := core.Logger()

	captureErr := b.captureFrame()
	if captureErr != nil {
		log.Error("could not capture framebuffer", "error", captureErr)
	}

	glErr := b.ctx.CheckError("post draw")

	b.ctx.SetSurfacePTS(t)

	swapErr := b.ctx.SwapBuffers()
	if swapErr != nil {
		log.Error("could not swap buffers", "error", swapErr)
	}
	return errors.Join(captureErr, glErr, swapErr)
}

// Destroy releases the capture resources, then the native context. It
// tolerates partial initialization.
func (b *Backend) Destroy() {
	if b.ctx == nil {
		return
	}
	if b.ctx.GL() != nil {
		b.captureReset()
	}
	b.ctx.Close()
	b.ctx = nil
}
