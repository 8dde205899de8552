package opengl

import (
	"fmt"

	"nodegl/core"
)

// FramebufferProvider is implemented by platforms rendering into a
// framebuffer other than the default one.
type FramebufferProvider interface {
	DefaultFramebuffer() uint32
}

// capturer copies every rendered frame into the configured capture buffer
// in top-down row order.
type capturer struct {
	fb      *Framebuffer
	scratch []byte
}

func (b *Backend) captureInit() error {
	cfg := &b.config
	if cfg.CaptureBuffer == nil {
		return nil
	}
	if want := cfg.Width * cfg.Height * 4; len(cfg.CaptureBuffer) < want {
		return fmt.Errorf("%w: capture buffer holds %d bytes, %d required",
			core.ErrConfiguration, len(cfg.CaptureBuffer), want)
	}

	if b.ctx.Features.Has(FeatureFramebufferObject) {
		fb, err := NewFramebuffer(b.ctx.GL(), cfg.Width, cfg.Height)
		if err != nil {
			return fmt.Errorf("failed to create capture framebuffer: %w", err)
		}
		b.capture.fb = fb
		return nil
	}
	b.capture.scratch = make([]byte, cfg.Width*cfg.Height*4)
	return nil
}

func (b *Backend) mainFramebuffer() uint32 {
	if p, ok := b.ctx.platform.(FramebufferProvider); ok {
		return p.DefaultFramebuffer()
	}
	return 0
}

// captureFrame reads the frame back. The default framebuffer is bottom-up:
// the blit path flips it on the GPU, the fallback path reverses the rows.
func (b *Backend) captureFrame() error {
	cfg := &b.config
	if cfg.CaptureBuffer == nil {
		return nil
	}
	f := b.ctx.GL()
	w, h := cfg.Width, cfg.Height
	main := b.mainFramebuffer()

	if fb := b.capture.fb; fb != nil {
		f.BindFramebuffer(READ_FRAMEBUFFER, main)
		f.BindFramebuffer(DRAW_FRAMEBUFFER, fb.ID)
		f.BlitFramebuffer(0, 0, w, h, 0, h, w, 0, COLOR_BUFFER_BIT, NEAREST)
		f.BindFramebuffer(FRAMEBUFFER, fb.ID)
		f.ReadPixels(0, 0, w, h, RGBA, UNSIGNED_BYTE, cfg.CaptureBuffer)
		f.BindFramebuffer(FRAMEBUFFER, main)
		return nil
	}

	if b.capture.scratch == nil {
		return fmt.Errorf("%w: capture was not initialized", core.ErrConfiguration)
	}
	f.BindFramebuffer(FRAMEBUFFER, main)
	f.ReadPixels(0, 0, w, h, RGBA, UNSIGNED_BYTE, b.capture.scratch)
	FlipRows(cfg.CaptureBuffer, b.capture.scratch, w*4, h)
	return nil
}

func (b *Backend) captureReset() {
	b.capture.fb.Release()
	b.capture.fb = nil
	b.capture.scratch = nil
}

// FlipRows copies height rows of linesize bytes from src to dst in reverse
// order.
func FlipRows(dst, src []byte, linesize, height int) {
	for i := 0; i < height; i++ {
		line := height - i - 1
		copy(dst[i*linesize:(i+1)*linesize], src[line*linesize:(line+1)*linesize])
	}
}
