package opengl

import (
	"fmt"
)

// Framebuffer is a GL framebuffer with a single color texture attachment.
type Framebuffer struct {
	ID     uint32
	Color  *Texture
	Width  int
	Height int

	gl Functions
}

// NewFramebuffer creates an RGBA8 color-only framebuffer.
func NewFramebuffer(f Functions, width, height int) (*Framebuffer, error) {
	params := DefaultTextureParams()
	params.Width, params.Height = width, height
	color, err := NewTexture2D(f, params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create color attachment: %w", err)
	}

	fb := &Framebuffer{ID: f.GenFramebuffer(), Color: color, Width: width, Height: height, gl: f}
	f.BindFramebuffer(FRAMEBUFFER, fb.ID)
	f.FramebufferTexture2D(FRAMEBUFFER, COLOR_ATTACHMENT0, TEXTURE_2D, color.ID, 0)
	status := f.CheckFramebufferStatus(FRAMEBUFFER)
	f.BindFramebuffer(FRAMEBUFFER, 0)

	if status != FRAMEBUFFER_COMPLETE {
		fb.Release()
		return nil, fmt.Errorf("framebuffer incomplete: status=0x%X", status)
	}
	return fb, nil
}

// Release frees the framebuffer and its attachment.
func (fb *Framebuffer) Release() {
	if fb == nil {
		return
	}
	if fb.ID != 0 {
		fb.gl.DeleteFramebuffer(fb.ID)
		fb.ID = 0
	}
	fb.Color.Release()
	fb.Color = nil
}
