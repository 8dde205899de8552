package opengl

import (
	"fmt"
)

// TextureParams describes a 2D texture allocation.
type TextureParams struct {
	Width          int
	Height         int
	InternalFormat uint32
	Format         uint32
	Type           uint32
	MinFilter      uint32
	MagFilter      uint32
	WrapS          uint32
	WrapT          uint32
}

// DefaultTextureParams is an RGBA8 texture with nearest filtering and edge
// clamping.
func DefaultTextureParams() TextureParams {
	return TextureParams{
		InternalFormat: RGBA8,
		Format:         RGBA,
		Type:           UNSIGNED_BYTE,
		MinFilter:      NEAREST,
		MagFilter:      NEAREST,
		WrapS:          CLAMP_TO_EDGE,
		WrapT:          CLAMP_TO_EDGE,
	}
}

// BytesPerPixel returns the size of one pixel for the client format.
func (p TextureParams) BytesPerPixel() int {
	comps := 4
	switch p.Format {
	case RED, LUMINANCE:
		comps = 1
	case RG, LUMINANCE_ALPHA:
		comps = 2
	}
	if p.Type == FLOAT {
		return comps * 4
	}
	return comps
}

// Texture is a GL 2D texture object.
type Texture struct {
	ID     uint32
	Params TextureParams

	gl Functions
}

// NewTexture2D allocates a texture and uploads data when non-nil.
func NewTexture2D(f Functions, params TextureParams, data []byte) (*Texture, error) {
	if params.Width <= 0 || params.Height <= 0 {
		return nil, fmt.Errorf("invalid texture dimensions %dx%d", params.Width, params.Height)
	}
	if data != nil {
		if want := params.Width * params.Height * params.BytesPerPixel(); len(data) < want {
			return nil, fmt.Errorf("texture data holds %d bytes, %d required", len(data), want)
		}
	}

	t := &Texture{ID: f.GenTexture(), Params: params, gl: f}
	f.BindTexture(TEXTURE_2D, t.ID)
	f.TexParameteri(TEXTURE_2D, TEXTURE_MIN_FILTER, int(params.MinFilter))
	f.TexParameteri(TEXTURE_2D, TEXTURE_MAG_FILTER, int(params.MagFilter))
	f.TexParameteri(TEXTURE_2D, TEXTURE_WRAP_S, int(params.WrapS))
	f.TexParameteri(TEXTURE_2D, TEXTURE_WRAP_T, int(params.WrapT))
	f.PixelStorei(UNPACK_ALIGNMENT, 1)
	f.TexImage2D(TEXTURE_2D, 0, params.InternalFormat, params.Width, params.Height,
		params.Format, params.Type, data)
	f.BindTexture(TEXTURE_2D, 0)
	return t, nil
}

// Upload replaces the full texture content.
func (t *Texture) Upload(data []byte) {
	t.gl.BindTexture(TEXTURE_2D, t.ID)
	t.gl.TexSubImage2D(TEXTURE_2D, 0, 0, 0, t.Params.Width, t.Params.Height,
		t.Params.Format, t.Params.Type, data)
	t.gl.BindTexture(TEXTURE_2D, 0)
}

// Release frees the GPU texture. It is safe on a nil or released texture.
func (t *Texture) Release() {
	if t == nil || t.ID == 0 {
		return
	}
	t.gl.DeleteTexture(t.ID)
	t.ID = 0
}
