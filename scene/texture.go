package scene

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"nodegl/core"
	"nodegl/internal/opengl"
)

var (
	textureFilters = map[string]uint32{
		"nearest": opengl.NEAREST,
		"linear":  opengl.LINEAR,
	}
	textureWraps = map[string]uint32{
		"clamp_to_edge":   opengl.CLAMP_TO_EDGE,
		"repeat":          opengl.REPEAT,
		"mirrored_repeat": opengl.MIRRORED_REPEAT,
	}
	filterNames = []string{"nearest", "linear"}
	wrapNames   = []string{"clamp_to_edge", "repeat", "mirrored_repeat"}
)

func init() {
	register(&Class{
		Name: "Texture2D",
		Params: []Param{
			{Name: "data", Type: ParamData, Desc: "RGBA8 pixels, top row first"},
			{Name: "filename", Type: ParamString, Desc: "image file (png, jpeg, bmp, tiff or webp)"},
			{Name: "width", Type: ParamInt, Default: 0},
			{Name: "height", Type: ParamInt, Default: 0},
			{Name: "min_filter", Type: ParamSelect, Default: "nearest", Choices: filterNames},
			{Name: "mag_filter", Type: ParamSelect, Default: "nearest", Choices: filterNames},
			{Name: "wrap_s", Type: ParamSelect, Default: "clamp_to_edge", Choices: wrapNames},
			{Name: "wrap_t", Type: ParamSelect, Default: "clamp_to_edge", Choices: wrapNames},
		},
		new: func() any { return &texture{} },
	})
}

type texture struct {
	tex *opengl.Texture
}

func (t *texture) init(n *Node) error {
	ctx, err := glOf(n)
	if err != nil {
		return err
	}

	params := opengl.DefaultTextureParams()
	params.MinFilter = textureFilters[n.Str("min_filter")]
	params.MagFilter = textureFilters[n.Str("mag_filter")]
	params.WrapS = textureWraps[n.Str("wrap_s")]
	params.WrapT = textureWraps[n.Str("wrap_t")]
	params.Width, params.Height = n.Int("width"), n.Int("height")

	var pixels []byte
	switch filename := n.Str("filename"); {
	case filename != "" && n.IsSet("data"):
		return fmt.Errorf("%w: data and filename cannot be set at the same time", core.ErrValidation)
	case filename != "":
		img, err := loadImage(filename)
		if err != nil {
			return err
		}
		params.Width, params.Height = img.Rect.Dx(), img.Rect.Dy()
		pixels = img.Pix
	case n.IsSet("data"):
		pixels = n.Data("data")
		if want := params.Width * params.Height * 4; len(pixels) != want {
			return fmt.Errorf("%w: texture data holds %d bytes, %dx%d RGBA8 requires %d",
				core.ErrValidation, len(pixels), params.Width, params.Height, want)
		}
	}
	if params.Width <= 0 || params.Height <= 0 {
		return fmt.Errorf("%w: invalid texture dimensions %dx%d", core.ErrValidation, params.Width, params.Height)
	}

	tex, err := opengl.NewTexture2D(ctx.GL(), params, pixels)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrValidation, err)
	}
	t.tex = tex
	return nil
}

func (t *texture) uninit(n *Node) {
	t.tex.Release()
	t.tex = nil
}

// loadImage decodes an image file into tightly packed RGBA8 pixels, with
// EXIF orientation applied.
func loadImage(path string) (*image.NRGBA, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: load texture %q: %v", core.ErrIO, path, err)
	}
	return imaging.Clone(img), nil
}
