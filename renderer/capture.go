package renderer

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"nodegl/core"
	"nodegl/scene"
)

// Capture renders root at time t into a new offscreen context of the
// size of cfg and returns the frame. root must not be attached to another
// context.
func Capture(root *scene.Node, cfg core.Config, t float64) (*image.NRGBA, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: cannot capture a %dx%d frame", core.ErrConfiguration, cfg.Width, cfg.Height)
	}
	img := image.NewNRGBA(image.Rect(0, 0, cfg.Width, cfg.Height))
	cfg.Offscreen = true
	cfg.Wrapped = false
	cfg.Viewport = core.Viewport{Width: cfg.Width, Height: cfg.Height}
	cfg.CaptureBuffer = img.Pix

	ctx := scene.NewContext()
	defer ctx.Close()
	if err := ctx.Configure(cfg); err != nil {
		return nil, fmt.Errorf("capture context: %w", err)
	}
	if err := ctx.SetScene(root); err != nil {
		return nil, err
	}
	if err := ctx.Draw(t); err != nil {
		return nil, err
	}
	return img, nil
}

// Screenshot captures root at time t and saves it to path. The image
// format follows the file extension.
func Screenshot(root *scene.Node, cfg core.Config, t float64, path string) error {
	img, err := Capture(root, cfg, t)
	if err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("%w: save screenshot: %v", core.ErrIO, err)
	}
	core.Logger().Info("screenshot saved", "path", path, "time", t)
	return nil
}
