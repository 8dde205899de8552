package core

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite       = Color{1, 1, 1, 1}
	ColorBlack       = Color{0, 0, 0, 1}
	ColorTransparent = Color{0, 0, 0, 0}
)

// ColorFromVec4 builds a Color from an RGBA array as stored in node parameters.
func ColorFromVec4(v [4]float32) Color {
	return Color{R: v[0], G: v[1], B: v[2], A: v[3]}
}

func (c Color) Vec4() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// RGBA8 packs the color into 8-bit channels, clamping each to [0, 1].
func (c Color) RGBA8() [4]uint8 {
	return [4]uint8{toU8(c.R), toU8(c.G), toU8(c.B), toU8(c.A)}
}

func toU8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Viewport is a pixel rectangle. A zero Width or Height means "unset".
type Viewport struct {
	X      int `toml:"x" yaml:"x"`
	Y      int `toml:"y" yaml:"y"`
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`
}

func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}
