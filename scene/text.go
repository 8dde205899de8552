package scene

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"nodegl/core"
	"nodegl/internal/opengl"
	"nodegl/math"
)

func init() {
	register(&Class{
		Name: "Text",
		Params: []Param{
			{Name: "text", Type: ParamString, Constructor: true, Desc: "text string to rasterize"},
			{Name: "fg_color", Type: ParamVec4, Default: [4]float32{1, 1, 1, 1}, Desc: "foreground text color"},
			{Name: "bg_color", Type: ParamVec4, Default: [4]float32{0, 0, 0, 0.8}, Desc: "background text color"},
			{Name: "box_corner", Type: ParamVec3, Default: [3]float32{-1, -1, 0},
				Desc: "origin of the box_width and box_height vectors"},
			{Name: "box_width", Type: ParamVec3, Default: [3]float32{2, 0, 0}, Desc: "box width vector"},
			{Name: "box_height", Type: ParamVec3, Default: [3]float32{0, 2, 0}, Desc: "box height vector"},
			{Name: "padding", Type: ParamInt, Default: 3, Desc: "pixel padding around the text"},
			{Name: "valign", Type: ParamSelect, Default: "center", Choices: []string{"center", "bottom", "top"},
				Desc: "vertical alignment of the text in the box"},
			{Name: "halign", Type: ParamSelect, Default: "center", Choices: []string{"center", "right", "left"},
				Desc: "horizontal alignment of the text in the box"},
		},
		new: func() any { return &text{} },
	})
}

var textFace = basicfont.Face7x13

var textUVs = []float32{0, 1, 1, 1, 1, 0, 0, 0}

// text renders a string with a fixed 7x13 bitmap font into a texture
// mapped on a quad fitted in the box.
type text struct {
	prog       program
	position   int
	uvcoord    int
	tex        int
	modelview  int
	projection int

	vertices *opengl.Buffer
	uvs      *opengl.Buffer
	texture  *opengl.Texture
	vao      uint32
	gl       *opengl.Context
}

// rasterize draws s on a canvas sized to fit it: one 7x13 cell per
// character, one row per line, plus padding on every side.
func rasterize(s string, padding int, fg, bg [4]float32) *image.NRGBA {
	lines := strings.Split(s, "\n")
	cols := 0
	for _, line := range lines {
		cols = max(cols, utf8.RuneCountInString(line))
	}
	w := cols*textFace.Advance + 2*padding
	h := len(lines)*textFace.Height + 2*padding

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(nrgba(bg)), image.Point{}, draw.Src)
	d := font.Drawer{Dst: img, Src: image.NewUniform(nrgba(fg)), Face: textFace}
	for i, line := range lines {
		d.Dot = fixed.P(padding, padding+i*textFace.Height+textFace.Ascent)
		d.DrawString(line)
	}
	return img
}

func nrgba(v [4]float32) color.NRGBA {
	c := core.ColorFromVec4(v).RGBA8()
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// fitBox shrinks the box along one axis to the aspect ratio of the canvas
// and positions the result according to the alignments. It returns the
// four corners of the quad, counter-clockwise from the origin.
func fitBox(corner, width, height math.Vec3, canvasW, canvasH int, valign, halign string) [4]math.Vec3 {
	boxRatio := width.Length() / height.Length()
	texRatio := float32(canvasW) / float32(canvasH)
	w, h := width, height
	if scale := texRatio / boxRatio; scale < 1 {
		w = w.Mul(scale)
	} else {
		h = h.Mul(1 / scale)
	}

	dw, dh := width.Sub(w), height.Sub(h)
	switch valign {
	case "center":
		corner = corner.Add(dh.Mul(0.5))
	case "top":
		corner = corner.Add(dh)
	}
	switch halign {
	case "center":
		corner = corner.Add(dw.Mul(0.5))
	case "right":
		corner = corner.Add(dw)
	}
	return [4]math.Vec3{corner, corner.Add(w), corner.Add(w).Add(h), corner.Add(h)}
}

func (t *text) init(n *Node) (err error) {
	ctx, err := glOf(n)
	if err != nil {
		return err
	}
	t.gl = ctx
	f := ctx.GL()

	img := rasterize(n.Str("text"), n.Int("padding"), n.Vec4("fg_color").Array(), n.Vec4("bg_color").Array())
	quad := fitBox(n.Vec3("box_corner"), n.Vec3("box_width"), n.Vec3("box_height"),
		img.Rect.Dx(), img.Rect.Dy(), n.Str("valign"), n.Str("halign"))

	if err := t.prog.load(n.label, ctx, textVertex.source(ctx), textFragment.source(ctx)); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			t.uninit(n)
		}
	}()

	attribute := func(name string) int {
		if info, ok := t.prog.attributes[name]; ok {
			return info.Location
		}
		return -1
	}
	t.position, t.uvcoord = attribute("position"), attribute("uvcoord")
	t.tex = t.prog.uniform("tex")
	t.modelview = t.prog.uniform("modelview_matrix")
	t.projection = t.prog.uniform("projection_matrix")
	if t.position < 0 || t.uvcoord < 0 || t.tex < 0 || t.modelview < 0 || t.projection < 0 {
		return fmt.Errorf("%w: text program is missing attributes or uniforms", core.ErrGPU)
	}

	f.UseProgram(t.prog.id)
	f.Uniform1i(t.tex, 0)

	vertices := make([]float32, 0, 12)
	for _, v := range quad {
		vertices = append(vertices, v.X, v.Y, v.Z)
	}
	vdata, _ := binary.Append(nil, binary.LittleEndian, vertices)
	uvdata, _ := binary.Append(nil, binary.LittleEndian, textUVs)
	t.vertices = opengl.NewBuffer(f, len(vdata), vdata, opengl.STATIC_DRAW)
	t.uvs = opengl.NewBuffer(f, len(uvdata), uvdata, opengl.STATIC_DRAW)

	if ctx.Features.Has(opengl.FeatureVertexArrayObject) {
		t.vao = f.GenVertexArray()
		f.BindVertexArray(t.vao)
		t.bindAttributes()
		f.BindVertexArray(0)
	}

	params := opengl.DefaultTextureParams()
	params.Width, params.Height = img.Rect.Dx(), img.Rect.Dy()
	params.MinFilter, params.MagFilter = opengl.LINEAR, opengl.LINEAR
	t.texture, err = opengl.NewTexture2D(f, params, img.Pix)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrGPU, err)
	}
	return nil
}

func (t *text) bindAttributes() {
	f := t.gl.GL()
	f.EnableVertexAttribArray(uint32(t.position))
	f.BindBuffer(opengl.ARRAY_BUFFER, t.vertices.ID)
	f.VertexAttribPointer(uint32(t.position), 3, opengl.FLOAT, false, 3*4, 0)
	f.EnableVertexAttribArray(uint32(t.uvcoord))
	f.BindBuffer(opengl.ARRAY_BUFFER, t.uvs.ID)
	f.VertexAttribPointer(uint32(t.uvcoord), 2, opengl.FLOAT, false, 2*4, 0)
	f.BindBuffer(opengl.ARRAY_BUFFER, 0)
}

func (t *text) draw(n *Node) error {
	f := t.gl.GL()
	f.UseProgram(t.prog.id)
	if t.vao != 0 {
		f.BindVertexArray(t.vao)
	} else {
		t.bindAttributes()
	}
	f.UniformMatrix4fv(t.modelview, n.ctx.ModelView().Floats())
	f.UniformMatrix4fv(t.projection, n.ctx.Projection().Floats())
	f.ActiveTexture(opengl.TEXTURE0)
	f.BindTexture(opengl.TEXTURE_2D, t.texture.ID)
	f.DrawArrays(opengl.TRIANGLE_FAN, 0, 4)

	if t.vao != 0 {
		f.BindVertexArray(0)
	} else {
		f.DisableVertexAttribArray(uint32(t.position))
		f.DisableVertexAttribArray(uint32(t.uvcoord))
	}
	return nil
}

func (t *text) uninit(n *Node) {
	if t.vao != 0 {
		t.gl.GL().DeleteVertexArray(t.vao)
	}
	t.prog.release()
	t.vertices.Release()
	t.uvs.Release()
	t.texture.Release()
	*t = text{}
}
