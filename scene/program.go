package scene

import (
	"nodegl/internal/opengl"
)

func init() {
	register(&Class{
		Name: "Program",
		Params: []Param{
			{Name: "vertex", Type: ParamString, Desc: "vertex shader source, the default shader when empty"},
			{Name: "fragment", Type: ParamString, Desc: "fragment shader source, the default shader when empty"},
		},
		new: func() any { return &program{} },
	})
}

// program is a linked GL program with its introspected interface.
type program struct {
	id         uint32
	uniforms   map[string]opengl.UniformInfo
	attributes map[string]opengl.AttributeInfo
	blocks     map[string]opengl.BlockInfo

	gl opengl.Functions
}

func (p *program) init(n *Node) error {
	ctx, err := glOf(n)
	if err != nil {
		return err
	}
	vertex, fragment := n.Str("vertex"), n.Str("fragment")
	if vertex == "" {
		vertex = defaultVertex.source(ctx)
	}
	if fragment == "" {
		fragment = defaultFragment.source(ctx)
	}
	return p.load(n.label, ctx, vertex, fragment)
}

func (p *program) load(label string, ctx *opengl.Context, vertex, fragment string) error {
	f := ctx.GL()
	id, err := opengl.LoadProgram(f, vertex, fragment)
	if err != nil {
		return err
	}
	p.id = id
	p.gl = f
	p.uniforms = opengl.ProbeUniforms(label, f, id)
	p.attributes = opengl.ProbeAttributes(label, f, id)
	p.blocks = opengl.ProbeBufferBlocks(label, ctx, id)
	return nil
}

// uniform returns the location of a uniform, -1 when the program does not
// use it.
func (p *program) uniform(name string) int {
	if info, ok := p.uniforms[name]; ok {
		return info.Location
	}
	return -1
}

func (p *program) uninit(n *Node) {
	p.release()
}

func (p *program) release() {
	if p.id != 0 {
		p.gl.DeleteProgram(p.id)
		p.id = 0
	}
}
