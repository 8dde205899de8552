package scene

import (
	"errors"
	"fmt"

	"nodegl/core"
	"nodegl/internal/opengl"
	"nodegl/math"
)

func init() {
	register(&Class{
		Name: "Render",
		Params: []Param{
			{Name: "geometry", Type: ParamNode, Constructor: true, Classes: geometryClasses,
				Desc: "geometry to be rasterized"},
			{Name: "program", Type: ParamNode, Classes: []string{"Program"},
				Desc: "program to be executed, a default one when unset"},
			{Name: "textures", Type: ParamNodeDict, Classes: []string{"Texture2D"},
				Desc: "textures made accessible to the program"},
			{Name: "uniforms", Type: ParamNodeDict, Classes: uniformClasses,
				Desc: "uniforms made accessible to the program"},
			{Name: "buffers", Type: ParamNodeDict, Classes: bufferClasses(),
				Desc: "buffers bound to the uniform and storage blocks of the program"},
			{Name: "attributes", Type: ParamNodeDict, Classes: attributeClasses,
				Desc: "extra vertex attributes made accessible to the program"},
			{Name: "instance_attributes", Type: ParamNodeDict, Classes: attributeClasses,
				Desc: "per instance extra vertex attributes made accessible to the program"},
			{Name: "nb_instances", Type: ParamInt, Default: 0, Desc: "number of instances to draw"},
		},
		new: func() any { return &render{} },
	})
}

// builtinAttributes maps the geometry buffers to their shader names.
var builtinAttributes = []struct {
	name   string
	source func(g *geometry) *Node
}{
	{"ngl_position", func(g *geometry) *Node { return g.vertices }},
	{"ngl_uvcoord", func(g *geometry) *Node { return g.uvcoords }},
	{"ngl_normal", func(g *geometry) *Node { return g.normals }},
}

// attributeBinding pairs a buffer with the program location it feeds.
type attributeBinding struct {
	name      string
	location  int
	node      *Node
	instanced bool
}

type textureBinding struct {
	location int
	node     *Node
}

type uniformBinding struct {
	location int
	node     *Node
}

type blockBinding struct {
	target  uint32
	binding int
	node    *Node
}

// render is the pipeline assembler: it resolves the resources of a Render
// node against the introspected program and issues one indexed draw.
type render struct {
	geometry *geometry
	program  *program
	fallback *Node

	modelview  int
	projection int
	normal     int

	attributes []attributeBinding
	textures   []textureBinding
	uniforms   []uniformBinding
	blocks     []blockBinding
	acquired   []*Node

	instances int
	vao       uint32
	gl        *opengl.Context
}

func (r *render) init(n *Node) (err error) {
	ctx, err := glOf(n)
	if err != nil {
		return err
	}
	r.gl = ctx
	defer func() {
		if err != nil {
			r.uninit(n)
		}
	}()

	src, ok := n.Child("geometry").impl.(geometrySource)
	if !ok {
		return fmt.Errorf("%w: %s is not a geometry", core.ErrValidation, n.Child("geometry").label)
	}
	r.geometry = src.geometry()

	pnode := n.Child("program")
	if pnode == nil {
		if r.fallback, err = New("Program"); err != nil {
			return err
		}
		if err := r.fallback.Attach(n.ctx); err != nil {
			return err
		}
		pnode = r.fallback
	}
	r.program, _ = implOf[*program](pnode)

	r.instances = n.Int("nb_instances")
	if r.instances < 0 {
		return fmt.Errorf("%w: negative instance count %d", core.ErrValidation, r.instances)
	}
	if r.instances > 0 && !ctx.Features.Has(opengl.FeatureDrawInstanced) {
		return fmt.Errorf("%w: context does not support instanced draws", core.ErrUnsupported)
	}
	instanceNames, instanceAttrs := n.Dict("instance_attributes")
	if len(instanceAttrs) > 0 && !ctx.Features.Has(opengl.FeatureInstancedArray) {
		return fmt.Errorf("%w: context does not support instanced arrays", core.ErrUnsupported)
	}

	r.modelview = r.program.uniform("ngl_modelview_matrix")
	r.projection = r.program.uniform("ngl_projection_matrix")
	r.normal = r.program.uniform("ngl_normal_matrix")

	for _, builtin := range builtinAttributes {
		if bnode := builtin.source(r.geometry); bnode != nil {
			r.pair(builtin.name, bnode, false)
		}
	}
	names, attrs := n.Dict("attributes")
	if err := r.pairAll(n, names, attrs, false, bufferCount(r.geometry.vertices), "vertices"); err != nil {
		return err
	}
	if err := r.pairAll(n, instanceNames, instanceAttrs, true, r.instances, "instance"); err != nil {
		return err
	}

	if err := r.resolveResources(n, pnode); err != nil {
		return err
	}

	for _, a := range r.attributes {
		if err := r.acquire(a.node); err != nil {
			return err
		}
	}
	if err := r.acquire(r.geometry.indices); err != nil {
		return err
	}

	if ctx.Features.Has(opengl.FeatureVertexArrayObject) {
		f := ctx.GL()
		r.vao = f.GenVertexArray()
		f.BindVertexArray(r.vao)
		r.bindAttributes()
		f.BindVertexArray(0)
	}
	return nil
}

// pair binds bnode to the attribute name of the program. It reports false
// when the program has no such active attribute.
func (r *render) pair(name string, bnode *Node, instanced bool) bool {
	info, ok := r.program.attributes[name]
	if !ok {
		return false
	}
	if info.Location >= 0 {
		r.attributes = append(r.attributes, attributeBinding{
			name:      name,
			location:  info.Location,
			node:      bnode,
			instanced: instanced,
		})
	}
	return true
}

func (r *render) pairAll(n *Node, names []string, attrs map[string]*Node, instanced bool, want int, what string) error {
	for _, name := range names {
		bnode := attrs[name]
		if got := bufferCount(bnode); got != want {
			return fmt.Errorf("%w: attribute buffer %s count (%d) does not match %s count (%d)",
				core.ErrValidation, name, got, what, want)
		}
		if !r.pair(name, bnode, instanced) {
			core.Logger().Warn(fmt.Sprintf("attribute %s attached to %s not found in %s",
				name, n.label, r.programLabel(n)))
		}
	}
	return nil
}

func (r *render) programLabel(n *Node) string {
	if p := n.Child("program"); p != nil {
		return p.label
	}
	return r.fallback.label
}

// resolveResources looks up the textures, uniforms and buffer blocks in
// the program. Resources the program does not use are skipped.
func (r *render) resolveResources(n *Node, pnode *Node) error {
	names, textures := n.Dict("textures")
	if limit := r.gl.Settings.MaxTextureImageUnits; limit > 0 && len(names) > limit {
		return fmt.Errorf("%w: %d textures exceed the %d available units", core.ErrValidation, len(names), limit)
	}
	for _, name := range names {
		if loc := r.program.uniform(name); loc >= 0 {
			r.textures = append(r.textures, textureBinding{location: loc, node: textures[name]})
		}
	}

	names, uniforms := n.Dict("uniforms")
	for _, name := range names {
		if loc := r.program.uniform(name); loc >= 0 {
			r.uniforms = append(r.uniforms, uniformBinding{location: loc, node: uniforms[name]})
		}
	}

	names, buffers := n.Dict("buffers")
	for _, name := range names {
		block, ok := r.program.blocks[name]
		if !ok {
			core.Logger().Warn("buffer block not found", "block", name, "node", n.label, "program", pnode.label)
			continue
		}
		if err := r.acquire(buffers[name]); err != nil {
			return err
		}
		r.blocks = append(r.blocks, blockBinding{target: block.Type, binding: block.Binding, node: buffers[name]})
	}
	return nil
}

func (r *render) acquire(bnode *Node) error {
	if err := acquire(bnode); err != nil {
		return err
	}
	r.acquired = append(r.acquired, bnode)
	return nil
}

// bindAttributes sets the attribute pointers, recorded in the VAO when one
// is bound.
func (r *render) bindAttributes() {
	f := r.gl.GL()
	for _, a := range r.attributes {
		b, _ := implOf[*buffer](a.node)
		f.BindBuffer(opengl.ARRAY_BUFFER, b.gpu.ID)
		columns, comps, colStride := 1, b.format.comps, 0
		if b.format.comps == 16 {
			columns, comps, colStride = 4, 4, b.stride/4
		}
		for j := 0; j < columns; j++ {
			loc := uint32(a.location + j)
			f.EnableVertexAttribArray(loc)
			f.VertexAttribPointer(loc, comps, b.format.glType, false, b.stride, j*colStride)
			if a.instanced {
				f.VertexAttribDivisor(loc, 1)
			}
		}
	}
	f.BindBuffer(opengl.ARRAY_BUFFER, 0)
}

func (r *render) unbindAttributes() {
	f := r.gl.GL()
	for _, a := range r.attributes {
		columns := 1
		if b, _ := implOf[*buffer](a.node); b.format.comps == 16 {
			columns = 4
		}
		for j := 0; j < columns; j++ {
			f.DisableVertexAttribArray(uint32(a.location + j))
		}
	}
}

func (r *render) update(n *Node, t float64) error {
	if err := n.children(func(child *Node) error { return child.Update(t) }); err != nil {
		return err
	}
	for _, bnode := range r.acquired {
		upload(bnode)
	}
	return nil
}

func (r *render) draw(n *Node) error {
	f := r.gl.GL()
	f.UseProgram(r.program.id)

	if r.vao != 0 {
		f.BindVertexArray(r.vao)
	} else {
		r.bindAttributes()
	}

	modelview := n.ctx.ModelView()
	if r.modelview >= 0 {
		f.UniformMatrix4fv(r.modelview, modelview.Floats())
	}
	if r.projection >= 0 {
		f.UniformMatrix4fv(r.projection, n.ctx.Projection().Floats())
	}
	if r.normal >= 0 {
		f.UniformMatrix3fv(r.normal, math.NormalMatrix(modelview).Floats())
	}

	var errs []error
	for _, u := range r.uniforms {
		if uni, ok := implOf[*uniform](u.node); ok {
			uni.upload(f, u.location)
		}
	}
	for i, tb := range r.textures {
		tex, _ := implOf[*texture](tb.node)
		if tex == nil || tex.tex == nil {
			errs = append(errs, fmt.Errorf("%w: texture %s is not initialized", core.ErrValidation, tb.node.label))
			continue
		}
		f.ActiveTexture(opengl.TEXTURE0 + uint32(i))
		f.BindTexture(opengl.TEXTURE_2D, tex.tex.ID)
		f.Uniform1i(tb.location, i)
	}
	for _, bb := range r.blocks {
		b, _ := implOf[*buffer](bb.node)
		f.BindBufferBase(bb.target, uint32(bb.binding), b.gpu.ID)
	}

	indices, _ := implOf[*buffer](r.geometry.indices)
	f.BindBuffer(opengl.ELEMENT_ARRAY_BUFFER, indices.gpu.ID)
	if r.instances > 0 {
		f.DrawElementsInstanced(r.geometry.topology, indices.count, indices.format.glType, 0, r.instances)
	} else {
		f.DrawElements(r.geometry.topology, indices.count, indices.format.glType, 0)
	}

	if r.vao != 0 {
		f.BindVertexArray(0)
	} else {
		r.unbindAttributes()
	}
	if len(r.textures) > 0 {
		f.ActiveTexture(opengl.TEXTURE0)
	}
	return errors.Join(errs...)
}

func (r *render) uninit(n *Node) {
	if r.vao != 0 {
		r.gl.GL().DeleteVertexArray(r.vao)
	}
	for _, bnode := range r.acquired {
		release(bnode)
	}
	if r.fallback != nil {
		r.fallback.Detach()
		r.fallback.Unref()
	}
	*r = render{}
}
