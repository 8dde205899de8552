package scene

import (
	"fmt"

	"nodegl/core"
	"nodegl/internal/opengl"
	"nodegl/math"
)

var topologies = map[string]uint32{
	"points":         opengl.POINTS,
	"line_strip":     opengl.LINE_STRIP,
	"line_loop":      opengl.LINE_LOOP,
	"lines":          opengl.LINES,
	"triangle_strip": opengl.TRIANGLE_STRIP,
	"triangle_fan":   opengl.TRIANGLE_FAN,
	"triangles":      opengl.TRIANGLES,
}

var geometryClasses = []string{"Geometry", "Quad", "Triangle", "Circle", "Sphere", "Grid", "WireBox"}

func init() {
	register(&Class{
		Name: "Geometry",
		Params: []Param{
			{Name: "vertices", Type: ParamNode, Constructor: true, Classes: []string{"BufferVec3"}, Desc: "vertex positions"},
			{Name: "uvcoords", Type: ParamNode, Classes: uvBufferClasses, Desc: "texture coordinates"},
			{Name: "normals", Type: ParamNode, Classes: []string{"BufferVec3"}, Desc: "vertex normals"},
			{Name: "indices", Type: ParamNode, Classes: indexBufferClasses, Desc: "indices, generated when unset"},
			{Name: "topology", Type: ParamSelect, Default: "triangles", Choices: []string{
				"points", "line_strip", "line_loop", "lines", "triangle_strip", "triangle_fan", "triangles",
			}, Desc: "primitive assembled from the vertices"},
		},
		new: func() any { return &geometry{} },
	})
	register(&Class{
		Name: "Quad",
		Params: []Param{
			{Name: "corner", Type: ParamVec3, Default: [3]float32{-0.5, -0.5, 0}, Desc: "origin of the quad"},
			{Name: "width", Type: ParamVec3, Default: [3]float32{1, 0, 0}, Desc: "width vector"},
			{Name: "height", Type: ParamVec3, Default: [3]float32{0, 1, 0}, Desc: "height vector"},
			{Name: "uv_corner", Type: ParamVec2, Default: [2]float32{0, 0}},
			{Name: "uv_width", Type: ParamVec2, Default: [2]float32{1, 0}},
			{Name: "uv_height", Type: ParamVec2, Default: [2]float32{0, 1}},
		},
		new: func() any {
			return &primitive{mesh: func(n *Node) *Mesh {
				return quadMesh(n.Vec3("corner"), n.Vec3("width"), n.Vec3("height"),
					n.Vec2("uv_corner"), n.Vec2("uv_width"), n.Vec2("uv_height"))
			}}
		},
	})
	register(&Class{
		Name: "Triangle",
		Params: []Param{
			{Name: "edge0", Type: ParamVec3, Default: [3]float32{1, -1, 0}},
			{Name: "edge1", Type: ParamVec3, Default: [3]float32{0, 1, 0}},
			{Name: "edge2", Type: ParamVec3, Default: [3]float32{-1, -1, 0}},
			{Name: "uv_edge0", Type: ParamVec2, Default: [2]float32{0, 0}},
			{Name: "uv_edge1", Type: ParamVec2, Default: [2]float32{0, 1}},
			{Name: "uv_edge2", Type: ParamVec2, Default: [2]float32{1, 1}},
		},
		new: func() any {
			return &primitive{mesh: func(n *Node) *Mesh {
				return triangleMesh(
					[3]math.Vec3{n.Vec3("edge0"), n.Vec3("edge1"), n.Vec3("edge2")},
					[3][2]float32{n.Vec2("uv_edge0"), n.Vec2("uv_edge1"), n.Vec2("uv_edge2")})
			}}
		},
	})
	register(&Class{
		Name: "Circle",
		Params: []Param{
			{Name: "radius", Type: ParamFloat, Default: 1.0},
			{Name: "npoints", Type: ParamInt, Default: 16, Desc: "number of points on the circumference"},
		},
		new: func() any {
			return &primitive{mesh: func(n *Node) *Mesh {
				return circleMesh(float32(n.Float("radius")), n.Int("npoints"))
			}, check: func(n *Node) error {
				if n.Int("npoints") < 3 {
					return fmt.Errorf("%w: a circle needs at least 3 points", core.ErrValidation)
				}
				return nil
			}}
		},
	})
	register(&Class{
		Name: "Sphere",
		Params: []Param{
			{Name: "radius", Type: ParamFloat, Default: 1.0},
			{Name: "segments", Type: ParamInt, Default: 32},
			{Name: "rings", Type: ParamInt, Default: 16},
		},
		new: func() any {
			return &primitive{mesh: func(n *Node) *Mesh {
				return sphereMesh(float32(n.Float("radius")), n.Int("segments"), n.Int("rings"))
			}}
		},
	})
}

// geometrySource is implemented by every class usable as a Render
// geometry.
type geometrySource interface {
	geometry() *geometry
}

// geometry validates its buffers and completes them with sequential
// indices when none are given.
type geometry struct {
	vertices *Node
	uvcoords *Node
	normals  *Node
	indices  *Node
	topology uint32

	generated *Node
}

func (g *geometry) geometry() *geometry { return g }

func (g *geometry) init(n *Node) error {
	g.vertices = n.Child("vertices")
	g.uvcoords = n.Child("uvcoords")
	g.normals = n.Child("normals")
	g.indices = n.Child("indices")
	g.topology = topologies[n.Str("topology")]

	nv := bufferCount(g.vertices)
	if g.uvcoords != nil && bufferCount(g.uvcoords) != nv {
		return fmt.Errorf("%w: uvcoords count (%d) does not match vertices count (%d)",
			core.ErrValidation, bufferCount(g.uvcoords), nv)
	}
	if g.normals != nil && bufferCount(g.normals) != nv {
		return fmt.Errorf("%w: normals count (%d) does not match vertices count (%d)",
			core.ErrValidation, bufferCount(g.normals), nv)
	}

	if g.indices == nil {
		seq := make([]uint32, nv)
		for i := range seq {
			seq[i] = uint32(i)
		}
		idx, err := Create(indexClass(seq), map[string]any{"data": packIndices(seq)})
		if err != nil {
			return err
		}
		if err := idx.Attach(n.ctx); err != nil {
			idx.Unref()
			return err
		}
		g.generated = idx
		g.indices = idx
	}
	return nil
}

func (g *geometry) uninit(n *Node) {
	if g.generated != nil {
		g.generated.Detach()
		g.generated.Unref()
		g.generated = nil
	}
}

// primitive generates its mesh at init and exposes it through an internal
// Geometry node.
type primitive struct {
	mesh  func(n *Node) *Mesh
	check func(n *Node) error
	inner *Node
}

func (p *primitive) geometry() *geometry {
	g, _ := implOf[*geometry](p.inner)
	return g
}

func (p *primitive) init(n *Node) error {
	if p.check != nil {
		if err := p.check(n); err != nil {
			return err
		}
	}
	inner, err := p.mesh(n).Node()
	if err != nil {
		return err
	}
	if err := inner.Attach(n.ctx); err != nil {
		inner.Unref()
		return err
	}
	p.inner = inner
	return nil
}

func (p *primitive) uninit(n *Node) {
	if p.inner != nil {
		p.inner.Detach()
		p.inner.Unref()
		p.inner = nil
	}
}

func bufferCount(n *Node) int {
	if b, ok := implOf[*buffer](n); ok {
		return b.count
	}
	return 0
}
