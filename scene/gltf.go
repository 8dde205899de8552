package scene

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"nodegl/core"
	"nodegl/math"
)

var gltfTopologies = map[gltf.PrimitiveMode]string{
	gltf.PrimitivePoints:        "points",
	gltf.PrimitiveLines:         "lines",
	gltf.PrimitiveLineLoop:      "line_loop",
	gltf.PrimitiveLineStrip:     "line_strip",
	gltf.PrimitiveTriangles:     "triangles",
	gltf.PrimitiveTriangleStrip: "triangle_strip",
	gltf.PrimitiveTriangleFan:   "triangle_fan",
}

var gltfIdentity = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

func openGLTF(path string) (*gltf.Document, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: gltf open %q: %v", core.ErrIO, path, err)
	}
	return doc, nil
}

// GeometryFromGLTF returns one Geometry node per mesh primitive of a .glb
// or .gltf file, in document order. Primitives that cannot be read are
// skipped with a warning.
func GeometryFromGLTF(path string) ([]*Node, error) {
	doc, err := openGLTF(path)
	if err != nil {
		return nil, err
	}
	var geometries []*Node
	for _, prims := range gltfMeshes(doc) {
		for _, m := range prims {
			g, err := m.Node()
			if err != nil {
				for _, prev := range geometries {
					prev.Unref()
				}
				return nil, err
			}
			geometries = append(geometries, g)
		}
	}
	return geometries, nil
}

// LoadGLTF builds a scene from the default scene of a glTF file, or from
// every parentless node when it has none. Each glTF node becomes a
// Transform over a Group holding one Render per primitive followed by the
// node's children. Renders use program when non-nil, the default program
// otherwise.
func LoadGLTF(path string, program *Node) (*Node, error) {
	doc, err := openGLTF(path)
	if err != nil {
		return nil, err
	}
	l := &gltfLoader{doc: doc, meshes: gltfMeshes(doc), program: program}

	var roots []int
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		roots = doc.Scenes[*doc.Scene].Nodes
	} else {
		hasParent := make([]bool, len(doc.Nodes))
		for _, gn := range doc.Nodes {
			for _, c := range gn.Children {
				if c < len(hasParent) {
					hasParent[c] = true
				}
			}
		}
		for i := range doc.Nodes {
			if !hasParent[i] {
				roots = append(roots, i)
			}
		}
	}

	children := make([]*Node, 0, len(roots))
	defer func() {
		for _, c := range children {
			c.Unref()
		}
	}()
	for _, idx := range roots {
		n, err := l.node(idx, nil)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return Create("Group", map[string]any{"children": children})
}

type gltfLoader struct {
	doc     *gltf.Document
	meshes  [][]*Mesh
	program *Node
}

func (l *gltfLoader) node(idx int, path []int) (*Node, error) {
	if idx < 0 || idx >= len(l.doc.Nodes) {
		return nil, fmt.Errorf("%w: gltf node %d out of range", core.ErrValidation, idx)
	}
	for _, p := range path {
		if p == idx {
			return nil, fmt.Errorf("%w: gltf node %d is its own ancestor", core.ErrValidation, idx)
		}
	}
	path = append(path, idx)
	gn := l.doc.Nodes[idx]

	var children []*Node
	defer func() {
		for _, c := range children {
			c.Unref()
		}
	}()
	if gn.Mesh != nil && *gn.Mesh < len(l.meshes) {
		for _, m := range l.meshes[*gn.Mesh] {
			r, err := l.render(m)
			if err != nil {
				return nil, err
			}
			children = append(children, r)
		}
	}
	for _, c := range gn.Children {
		n, err := l.node(c, path)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}

	group, err := Create("Group", map[string]any{"children": children})
	if err != nil {
		return nil, err
	}
	defer group.Unref()
	tr, err := Create("Transform", map[string]any{"child": group, "matrix": gltfMatrix(gn)})
	if err != nil {
		return nil, err
	}
	if gn.Name != "" {
		tr.SetLabel(gn.Name)
	}
	return tr, nil
}

func (l *gltfLoader) render(m *Mesh) (*Node, error) {
	geom, err := m.Node()
	if err != nil {
		return nil, err
	}
	defer geom.Unref()
	params := map[string]any{"geometry": geom}
	if l.program != nil {
		params["program"] = l.program
	}
	r, err := Create("Render", params)
	if err != nil {
		return nil, err
	}
	r.SetLabel(m.Name)
	return r, nil
}

// gltfMatrix returns the local matrix of a glTF node: its matrix when set,
// translation * rotation * scale otherwise.
func gltfMatrix(gn *gltf.Node) math.Mat4 {
	if m := gn.MatrixOrDefault(); m != gltfIdentity {
		var f [16]float32
		for i, v := range m {
			f[i] = float32(v)
		}
		return math.Mat4FromFloats(f)
	}
	t, r, s := gn.TranslationOrDefault(), gn.RotationOrDefault(), gn.ScaleOrDefault()
	rotation := math.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])}
	return math.Mat4Scale(math.NewVec3(float32(s[0]), float32(s[1]), float32(s[2]))).
		Mul(rotation.Normalize().ToMat4()).
		Mul(math.Mat4Translation(math.NewVec3(float32(t[0]), float32(t[1]), float32(t[2]))))
}

// gltfMeshes reads every primitive of every mesh. meshes[i] holds the
// primitives of doc.Meshes[i].
func gltfMeshes(doc *gltf.Document) [][]*Mesh {
	meshes := make([][]*Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := gltfPrimitive(doc, gm.Name, pi, prim)
			if err != nil {
				core.Logger().Warn("skipping gltf primitive", "mesh", mi, "primitive", pi, "error", err)
				continue
			}
			meshes[mi] = append(meshes[mi], m)
		}
	}
	return meshes
}

func gltfPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	m := &Mesh{Name: name, Topology: gltfTopologies[prim.Mode]}
	for _, p := range positions {
		m.Positions = append(m.Positions, p[0], p[1], p[2])
	}

	if idx, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err == nil && len(normals) == len(positions) {
			for _, n := range normals {
				m.Normals = append(m.Normals, n[0], n[1], n[2])
			}
		}
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err == nil && len(uvs) == len(positions) {
			for _, uv := range uvs {
				m.UVs = append(m.UVs, uv[0], uv[1])
			}
		}
	}
	if prim.Indices != nil {
		if m.Indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}
	return m, nil
}
