package scene

import (
	"github.com/chewxy/math32"

	"nodegl/math"
)

// meshBuilder accumulates vertices with their uv and normal.
type meshBuilder struct {
	mesh Mesh
}

func (b *meshBuilder) vertex(pos math.Vec3, u, v float32, normal math.Vec3) {
	m := &b.mesh
	m.Positions = append(m.Positions, pos.X, pos.Y, pos.Z)
	m.UVs = append(m.UVs, u, v)
	m.Normals = append(m.Normals, normal.X, normal.Y, normal.Z)
}

func (b *meshBuilder) indices(idx ...uint32) {
	b.mesh.Indices = append(b.mesh.Indices, idx...)
}

// quadMesh spans corner, corner+width, corner+width+height and
// corner+height. Texture coordinates are flipped vertically so that row
// zero of an image maps to the top of the quad.
func quadMesh(corner, width, height math.Vec3, uvCorner, uvWidth, uvHeight [2]float32) *Mesh {
	normal := width.Cross(height).Normalize()
	uv := func(w, h float32) (float32, float32) {
		u := uvCorner[0] + w*uvWidth[0] + h*uvHeight[0]
		v := uvCorner[1] + w*uvWidth[1] + h*uvHeight[1]
		return u, 1 - v
	}

	var b meshBuilder
	for _, c := range [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}} {
		pos := corner.Add(width.Mul(c[0])).Add(height.Mul(c[1]))
		u, v := uv(c[0], c[1])
		b.vertex(pos, u, v, normal)
	}
	b.indices(0, 1, 2, 3)
	b.mesh.Topology = "triangle_fan"
	return &b.mesh
}

func triangleMesh(edges [3]math.Vec3, uvs [3][2]float32) *Mesh {
	normal := edges[1].Sub(edges[0]).Cross(edges[2].Sub(edges[0])).Normalize()
	var b meshBuilder
	for i, e := range edges {
		b.vertex(e, uvs[i][0], 1-uvs[i][1], normal)
	}
	b.indices(0, 1, 2)
	b.mesh.Topology = "triangles"
	return &b.mesh
}

// circleMesh is a triangle fan around the origin in the XY plane.
func circleMesh(radius float32, npoints int) *Mesh {
	normal := math.Vec3{Z: 1}
	var b meshBuilder
	b.vertex(math.Vec3{}, 0.5, 0.5, normal)
	for i := 0; i < npoints; i++ {
		angle := 2 * math32.Pi * float32(i) / float32(npoints)
		s, c := math32.Sincos(angle)
		b.vertex(math.Vec3{X: radius * c, Y: radius * s}, (c+1)/2, 1-(s+1)/2, normal)
		b.indices(uint32(i))
	}
	b.indices(uint32(npoints), 1)
	b.mesh.Topology = "triangle_fan"
	return &b.mesh
}

// sphereMesh generates a UV sphere.
func sphereMesh(radius float32, segments, rings int) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)

	var b meshBuilder
	for ring := 0; ring <= rings; ring++ {
		sinPhi, cosPhi := math32.Sincos(float32(ring) * math32.Pi / float32(rings))
		for seg := 0; seg <= segments; seg++ {
			sinTheta, cosTheta := math32.Sincos(float32(seg) * 2 * math32.Pi / float32(segments))
			normal := math.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			b.vertex(normal.Mul(radius), float32(seg)/float32(segments), float32(ring)/float32(rings), normal)
		}
	}
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)
			b.indices(current, next, current+1)
			b.indices(current+1, next, next+1)
		}
	}
	b.mesh.Topology = "triangles"
	return &b.mesh
}
