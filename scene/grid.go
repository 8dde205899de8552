package scene

import (
	"fmt"

	"nodegl/core"
	"nodegl/math"
)

func init() {
	register(&Class{
		Name: "Grid",
		Params: []Param{
			{Name: "size", Type: ParamFloat, Default: 10.0, Desc: "extent of the grid, centered on the origin"},
			{Name: "divisions", Type: ParamInt, Default: 10, Desc: "cells along each axis"},
		},
		new: func() any {
			return &primitive{mesh: func(n *Node) *Mesh {
				return gridMesh(float32(n.Float("size")), n.Int("divisions"))
			}, check: func(n *Node) error {
				if n.Int("divisions") < 1 {
					return fmt.Errorf("%w: a grid needs at least one division", core.ErrValidation)
				}
				return nil
			}}
		},
	})
	register(&Class{
		Name: "WireBox",
		Params: []Param{
			{Name: "min", Type: ParamVec3, Default: [3]float32{-1, -1, -1}},
			{Name: "max", Type: ParamVec3, Default: [3]float32{1, 1, 1}},
		},
		new: func() any {
			return &primitive{mesh: func(n *Node) *Mesh {
				return wireBoxMesh(n.Vec3("min"), n.Vec3("max"))
			}}
		},
	})
}

// lineBuilder accumulates independent line segments.
type lineBuilder struct {
	meshBuilder
}

func (b *lineBuilder) line(from, to math.Vec3) {
	base := uint32(b.mesh.VertexCount())
	up := math.Vec3{Y: 1}
	b.vertex(from, 0, 0, up)
	b.vertex(to, 1, 0, up)
	b.indices(base, base+1)
}

// gridMesh lays divisions+1 lines along each of X and Z in the Y=0 plane,
// from -size/2 to size/2.
func gridMesh(size float32, divisions int) *Mesh {
	half := size / 2
	step := size / float32(divisions)

	var b lineBuilder
	for i := 0; i <= divisions; i++ {
		x := -half + float32(i)*step
		b.line(math.Vec3{X: x, Z: -half}, math.Vec3{X: x, Z: half})
	}
	for i := 0; i <= divisions; i++ {
		z := -half + float32(i)*step
		b.line(math.Vec3{X: -half, Z: z}, math.Vec3{X: half, Z: z})
	}
	b.mesh.Topology = "lines"
	return &b.mesh
}

// wireBoxMesh outlines the axis-aligned box spanning lo to hi with its 12
// edges.
func wireBoxMesh(lo, hi math.Vec3) *Mesh {
	corner := func(i int) math.Vec3 {
		c := lo
		if i&1 != 0 {
			c.X = hi.X
		}
		if i&2 != 0 {
			c.Y = hi.Y
		}
		if i&4 != 0 {
			c.Z = hi.Z
		}
		return c
	}

	var b lineBuilder
	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				b.line(corner(i), corner(i|bit))
			}
		}
	}
	b.mesh.Topology = "lines"
	return &b.mesh
}
