package scene

import (
	"nodegl/internal/opengl"
	"nodegl/math"
)

var uniformClasses = []string{
	"UniformFloat", "UniformVec2", "UniformVec3", "UniformVec4", "UniformInt", "UniformMat4",
}

func init() {
	register(&Class{
		Name: "UniformFloat",
		Params: []Param{
			{Name: "value", Type: ParamFloat, Default: 0.0},
			{Name: "anim", Type: ParamNode, Classes: []string{"AnimatedFloat"}},
		},
		new: func() any { return &uniform{typ: ParamFloat} },
	})
	register(&Class{
		Name: "UniformVec2",
		Params: []Param{
			{Name: "value", Type: ParamVec2, Default: [2]float32{}},
		},
		new: func() any { return &uniform{typ: ParamVec2} },
	})
	register(&Class{
		Name: "UniformVec3",
		Params: []Param{
			{Name: "value", Type: ParamVec3, Default: [3]float32{}},
			{Name: "anim", Type: ParamNode, Classes: []string{"AnimatedVec3"}},
		},
		new: func() any { return &uniform{typ: ParamVec3} },
	})
	register(&Class{
		Name: "UniformVec4",
		Params: []Param{
			{Name: "value", Type: ParamVec4, Default: [4]float32{}},
			{Name: "anim", Type: ParamNode, Classes: []string{"AnimatedVec4"}},
		},
		new: func() any { return &uniform{typ: ParamVec4} },
	})
	register(&Class{
		Name: "UniformInt",
		Params: []Param{
			{Name: "value", Type: ParamInt, Default: 0},
		},
		new: func() any { return &uniform{typ: ParamInt} },
	})
	register(&Class{
		Name: "UniformMat4",
		Params: []Param{
			{Name: "value", Type: ParamMat4, Default: math.Mat4Identity()},
			{Name: "transform", Type: ParamNode, Classes: transformClasses, Desc: "transform chain overriding value"},
		},
		new: func() any { return &uniform{typ: ParamMat4} },
	})
}

// uniform holds the value a Render node uploads for a user uniform. The
// value follows the animation or transform chain when one is attached,
// the value parameter otherwise.
type uniform struct {
	typ    ParamType
	vector math.Vec4
	matrix math.Mat4
	scalar float64
	ivalue int
}

func (u *uniform) init(n *Node) error {
	u.refresh(n)
	return nil
}

func (u *uniform) update(n *Node, t float64) error {
	if err := n.children(func(child *Node) error { return child.Update(t) }); err != nil {
		return err
	}
	u.refresh(n)
	return nil
}

func (u *uniform) refresh(n *Node) {
	anim, animated := animValue(n.Child("anim"))
	switch u.typ {
	case ParamFloat:
		u.scalar = n.Float("value")
		if animated {
			u.scalar = float64(anim.X)
		}
	case ParamVec2:
		v := n.Vec2("value")
		u.vector = math.Vec4{X: v[0], Y: v[1]}
	case ParamVec3:
		u.vector = n.Vec3("value").ToVec4(0)
		if animated {
			u.vector = anim
		}
	case ParamVec4:
		u.vector = n.Vec4("value")
		if animated {
			u.vector = anim
		}
	case ParamInt:
		u.ivalue = n.Int("value")
	case ParamMat4:
		u.matrix = n.Mat4("value")
		if chain := n.Child("transform"); chain != nil {
			u.matrix = chainMatrix(chain)
		}
	}
}

func (u *uniform) upload(f opengl.Functions, location int) {
	switch u.typ {
	case ParamFloat:
		f.Uniform1f(location, float32(u.scalar))
	case ParamVec2:
		f.Uniform2f(location, u.vector.X, u.vector.Y)
	case ParamVec3:
		f.Uniform3f(location, u.vector.X, u.vector.Y, u.vector.Z)
	case ParamVec4:
		f.Uniform4f(location, u.vector.X, u.vector.Y, u.vector.Z, u.vector.W)
	case ParamInt:
		f.Uniform1i(location, u.ivalue)
	case ParamMat4:
		f.UniformMatrix4fv(location, u.matrix.Floats())
	}
}
