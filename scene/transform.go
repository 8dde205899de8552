package scene

import (
	"errors"

	"github.com/chewxy/math32"

	"nodegl/math"
)

var transformClasses = []string{"Identity", "Transform", "Translate", "Scale", "Rotate", "RotateQuat"}

func init() {
	register(&Class{
		Name: "Group",
		Params: []Param{
			{Name: "children", Type: ParamNodeList, Desc: "nodes drawn in order"},
		},
		new: func() any { return &group{} },
	})
	register(&Class{
		Name: "Identity",
		new:  func() any { return &transform{local: func(*Node) math.Mat4 { return math.Mat4Identity() }} },
	})
	register(&Class{
		Name: "Transform",
		Params: []Param{
			{Name: "child", Type: ParamNode, Constructor: true},
			{Name: "matrix", Type: ParamMat4, Default: math.Mat4Identity(), Desc: "column-major transformation matrix"},
		},
		new: func() any { return &transform{local: matrixLocal} },
	})
	register(&Class{
		Name: "Translate",
		Params: []Param{
			{Name: "child", Type: ParamNode, Constructor: true},
			{Name: "vector", Type: ParamVec3, Default: [3]float32{0, 0, 0}, Desc: "translation vector"},
			{Name: "anim", Type: ParamNode, Classes: []string{"AnimatedVec3"}, Desc: "animation of vector"},
		},
		new: func() any { return &transform{local: translateLocal} },
	})
	register(&Class{
		Name: "Scale",
		Params: []Param{
			{Name: "child", Type: ParamNode, Constructor: true},
			{Name: "factors", Type: ParamVec3, Default: [3]float32{1, 1, 1}, Desc: "scaling factors per axis"},
			{Name: "anchor", Type: ParamVec3, Default: [3]float32{0, 0, 0}, Desc: "fixed point of the scaling"},
			{Name: "anim", Type: ParamNode, Classes: []string{"AnimatedVec3"}, Desc: "animation of factors"},
		},
		new: func() any { return &transform{local: scaleLocal} },
	})
	register(&Class{
		Name: "Rotate",
		Params: []Param{
			{Name: "child", Type: ParamNode, Constructor: true},
			{Name: "angle", Type: ParamFloat, Default: 0.0, Desc: "rotation angle in degrees"},
			{Name: "axis", Type: ParamVec3, Default: [3]float32{0, 0, 1}, Desc: "rotation axis"},
			{Name: "anchor", Type: ParamVec3, Default: [3]float32{0, 0, 0}, Desc: "fixed point of the rotation"},
			{Name: "anim", Type: ParamNode, Classes: []string{"AnimatedFloat"}, Desc: "animation of angle"},
		},
		new: func() any { return &transform{local: rotateLocal} },
	})
	register(&Class{
		Name: "RotateQuat",
		Params: []Param{
			{Name: "child", Type: ParamNode, Constructor: true},
			{Name: "quat", Type: ParamVec4, Default: [4]float32{0, 0, 0, 1}, Desc: "rotation quaternion (x, y, z, w)"},
			{Name: "anchor", Type: ParamVec3, Default: [3]float32{0, 0, 0}, Desc: "fixed point of the rotation"},
			{Name: "anim", Type: ParamNode, Classes: []string{"AnimatedQuat"}, Desc: "animation of quat"},
		},
		new: func() any { return &transform{local: rotateQuatLocal} },
	})
}

type group struct{}

func (group) draw(n *Node) error {
	var errs []error
	for _, c := range n.List("children") {
		if err := c.Draw(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// transform multiplies the modelview matrix by a local matrix around the
// draw of its child. The local matrix is evaluated at init and after every
// update, once animations have been brought to the current time.
type transform struct {
	local  func(n *Node) math.Mat4
	matrix math.Mat4
}

func (tr *transform) init(n *Node) error {
	tr.matrix = tr.local(n)
	return nil
}

func (tr *transform) update(n *Node, t float64) error {
	if err := n.children(func(child *Node) error { return child.Update(t) }); err != nil {
		return err
	}
	tr.matrix = tr.local(n)
	return nil
}

func (tr *transform) draw(n *Node) error {
	child := n.Child("child")
	if child == nil {
		return nil
	}
	ctx := n.ctx
	ctx.PushModelView(tr.matrix.Mul(ctx.ModelView()))
	defer ctx.PopModelView()
	return child.Draw()
}

func matrixLocal(n *Node) math.Mat4 {
	return n.Mat4("matrix")
}

func translateLocal(n *Node) math.Mat4 {
	v := n.Vec3("vector")
	if a, ok := animValue(n.Child("anim")); ok {
		v = a.ToVec3()
	}
	return math.Mat4Translation(v)
}

func scaleLocal(n *Node) math.Mat4 {
	f := n.Vec3("factors")
	if a, ok := animValue(n.Child("anim")); ok {
		f = a.ToVec3()
	}
	return anchored(math.Mat4Scale(f), n.Vec3("anchor"))
}

func rotateLocal(n *Node) math.Mat4 {
	angle := float32(n.Float("angle"))
	if a, ok := animValue(n.Child("anim")); ok {
		angle = a.X
	}
	axis := n.Vec3("axis").Normalize()
	return anchored(math.Mat4RotationAxis(axis, angle*math32.Pi/180), n.Vec3("anchor"))
}

func rotateQuatLocal(n *Node) math.Mat4 {
	q := n.Vec4("quat")
	if a, ok := animValue(n.Child("anim")); ok {
		q = a
	}
	return anchored(math.QuaternionFromVec4(q).Normalize().ToMat4(), n.Vec3("anchor"))
}

// anchored applies m around anchor instead of the origin.
func anchored(m math.Mat4, anchor math.Vec3) math.Mat4 {
	if anchor == (math.Vec3{}) {
		return m
	}
	return math.Mat4Translation(anchor.Mul(-1)).Mul(m).Mul(math.Mat4Translation(anchor))
}

// chainMatrix folds a chain of transform nodes, outermost first, into a
// single matrix. The chain ends at the first node that is not a
// transform.
func chainMatrix(n *Node) math.Mat4 {
	m := math.Mat4Identity()
	for cur := n; cur != nil; cur = cur.Child("child") {
		tr, ok := implOf[*transform](cur)
		if !ok {
			break
		}
		m = tr.matrix.Mul(m)
	}
	return m
}
