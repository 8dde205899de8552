package scene

import (
	"fmt"

	"github.com/chewxy/math32"

	"nodegl/core"
	"nodegl/math"
)

func init() {
	register(&Class{
		Name: "Camera",
		Params: []Param{
			{Name: "child", Type: ParamNode, Constructor: true},
			{Name: "eye", Type: ParamVec3, Default: [3]float32{0, 0, 0}, Desc: "eye position"},
			{Name: "center", Type: ParamVec3, Default: [3]float32{0, 0, -1}, Desc: "point the camera looks at"},
			{Name: "up", Type: ParamVec3, Default: [3]float32{0, 1, 0}, Desc: "up vector"},
			{Name: "perspective", Type: ParamVec2, Desc: "vertical field of view in degrees and aspect ratio"},
			{Name: "orthographic", Type: ParamVec4, Desc: "left, right, bottom and top planes"},
			{Name: "clipping", Type: ParamVec2, Default: [2]float32{0.1, 100}, Desc: "near and far planes"},
			{Name: "eye_transform", Type: ParamNode, Classes: transformClasses, Desc: "transform chain applied to eye"},
			{Name: "center_transform", Type: ParamNode, Classes: transformClasses, Desc: "transform chain applied to center"},
			{Name: "up_transform", Type: ParamNode, Classes: transformClasses, Desc: "transform chain applied to up"},
			{Name: "fov_anim", Type: ParamNode, Classes: []string{"AnimatedFloat"}, Desc: "animation of the field of view"},
		},
		new: func() any { return &camera{} },
	})
}

// camera replaces the projection and prepends a view matrix to the
// modelview while its child draws.
type camera struct {
	view       math.Mat4
	projection math.Mat4
}

func (c *camera) init(n *Node) error {
	if n.IsSet("perspective") && n.IsSet("orthographic") {
		return fmt.Errorf("%w: perspective and orthographic are mutually exclusive", core.ErrValidation)
	}
	if clip := n.Vec2("clipping"); clip[0] >= clip[1] {
		return fmt.Errorf("%w: invalid clipping planes %v", core.ErrValidation, clip)
	}
	c.compute(n)
	return nil
}

func (c *camera) update(n *Node, t float64) error {
	if err := n.children(func(child *Node) error { return child.Update(t) }); err != nil {
		return err
	}
	c.compute(n)
	return nil
}

func (c *camera) compute(n *Node) {
	eye := transformPoint(n.Child("eye_transform"), n.Vec3("eye"), 1)
	center := transformPoint(n.Child("center_transform"), n.Vec3("center"), 1)
	up := transformPoint(n.Child("up_transform"), n.Vec3("up"), 0)
	c.view = math.Mat4LookAt(eye, center, up)

	clip := n.Vec2("clipping")
	switch {
	case n.IsSet("orthographic"):
		o := n.Vec4("orthographic")
		c.projection = math.Mat4Orthographic(o.X, o.Y, o.Z, o.W, clip[0], clip[1])
	case n.IsSet("perspective"):
		p := n.Vec2("perspective")
		fov := p[0]
		if a, ok := animValue(n.Child("fov_anim")); ok {
			fov = a.X
		}
		c.projection = math.Mat4Perspective(fov*math32.Pi/180, p[1], clip[0], clip[1])
	default:
		c.projection = math.Mat4Identity()
	}
}

func transformPoint(chain *Node, p math.Vec3, w float32) math.Vec3 {
	if chain == nil {
		return p
	}
	return p.ToVec4(w).MulMat(chainMatrix(chain)).ToVec3()
}

func (c *camera) draw(n *Node) error {
	ctx := n.ctx
	ctx.PushProjection(c.projection)
	ctx.PushModelView(c.view.Mul(ctx.ModelView()))
	defer func() {
		ctx.PopModelView()
		ctx.PopProjection()
	}()
	return n.Child("child").Draw()
}
