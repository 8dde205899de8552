package scene

import (
	"fmt"
	"sort"

	"github.com/chewxy/math32"

	"nodegl/core"
	"nodegl/math"
)

type easingFunc func(x float32) float32

var easings = map[string]easingFunc{
	"linear":           func(x float32) float32 { return x },
	"quadratic_in":     func(x float32) float32 { return x * x },
	"quadratic_out":    func(x float32) float32 { return -x * (x - 2) },
	"quadratic_in_out": quadraticInOut,
	"cubic_in":         func(x float32) float32 { return x * x * x },
	"cubic_out":        cubicOut,
	"cubic_in_out":     cubicInOut,
	"sinus_in":         func(x float32) float32 { return 1 - math32.Cos(x*math32.Pi/2) },
	"sinus_out":        func(x float32) float32 { return math32.Sin(x * math32.Pi / 2) },
	"sinus_in_out":     func(x float32) float32 { return -(math32.Cos(math32.Pi*x) - 1) / 2 },
	"exp_in":           expIn,
	"exp_out":          expOut,
}

var easingNames = []string{
	"linear",
	"quadratic_in", "quadratic_out", "quadratic_in_out",
	"cubic_in", "cubic_out", "cubic_in_out",
	"sinus_in", "sinus_out", "sinus_in_out",
	"exp_in", "exp_out",
}

func quadraticInOut(x float32) float32 {
	x *= 2
	if x < 1 {
		return x * x / 2
	}
	x--
	return -(x*(x-2) - 1) / 2
}

func cubicOut(x float32) float32 {
	x--
	return x*x*x + 1
}

func cubicInOut(x float32) float32 {
	x *= 2
	if x < 1 {
		return x * x * x / 2
	}
	x -= 2
	return (x*x*x + 2) / 2
}

func expIn(x float32) float32 {
	if x == 0 {
		return 0
	}
	return math32.Pow(2, 10*(x-1))
}

func expOut(x float32) float32 {
	if x == 1 {
		return 1
	}
	return 1 - math32.Pow(2, -10*x)
}

var (
	keyFrameClasses = map[ParamType]string{
		ParamFloat: "AnimKeyFrameFloat",
		ParamVec3:  "AnimKeyFrameVec3",
		ParamVec4:  "AnimKeyFrameVec4",
	}
	animatedClasses = map[ParamType]string{
		ParamFloat: "AnimatedFloat",
		ParamVec3:  "AnimatedVec3",
		ParamVec4:  "AnimatedVec4",
	}
)

func init() {
	for _, typ := range []ParamType{ParamFloat, ParamVec3, ParamVec4} {
		register(&Class{
			Name: keyFrameClasses[typ],
			Params: []Param{
				{Name: "time", Type: ParamFloat, Constructor: true, Desc: "time of the key frame in seconds"},
				{Name: "value", Type: typ, Constructor: true, Desc: "value reached at time"},
				{Name: "easing", Type: ParamSelect, Default: "linear", Choices: easingNames,
					Desc: "easing applied on the way from the previous key frame"},
			},
			new: func() any { return &keyFrame{} },
		})
		register(&Class{
			Name: animatedClasses[typ],
			Params: []Param{
				{Name: "keyframes", Type: ParamNodeList, Classes: []string{keyFrameClasses[typ]},
					Desc: "key frames sorted by time"},
			},
			new: func() any { return &animated{typ: typ} },
		})
	}
	register(&Class{
		Name: "AnimKeyFrameQuat",
		Params: []Param{
			{Name: "time", Type: ParamFloat, Constructor: true, Desc: "time of the key frame in seconds"},
			{Name: "quat", Type: ParamVec4, Constructor: true, Desc: "rotation quaternion (x, y, z, w) reached at time"},
			{Name: "easing", Type: ParamSelect, Default: "linear", Choices: easingNames,
				Desc: "easing applied on the way from the previous key frame"},
		},
		new: func() any { return &keyFrame{} },
	})
	register(&Class{
		Name: "AnimatedQuat",
		Params: []Param{
			{Name: "keyframes", Type: ParamNodeList, Classes: []string{"AnimKeyFrameQuat"},
				Desc: "key frames sorted by time"},
		},
		new: func() any { return &animated{typ: ParamVec4, quat: true} },
	})
}

type keyFrame struct{}

type frame struct {
	time   float64
	scalar float64
	value  math.Vec4
	easing easingFunc
}

func readFrame(n *Node, typ ParamType, quat bool) frame {
	f := frame{time: n.Float("time"), easing: easings[n.Str("easing")]}
	if quat {
		f.value = math.QuaternionFromVec4(n.Vec4("quat")).Normalize().Vec4()
		return f
	}
	switch typ {
	case ParamFloat:
		f.scalar = n.Float("value")
		f.value.X = float32(f.scalar)
	case ParamVec3:
		f.value = n.Vec3("value").ToVec4(0)
	case ParamVec4:
		f.value = n.Vec4("value")
	}
	return f
}

// animated interpolates between key frames. Values of every kind are kept
// in a Vec4; scalars use X and are also tracked in double precision.
// Quaternions are interpolated along the shortest arc.
type animated struct {
	typ    ParamType
	quat   bool
	frames []frame
	value  math.Vec4
	scalar float64
}

func (a *animated) init(n *Node) error {
	a.frames = a.frames[:0]
	for i, kf := range n.List("keyframes") {
		f := readFrame(kf, a.typ, a.quat)
		if i > 0 && f.time <= a.frames[i-1].time {
			return fmt.Errorf("%w: key frame times must increase (%g after %g)",
				core.ErrValidation, f.time, a.frames[i-1].time)
		}
		a.frames = append(a.frames, f)
	}
	if len(a.frames) > 0 {
		a.value = a.frames[0].value
		a.scalar = a.frames[0].scalar
	}
	return nil
}

func (a *animated) update(n *Node, t float64) error {
	a.value, a.scalar = a.evaluate(t)
	return nil
}

func (a *animated) evaluate(t float64) (math.Vec4, float64) {
	frames := a.frames
	switch {
	case len(frames) == 0:
		return math.Vec4{}, 0
	case t <= frames[0].time:
		return frames[0].value, frames[0].scalar
	case t >= frames[len(frames)-1].time:
		last := frames[len(frames)-1]
		return last.value, last.scalar
	}
	i := sort.Search(len(frames), func(i int) bool { return frames[i].time > t })
	f0, f1 := frames[i-1], frames[i]
	ratio := f1.easing(float32((t - f0.time) / (f1.time - f0.time)))
	if a.quat {
		q := math.QuaternionFromVec4(f0.value).Slerp(math.QuaternionFromVec4(f1.value), ratio)
		return q.Vec4(), 0
	}
	return f0.value.Lerp(f1.value, ratio), f0.scalar + (f1.scalar-f0.scalar)*float64(ratio)
}

// animValue returns the current value of an animation node. ok is false
// when n is nil or has no key frames.
func animValue(n *Node) (v math.Vec4, ok bool) {
	a, isAnim := implOf[*animated](n)
	if !isAnim || len(a.frames) == 0 {
		return v, false
	}
	return a.value, true
}
