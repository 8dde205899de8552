package scene

import (
	"encoding/binary"
	"fmt"
	stdmath "math"
	"slices"

	"nodegl/core"
	"nodegl/math"
)

// ParamType tags the value kind of a node parameter.
type ParamType int

const (
	ParamInt ParamType = iota
	ParamBool
	ParamFloat
	ParamString
	ParamData
	ParamRational
	ParamSelect
	ParamVec2
	ParamVec3
	ParamVec4
	ParamMat4
	ParamNode
	ParamNodeList
	ParamNodeDict
	ParamFloatList
)

var paramTypeNames = [...]string{
	ParamInt:       "int",
	ParamBool:      "bool",
	ParamFloat:     "float",
	ParamString:    "string",
	ParamData:      "data",
	ParamRational:  "rational",
	ParamSelect:    "select",
	ParamVec2:      "vec2",
	ParamVec3:      "vec3",
	ParamVec4:      "vec4",
	ParamMat4:      "mat4",
	ParamNode:      "node",
	ParamNodeList:  "nodelist",
	ParamNodeDict:  "nodedict",
	ParamFloatList: "floatlist",
}

func (t ParamType) String() string {
	if t < 0 || int(t) >= len(paramTypeNames) {
		return fmt.Sprintf("ParamType(%d)", int(t))
	}
	return paramTypeNames[t]
}

func (t ParamType) holdsNodes() bool {
	return t == ParamNode || t == ParamNodeList || t == ParamNodeDict
}

// Rational is an exact fraction such as a buffer update interval.
type Rational struct {
	Num, Den int
}

// Float64 returns Num/Den, or 0 when the denominator is zero.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// Param is one entry of a class parameter schema.
type Param struct {
	Name string
	Type ParamType
	// Default is stored with the Go type the accessors return: int, bool,
	// float64, string, []byte, Rational, string (select), [N]float32,
	// math.Mat4 or []float64.
	Default any
	// Constructor parameters must be set before the node can be
	// initialized.
	Constructor bool
	// Classes restricts node parameters to the listed classes.
	Classes []string
	// Choices lists the accepted select values.
	Choices []string
	// Private node parameters are referenced but not attached together
	// with their owner.
	Private bool
	Desc    string
}

func (p *Param) coerce(v any) (any, error) {
	switch p.Type {
	case ParamInt:
		if f, ok := toFloat(v); ok && f == stdmath.Trunc(f) {
			return int(f), nil
		}
	case ParamBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case ParamFloat:
		if f, ok := toFloat(v); ok {
			return f, nil
		}
	case ParamString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case ParamData:
		if b, ok := toBytes(v); ok {
			return b, nil
		}
	case ParamRational:
		if r, ok := toRational(v); ok {
			if r.Den == 0 {
				return nil, fmt.Errorf("%w: %s: zero denominator", core.ErrValidation, p.Name)
			}
			return r, nil
		}
	case ParamSelect:
		if s, ok := v.(string); ok {
			if !slices.Contains(p.Choices, s) {
				return nil, fmt.Errorf("%w: %s: %q is not one of %v", core.ErrValidation, p.Name, s, p.Choices)
			}
			return s, nil
		}
	case ParamVec2:
		if f, ok := toFloats(v, 2); ok {
			return [2]float32(f), nil
		}
	case ParamVec3:
		if m, ok := v.(math.Vec3); ok {
			return m.Array(), nil
		}
		if f, ok := toFloats(v, 3); ok {
			return [3]float32(f), nil
		}
	case ParamVec4:
		if m, ok := v.(math.Vec4); ok {
			return m.Array(), nil
		}
		if f, ok := toFloats(v, 4); ok {
			return [4]float32(f), nil
		}
	case ParamMat4:
		if m, ok := v.(math.Mat4); ok {
			return m, nil
		}
		if f, ok := toFloats(v, 16); ok {
			return math.Mat4FromFloats([16]float32(f)), nil
		}
	case ParamFloatList:
		if f, ok := toFloatList(v); ok {
			return f, nil
		}
	case ParamNode:
		if v == nil {
			return (*Node)(nil), nil
		}
		if n, ok := v.(*Node); ok {
			return n, p.checkClass(n)
		}
	case ParamNodeList:
		if list, ok := toNodeList(v); ok {
			for _, n := range list {
				if err := p.checkClass(n); err != nil {
					return nil, err
				}
			}
			return list, nil
		}
	case ParamNodeDict:
		if dict, ok := toNodeDict(v); ok {
			for _, n := range dict {
				if err := p.checkClass(n); err != nil {
					return nil, err
				}
			}
			return dict, nil
		}
	}
	return nil, fmt.Errorf("%w: %s expects a %s, got %T", core.ErrValidation, p.Name, p.Type, v)
}

func (p *Param) checkClass(n *Node) error {
	if n == nil {
		return fmt.Errorf("%w: %s: nil node", core.ErrValidation, p.Name)
	}
	if len(p.Classes) > 0 && !slices.Contains(p.Classes, n.class.Name) {
		return fmt.Errorf("%w: %s: %s is not an allowed class %v", core.ErrValidation, p.Name, n.class.Name, p.Classes)
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func toFloats(v any, n int) ([]float32, bool) {
	var out []float32
	switch x := v.(type) {
	case [2]float32:
		out = x[:]
	case [3]float32:
		out = x[:]
	case [4]float32:
		out = x[:]
	case [16]float32:
		out = x[:]
	case []float32:
		out = x
	case []float64:
		for _, f := range x {
			out = append(out, float32(f))
		}
	case []any:
		for _, e := range x {
			f, ok := toFloat(e)
			if !ok {
				return nil, false
			}
			out = append(out, float32(f))
		}
	default:
		return nil, false
	}
	if len(out) != n {
		return nil, false
	}
	return out, true
}

func toFloatList(v any) ([]float64, bool) {
	switch x := v.(type) {
	case []float64:
		return slices.Clone(x), true
	case []float32:
		out := make([]float64, len(x))
		for i, f := range x {
			out[i] = float64(f)
		}
		return out, true
	case []any:
		out := make([]float64, len(x))
		for i, e := range x {
			f, ok := toFloat(e)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	}
	return nil, false
}

func toRational(v any) (Rational, bool) {
	switch x := v.(type) {
	case Rational:
		return x, true
	case [2]int:
		return Rational{x[0], x[1]}, true
	case []int:
		if len(x) == 2 {
			return Rational{x[0], x[1]}, true
		}
	case []any:
		if len(x) == 2 {
			num, ok1 := toFloat(x[0])
			den, ok2 := toFloat(x[1])
			if ok1 && ok2 {
				return Rational{int(num), int(den)}, true
			}
		}
	}
	return Rational{}, false
}

// toBytes accepts raw bytes or typed slices, encoded in the little-endian
// layout the GPU consumes.
func toBytes(v any) ([]byte, bool) {
	switch x := v.(type) {
	case []byte:
		return x, true
	case []float32, []uint16, []int16, []uint32, []int32, []int8:
		b, err := binary.Append(nil, binary.LittleEndian, x)
		return b, err == nil
	case []any:
		out := make([]byte, 0, len(x)*4)
		for _, e := range x {
			f, ok := toFloat(e)
			if !ok {
				return nil, false
			}
			out = binary.LittleEndian.AppendUint32(out, stdmath.Float32bits(float32(f)))
		}
		return out, true
	}
	return nil, false
}

func toNodeList(v any) ([]*Node, bool) {
	switch x := v.(type) {
	case []*Node:
		return slices.Clone(x), true
	case []any:
		out := make([]*Node, len(x))
		for i, e := range x {
			n, ok := e.(*Node)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	case nil:
		return nil, true
	}
	return nil, false
}

func toNodeDict(v any) (map[string]*Node, bool) {
	switch x := v.(type) {
	case map[string]*Node:
		out := make(map[string]*Node, len(x))
		for k, n := range x {
			out[k] = n
		}
		return out, true
	case map[string]any:
		out := make(map[string]*Node, len(x))
		for k, e := range x {
			n, ok := e.(*Node)
			if !ok {
				return nil, false
			}
			out[k] = n
		}
		return out, true
	case nil:
		return nil, true
	}
	return nil, false
}
