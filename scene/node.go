package scene

import (
	"fmt"
	"maps"
	"slices"
	"sync/atomic"

	"nodegl/core"
	"nodegl/math"
)

// State is the life cycle stage of a node.
type State int

const (
	StateCreated State = iota
	StateInitialized
	StateUninitialized
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateUninitialized:
		return "uninitialized"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Class hooks. An implementation provides any subset of them.
type (
	initer   interface{ init(n *Node) error }
	visiter  interface{ visit(n *Node, active bool, t float64) error }
	updater  interface{ update(n *Node, t float64) error }
	drawer   interface{ draw(n *Node) error }
	uniniter interface{ uninit(n *Node) }
)

var nodeSeq atomic.Uint64

// Node is an instance of a node class: its parameter values, its private
// state and its place in the life cycle.
//
// A node holds two kinds of counts. The reference count tracks how many
// owners (parents, contexts, the creator) hold the node. The attach count
// tracks how many times the node has been attached to its context; the
// node is initialized on the first attach and uninitialized on the last
// detach.
type Node struct {
	class  *Class
	label  string
	params map[string]any
	set    map[string]bool
	impl   any

	refcount    int
	ctx         *Context
	attachCount int
	state       State

	active     bool
	visitFrame uint64
	updated    bool
	updateTime float64
}

// New returns a node of the named class with every parameter at its
// default. The returned node holds one reference owned by the caller.
func New(class string) (*Node, error) {
	c, ok := LookupClass(class)
	if !ok {
		return nil, fmt.Errorf("%w: unknown node class %q", core.ErrValidation, class)
	}
	n := &Node{
		class:    c,
		label:    fmt.Sprintf("%s#%d", c.Name, nodeSeq.Add(1)),
		params:   make(map[string]any, len(c.Params)),
		set:      make(map[string]bool),
		impl:     c.new(),
		refcount: 1,
	}
	for _, p := range c.Params {
		if p.Default != nil {
			n.params[p.Name] = p.Default
		}
	}
	return n, nil
}

// Create builds a node and sets params on it. Every constructor parameter
// of the class must be present.
func Create(class string, params map[string]any) (*Node, error) {
	n, err := New(class)
	if err != nil {
		return nil, err
	}
	for _, name := range slices.Sorted(maps.Keys(params)) {
		if err := n.Set(name, params[name]); err != nil {
			n.Unref()
			return nil, err
		}
	}
	if err := n.checkConstructors(); err != nil {
		n.Unref()
		return nil, err
	}
	return n, nil
}

// MustCreate is like Create but panics on error. It is meant for scenes
// built in code.
func MustCreate(class string, params map[string]any) *Node {
	n, err := Create(class, params)
	if err != nil {
		panic(err)
	}
	return n
}

func (n *Node) Class() *Class       { return n.class }
func (n *Node) Label() string       { return n.label }
func (n *Node) SetLabel(l string)   { n.label = l }
func (n *Node) State() State        { return n.state }
func (n *Node) Context() *Context   { return n.ctx }
func (n *Node) RefCount() int       { return n.refcount }
func (n *Node) AttachCount() int    { return n.attachCount }
func (n *Node) Active() bool        { return n.active }
func (n *Node) IsSet(p string) bool { return n.set[p] }

// Set validates value against the parameter schema and stores it. Node
// values are referenced; the values they replace are released. Node
// parameters cannot change while the node is initialized.
func (n *Node) Set(name string, value any) error {
	p, ok := n.class.Param(name)
	if !ok {
		return fmt.Errorf("%w: %s has no parameter %q", core.ErrValidation, n.class.Name, name)
	}
	if p.Type.holdsNodes() && n.state == StateInitialized {
		return fmt.Errorf("%w: cannot change %s of %s while it is attached", core.ErrValidation, name, n.label)
	}
	v, err := p.coerce(value)
	if err != nil {
		return fmt.Errorf("%s: %w", n.label, err)
	}
	if p.Type.holdsNodes() {
		eachNode(v, func(c *Node) { c.Ref() })
		eachNode(n.params[name], func(c *Node) { c.Unref() })
	}
	n.params[name] = v
	n.set[name] = true
	return nil
}

func (n *Node) checkConstructors() error {
	for _, p := range n.class.Params {
		if p.Constructor && !n.set[p.Name] {
			return fmt.Errorf("%w: %s requires parameter %q", core.ErrValidation, n.label, p.Name)
		}
	}
	return nil
}

// Ref adds a reference and returns n.
func (n *Node) Ref() *Node {
	n.refcount++
	return n
}

// Unref drops a reference. Dropping the last one detaches the node and
// releases the nodes held in its parameters.
func (n *Node) Unref() {
	if n.refcount <= 0 {
		core.Logger().Warn("unbalanced unref", "node", n.label)
		return
	}
	n.refcount--
	if n.refcount > 0 {
		return
	}
	for n.attachCount > 0 {
		n.Detach()
	}
	for _, p := range n.class.Params {
		if p.Type.holdsNodes() {
			eachNode(n.params[p.Name], func(c *Node) { c.Unref() })
			delete(n.params, p.Name)
		}
	}
}

func eachNode(v any, fn func(*Node)) {
	switch x := v.(type) {
	case *Node:
		if x != nil {
			fn(x)
		}
	case []*Node:
		for _, c := range x {
			fn(c)
		}
	case map[string]*Node:
		for _, k := range slices.Sorted(maps.Keys(x)) {
			fn(x[k])
		}
	}
}

// children calls fn on every node referenced by a public node parameter,
// in schema order, stopping at the first error.
func (n *Node) children(fn func(*Node) error) error {
	for _, p := range n.class.Params {
		if !p.Type.holdsNodes() || p.Private {
			continue
		}
		var err error
		eachNode(n.params[p.Name], func(c *Node) {
			if err == nil {
				err = fn(c)
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Attach binds n and every node reachable from it to ctx, children first,
// and initializes the nodes attached for the first time. On failure the
// children already attached are detached again.
func (n *Node) Attach(ctx *Context) error {
	return n.attach(ctx, nil)
}

func (n *Node) attach(ctx *Context, path []*Node) error {
	if slices.Contains(path, n) {
		return fmt.Errorf("%w: %s is its own descendant", core.ErrValidation, n.label)
	}
	if n.ctx != nil && n.ctx != ctx {
		return fmt.Errorf("%w: %s is already attached to another context", core.ErrValidation, n.label)
	}
	path = append(path, n)

	var attached []*Node
	err := n.children(func(c *Node) error {
		if err := c.attach(ctx, path); err != nil {
			return err
		}
		attached = append(attached, c)
		return nil
	})
	if err == nil && n.attachCount == 0 {
		n.ctx = ctx
		err = n.initialize()
		if err != nil {
			n.ctx = nil
		}
	}
	if err != nil {
		for i := len(attached) - 1; i >= 0; i-- {
			attached[i].Detach()
		}
		return err
	}
	n.attachCount++
	return nil
}

func (n *Node) initialize() error {
	if err := n.checkConstructors(); err != nil {
		return err
	}
	if i, ok := n.impl.(initer); ok {
		if err := i.init(n); err != nil {
			return fmt.Errorf("init %s: %w", n.label, err)
		}
	}
	n.state = StateInitialized
	n.updated = false
	n.active = false
	n.visitFrame = 0
	return nil
}

// Detach undoes one Attach: the last detach uninitializes the node, then
// the children are detached. Detaching a node that is not attached does
// nothing.
func (n *Node) Detach() {
	if n.attachCount == 0 {
		return
	}
	n.attachCount--
	if n.attachCount == 0 {
		if u, ok := n.impl.(uniniter); ok && n.state == StateInitialized {
			u.uninit(n)
		}
		n.state = StateUninitialized
		n.ctx = nil
		n.active = false
		n.updated = false
	}
	n.children(func(c *Node) error {
		c.Detach()
		return nil
	})
}

// Visit marks n active or inactive for the current frame and propagates
// to its children. A node reached through several parents is active if
// any of them visits it actively.
func (n *Node) Visit(active bool, t float64) error {
	if n.ctx == nil {
		return fmt.Errorf("%w: %s is not attached", core.ErrValidation, n.label)
	}
	frame := n.ctx.frame
	if n.visitFrame == frame && (n.active || !active) {
		return nil
	}
	n.visitFrame = frame
	n.active = active
	if v, ok := n.impl.(visiter); ok {
		return v.visit(n, active, t)
	}
	return n.children(func(c *Node) error { return c.Visit(active, t) })
}

// Update brings n to time t. Inactive nodes are skipped and an update
// that succeeded at t is not repeated; a failed one is retried on the
// next call.
func (n *Node) Update(t float64) error {
	if !n.active {
		return nil
	}
	if n.updated && n.updateTime == t {
		return nil
	}
	var err error
	if u, ok := n.impl.(updater); ok {
		err = u.update(n, t)
	} else {
		err = n.children(func(c *Node) error { return c.Update(t) })
	}
	if err != nil {
		return err
	}
	n.updated = true
	n.updateTime = t
	return nil
}

// Draw issues the GPU commands of n. Inactive nodes draw nothing.
func (n *Node) Draw() error {
	if !n.active {
		return nil
	}
	if d, ok := n.impl.(drawer); ok {
		return d.draw(n)
	}
	return nil
}

func (n *Node) Int(name string) int           { return value[int](n, name) }
func (n *Node) Bool(name string) bool         { return value[bool](n, name) }
func (n *Node) Float(name string) float64     { return value[float64](n, name) }
func (n *Node) Str(name string) string        { return value[string](n, name) }
func (n *Node) Data(name string) []byte       { return value[[]byte](n, name) }
func (n *Node) Rational(name string) Rational { return value[Rational](n, name) }
func (n *Node) Vec2(name string) [2]float32   { return value[[2]float32](n, name) }
func (n *Node) Vec3(name string) math.Vec3    { return math.Vec3FromArray(value[[3]float32](n, name)) }
func (n *Node) Vec4(name string) math.Vec4    { return math.Vec4FromArray(value[[4]float32](n, name)) }
func (n *Node) Mat4(name string) math.Mat4    { return value[math.Mat4](n, name) }
func (n *Node) Floats(name string) []float64  { return value[[]float64](n, name) }
func (n *Node) Child(name string) *Node       { return value[*Node](n, name) }
func (n *Node) List(name string) []*Node      { return value[[]*Node](n, name) }

// Dict returns a node dictionary parameter with its keys sorted.
func (n *Node) Dict(name string) ([]string, map[string]*Node) {
	d := value[map[string]*Node](n, name)
	return slices.Sorted(maps.Keys(d)), d
}

func value[T any](n *Node, name string) T {
	v, _ := n.params[name].(T)
	return v
}

// implOf returns the private state of n when it has type T.
func implOf[T any](n *Node) (T, bool) {
	if n == nil {
		var zero T
		return zero, false
	}
	v, ok := n.impl.(T)
	return v, ok
}
