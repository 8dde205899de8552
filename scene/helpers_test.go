package scene

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"nodegl/core"
	"nodegl/internal/opengl/gltest"
)

func init() {
	register(&Class{
		Name: "Counter",
		Params: []Param{
			{Name: "child", Type: ParamNode},
		},
		new: func() any { return &counter{} },
	})
}

// counter records the hooks a node receives.
type counter struct {
	inits   int
	uninits int
	draws   int
	times   []float64
	fail    error
	initErr error
}

func (c *counter) init(n *Node) error {
	if c.initErr != nil {
		return c.initErr
	}
	c.inits++
	return nil
}

func (c *counter) update(n *Node, t float64) error {
	c.times = append(c.times, t)
	if c.fail != nil {
		return c.fail
	}
	return n.children(func(child *Node) error { return child.Update(t) })
}

func (c *counter) draw(n *Node) error {
	c.draws++
	if child := n.Child("child"); child != nil {
		return child.Draw()
	}
	return nil
}

func (c *counter) uninit(n *Node) { c.uninits++ }

func newCounter(t *testing.T) (*Node, *counter) {
	t.Helper()
	n, err := New("Counter")
	require.NoError(t, err)
	c, _ := implOf[*counter](n)
	return n, c
}

// newContext configures an offscreen context on the fake driver.
func newContext(t *testing.T, env *gltest.Env) (*Context, *gltest.Functions) {
	t.Helper()
	s := gltest.Install(t, env)
	ctx := NewContext()
	require.NoError(t, ctx.Configure(env.Config()))
	t.Cleanup(ctx.Close)
	return ctx, s.GL()
}

// captureLog redirects the package logger until the test ends.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	core.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { core.SetLogger(nil) })
	return &buf
}

func pack(v ...float32) []byte {
	b, _ := binary.Append(nil, binary.LittleEndian, v)
	return b
}

func create(t *testing.T, class string, params map[string]any) *Node {
	t.Helper()
	n, err := Create(class, params)
	require.NoError(t, err)
	return n
}
