package scene

import (
	"nodegl/core"
	"nodegl/internal/async"
)

// Size of the offscreen surface of an Async node.
const (
	asyncWidth  = 1920
	asyncHeight = 1080
)

func init() {
	register(&Class{
		Name: "Async",
		Params: []Param{
			{Name: "child", Type: ParamNode, Constructor: true, Private: true,
				Desc: "scene to be rendered asynchronously"},
		},
		new: func() any { return &asyncScene{} },
	})
}

// asyncScene renders its child in a context of its own, owned by a
// dedicated worker. The child never joins the parent context.
type asyncScene struct {
	bridge *async.Bridge
	ctx    *Context
}

func (a *asyncScene) init(n *Node) error {
	parent := n.ctx.Config()
	cfg := core.DefaultConfig()
	cfg.Platform = parent.Platform
	cfg.API = parent.API
	cfg.Display = parent.Display
	cfg.Window = parent.Window
	cfg.Handle = parent.Handle
	cfg.Samples = parent.Samples
	cfg.Offscreen = true
	cfg.Width, cfg.Height = asyncWidth, asyncHeight
	cfg.SwapInterval = 0

	a.bridge = async.New()
	a.bridge.Start()
	err := a.bridge.Dispatch(func() error {
		a.ctx = NewContext()
		if err := a.ctx.Configure(cfg); err != nil {
			return err
		}
		return a.ctx.SetScene(n.Child("child"))
	})
	if err != nil {
		a.uninit(n)
		return err
	}
	return nil
}

func (a *asyncScene) update(n *Node, t float64) error {
	return a.bridge.Dispatch(func() error { return a.ctx.Draw(t) })
}

func (a *asyncScene) uninit(n *Node) {
	if a.bridge == nil {
		return
	}
	a.bridge.Stop(func() error {
		if a.ctx != nil {
			a.ctx.Close()
		}
		return nil
	})
	a.bridge = nil
	a.ctx = nil
}
