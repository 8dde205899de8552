package scene

import (
	"errors"
	"fmt"

	"nodegl/core"
	"nodegl/internal/opengl"
	"nodegl/math"
)

// Backend is the GPU backend a Context drives.
type Backend interface {
	Configure(cfg core.Config) error
	Reconfigure(cfg core.Config) error
	PreDraw(t float64) error
	PostDraw(t float64) error
	Destroy()
}

// glBackend is implemented by backends exposing a GL context.
type glBackend interface {
	GL() *opengl.Context
}

// Context owns a backend, the scene root and the transform stacks used
// while drawing.
type Context struct {
	backend    Backend
	config     core.Config
	configured bool

	scene *Node
	frame uint64

	modelview  []math.Mat4
	projection []math.Mat4
}

// NewContext returns a context driving an OpenGL backend.
func NewContext() *Context {
	return NewContextWithBackend(opengl.NewBackend())
}

func NewContextWithBackend(b Backend) *Context {
	c := &Context{backend: b}
	c.resetStacks()
	return c
}

func (c *Context) resetStacks() {
	c.modelview = append(c.modelview[:0], math.Mat4Identity())
	c.projection = append(c.projection[:0], math.Mat4Identity())
}

// Config returns the configuration last applied.
func (c *Context) Config() core.Config { return c.config }

// Configured reports whether Configure succeeded and Close was not called.
func (c *Context) Configured() bool { return c.configured }

// Scene returns the current root node.
func (c *Context) Scene() *Node { return c.scene }

// GL returns the GL context of the backend, nil when the backend is not
// configured or is not a GL backend.
func (c *Context) GL() *opengl.Context {
	if b, ok := c.backend.(glBackend); ok {
		return b.GL()
	}
	return nil
}

// Configure brings up the backend. Configuring an already configured
// context tears it down first; a scene set on it is detached and attached
// again to the new backend.
func (c *Context) Configure(cfg core.Config) error {
	if c.configured {
		if c.scene != nil {
			c.scene.Detach()
		}
		c.backend.Destroy()
		c.configured = false
	}
	if err := c.backend.Configure(cfg); err != nil {
		return err
	}
	c.config = cfg
	c.configured = true

	if c.scene != nil {
		if err := c.scene.Attach(c); err != nil {
			c.scene.Unref()
			c.scene = nil
			return err
		}
	}
	return nil
}

// Reconfigure updates the surface size, viewport and clear color of a
// configured context.
func (c *Context) Reconfigure(cfg core.Config) error {
	if !c.configured {
		return fmt.Errorf("%w: context is not configured", core.ErrConfiguration)
	}
	if err := c.backend.Reconfigure(cfg); err != nil {
		return err
	}
	c.config.Width = cfg.Width
	c.config.Height = cfg.Height
	if cfg.Viewport.Valid() {
		c.config.Viewport = cfg.Viewport
	}
	c.config.ClearColor = cfg.ClearColor
	return nil
}

// SetScene replaces the root node. The previous root is detached and
// released. A nil root clears the scene. When the context is configured
// the new root is attached right away, otherwise on Configure.
func (c *Context) SetScene(root *Node) error {
	if c.scene != nil {
		c.scene.Detach()
		c.scene.Unref()
		c.scene = nil
	}
	if root == nil {
		return nil
	}
	if c.configured {
		if err := root.Attach(c); err != nil {
			return err
		}
	}
	c.scene = root.Ref()
	return nil
}

// Draw renders the scene at time t. Update and draw errors are logged and
// the frame is completed anyway; all of them are returned joined.
func (c *Context) Draw(t float64) error {
	if !c.configured {
		return fmt.Errorf("%w: context is not configured", core.ErrConfiguration)
	}
	log := core.Logger()

	if err := c.backend.PreDraw(t); err != nil {
		return err
	}

	var errs []error
	if root := c.scene; root != nil {
		c.frame++
		c.resetStacks()
		if err := root.Visit(true, t); err != nil {
			errs = append(errs, err)
		}
		if err := root.Update(t); err != nil {
			log.Error("could not update scene", "time", t, "error", err)
			errs = append(errs, err)
		}
		if err := root.Draw(); err != nil {
			log.Error("could not draw scene", "time", t, "error", err)
			errs = append(errs, err)
		}
	}

	if err := c.backend.PostDraw(t); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Close detaches and releases the scene, then destroys the backend. It is
// safe to call more than once.
func (c *Context) Close() {
	if c.scene != nil {
		c.scene.Detach()
		c.scene.Unref()
		c.scene = nil
	}
	if c.configured {
		c.backend.Destroy()
		c.configured = false
	}
}

// PushModelView pushes m as the new modelview matrix.
func (c *Context) PushModelView(m math.Mat4) { c.modelview = append(c.modelview, m) }

// PopModelView drops the top modelview matrix. The base identity is never
// removed.
func (c *Context) PopModelView() {
	if len(c.modelview) > 1 {
		c.modelview = c.modelview[:len(c.modelview)-1]
	}
}

func (c *Context) ModelView() math.Mat4 { return c.modelview[len(c.modelview)-1] }

// PushProjection pushes m as the new projection matrix.
func (c *Context) PushProjection(m math.Mat4) { c.projection = append(c.projection, m) }

func (c *Context) PopProjection() {
	if len(c.projection) > 1 {
		c.projection = c.projection[:len(c.projection)-1]
	}
}

func (c *Context) Projection() math.Mat4 { return c.projection[len(c.projection)-1] }
