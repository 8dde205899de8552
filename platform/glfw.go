// Package platform provides the GLFW native context class. Importing it
// registers the class for GLX, NSGL, WGL and EGL.
package platform

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"

	"nodegl/core"
	"nodegl/internal/opengl"
	"nodegl/platform/mainthread"
)

func init() {
	runtime.LockOSThread()

	for _, p := range []core.Platform{core.PlatformGLX, core.PlatformNSGL, core.PlatformWGL, core.PlatformEGL} {
		opengl.RegisterPlatform(p, func(params opengl.PlatformParams) opengl.Platform {
			return &Context{platform: p, params: params}
		})
	}
}

// glfw is initialized once and terminated when the last context goes away.
// Initialization, termination and window management run on the main
// thread through mainthread.Call; making a context current and swapping
// stay on the calling thread.
var (
	glfwMu   sync.Mutex
	glfwRefs int
)

func acquireGLFW() error {
	glfwMu.Lock()
	defer glfwMu.Unlock()
	if glfwRefs == 0 {
		var err error
		mainthread.Call(func() { err = glfw.Init() })
		if err != nil {
			return fmt.Errorf("failed to initialize GLFW: %w", err)
		}
	}
	glfwRefs++
	return nil
}

func releaseGLFW() {
	glfwMu.Lock()
	defer glfwMu.Unlock()
	glfwRefs--
	if glfwRefs == 0 {
		mainthread.Call(glfw.Terminate)
	}
}

// Context is a GLFW window and its GL context. Offscreen contexts use an
// invisible window of the requested size.
type Context struct {
	platform core.Platform
	params   opengl.PlatformParams

	window  *Window
	owned   bool
	started bool
}

// Window returns the window backing the context, nil before Create.
func (c *Context) Window() *Window { return c.window }

func (c *Context) Init(display, window, handle uintptr) error {
	if err := acquireGLFW(); err != nil {
		return err
	}
	c.started = true

	if c.params.Wrapped {
		current := glfw.GetCurrentContext()
		if current == nil {
			return fmt.Errorf("%w: no current GLFW context to wrap", core.ErrConfiguration)
		}
		mainthread.Call(func() { c.window = wrapWindow(current) })
	}
	return nil
}

func (c *Context) Create(shared uintptr) error {
	if shared != 0 {
		core.Logger().Warn("shared contexts are not supported by GLFW, ignoring handle", "platform", c.platform)
	}

	var (
		w   *Window
		err error
	)
	mainthread.Call(func() { w, err = c.createWindow() })
	if err != nil {
		return err
	}
	c.window = w
	c.owned = true
	return nil
}

// createWindow sets the hints for the requested API and opens the window.
// It must run on the main thread.
func (c *Context) createWindow() (*Window, error) {
	glfw.DefaultWindowHints()
	if c.params.API == core.APIOpenGLES {
		glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLESAPI)
		glfw.WindowHint(glfw.ContextVersionMajor, 3)
		glfw.WindowHint(glfw.ContextVersionMinor, 0)
	} else {
		glfw.WindowHint(glfw.ClientAPI, glfw.OpenGLAPI)
		glfw.WindowHint(glfw.ContextVersionMajor, 4)
		glfw.WindowHint(glfw.ContextVersionMinor, 1)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	}
	if c.platform == core.PlatformEGL {
		glfw.WindowHint(glfw.ContextCreationAPI, glfw.EGLContextAPI)
	}
	if c.params.Samples > 0 {
		glfw.WindowHint(glfw.Samples, c.params.Samples)
	}
	if c.params.Offscreen {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	cfg := DefaultWindowConfig()
	if c.params.Width > 0 && c.params.Height > 0 {
		cfg.Width, cfg.Height = c.params.Width, c.params.Height
	}
	return NewWindow(cfg)
}

func (c *Context) MakeCurrent(current bool) error {
	if current {
		if c.window == nil {
			return fmt.Errorf("no window to make current")
		}
		c.window.Handle.MakeContextCurrent()
		return nil
	}
	glfw.DetachCurrentContext()
	return nil
}

func (c *Context) SetSwapInterval(interval int) error {
	glfw.SwapInterval(interval)
	return nil
}

func (c *Context) SwapBuffers() error {
	if c.window == nil {
		return fmt.Errorf("no window to swap")
	}
	c.window.Handle.SwapBuffers()
	return nil
}

func (c *Context) Resize(width, height int) error {
	if c.window == nil {
		return fmt.Errorf("no window to resize")
	}
	mainthread.Call(func() { c.window.Handle.SetSize(width, height) })
	return nil
}

func (c *Context) GetProcAddress(name string) unsafe.Pointer {
	return glfw.GetProcAddress(name)
}

func (c *Context) Uninit() {
	if c.window != nil && c.owned {
		if glfw.GetCurrentContext() == c.window.Handle {
			glfw.DetachCurrentContext()
		}
		mainthread.Call(c.window.Destroy)
	}
	c.window = nil
	if c.started {
		releaseGLFW()
		c.started = false
	}
}
