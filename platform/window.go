package platform

import (
	"fmt"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string
}

type WindowConfig struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:     1280,
		Height:    720,
		Title:     "nodegl",
		Resizable: true,
	}
}

// NewWindow creates a window using the hints already set by the caller.
func NewWindow(config WindowConfig) (*Window, error) {
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	return wrapWindow(handle), nil
}

func wrapWindow(handle *glfw.Window) *Window {
	width, height := handle.GetSize()
	window := &Window{
		Handle: handle,
		Width:  width,
		Height: height,
	}
	handle.SetSizeCallback(func(w *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
	})
	return window
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) SetShouldClose(v bool) {
	w.Handle.SetShouldClose(v)
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
}

func (w *Window) IsKeyPressed(key int) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

// KeyCallback receives key presses only.
type KeyCallback func(key int)

func (w *Window) SetKeyCallback(cb KeyCallback) {
	w.Handle.SetKeyCallback(func(win *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Press {
			cb(int(key))
		}
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const (
	KeySpace  = int(glfw.KeySpace)
	KeyEscape = int(glfw.KeyEscape)
	KeyRight  = int(glfw.KeyRight)
	KeyLeft   = int(glfw.KeyLeft)
	KeyHome   = int(glfw.KeyHome)
	KeyR      = int(glfw.KeyR)
	KeyF12    = int(glfw.KeyF12)
)
