// Package gltest provides an in-memory GL driver and platform for tests.
//
// The fake driver keeps buffers, textures, framebuffers and programs in
// maps, records every call by name and introspects shader sources to
// answer attribute and uniform queries.
package gltest

import (
	"fmt"
	"sync"
	"testing"
	"unsafe"

	"nodegl/core"
	"nodegl/internal/opengl"
)

// Env describes the synthetic driver: version, extensions, entry points and
// the content of the default framebuffer.
type Env struct {
	ES           bool
	Major, Minor int
	// Version overrides the GLES version string.
	Version    string
	Extensions []string
	// Missing lists entry points (without the gl prefix) that do not
	// resolve.
	Missing []string

	Width, Height int
	// Pixel returns the default framebuffer content at (x, y), y growing
	// upwards. Nil means transparent black.
	Pixel func(x, y int) [4]byte

	// CompileFail makes every shader compilation fail.
	CompileFail bool
	// NoProgramInterface hides the program interface queries from the
	// driver.
	NoProgramInterface bool
}

// Desktop returns an OpenGL 3.3 core environment.
func Desktop() *Env {
	return &Env{Major: 3, Minor: 3, Width: 64, Height: 64}
}

// Desktop43 returns an OpenGL 4.3 core environment.
func Desktop43() *Env {
	return &Env{Major: 4, Minor: 3, Width: 64, Height: 64}
}

// GLES2 returns an OpenGL ES 2.0 environment without extensions.
func GLES2() *Env {
	return &Env{ES: true, Major: 2, Minor: 0, Width: 64, Height: 64}
}

func (e *Env) missing(name string) bool {
	for _, m := range e.Missing {
		if m == name {
			return true
		}
	}
	return false
}

var resolved byte

// getProcAddress resolves "gl"-prefixed names that are not listed missing.
func (e *Env) getProcAddress(name string) unsafe.Pointer {
	if len(name) > 2 && name[:2] == "gl" && e.missing(name[2:]) {
		return nil
	}
	return unsafe.Pointer(&resolved)
}

// Session tracks the platforms and drivers created while installed.
type Session struct {
	Env *Env

	mu        sync.Mutex
	platforms []*Platform
	drivers   []*Functions
}

// Platforms returns every platform instance created so far.
func (s *Session) Platforms() []*Platform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Platform(nil), s.platforms...)
}

// Drivers returns every driver instance created so far.
func (s *Session) Drivers() []*Functions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Functions(nil), s.drivers...)
}

// GL returns the most recently loaded driver.
func (s *Session) GL() *Functions {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.drivers) == 0 {
		return nil
	}
	return s.drivers[len(s.drivers)-1]
}

// Platform returns the most recently created platform.
func (s *Session) Platform() *Platform {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.platforms) == 0 {
		return nil
	}
	return s.platforms[len(s.platforms)-1]
}

var allPlatforms = []core.Platform{
	core.PlatformGLX,
	core.PlatformEGL,
	core.PlatformNSGL,
	core.PlatformEAGL,
	core.PlatformWGL,
}

// Install registers the fake platform for every platform class and the
// fake driver for both APIs. Registrations are removed on cleanup.
func Install(tb testing.TB, env *Env) *Session {
	tb.Helper()
	s := &Session{Env: env}

	for _, p := range allPlatforms {
		opengl.RegisterPlatform(p, func(params opengl.PlatformParams) opengl.Platform {
			plat := &Platform{env: env, Params: params}
			s.mu.Lock()
			s.platforms = append(s.platforms, plat)
			s.mu.Unlock()
			return plat
		})
	}

	loader := func(getProcAddress func(string) unsafe.Pointer) (opengl.Functions, error) {
		if getProcAddress("glGetError") == nil {
			return nil, fmt.Errorf("glGetError did not resolve")
		}
		f := NewFunctions(env)
		s.mu.Lock()
		s.drivers = append(s.drivers, f)
		s.mu.Unlock()
		if env.NoProgramInterface {
			return f.withoutProgramInterface(), nil
		}
		return f, nil
	}
	opengl.RegisterLoader(core.APIOpenGL, loader)
	opengl.RegisterLoader(core.APIOpenGLES, loader)

	tb.Cleanup(func() {
		for _, p := range allPlatforms {
			opengl.UnregisterPlatform(p)
		}
		opengl.UnregisterLoader(core.APIOpenGL)
		opengl.UnregisterLoader(core.APIOpenGLES)
	})
	return s
}

// Config returns an offscreen configuration for env's framebuffer size.
func (e *Env) Config() core.Config {
	cfg := core.DefaultConfig()
	cfg.Offscreen = true
	cfg.Width = e.Width
	cfg.Height = e.Height
	if e.ES {
		cfg.API = core.APIOpenGLES
	} else {
		cfg.API = core.APIOpenGL
	}
	return cfg
}
