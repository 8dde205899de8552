package opengl

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"nodegl/core"
)

// Platform is a native context class: it owns the window system surface and
// the GL context, and resolves entry points.
type Platform interface {
	// Init binds the native handles. handle is non-zero only for wrapped
	// contexts.
	Init(display, window, handle uintptr) error
	// Create makes a new native context, optionally sharing with shared.
	Create(shared uintptr) error
	MakeCurrent(current bool) error
	SetSwapInterval(interval int) error
	SwapBuffers() error
	Resize(width, height int) error
	GetProcAddress(name string) unsafe.Pointer
	Uninit()
}

// SurfacePTSSetter is implemented by platforms able to stamp a presentation
// timestamp on the next swap.
type SurfacePTSSetter interface {
	SetSurfacePTS(t float64)
}

// PlatformParams are the settings a platform class is created with.
type PlatformParams struct {
	API       core.API
	Offscreen bool
	Width     int
	Height    int
	Samples   int
	Wrapped   bool
}

// PlatformFactory creates a platform class instance.
type PlatformFactory func(params PlatformParams) Platform

// Loader builds the GL function surface once a context is current.
type Loader func(getProcAddress func(name string) unsafe.Pointer) (Functions, error)

var (
	registryMu sync.RWMutex
	platforms = make(map[core.Platform]PlatformFactory)
	loaders   = make(map[core.API]Loader)
)

// RegisterPlatform registers a platform class. It is typically called from
// init() in platform packages. An existing registration is replaced.
func RegisterPlatform(p core.Platform, factory PlatformFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	platforms[p] = factory
}

// UnregisterPlatform removes a platform class. This is useful for testing.
func UnregisterPlatform(p core.Platform) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(platforms, p)
}

// RegisterLoader registers the function loader for an API.
func RegisterLoader(api core.API, loader Loader) {
	registryMu.Lock()
	defer registryMu.Unlock()
	loaders[api] = loader
}

// UnregisterLoader removes the function loader for an API.
func UnregisterLoader(api core.API) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(loaders, api)
}

func lookupPlatform(p core.Platform) (PlatformFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := platforms[p]
	return f, ok
}

func lookupLoader(api core.API) (Loader, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	l, ok := loaders[api]
	return l, ok
}

// ChoosePlatform resolves PlatformAuto for the host OS.
func ChoosePlatform(p core.Platform) (core.Platform, error) {
	return choosePlatform(p, runtime.GOOS)
}

func choosePlatform(p core.Platform, goos string) (core.Platform, error) {
	if p != core.PlatformAuto {
		return p, nil
	}
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return core.PlatformGLX, nil
	case "ios":
		return core.PlatformEAGL, nil
	case "darwin":
		return core.PlatformNSGL, nil
	case "android":
		return core.PlatformEGL, nil
	case "windows":
		return core.PlatformWGL, nil
	}
	return p, fmt.Errorf("%w: can not determine which GL platform to use on %s", core.ErrConfiguration, goos)
}

// ChooseAPI resolves APIAuto: GLES on mobile targets, desktop GL otherwise.
func ChooseAPI(api core.API) core.API {
	return chooseAPI(api, runtime.GOOS)
}

func chooseAPI(api core.API, goos string) core.API {
	if api != core.APIAuto {
		return api
	}
	if goos == "ios" || goos == "android" {
		return core.APIOpenGLES
	}
	return core.APIOpenGL
}
