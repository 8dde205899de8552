package opengl

import (
	"fmt"

	"nodegl/core"
)

// Settings are driver limits and formats probed after the feature set.
type Settings struct {
	// Format1Comp and Format2Comp are the pixel formats for one and two
	// component textures (LUMINANCE variants on GLES 2.0).
	Format1Comp               uint32
	Format2Comp               uint32
	MaxTextureImageUnits      int
	MaxComputeWorkGroupCounts [3]int
}

// Context is a native GL context with its resolved entry points, version
// and feature set.
type Context struct {
	Platform core.Platform
	API      core.API
	Major    int
	Minor    int
	Features Feature
	Settings Settings

	platform  Platform
	gl        Functions
	funcs     FuncTable
	offscreen bool
	wrapped   bool
	width     int
	height    int
}

// NewContext selects a platform class and API for cfg, then initializes
// the native surface. Creation is skipped for wrapped contexts.
func NewContext(cfg core.Config) (*Context, error) {
	platform, err := ChoosePlatform(cfg.Platform)
	if err != nil {
		return nil, err
	}
	api := ChooseAPI(cfg.API)

	factory, ok := lookupPlatform(platform)
	if !ok {
		return nil, fmt.Errorf("%w: platform %s is not available", core.ErrConfiguration, platform)
	}

	if cfg.Offscreen && (cfg.Width <= 0 || cfg.Height <= 0) {
		return nil, fmt.Errorf("%w: could not initialize offscreen rendering with invalid dimensions (%dx%d)",
			core.ErrConfiguration, cfg.Width, cfg.Height)
	}

	c := &Context{
		Platform:  platform,
		API:       api,
		offscreen: cfg.Offscreen,
		wrapped:   cfg.Wrapped,
		width:     cfg.Width,
		height:    cfg.Height,
	}
	c.platform = factory(PlatformParams{
		API:       api,
		Offscreen: cfg.Offscreen,
		Width:     cfg.Width,
		Height:    cfg.Height,
		Samples:   cfg.Samples,
		Wrapped:   cfg.Wrapped,
	})
	if c.platform == nil {
		return nil, fmt.Errorf("%w: platform %s returned no context class", core.ErrConfiguration, platform)
	}

	var handle uintptr
	if cfg.Wrapped {
		handle = cfg.Handle
	}
	if err := c.platform.Init(cfg.Display, cfg.Window, handle); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to init %s context: %w", platform, err)
	}
	if !cfg.Wrapped {
		if err := c.platform.Create(cfg.Handle); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to create %s context: %w", platform, err)
		}
	}
	return c, nil
}

// ES reports whether the context runs OpenGL ES.
func (c *Context) ES() bool { return c.API == core.APIOpenGLES }

// GL returns the loaded function surface. It is nil until LoadExtensions.
func (c *Context) GL() Functions { return c.gl }

// Native returns the platform context class instance.
func (c *Context) Native() Platform { return c.platform }

// HasFunc reports whether the named entry point resolved.
func (c *Context) HasFunc(name string) bool { return c.funcs.Has(name) }

func (c *Context) Width() int  { return c.width }
func (c *Context) Height() int { return c.height }

// LoadExtensions loads every entry point, then probes the version, the
// feature set and the driver settings. The context must be current.
func (c *Context) LoadExtensions() error {
	funcs, err := loadFunctions(c.platform.GetProcAddress)
	if err != nil {
		return err
	}
	c.funcs = funcs

	loader, ok := lookupLoader(c.API)
	if !ok {
		return fmt.Errorf("%w: no function loader for %s", core.ErrCapability, c.API)
	}
	c.gl, err = loader(c.platform.GetProcAddress)
	if err != nil {
		return fmt.Errorf("%w: load %s functions: %v", core.ErrCapability, c.API, err)
	}

	if err := c.probeVersion(); err != nil {
		return err
	}
	c.probeExtensions()
	c.probeSettings()
	return nil
}

func (c *Context) probeVersion() error {
	log := core.Logger()

	if c.ES() {
		version := c.gl.GetString(VERSION)
		if version == "" {
			return fmt.Errorf("%w: could not get OpenGL ES version", core.ErrCapability)
		}
		if _, err := fmt.Sscanf(version, "OpenGL ES %d.%d", &c.Major, &c.Minor); err != nil {
			return fmt.Errorf("%w: could not parse OpenGL ES version (%s)", core.ErrCapability, version)
		}
		if c.Major < 2 {
			return fmt.Errorf("%w: only OpenGL ES >= 2.0 is supported, got %d.%d", core.ErrCapability, c.Major, c.Minor)
		}
		log.Info(fmt.Sprintf("OpenGL ES %d.%d", c.Major, c.Minor))
		return nil
	}

	c.Major = c.gl.GetInteger(MAJOR_VERSION)
	c.Minor = c.gl.GetInteger(MINOR_VERSION)
	if c.Major < 3 {
		return fmt.Errorf("%w: only OpenGL >= 3.0 is supported, got %d.%d", core.ErrCapability, c.Major, c.Minor)
	}
	log.Info(fmt.Sprintf("OpenGL %d.%d", c.Major, c.Minor))
	return nil
}

// extensionChecker returns the lookup matching the API: GLES advertises one
// space separated string, desktop GL one indexed string per extension.
func (c *Context) extensionChecker() func(string) bool {
	if c.ES() {
		all := c.gl.GetString(EXTENSIONS)
		return func(name string) bool {
			return HasExtensionToken(all, name)
		}
	}

	var cached map[string]bool
	return func(name string) bool {
		if cached == nil {
			cached = make(map[string]bool)
			if c.funcs.Has("GetStringi") {
				n := c.gl.GetInteger(NUM_EXTENSIONS)
				for i := 0; i < n; i++ {
					ext := c.gl.GetStringi(EXTENSIONS, uint32(i))
					if ext == "" {
						break
					}
					cached[ext] = true
				}
			}
		}
		return cached[name]
	}
}

func (c *Context) probeExtensions() {
	c.Features = Probe(Env{
		ES:           c.ES(),
		Major:        c.Major,
		Minor:        c.Minor,
		HasExtension: c.extensionChecker(),
		Funcs:        c.funcs,
	})

	if _, ok := c.gl.(ProgramInterface); !ok && c.Features.Has(FeatureProgramInterfaceQuery) {
		core.Logger().Debug("driver lacks program interface queries", "feature", "program_interface_query")
		c.Features &^= FeatureProgramInterfaceQuery
	}

	prefix := "OpenGL"
	if c.ES() {
		prefix = "OpenGL ES"
	}
	core.Logger().Info(prefix+" features", "features", c.Features.String())
}

func (c *Context) probeSettings() {
	if c.ES() && c.Major == 2 && c.Minor == 0 {
		c.Settings.Format1Comp = LUMINANCE
		c.Settings.Format2Comp = LUMINANCE_ALPHA
	} else {
		c.Settings.Format1Comp = RED
		c.Settings.Format2Comp = RG
	}

	c.Settings.MaxTextureImageUnits = c.gl.GetInteger(MAX_TEXTURE_IMAGE_UNITS)

	if c.Features.Has(FeatureComputeShader) {
		for i := range c.Settings.MaxComputeWorkGroupCounts {
			c.Settings.MaxComputeWorkGroupCounts[i] = c.gl.GetIntegeri(MAX_COMPUTE_WORK_GROUP_COUNT, uint32(i))
		}
	}
}

func (c *Context) MakeCurrent(current bool) error {
	if c.platform == nil {
		return nil
	}
	return c.platform.MakeCurrent(current)
}

func (c *Context) SetSwapInterval(interval int) error {
	return c.platform.SetSwapInterval(interval)
}

func (c *Context) SwapBuffers() error {
	return c.platform.SwapBuffers()
}

// SetSurfacePTS stamps a presentation time when the platform supports it.
func (c *Context) SetSurfacePTS(t float64) bool {
	if s, ok := c.platform.(SurfacePTSSetter); ok {
		s.SetSurfacePTS(t)
		return true
	}
	return false
}

// Resize is only allowed on owned, on-screen contexts.
func (c *Context) Resize(width, height int) error {
	if c.offscreen {
		return fmt.Errorf("%w: offscreen rendering does not support resize operation", core.ErrUnsupported)
	}
	if c.wrapped {
		return fmt.Errorf("%w: wrapped context does not support resize operation", core.ErrUnsupported)
	}
	if err := c.platform.Resize(width, height); err != nil {
		return err
	}
	c.width, c.height = width, height
	return nil
}

var glErrorNames = map[uint32]string{
	INVALID_ENUM:                  "GL_INVALID_ENUM",
	INVALID_VALUE:                 "GL_INVALID_VALUE",
	INVALID_OPERATION:             "GL_INVALID_OPERATION",
	INVALID_FRAMEBUFFER_OPERATION: "GL_INVALID_FRAMEBUFFER_OPERATION",
	OUT_OF_MEMORY:                 "GL_OUT_OF_MEMORY",
}

// CheckError reports the pending GL error, if any, as a *core.GLError.
func (c *Context) CheckError(op string) error {
	code := c.gl.GetError()
	if code == NO_ERROR {
		return nil
	}
	err := &core.GLError{Code: code, Name: glErrorNames[code], Op: op}
	if err.Name == "" {
		err.Name = fmt.Sprintf("0x%04X", code)
	}
	core.Logger().Error("GL error", "op", op, "error", err.Name)
	return err
}

// Close releases the native context. It tolerates partial initialization
// and repeated calls.
func (c *Context) Close() {
	if c.platform != nil {
		c.platform.Uninit()
		c.platform = nil
	}
	c.gl = nil
}
