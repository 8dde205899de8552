package core

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
)

// Platform selects the native context class.
type Platform int

const (
	PlatformAuto Platform = iota
	PlatformGLX
	PlatformEGL
	PlatformNSGL
	PlatformEAGL
	PlatformWGL
)

var platformNames = [...]string{
	PlatformAuto: "auto",
	PlatformGLX:  "glx",
	PlatformEGL:  "egl",
	PlatformNSGL: "nsgl",
	PlatformEAGL: "eagl",
	PlatformWGL:  "wgl",
}

func (p Platform) String() string {
	if p < 0 || int(p) >= len(platformNames) {
		return fmt.Sprintf("Platform(%d)", int(p))
	}
	return platformNames[p]
}

func (p Platform) MarshalText() ([]byte, error) {
	if p < 0 || int(p) >= len(platformNames) {
		return nil, fmt.Errorf("%w: unknown platform %d", ErrConfiguration, int(p))
	}
	return []byte(platformNames[p]), nil
}

func (p *Platform) UnmarshalText(text []byte) error {
	for i, name := range platformNames {
		if name == string(text) {
			*p = Platform(i)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown platform %q", ErrConfiguration, text)
}

// API selects the rendering API exposed by the backend.
type API int

const (
	APIAuto API = iota
	APIOpenGL
	APIOpenGLES
)

var apiNames = [...]string{
	APIAuto:     "auto",
	APIOpenGL:   "opengl",
	APIOpenGLES: "opengles",
}

func (a API) String() string {
	if a < 0 || int(a) >= len(apiNames) {
		return fmt.Sprintf("API(%d)", int(a))
	}
	return apiNames[a]
}

func (a API) MarshalText() ([]byte, error) {
	if a < 0 || int(a) >= len(apiNames) {
		return nil, fmt.Errorf("%w: unknown api %d", ErrConfiguration, int(a))
	}
	return []byte(apiNames[a]), nil
}

func (a *API) UnmarshalText(text []byte) error {
	for i, name := range apiNames {
		if name == string(text) {
			*a = API(i)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown api %q", ErrConfiguration, text)
}

// Config describes how a rendering context is brought up.
type Config struct {
	Platform  Platform `toml:"platform"`
	API       API      `toml:"api"`
	Offscreen bool     `toml:"offscreen"`
	Width     int      `toml:"width"`
	Height    int      `toml:"height"`
	Samples   int      `toml:"samples"`

	Viewport   Viewport   `toml:"viewport"`
	ClearColor [4]float32 `toml:"clear_color"`

	// SwapInterval is applied only when >= 0.
	SwapInterval int `toml:"swap_interval"`

	// CaptureBuffer receives a top-down RGBA8 copy of every frame. It must
	// hold Width*Height*4 bytes and is only allowed offscreen.
	CaptureBuffer []byte `toml:"-"`

	// Native handles. With Wrapped set, Handle is an externally owned context
	// that the engine adopts instead of creating its own.
	Display uintptr `toml:"-"`
	Window  uintptr `toml:"-"`
	Handle  uintptr `toml:"-"`
	Wrapped bool    `toml:"-"`
}

func DefaultConfig() Config {
	return Config{
		Platform:     PlatformAuto,
		API:          APIAuto,
		Width:        1280,
		Height:       720,
		ClearColor:   [4]float32{0, 0, 0, 1},
		SwapInterval: -1,
	}
}

// Validate performs the checks that do not need a native context.
func (c Config) Validate() error {
	if c.Platform < PlatformAuto || c.Platform > PlatformWGL {
		return fmt.Errorf("%w: invalid platform %d", ErrConfiguration, int(c.Platform))
	}
	if c.API < APIAuto || c.API > APIOpenGLES {
		return fmt.Errorf("%w: invalid api %d", ErrConfiguration, int(c.API))
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("%w: negative dimensions %dx%d", ErrConfiguration, c.Width, c.Height)
	}
	if c.Samples < 0 {
		return fmt.Errorf("%w: negative sample count %d", ErrConfiguration, c.Samples)
	}
	if c.CaptureBuffer != nil {
		if !c.Offscreen {
			return fmt.Errorf("%w: capture buffer is only supported with offscreen rendering", ErrConfiguration)
		}
		if want := c.Width * c.Height * 4; len(c.CaptureBuffer) < want {
			return fmt.Errorf("%w: capture buffer holds %d bytes, %d required", ErrConfiguration, len(c.CaptureBuffer), want)
		}
	}
	return nil
}

// LoadConfig reads a TOML configuration file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	path, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: decode %q: %v", ErrConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}
