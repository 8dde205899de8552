// Command player plays a scene description in a window, or renders a
// single frame of it to an image file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"nodegl/core"
	_ "nodegl/internal/opengl/gldriver"
	_ "nodegl/platform"
	"nodegl/renderer"
)

var (
	configPath  = flag.String("config", "", "TOML configuration file")
	scenePath   = flag.String("scene", "", "YAML scene description")
	capturePath = flag.String("offscreen-capture", "", "render one frame offscreen and save it to this image file")
	captureTime = flag.Float64("time", 0, "scene time of the captured frame, in seconds")
	width       = flag.Int("width", 0, "override the configured width")
	height      = flag.Int("height", 0, "override the configured height")
	duration    = flag.Float64("duration", 0, "loop playback after this many seconds")
	shotDir     = flag.String("screenshots", "", "directory for F12 screenshots")
	verbose     = flag.Bool("v", false, "log debug messages")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -scene file.yaml [flags]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	setupLogger(*verbose)
	if err := run(); err != nil {
		slog.Error("player failed", "error", err)
		os.Exit(1)
	}
}

// setupLogger writes text logs to a terminal and JSON otherwise.
func setupLogger(debug bool) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if debug {
		opts.Level = slog.LevelDebug
	}
	var h slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	l := slog.New(h)
	slog.SetDefault(l)
	core.SetLogger(l)
}

func run() error {
	if *scenePath == "" {
		flag.Usage()
		return fmt.Errorf("%w: no scene given", core.ErrConfiguration)
	}

	cfg := core.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = core.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *width > 0 {
		cfg.Width = *width
	}
	if *height > 0 {
		cfg.Height = *height
	}

	if *capturePath != "" {
		return renderer.CaptureFile(cfg, *scenePath, *captureTime, *capturePath)
	}

	p, err := renderer.NewPlayer(cfg)
	if err != nil {
		return err
	}
	defer p.Close()
	p.Duration = *duration
	p.ScreenshotDir = *shotDir
	if err := p.LoadScene(*scenePath); err != nil {
		return err
	}
	return p.Run()
}
