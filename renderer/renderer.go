// Package renderer drives a scene in a window: wall-clock playback,
// keyboard control, screenshots and scene file hot reload.
package renderer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"nodegl/core"
	sceneio "nodegl/io"
	"nodegl/platform"
	"nodegl/scene"
)

// seekStep is the jump applied by the arrow keys, in seconds.
const seekStep = 1.0

// Player shows a scene in a window. Space pauses, the arrow keys seek,
// Home rewinds, R reloads the scene file, F12 saves a screenshot and ESC
// quits.
type Player struct {
	// ScreenshotDir receives F12 screenshots; the working directory when
	// empty.
	ScreenshotDir string
	// Duration loops playback when positive.
	Duration float64

	ctx    *scene.Context
	window *platform.Window
	clock  *Clock
	cfg    core.Config
	root   *scene.Node

	scenePath string
	watcher   *fsnotify.Watcher
	reload    chan struct{}

	pendingScreenshot bool
	frames            int
	lastFPS           time.Time
}

// NewPlayer opens a window of the size of cfg and configures a context
// on it.
func NewPlayer(cfg core.Config) (*Player, error) {
	cfg.Offscreen = false
	cfg.CaptureBuffer = nil
	ctx := scene.NewContext()
	if err := ctx.Configure(cfg); err != nil {
		return nil, err
	}
	native, ok := ctx.GL().Native().(*platform.Context)
	if !ok || native.Window() == nil {
		ctx.Close()
		return nil, fmt.Errorf("%w: the player needs a window-backed context", core.ErrUnsupported)
	}

	p := &Player{
		ctx:     ctx,
		window:  native.Window(),
		clock:   NewClock(),
		cfg:     ctx.Config(),
		reload:  make(chan struct{}, 1),
		lastFPS: time.Now(),
	}
	p.window.SetTitle("nodegl")
	p.window.SetKeyCallback(p.onKey)
	return p, nil
}

func (p *Player) Clock() *Clock { return p.clock }

// SetScene replaces the scene shown by the player. The previous scene is
// dropped even when root fails to attach.
func (p *Player) SetScene(root *scene.Node) error {
	if err := p.ctx.SetScene(root); err != nil {
		p.root = nil
		return err
	}
	p.root = root
	return nil
}

// LoadScene loads a scene description and watches it for changes. A
// modified file is reloaded between frames; a file that fails to load
// keeps the previous scene.
func (p *Player) LoadScene(path string) error {
	root, err := sceneio.LoadScene(path)
	if err != nil {
		return err
	}
	defer root.Unref()
	if err := p.SetScene(root); err != nil {
		return err
	}
	p.window.SetTitle("nodegl - " + filepath.Base(path))

	if p.scenePath == path {
		return nil
	}
	p.scenePath = path
	return p.watch(path)
}

func (p *Player) watch(path string) error {
	if p.watcher != nil {
		p.watcher.Close()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: watch %q: %v", core.ErrIO, path, err)
	}
	// Editors often replace the file, so the directory is watched.
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return fmt.Errorf("%w: watch %q: %v", core.ErrIO, path, err)
	}
	p.watcher = w

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				select {
				case p.reload <- struct{}{}:
				default:
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				core.Logger().Warn("scene watcher", "error", err)
			}
		}
	}()
	return nil
}

func (p *Player) onKey(key int) {
	switch key {
	case platform.KeyEscape:
		p.window.SetShouldClose(true)
	case platform.KeySpace:
		p.clock.TogglePause()
	case platform.KeyRight:
		p.clock.Seek(p.clock.Time() + seekStep)
	case platform.KeyLeft:
		p.clock.Seek(p.clock.Time() - seekStep)
	case platform.KeyHome:
		p.clock.Seek(0)
	case platform.KeyR:
		if p.scenePath != "" {
			select {
			case p.reload <- struct{}{}:
			default:
			}
		}
	case platform.KeyF12:
		p.pendingScreenshot = true
	}
}

// Run draws frames until the window is closed. Draw errors are logged and
// playback goes on.
func (p *Player) Run() error {
	log := core.Logger()
	for !p.window.ShouldClose() {
		p.window.PollEvents()

		select {
		case <-p.reload:
			if err := p.LoadScene(p.scenePath); err != nil {
				log.Error("could not reload scene", "path", p.scenePath, "error", err)
			} else {
				log.Info("scene reloaded", "path", p.scenePath)
			}
		default:
		}

		if err := p.resize(); err != nil {
			return err
		}

		t := p.clock.Time()
		if p.Duration > 0 && t >= p.Duration {
			p.clock.Seek(0)
			t = 0
		}
		if err := p.ctx.Draw(t); err != nil {
			log.Warn("frame failed", "time", t, "error", err)
		}

		if p.pendingScreenshot {
			p.pendingScreenshot = false
			if err := p.screenshot(t); err != nil {
				log.Error("could not save screenshot", "error", err)
			}
		}
		p.countFrame()
	}
	return nil
}

func (p *Player) resize() error {
	w, h := p.window.GetFramebufferSize()
	if w <= 0 || h <= 0 || (w == p.cfg.Width && h == p.cfg.Height) {
		return nil
	}
	cfg := p.cfg
	cfg.Width, cfg.Height = w, h
	cfg.Viewport = core.Viewport{Width: w, Height: h}
	if err := p.ctx.Reconfigure(cfg); err != nil {
		return err
	}
	p.cfg = p.ctx.Config()
	return nil
}

// screenshot moves the scene to an offscreen capture context for one
// frame, then back to the window.
func (p *Player) screenshot(t float64) error {
	if p.root == nil {
		return fmt.Errorf("%w: no scene to capture", core.ErrConfiguration)
	}
	root := p.root.Ref()
	defer root.Unref()
	if err := p.ctx.SetScene(nil); err != nil {
		return err
	}

	dir := p.ScreenshotDir
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("nodegl-%s.png", time.Now().Format("20060102-150405.000")))
	shotErr := Screenshot(root, p.cfg, t, path)

	if err := p.ctx.GL().MakeCurrent(true); err != nil {
		return errors.Join(shotErr, err)
	}
	return errors.Join(shotErr, p.SetScene(root))
}

func (p *Player) countFrame() {
	p.frames++
	if elapsed := time.Since(p.lastFPS); elapsed >= 5*time.Second {
		core.Logger().Debug("playback", "fps", float64(p.frames)/elapsed.Seconds(), "time", p.clock.Time())
		p.frames = 0
		p.lastFPS = time.Now()
	}
}

// Close stops watching the scene file, releases the scene and closes the
// window.
func (p *Player) Close() {
	if p.watcher != nil {
		p.watcher.Close()
		p.watcher = nil
	}
	p.root = nil
	p.ctx.Close()
}

// CaptureFile renders the scene file at path at time t and saves the
// frame to out.
func CaptureFile(cfg core.Config, path string, t float64, out string) error {
	root, err := sceneio.LoadScene(path)
	if err != nil {
		return err
	}
	defer root.Unref()
	if _, err := os.Stat(filepath.Dir(out)); err != nil {
		return fmt.Errorf("%w: %v", core.ErrIO, err)
	}
	return Screenshot(root, cfg, t, out)
}
