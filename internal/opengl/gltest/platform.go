package gltest

import (
	"fmt"
	"sync"
	"unsafe"

	"nodegl/internal/opengl"
)

// Platform is a fake native context class.
type Platform struct {
	Params opengl.PlatformParams

	env *Env

	mu         sync.Mutex
	Handles    [3]uintptr
	Created    bool
	Current    bool
	Interval   int
	Swaps      int
	Size       [2]int
	PTS        []float64
	Uninits    int
	FailCreate bool
}

func (p *Platform) Init(display, window, handle uintptr) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Handles = [3]uintptr{display, window, handle}
	p.Size = [2]int{p.Params.Width, p.Params.Height}
	p.Interval = -1
	return nil
}

func (p *Platform) Create(shared uintptr) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.FailCreate {
		return fmt.Errorf("create failed")
	}
	p.Created = true
	return nil
}

func (p *Platform) MakeCurrent(current bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Current = current
	return nil
}

func (p *Platform) SetSwapInterval(interval int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Interval = interval
	return nil
}

func (p *Platform) SwapBuffers() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Swaps++
	return nil
}

func (p *Platform) Resize(width, height int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Size = [2]int{width, height}
	return nil
}

func (p *Platform) SetSurfacePTS(t float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.PTS = append(p.PTS, t)
}

func (p *Platform) GetProcAddress(name string) unsafe.Pointer {
	return p.env.getProcAddress(name)
}

func (p *Platform) Uninit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Uninits++
	p.Current = false
}

// SwapCount returns the number of swaps so far.
func (p *Platform) SwapCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Swaps
}
