package core

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the engine wraps exactly one of these,
// so callers can classify failures with errors.Is.
var (
	// ErrConfiguration reports invalid setup parameters. It is returned before
	// any GPU resource is created.
	ErrConfiguration = errors.New("configuration error")
	// ErrCapability reports a missing mandatory entry point or an API version
	// below the supported floor.
	ErrCapability = errors.New("capability error")
	// ErrValidation reports a node parameter or topology mismatch.
	ErrValidation = errors.New("validation error")
	// ErrUnsupported reports an operation the active backend cannot perform.
	ErrUnsupported = errors.New("unsupported operation")
	// ErrIO reports a streaming read or seek failure.
	ErrIO = errors.New("i/o error")
	// ErrGPU reports a native error code observed after drawing.
	ErrGPU = errors.New("gpu error")
)

// GLError is a native GL error code observed by the backend.
type GLError struct {
	Code uint32
	Name string
	Op   string
}

func (e *GLError) Error() string {
	return fmt.Sprintf("%s: GL error 0x%04x (%s)", e.Op, e.Code, e.Name)
}

func (e *GLError) Unwrap() error { return ErrGPU }
