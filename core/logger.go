package core

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. The engine stays silent until the
// application installs a logger with SetLogger.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }

var logger atomic.Pointer[slog.Logger]

func init() {
	logger.Store(slog.New(nopHandler{}))
}

// SetLogger installs l as the engine logger. Passing nil restores the silent
// default.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	logger.Store(l)
}

// Logger returns the current engine logger.
func Logger() *slog.Logger {
	return logger.Load()
}
