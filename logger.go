package cvk

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/gogpu/cvk/vk"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// newDefaultLogger writes plain text records at Info and above to stderr.
func newDefaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	installDefaultLogger()
}

// installDefaultLogger points cvk and package vk at the same stderr logger.
func installDefaultLogger() {
	l := newDefaultLogger()
	loggerPtr.Store(l)
	vk.SetLogger(l)
}

// SetLogger configures the logger for cvk and package vk.
//
// By default cvk writes validation-layer messages and the physical devices
// found during Init to stderr at Info level and above. Pass nil to silence
// all output.
//
// Log levels used by cvk:
//   - [slog.LevelDebug]: loader and teardown steps, verbose validation output
//   - [slog.LevelInfo]: enumerated physical devices, informational validation output
//   - [slog.LevelWarn]: missing validation layer, validation warnings
//   - [slog.LevelError]: validation errors
//
// SetLogger is safe for concurrent use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	vk.SetLogger(l)
}

// Logger returns the current logger used by cvk.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
