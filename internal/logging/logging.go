package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Key constants for structured log fields.
const (
	KeyComponent = "component"
	KeyKind      = "kind"
	KeyConn      = "conn"
	KeyBytes     = "bytes"
	KeyPath      = "path"
	KeyError     = "error"
)

// switchableHandler lets package-level loggers created before Init()
// dynamically pick up the configured handler once Init runs. WithAttrs and
// WithGroup calls are replayed in order on the current handler.
type switchableHandler struct {
	state *switchableState
	wrap  []func(slog.Handler) slog.Handler
}

// handlerBox keeps the stored type fixed whichever concrete handler Init
// installs.
type handlerBox struct {
	h slog.Handler
}

type switchableState struct {
	current atomic.Pointer[handlerBox]
}

func newSwitchableHandler(h slog.Handler) *switchableHandler {
	state := &switchableState{}
	state.current.Store(&handlerBox{h: h})
	return &switchableHandler{state: state}
}

func (h *switchableHandler) set(handler slog.Handler) {
	h.state.current.Store(&handlerBox{h: handler})
}

func (h *switchableHandler) materialize() slog.Handler {
	handler := h.state.current.Load().h
	for _, w := range h.wrap {
		handler = w(handler)
	}
	return handler
}

func (h *switchableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.materialize().Enabled(ctx, level)
}

func (h *switchableHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.materialize().Handle(ctx, record)
}

func (h *switchableHandler) with(w func(slog.Handler) slog.Handler) *switchableHandler {
	wrap := make([]func(slog.Handler) slog.Handler, 0, len(h.wrap)+1)
	wrap = append(wrap, h.wrap...)
	wrap = append(wrap, w)
	return &switchableHandler{state: h.state, wrap: wrap}
}

func (h *switchableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(base slog.Handler) slog.Handler { return base.WithAttrs(attrs) })
}

func (h *switchableHandler) WithGroup(name string) slog.Handler {
	return h.with(func(base slog.Handler) slog.Handler { return base.WithGroup(name) })
}

// The DLL entry point has no console, so nothing is logged until Init or
// Configure installs a real handler.
var (
	rootHandler   = newSwitchableHandler(slog.NewTextHandler(io.Discard, nil))
	defaultLogger = slog.New(rootHandler)
)

// Init installs the process-wide handler.
// format: "json" or "text" (default "text")
// level: "debug", "info", "warn", "error" (default "info")
// output: writer to log to (nil = os.Stderr)
func Init(format, level string, output io.Writer) {
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	rootHandler.set(handler)
	slog.SetDefault(defaultLogger)
}

// Options describes where and how to log.
type Options struct {
	Format     string
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	// Console also receives every record when non-nil.
	Console io.Writer
}

// Configure calls Init with a writer built from opts. When opts.File is set
// the returned closer releases the rotating log file.
func Configure(opts Options) (io.Closer, error) {
	if opts.File == "" {
		Init(opts.Format, opts.Level, opts.Console)
		return nopCloser{}, nil
	}

	rw, err := NewRotatingWriter(opts.File, opts.MaxSizeMB, opts.MaxBackups)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	var out io.Writer = rw
	if opts.Console != nil {
		out = io.MultiWriter(opts.Console, rw)
	}
	Init(opts.Format, opts.Level, out)
	return rw, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// L returns a logger tagged with the given component name.
func L(component string) *slog.Logger {
	return defaultLogger.With(slog.String(KeyComponent, component))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
