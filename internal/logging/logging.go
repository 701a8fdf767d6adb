// Package logging provides the slog-based application logger: text or JSON
// output on stderr, plus optional rotated file logging.
package logging

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization.
type Options struct {
	Level  string // debug|info|warn|error
	Format string // "text" or "json"
	File   string // optional path for rotated file logging
}

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// Init configures the process-wide logger and sets slog's default.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)

	var console slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		console = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	} else {
		console = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	}

	h := console
	if strings.TrimSpace(opts.File) != "" {
		w := &lj.Logger{Filename: opts.File, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		h = &teeHandler{a: console, b: slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})}
	}

	l := slog.New(h)
	mu.Lock()
	logger = l
	mu.Unlock()
	slog.SetDefault(l)
}

// L returns the application logger, initializing with defaults if Init was
// never called.
func L() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(Options{})
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// With returns a logger with the component attribute pre-set.
func With(component string) *slog.Logger {
	return L().With(slog.String("component", component))
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

// teeHandler fans records out to two handlers.
type teeHandler struct {
	a, b slog.Handler
}

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return t.a.Enabled(ctx, level) || t.b.Enabled(ctx, level)
}

func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	err := t.a.Handle(ctx, r.Clone())
	if err2 := t.b.Handle(ctx, r); err == nil {
		err = err2
	}
	return err
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{a: t.a.WithAttrs(attrs), b: t.b.WithAttrs(attrs)}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{a: t.a.WithGroup(name), b: t.b.WithGroup(name)}
}
