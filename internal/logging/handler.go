package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// SwappableHandler forwards records to a handler that can be replaced at
// runtime. Handlers derived through WithAttrs and WithGroup share the
// replaceable root, so loggers created before a Swap follow it.
type SwappableHandler struct {
	root   *atomic.Pointer[slog.Handler]
	derive []func(slog.Handler) slog.Handler
}

// NewSwappableHandler creates a handler with an initial handler.
func NewSwappableHandler(initial slog.Handler) *SwappableHandler {
	root := new(atomic.Pointer[slog.Handler])
	root.Store(&initial)
	return &SwappableHandler{root: root}
}

// Swap atomically replaces the root handler for this handler and every
// handler derived from it.
func (sh *SwappableHandler) Swap(newHandler slog.Handler) {
	sh.root.Store(&newHandler)
}

// current returns the root handler with this handler's attrs and groups applied.
func (sh *SwappableHandler) current() slog.Handler {
	h := *sh.root.Load()
	for _, d := range sh.derive {
		h = d(h)
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (sh *SwappableHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return (*sh.root.Load()).Enabled(ctx, level)
}

// Handle handles the Record.
func (sh *SwappableHandler) Handle(ctx context.Context, r slog.Record) error {
	return sh.current().Handle(ctx, r)
}

// WithAttrs returns a handler that adds attrs on top of the shared root.
func (sh *SwappableHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return sh
	}
	return sh.with(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

// WithGroup returns a handler that opens group name on top of the shared root.
func (sh *SwappableHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return sh
	}
	return sh.with(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (sh *SwappableHandler) with(d func(slog.Handler) slog.Handler) *SwappableHandler {
	derive := make([]func(slog.Handler) slog.Handler, len(sh.derive), len(sh.derive)+1)
	copy(derive, sh.derive)
	return &SwappableHandler{root: sh.root, derive: append(derive, d)}
}
