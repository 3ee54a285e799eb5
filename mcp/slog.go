package mcp

import (
	"context"
	"log/slog"

	"github.com/effective-security/xlog"
)

// slogger returns the SDK logger that writes to the package logger,
// SDK info messages are logged at DEBUG.
func slogger() *slog.Logger {
	return slog.New(&xlogHandler{})
}

type xlogHandler struct {
	attrs []any
}

func (h *xlogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *xlogHandler) Handle(ctx context.Context, r slog.Record) error {
	kv := append([]any{"sdk", r.Message}, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		kv = append(kv, a.Key, a.Value.String())
		return true
	})

	level := xlog.DEBUG
	switch {
	case r.Level >= slog.LevelError:
		level = xlog.ERROR
	case r.Level >= slog.LevelWarn:
		level = xlog.WARNING
	}
	logger.ContextKV(ctx, level, kv...)
	return nil
}

func (h *xlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	kv := append([]any{}, h.attrs...)
	for _, a := range attrs {
		kv = append(kv, a.Key, a.Value.String())
	}
	return &xlogHandler{attrs: kv}
}

func (h *xlogHandler) WithGroup(_ string) slog.Handler {
	return h
}
