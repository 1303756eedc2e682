package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// NewTB returns a logger that writes each record through tb.Log, so output
// is attributed to the test that produced it.
func NewTB(tb testing.TB, level Level) *slog.Logger {
	return slog.New(&tbHandler{tb: tb, level: level, mu: &sync.Mutex{}})
}

type tbHandler struct {
	tb    testing.TB
	level Level
	// ops replays WithAttrs and WithGroup calls in order.
	ops []func(slog.Handler) slog.Handler
	mu  *sync.Mutex
}

func (h *tbHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *tbHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf bytes.Buffer
	th := slog.Handler(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: h.level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// t.Log already timestamps output.
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	for _, op := range h.ops {
		th = op(th)
	}
	if err := th.Handle(ctx, r); err != nil {
		return err
	}
	h.tb.Helper()
	h.tb.Log(strings.TrimRight(buf.String(), "\n"))
	return nil
}

func (h *tbHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h *tbHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h *tbHandler) with(op func(slog.Handler) slog.Handler) *tbHandler {
	clone := *h
	clone.ops = append(append([]func(slog.Handler) slog.Handler{}, h.ops...), op)
	return &clone
}
