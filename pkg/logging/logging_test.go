package logging

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"DEBUG", LevelDebug, false},
		{"Warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"info+2", LevelInfo + 2, false},
		{"", LevelInfo, false},
		{"trace", LevelInfo, true},
		{"fatal", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
		wantErr  bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"text", FormatText, false},
		{"Text", FormatText, false},
		{"", FormatText, false},
		{"yaml", FormatText, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				assert.Contains(t, err.Error(), "invalid log format")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

type recordingTB struct {
	testing.TB
	lines []string
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Log(args ...any) {
	for _, a := range args {
		r.lines = append(r.lines, a.(string))
	}
}

func TestNewTB(t *testing.T) {
	rec := &recordingTB{TB: t}
	logger := NewTB(rec, LevelInfo)

	logger.Debug("hidden")
	logger.With("component", "intercept").WithGroup("req").Info("matched", "method", "GET")

	if len(rec.lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %v", len(rec.lines), rec.lines)
	}
	line := rec.lines[0]
	for _, want := range []string{"msg=matched", "component=intercept", "req.method=GET"} {
		if !strings.Contains(line, want) {
			t.Errorf("log line %q does not contain %q", line, want)
		}
	}
	if strings.Contains(line, "time=") {
		t.Errorf("log line %q should not carry a timestamp", line)
	}
}

func TestTee(t *testing.T) {
	var a, b bytes.Buffer
	logger := slog.New(Tee(
		slog.NewTextHandler(&a, &slog.HandlerOptions{Level: LevelDebug}),
		nil,
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: LevelWarn}),
	))

	logger.Info("only first")
	logger.With("component", "cli").WithGroup("req").Warn("both", "id", 7)

	assert.Contains(t, a.String(), "only first")
	assert.Contains(t, a.String(), "component=cli req.id=7")
	assert.NotContains(t, b.String(), "only first")
	assert.Contains(t, b.String(), "component=cli req.id=7")
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestTee_ContinuesAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	h := Tee(failingHandler{slog.NewTextHandler(io.Discard, nil)}, slog.NewTextHandler(&buf, nil))

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), LevelInfo, "kept", 0))
	assert.EqualError(t, err, "disk full")
	assert.Contains(t, buf.String(), "msg=kept")
}

func TestTee_Degenerate(t *testing.T) {
	single := slog.NewTextHandler(io.Discard, nil)
	assert.Same(t, single, Tee(single, nil))
	assert.False(t, Tee().Enabled(context.Background(), LevelError))
}

func TestNew_AlsoHandlers(t *testing.T) {
	var primary, file bytes.Buffer
	logger := New(Config{Level: LevelWarn, Output: &primary},
		NewHandler(Config{Level: LevelDebug, Format: FormatJSON, Output: &file}))

	logger.Debug("file only")
	logger.Error("everywhere")

	assert.NotContains(t, primary.String(), "file only")
	assert.Contains(t, primary.String(), "msg=everywhere")
	assert.Contains(t, file.String(), `"msg":"file only"`)
	assert.Contains(t, file.String(), `"msg":"everywhere"`)
}

func TestNop(t *testing.T) {
	assert.False(t, Nop().Enabled(context.Background(), LevelError))
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: LevelInfo, Format: FormatJSON, Output: &buf})
	logger.Info("hello", "k", "v")

	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"k":"v"`) {
		t.Errorf("JSON output = %q", buf.String())
	}
}
