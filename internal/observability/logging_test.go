package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogs swaps the default logger for a JSON handler writing to a buffer.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestGetContext_Empty(t *testing.T) {
	assert.Equal(t, LogContext{}, GetContext(context.Background()))
	assert.Empty(t, Attrs(context.Background()))
}

func TestWithFields_Accumulate(t *testing.T) {
	ctx := WithBuildID(context.Background(), "b-1")
	ctx = WithSource(ctx, "paper")
	staged := WithStage(ctx, "fuse_inputs")

	assert.Equal(t, LogContext{BuildID: "b-1", Source: "paper", Stage: "fuse_inputs"}, GetContext(staged))
	// parent is unchanged
	assert.Empty(t, GetContext(ctx).Stage)
	assert.Len(t, Attrs(staged), 3)
}

func TestInfoContext_IncludesContextAttrs(t *testing.T) {
	buf := captureLogs(t)
	ctx := WithStage(WithBuildID(context.Background(), "b-2"), "write_root")

	InfoContext(ctx, "Root document written", slog.String("file", "root.tex"))

	rec := decode(t, buf)
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "Root document written", rec["msg"])
	assert.Equal(t, "b-2", rec["build_id"])
	assert.Equal(t, "write_root", rec["stage"])
	assert.Equal(t, "root.tex", rec["file"])
}

func TestLevels(t *testing.T) {
	tests := []struct {
		log  func(context.Context, string, ...slog.Attr)
		want string
	}{
		{DebugContext, "DEBUG"},
		{InfoContext, "INFO"},
		{WarnContext, "WARN"},
		{ErrorContext, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			buf := captureLogs(t)
			tt.log(context.Background(), "msg")
			assert.Equal(t, tt.want, decode(t, buf)["level"])
		})
	}
}
