package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
		levelVar.Set(slog.LevelInfo)
	})
	return buf
}

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := captureLogs(t)

	Info(context.Background(), "hello", "user", "test")

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatalf("expected log output, got empty string")
	}
	for _, want := range []string{"ts=", "level=info", "msg=hello", "user=test"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in log line, got %q", want, line)
		}
	}
}

func TestRequestIDIsAppended(t *testing.T) {
	buf := captureLogs(t)

	ctx := WithRequestID(context.Background(), "abc-123")
	Warn(ctx, "slow query")

	line := buf.String()
	if !strings.Contains(line, "request_id=abc-123") {
		t.Fatalf("expected request id in log line, got %q", line)
	}
	if !strings.Contains(line, "level=warn") {
		t.Fatalf("expected warn level, got %q", line)
	}
}

func TestSetLevelFiltersDebug(t *testing.T) {
	buf := captureLogs(t)

	Debug(context.Background(), "hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected debug line to be filtered at info level, got %q", buf.String())
	}

	if err := SetLevel("DEBUG"); err != nil {
		t.Fatalf("SetLevel returned error: %v", err)
	}
	Debug(nil, "visible")
	if !strings.Contains(buf.String(), "msg=visible") {
		t.Fatalf("expected debug line after SetLevel, got %q", buf.String())
	}
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	if err := SetLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
