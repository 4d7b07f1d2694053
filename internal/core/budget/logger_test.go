package budget

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestStdLoggerFiltersBelowMinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdLogger(LogLevelWarn, &buf)

	logger.Debug(context.Background(), "debug line")
	logger.Info(context.Background(), "info line")
	logger.Warn(context.Background(), "warn line", Field("key", "value"))

	output := buf.String()
	if strings.Contains(output, "debug line") || strings.Contains(output, "info line") {
		t.Fatalf("entries below the minimum level leaked: %s", output)
	}
	if !strings.Contains(output, "warn line") || !strings.Contains(output, "key=value") {
		t.Fatalf("expected the warn entry with its field: %s", output)
	}
}

func TestStdLoggerIncludesErrorAndTraceID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdLogger(LogLevelDebug, &buf)

	ctx := WithTraceID(context.Background(), "trace-42")
	logger.Error(ctx, "boom", errors.New("broken pipe"))

	output := buf.String()
	if !strings.Contains(output, `error="broken pipe"`) {
		t.Fatalf("expected the wrapped error: %s", output)
	}
	if !strings.Contains(output, "trace_id=trace-42") {
		t.Fatalf("expected the trace id from context: %s", output)
	}
}

func TestStdLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdLogger(LogLevelInfo, &buf).WithFields(Field("component", "packer"))

	logger.Info(context.Background(), "scoped entry")
	if !strings.Contains(buf.String(), "component=packer") {
		t.Fatalf("expected the bound field: %s", buf.String())
	}
}

func TestNilWriterDiscards(t *testing.T) {
	logger := NewStdLogger(LogLevelDebug, nil)
	// Must not panic.
	logger.Info(context.Background(), "goes nowhere")
}
