package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/ottoassistant/otto/internal/requestid"
)

func TestNew_JSONEnvProducesParsableStructuredRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := New("production", slog.LevelInfo, &buf)

	ctx := requestid.WithRequestID(context.Background(), "req-123")
	logger.InfoContext(ctx, "job claimed", "job_id", "abc")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if record["request_id"] != "req-123" {
		t.Errorf("request_id = %v, want req-123", record["request_id"])
	}
	if record["job_id"] != "abc" {
		t.Errorf("job_id = %v, want abc", record["job_id"])
	}
}

func TestNew_OmitsRequestIDWhenAbsentFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New("production", slog.LevelInfo, &buf)

	logger.InfoContext(context.Background(), "tick")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if _, present := record["request_id"]; present {
		t.Error("did not expect request_id key when context carries none")
	}
}

func TestNew_LocalEnvUsesTintHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := New("local", slog.LevelInfo, &buf)

	logger.Info("hello")

	if strings.TrimSpace(buf.String()) == "" {
		t.Fatal("expected non-empty tint output")
	}
	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err == nil {
		t.Fatal("expected non-JSON tint-formatted output for local env")
	}
}

func TestNew_IncludesPlaneWhenSetOnContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New("production", slog.LevelInfo, &buf)

	ctx := WithPlane(context.Background(), "internal")
	logger.InfoContext(ctx, "tick")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if record["plane"] != "internal" {
		t.Errorf("plane = %v, want internal", record["plane"])
	}
}

func TestContextHandler_WithAttrsPreservesWrapping(t *testing.T) {
	var buf bytes.Buffer
	base := NewContextHandler(slog.NewJSONHandler(&buf, nil))
	wrapped := base.WithAttrs([]slog.Attr{slog.String("component", "scheduler")})

	logger := slog.New(wrapped)
	ctx := requestid.WithRequestID(context.Background(), "req-456")
	logger.InfoContext(ctx, "tick")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("expected JSON output: %v", err)
	}
	if record["component"] != "scheduler" {
		t.Errorf("component = %v, want scheduler", record["component"])
	}
	if record["request_id"] != "req-456" {
		t.Errorf("request_id = %v, want req-456", record["request_id"])
	}
}
