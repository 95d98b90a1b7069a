package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/geocoder89/coursehub/internal/actorctx"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestLogger_AddsTraceIDsInsideSpan(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.InfoContext(ctx, "inside span")
	span.End()

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}

	if rec["trace_id"] != span.SpanContext().TraceID().String() {
		t.Fatalf("trace_id = %v, want %s", rec["trace_id"], span.SpanContext().TraceID())
	}
	if rec["span_id"] == nil {
		t.Fatalf("expected span_id in %v", rec)
	}
}

func TestLogger_DebugOnlyInDev(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, "prod").Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be filtered outside dev, got %s", buf.String())
	}

	newLogger(&buf, "dev").Debug("shown")
	if buf.Len() == 0 {
		t.Fatalf("debug should be emitted in dev")
	}
}

func TestLogger_AddsAuthenticatedUser(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	log.InfoContext(actorctx.WithUserID(context.Background(), 42), "as user")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}

	// JSON numbers decode as float64
	if rec["user_id"] != float64(42) {
		t.Fatalf("user_id = %v, want 42", rec["user_id"])
	}
	if _, ok := rec["trace_id"]; ok {
		t.Fatalf("no span is active, trace_id should be absent: %v", rec)
	}
}
