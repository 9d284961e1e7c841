package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// setupTestTracer creates a test tracer with in-memory exporter
func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	res, err := createResource(DefaultConfig())
	if err != nil {
		t.Fatalf("createResource failed: %v", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	providerMu.Lock()
	globalProvider = tp
	providerMu.Unlock()

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		providerMu.Lock()
		globalProvider = nil
		providerMu.Unlock()
	})

	return exporter
}

func attrValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, a := range attrs {
		if string(a.Key) == key {
			return a.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestStartCommandSpan(t *testing.T) {
	exporter := setupTestTracer(t)

	ctx := context.Background()
	spanCtx, span := StartCommandSpan(ctx, "evaluate")
	if spanCtx == ctx {
		t.Error("expected new context with span, got same context")
	}
	span.End()

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "command.evaluate" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "command.evaluate")
	}
	if v, ok := attrValue(spans[0].Attributes, "command"); !ok || v.AsString() != "evaluate" {
		t.Errorf("command attribute = %v, want evaluate", v.AsString())
	}
}

func TestStartPublishSpan(t *testing.T) {
	exporter := setupTestTracer(t)

	ctx, parent := StartCommandSpan(context.Background(), "publish")
	_, span := StartPublishSpan(ctx, "octo/repo", 42)
	span.End()
	parent.End()

	spans := exporter.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}

	child := spans[0]
	if child.Name != "publish.request" {
		t.Errorf("span name = %q, want publish.request", child.Name)
	}
	if child.SpanKind != trace.SpanKindClient {
		t.Errorf("span kind = %v, want client", child.SpanKind)
	}
	if child.Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("publish span should be a child of the command span")
	}
	if v, _ := attrValue(child.Attributes, "pr"); v.AsInt64() != 42 {
		t.Errorf("pr attribute = %d, want 42", v.AsInt64())
	}
	if v, _ := attrValue(child.Attributes, "repo"); v.AsString() != "octo/repo" {
		t.Errorf("repo attribute = %q, want octo/repo", v.AsString())
	}
}

func TestRecordSuccess(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartCommandSpan(context.Background(), "evaluate")
	RecordSuccess(span, attribute.Bool("passed", true))
	span.End()

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Ok {
		t.Errorf("status = %v, want Ok", got.Status.Code)
	}
	if v, ok := attrValue(got.Attributes, "passed"); !ok || !v.AsBool() {
		t.Error("expected passed=true attribute")
	}
}

func TestRecordError(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartCommandSpan(context.Background(), "publish")
	RecordError(span, errors.New("boom"))
	span.End()

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Error {
		t.Errorf("status = %v, want Error", got.Status.Code)
	}
	if got.Status.Description != "boom" {
		t.Errorf("status description = %q, want boom", got.Status.Description)
	}
	if len(got.Events) != 1 {
		t.Errorf("expected 1 error event, got %d", len(got.Events))
	}
}

func TestRecordErrorWithNil(t *testing.T) {
	exporter := setupTestTracer(t)

	_, span := StartCommandSpan(context.Background(), "evaluate")
	RecordError(span, nil)
	span.End()

	got := exporter.GetSpans()[0]
	if got.Status.Code != codes.Unset {
		t.Errorf("status = %v, want Unset", got.Status.Code)
	}
}

func TestNoopProviderByDefault(t *testing.T) {
	providerMu.Lock()
	globalProvider = nil
	providerMu.Unlock()

	_, span := StartCommandSpan(context.Background(), "evaluate")
	defer span.End()
	if span.SpanContext().IsValid() {
		t.Error("expected noop span without an initialized provider")
	}
}
