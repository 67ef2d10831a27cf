package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestSetup_ExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var out bytes.Buffer
	tp, shutdown, err := Setup(Options{ServiceName: "snaptrade-test", Writer: &out}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	_, span := tp.Tracer("test").Start(context.Background(), "snaptrade GET /api/v1/")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "snaptrade GET /api/v1/") {
		t.Errorf("exported spans missing span name:\n%s", got)
	}
	if !strings.Contains(got, "snaptrade-test") {
		t.Errorf("exported spans missing service name:\n%s", got)
	}
}
