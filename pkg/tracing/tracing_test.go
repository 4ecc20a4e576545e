package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpanWithoutTracer(t *testing.T) {
	SetTracer(nil)
	ctx, span := StartSpan(context.Background(), "noop")
	assert.NotNil(t, span)
	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetTraceParent(ctx))
	EndSpan(span, nil)
}

func TestStartSpanRecordsErrors(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	SetTracer(provider.Tracer("test"))
	defer SetTracer(nil)

	ctx, span := StartSpan(context.Background(), "merge")
	assert.Len(t, GetTraceID(ctx), 32)
	assert.NotEmpty(t, GetTraceParent(ctx))
	EndSpan(span, errors.New("boom"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "merge", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestNewOTLPExporterRejectsUnknownProtocol(t *testing.T) {
	_, err := NewOTLPExporter(context.Background(), OTLPConfig{Protocol: "udp"})
	assert.Error(t, err)
}
