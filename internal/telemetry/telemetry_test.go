package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitNoneLeavesGlobalProvider(t *testing.T) {
	before := otel.GetTracerProvider()
	shutdown, err := Init(context.Background(), Config{ServiceName: "budget", Exporter: ExporterNone})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())
}

func TestInitRejectsUnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), Config{Exporter: "jaeger"})
	assert.Error(t, err)
}

func TestInitStdoutExportsSpans(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	shutdown, err := Init(context.Background(), Config{ServiceName: "budget", Version: "test", Exporter: ExporterStdout, Output: &buf})
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "GET /api/categories")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.Contains(t, buf.String(), "GET /api/categories")
}

func TestNewTracerProviderRecords(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := NewTracerProvider(resource.Empty(), sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("test").Start(context.Background(), "db.Query categories")
	span.End()

	require.Len(t, rec.Ended(), 1)
	assert.Equal(t, "db.Query categories", rec.Ended()[0].Name())
}
