package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"product-api/internal/config"
)

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		AppName:                "product-api",
		RemoteTraceRpcURI:      "tempo:4317",
		RemoteProfilingHttpURI: "http://pyroscope:4040",
		TraceStdout:            true,
		Production:             true,
	}

	assert.Equal(t, Options{
		AppName:      "product-api",
		Env:          "production",
		OTLPEndpoint: "tempo:4317",
		Stdout:       true,
		ProfilingURI: "http://pyroscope:4040",
	}, OptionsFromConfig(cfg))
}

func TestSetupWithoutExporters(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Setup(ctx, Options{AppName: "test", Env: "development"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(ctx) })

	spanCtx, span := otel.Tracer("test").Start(ctx, "op")
	defer span.End()
	assert.True(t, span.SpanContext().IsValid())

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(spanCtx, carrier)
	assert.NotEmpty(t, carrier.Get("traceparent"))
}
