package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOtelSampleRatioClamps(t *testing.T) {
	t.Setenv("OTEL_SAMPLER_RATIO", "")
	assert.Equal(t, 0.1, otelSampleRatio())
	t.Setenv("OTEL_SAMPLER_RATIO", "2")
	assert.Equal(t, 1.0, otelSampleRatio())
	t.Setenv("OTEL_SAMPLER_RATIO", "-1")
	assert.Equal(t, 0.0, otelSampleRatio())
	t.Setenv("OTEL_SAMPLER_RATIO", "0.5")
	assert.Equal(t, 0.5, otelSampleRatio())
}

func TestOtelHeadersParsing(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "a=1, b = 2,broken,=x")
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, otelHeaders())
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")
	assert.Nil(t, otelHeaders())
}

func TestTracerWithoutInitIsUsable(t *testing.T) {
	_, span := Tracer().Start(context.Background(), "test")
	span.End()
}
