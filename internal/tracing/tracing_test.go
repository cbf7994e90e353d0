package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func TestInitialize_Disabled(t *testing.T) {
	shutdown, err := Initialize(context.Background(), DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitialize_Enabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true

	// The exporter connects lazily, so no collector is needed to initialize.
	shutdown, err := Initialize(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	_, span := Tracer().Start(context.Background(), "test")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestTaskAttributes(t *testing.T) {
	attrs := TaskAttributes("t1", 250)
	assert.Contains(t, attrs, attribute.String("task.id", "t1"))
	assert.Contains(t, attrs, attribute.Int64("task.duration_ms", 250))
}
