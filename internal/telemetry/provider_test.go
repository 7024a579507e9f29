package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabled(t *testing.T) {
	p := NewDisabled()
	assert.False(t, p.Enabled())
	assert.NotNil(t, p.Tracer())
	assert.NotNil(t, p.Meter())
	require.NotNil(t, p.Instruments())

	// Recording against a disabled provider's instruments must not panic;
	// there is simply no exporter collecting the result.
	p.Instruments().RecordRequest(context.Background(), 0.01, 200, true)
	p.Instruments().RecordCancelled(context.Background(), 1)
}

func TestNew_NoExportRequested_ReturnsDisabled(t *testing.T) {
	p, err := New(context.Background(), Config{})
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	require.NotNil(t, p.Instruments())
}

func TestInstruments_NilIsANoOp(t *testing.T) {
	var instruments *Instruments
	instruments.RecordRequest(context.Background(), 1.0, 500, false)
	instruments.RecordCancelled(context.Background(), 3)
}

func TestNew_RequiresCollectorEndpoint(t *testing.T) {
	_, err := New(context.Background(), Config{EnableTracing: true})
	require.Error(t, err)
}
