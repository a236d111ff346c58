package chainflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainflow/chainflow/pkg/chainflow/backend"
)

// TestNewContext_Defaults verifies the zero-option context is usable.
func TestNewContext_Defaults(t *testing.T) {
	ctx := NewContext(context.Background())

	assert.NotNil(t, ctx.Logger())
	assert.Nil(t, ctx.Backend())
	assert.NotEmpty(t, ctx.RunID())
	assert.Empty(t, ctx.StepName())
	assert.Equal(t, 1, ctx.Attempt())
}

// TestNewContext_Options verifies option wiring.
func TestNewContext_Options(t *testing.T) {
	logger := quietLogger()
	client := backend.NewMockClient("ok")

	ctx := NewContext(context.Background(),
		WithLogger(logger),
		WithBackend(client),
		WithRunID("run-123"))

	assert.Same(t, logger, ctx.Logger())
	assert.Equal(t, client, ctx.Backend())
	assert.Equal(t, "run-123", ctx.RunID())
}

// TestContext_StandardBehavior verifies the embedded context passes through
// deadlines and cancellation.
func TestContext_StandardBehavior(t *testing.T) {
	std, cancel := context.WithCancel(context.Background())
	ctx := NewContext(std)

	select {
	case <-ctx.Done():
		t.Fatal("context should not be done yet")
	default:
	}

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("cancellation did not propagate")
	}
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

// TestContext_WithStep verifies per-step derivation keeps the base intact.
func TestContext_WithStep(t *testing.T) {
	base := NewContext(context.Background(), WithRunID("run-1"))
	ec, ok := base.(*executionContext)
	require.True(t, ok)

	derived := ec.withStep("lookup", 2)

	assert.Equal(t, "lookup", derived.StepName())
	assert.Equal(t, 2, derived.Attempt())
	assert.Equal(t, "run-1", derived.RunID())
	// The base context is unchanged.
	assert.Empty(t, base.StepName())
	assert.Equal(t, 1, base.Attempt())
}
