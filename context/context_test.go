package context

import (
	"context"
	"testing"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationID(t *testing.T) {
	_, ok := CorrelationID(context.Background())
	assert.False(t, ok)

	ctx := WithCorrelationID(context.Background(), "abc")
	id, ok := CorrelationID(ctx)
	require.True(t, ok)
	assert.Equal(t, "abc", id.String())

	same, kept := WithGeneratedCorrelationID(ctx)
	assert.Equal(t, "abc", kept.String())
	assert.Equal(t, ctx, same)

	_, generated := WithGeneratedCorrelationID(context.Background())
	assert.Len(t, generated.String(), 36)
}

func TestLoggerFallsBack(t *testing.T) {
	assert.NotNil(t, Logger(context.Background(), nil))

	stored := log.NewNop()
	ctx := WithLogger(context.Background(), stored)
	assert.Same(t, stored, Logger(ctx, nil))
}
