package internal_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/paperco/internal"
)

func TestRunID(t *testing.T) {
	t.Parallel()

	id := internal.NewRunID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, internal.NewRunID())

	_, ok := internal.RunIDFromContext(context.Background())
	assert.False(t, ok)

	ctx := internal.ContextWithRunID(context.Background(), id)
	got, ok := internal.RunIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestRunIDExtractor(t *testing.T) {
	t.Parallel()

	extract := internal.RunIDExtractor()

	_, ok := extract(context.Background())
	assert.False(t, ok)

	_, ok = extract(internal.ContextWithRunID(context.Background(), ""))
	assert.False(t, ok, "empty run ID is not logged")

	attr, ok := extract(internal.ContextWithRunID(context.Background(), "run-7"))
	require.True(t, ok)
	assert.Equal(t, "run_id", attr.Key)
	assert.Equal(t, "run-7", attr.Value.String())
}

func TestStateString(t *testing.T) {
	t.Parallel()

	tests := map[internal.State]string{
		internal.StateIdle:              "idle",
		internal.StateSourceLoaded:      "source_loaded",
		internal.StateTemplatesCompiled: "templates_compiled",
		internal.StateRunning:           "running",
		internal.StateCompleted:         "completed",
		internal.StateAborted:           "aborted",
		internal.State(99):              "unknown",
	}
	for state, want := range tests {
		assert.Equal(t, want, state.String())
	}
}
