package workflows

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreContract verifies that a Store implementation adheres to the
// session-store contract. Adapters call it from their own tests.
func RunStoreContract(t *testing.T, store Store) {
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405")

	seed := func(id string) *State {
		wf := NewBubbleTest(nil)
		state := NewState(id, wf)
		state.JobID = "job-1"
		state.Data["test_id"] = "t-1"
		return state
	}

	t.Run("save and load", func(t *testing.T) {
		state := seed(sessionID)
		state.MarkComplete()
		state.Advance()

		require.NoError(t, store.Save(ctx, sessionID, state))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, state.Workflow, loaded.Workflow)
		assert.Equal(t, state.CurrentStep, loaded.CurrentStep)
		assert.Equal(t, StatusCompleted, loaded.Steps[0].Status)
		assert.Equal(t, "t-1", loaded.Data["test_id"])
	})

	t.Run("load non-existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("stored copy is isolated", func(t *testing.T) {
		state := seed(sessionID)
		require.NoError(t, store.Save(ctx, sessionID, state))

		state.Data["test_id"] = "mutated"

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "t-1", loaded.Data["test_id"])
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, seed(sessionID)))
		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("list", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, seed(id1)))
		require.NoError(t, store.Save(ctx, id2, seed(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
