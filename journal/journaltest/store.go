// Package journaltest holds the behaviour every journal store must share.
package journaltest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/internal/dao"
	"github.com/viant/mgmtflow/journal"
)

// Exercise runs the store contract against an empty store.
func Exercise(t *testing.T, store journal.Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	finished := base.Add(3 * time.Second)
	runs := []*journal.Run{
		{ID: "01A", Flow: "deploy", State: flow.StateSucceeded, Total: 3, Completed: 3, StartedAt: base, FinishedAt: &finished},
		{ID: "01B", Flow: "replace", State: flow.StateFailed, Total: 2, Completed: 1, Task: "upload-or-replace", Error: "WFLYCTL0216", StartedAt: base.Add(time.Minute), FinishedAt: &finished},
		{ID: "01C", Flow: "patches", State: flow.StateRunning, Total: 2, StartedAt: base.Add(2 * time.Minute)},
	}

	assert.ErrorIs(t, store.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, store.Save(ctx, &journal.Run{}), dao.ErrInvalidID)
	for _, run := range runs {
		require.NoError(t, store.Save(ctx, run))
	}

	loaded, err := store.Load(ctx, "01B")
	require.NoError(t, err)
	assert.Equal(t, "replace", loaded.Flow)
	assert.Equal(t, flow.StateFailed, loaded.State)
	assert.Equal(t, 1, loaded.Completed)
	assert.Equal(t, "upload-or-replace", loaded.Task)
	assert.Equal(t, "WFLYCTL0216", loaded.Error)
	assert.WithinDuration(t, base.Add(time.Minute), loaded.StartedAt, time.Millisecond)
	require.NotNil(t, loaded.FinishedAt)
	assert.WithinDuration(t, finished, *loaded.FinishedAt, time.Millisecond)

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)

	testCases := []struct {
		description string
		parameters  []*dao.Parameter
		expect      []string
	}{
		{description: "all newest first", expect: []string{"01C", "01B", "01A"}},
		{description: "single state", parameters: []*dao.Parameter{dao.NewParameter(journal.StateParameter, "failed")}, expect: []string{"01B"}},
		{description: "several states", parameters: []*dao.Parameter{dao.NewParameter(journal.StateParameter, "succeeded", "running")}, expect: []string{"01C", "01A"}},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			list, err := store.List(ctx, tc.parameters...)
			require.NoError(t, err)
			var ids []string
			for _, run := range list {
				ids = append(ids, run.ID)
			}
			assert.Equal(t, tc.expect, ids)
		})
	}

	runs[2].State = flow.StateSucceeded
	runs[2].Completed = 2
	require.NoError(t, store.Save(ctx, runs[2]))
	updated, err := store.Load(ctx, "01C")
	require.NoError(t, err)
	assert.Equal(t, flow.StateSucceeded, updated.State)
	assert.Nil(t, updated.FinishedAt)

	require.NoError(t, store.Delete(ctx, "01A"))
	assert.ErrorIs(t, store.Delete(ctx, "01A"), dao.ErrNotFound)
	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
