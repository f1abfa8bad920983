package progress

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mgmtflow/flow"
)

func TestTracker_Sequencer(t *testing.T) {
	ok := flow.TaskFunc(func(ctx context.Context, fctx *flow.Context) (*flow.Context, error) { return fctx, nil })
	failing := flow.TaskFunc(func(ctx context.Context, fctx *flow.Context) (*flow.Context, error) { return nil, errors.New("boom") })
	testCases := []struct {
		description     string
		tasks           []flow.Task
		expectCompleted int
		expectPercent   int
	}{
		{description: "all tasks", tasks: []flow.Task{ok, ok, ok, ok}, expectCompleted: 4, expectPercent: 100},
		{description: "stops at failure", tasks: []flow.Task{ok, failing, ok, ok}, expectCompleted: 1, expectPercent: 25},
		{description: "empty", tasks: nil, expectCompleted: 0, expectPercent: 100},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			tracker := New("run-1", "test")
			var snapshots []Snapshot
			tracker.OnChange(func(s Snapshot) { snapshots = append(snapshots, s) })
			_, _ = flow.Sequential(context.Background(), flow.NewContext(tracker), tc.tasks...)

			actual := tracker.Snapshot()
			assert.Equal(t, len(tc.tasks), actual.TotalTasks)
			assert.Equal(t, tc.expectCompleted, actual.CompletedTasks)
			assert.Equal(t, tc.expectPercent, actual.Percent())
			assert.True(t, actual.Done())
			require.NotEmpty(t, snapshots)
			assert.True(t, snapshots[len(snapshots)-1].Done())
		})
	}
}

func TestTracker_Concurrent(t *testing.T) {
	tracker := New("run", "flow")
	tracker.Start(100)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Tick()
		}()
	}
	wg.Wait()
	actual := tracker.Snapshot()
	assert.Equal(t, 100, actual.CompletedTasks)
	assert.Equal(t, 0, actual.PendingTasks)
}

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)
	tracker := New("r", "f")
	actual, ok := FromContext(WithTracker(context.Background(), tracker))
	require.True(t, ok)
	assert.Same(t, tracker, actual)

	var nilTracker *Tracker
	nilTracker.Tick()
	assert.Equal(t, Snapshot{}, nilTracker.Snapshot())
}
