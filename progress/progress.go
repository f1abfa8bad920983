package progress

import (
	"context"
	"sync"
	"time"
)

// Delta is an incremental counter change. Fields are signed.
type Delta struct {
	Total     int
	Completed int
	Running   int
	Pending   int
}

// Snapshot is a read-only copy of the tracker state.
type Snapshot struct {
	RunID      string
	Flow       string
	StartedAt  time.Time
	FinishedAt time.Time

	TotalTasks     int
	CompletedTasks int
	RunningTasks   int
	PendingTasks   int
}

// Done returns true once the run finished.
func (s Snapshot) Done() bool {
	return !s.FinishedAt.IsZero()
}

// Percent returns the completed share, 0..100.
func (s Snapshot) Percent() int {
	if s.TotalTasks <= 0 {
		if s.Done() {
			return 100
		}
		return 0
	}
	return s.CompletedTasks * 100 / s.TotalTasks
}

// Tracker keeps task counters for one run. It is safe for concurrent use.
type Tracker struct {
	mux      sync.Mutex
	state    Snapshot
	onChange func(Snapshot)
}

// New creates a tracker.
func New(runID, flow string) *Tracker {
	return &Tracker{state: Snapshot{RunID: runID, Flow: flow}}
}

// Update applies d. The onChange callback gets a copy outside the lock.
func (t *Tracker) Update(d Delta) {
	if t == nil {
		return
	}
	t.mux.Lock()
	t.state.TotalTasks += d.Total
	t.state.CompletedTasks += d.Completed
	t.state.RunningTasks += d.Running
	t.state.PendingTasks += d.Pending
	snapshot := t.state
	cb := t.onChange
	t.mux.Unlock()

	if cb != nil {
		cb(snapshot)
	}
}

// Start records the number of tasks of the run.
func (t *Tracker) Start(total int) {
	if t == nil {
		return
	}
	t.mux.Lock()
	t.state.StartedAt = time.Now()
	t.mux.Unlock()
	t.Update(Delta{Total: total, Pending: total})
}

// Tick records one completed task.
func (t *Tracker) Tick() {
	t.Update(Delta{Completed: 1, Pending: -1})
}

// Finish marks the run as finished.
func (t *Tracker) Finish() {
	if t == nil {
		return
	}
	t.mux.Lock()
	t.state.FinishedAt = time.Now()
	snapshot := t.state
	cb := t.onChange
	t.mux.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

// Snapshot returns a copy of the tracker state.
func (t *Tracker) Snapshot() Snapshot {
	if t == nil {
		return Snapshot{}
	}
	t.mux.Lock()
	defer t.mux.Unlock()
	return t.state
}

// OnChange registers the callback invoked after every change; nil disables it.
func (t *Tracker) OnChange(cb func(Snapshot)) {
	if t == nil {
		return
	}
	t.mux.Lock()
	t.onChange = cb
	t.mux.Unlock()
}

type trackerKeyT struct{}

var trackerKey trackerKeyT

// WithTracker embeds t in a derived context.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, trackerKey, t)
}

// FromContext extracts the tracker from ctx.
func FromContext(ctx context.Context) (*Tracker, bool) {
	if ctx == nil {
		return nil, false
	}
	t, ok := ctx.Value(trackerKey).(*Tracker)
	return t, ok
}
