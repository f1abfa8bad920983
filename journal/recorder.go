package journal

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/viant/mgmtflow/flow"
)

// Recorder keeps runs up to date in a Store as sequencer events arrive.
// Events without a run ID are ignored. Store failures are logged and never
// affect the chain.
type Recorder struct {
	store  Store
	logger logrus.FieldLogger
	mux    sync.Mutex
	runs   map[string]*Run
}

// NewRecorder creates a recorder. A nil logger discards messages.
func NewRecorder(store Store, logger logrus.FieldLogger) *Recorder {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}
	return &Recorder{store: store, logger: logger, runs: map[string]*Run{}}
}

// Listener returns the recorder as a flow.Listener.
func (r *Recorder) Listener() flow.Listener {
	return r.Record
}

// Record applies event to its run.
func (r *Recorder) Record(event *flow.Event) {
	if event == nil || event.RunID == "" {
		return
	}
	r.mux.Lock()
	run, ok := r.runs[event.RunID]
	if event.Type == flow.EventRunStarted || !ok {
		run = NewRun(event.RunID, event.Flow, event.Total)
		if !event.Time.IsZero() {
			run.StartedAt = event.Time
		}
		r.runs[event.RunID] = run
	}
	switch event.Type {
	case flow.EventTaskStarted:
		run.Task = event.Task
	case flow.EventTaskDone:
		run.Completed = event.Index + 1
	case flow.EventTaskFailed:
		run.Task = event.Task
		if event.Err != nil {
			run.Error = event.Err.Error()
		}
	case flow.EventRunSucceeded, flow.EventRunFailed, flow.EventRunCancelled:
		run.State = terminalState(event.Type)
		if event.Err != nil {
			run.Error = event.Err.Error()
		}
		finished := event.Time
		if finished.IsZero() {
			finished = time.Now()
		}
		run.FinishedAt = &finished
		delete(r.runs, event.RunID)
	}
	snapshot := *run
	r.mux.Unlock()

	if err := r.store.Save(context.Background(), &snapshot); err != nil {
		r.logger.WithError(err).WithField("run", event.RunID).Warn("failed to record run")
	}
}

func terminalState(eventType flow.EventType) flow.State {
	switch eventType {
	case flow.EventRunSucceeded:
		return flow.StateSucceeded
	case flow.EventRunCancelled:
		return flow.StateCancelled
	}
	return flow.StateFailed
}
