// Package journal records the audit trail of chain runs: one Run record per
// execution, updated on every sequencer transition.
package journal

import (
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/viant/mgmtflow/flow"
	"github.com/viant/mgmtflow/internal/clock"
	"github.com/viant/mgmtflow/internal/dao"
)

// StateParameter filters List by run state.
const StateParameter = "State"

// Run is the journal record of one chain execution.
type Run struct {
	ID         string     `json:"id" yaml:"id"`
	Flow       string     `json:"flow" yaml:"flow"`
	State      flow.State `json:"state" yaml:"state"`
	Total      int        `json:"total" yaml:"total"`
	Completed  int        `json:"completed" yaml:"completed"`
	Task       string     `json:"task,omitempty" yaml:"task,omitempty"`
	Error      string     `json:"error,omitempty" yaml:"error,omitempty"`
	StartedAt  time.Time  `json:"startedAt" yaml:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty" yaml:"finishedAt,omitempty"`
}

// Store persists runs.
type Store = dao.Service[string, Run]

// NewID returns a time ordered run identifier.
func NewID() string {
	return ulid.Make().String()
}

// NewRun creates a running record.
func NewRun(id, flowName string, total int) *Run {
	if id == "" {
		id = NewID()
	}
	return &Run{ID: id, Flow: flowName, State: flow.StateRunning, Total: total, StartedAt: clock.Now()}
}

// Duration returns the elapsed run time, up to now for unfinished runs.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt != nil {
		return r.FinishedAt.Sub(r.StartedAt)
	}
	return clock.Now().Sub(r.StartedAt)
}

// MatchState filters runs by StateParameter.
func MatchState(run *Run, parameters []*dao.Parameter) bool {
	return dao.Match(StateParameter, string(run.State), parameters)
}

// SortByStart orders runs newest first.
func SortByStart(runs []*Run) {
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
}
