package flow

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// State of a Sequencer.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// IsTerminal returns true for succeeded, failed and cancelled.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed || s == StateCancelled
}

// Option customises a Sequencer.
type Option func(s *Sequencer)

// WithName sets the flow name reported to listeners.
func WithName(name string) Option {
	return func(s *Sequencer) { s.name = name }
}

// WithRunID sets the run identifier reported to listeners.
func WithRunID(id string) Option {
	return func(s *Sequencer) { s.runID = id }
}

// WithListener adds a transition listener.
func WithListener(listener Listener) Option {
	return func(s *Sequencer) {
		if listener != nil {
			s.listeners = append(s.listeners, listener)
		}
	}
}

// WithDecorator wraps every task before it is applied.
func WithDecorator(decorator Decorator) Option {
	return func(s *Sequencer) {
		if decorator != nil {
			s.decorators = append(s.decorators, decorator)
		}
	}
}

// Sequencer runs an ordered task list against one Context. Task N+1 never
// starts before task N returned; the first failure aborts the remaining
// tasks. A Sequencer runs once.
type Sequencer struct {
	name       string
	runID      string
	tasks      []Task
	fctx       *Context
	listeners  []Listener
	decorators []Decorator
	mux        sync.Mutex
	state      State
	current    int
}

// NewSequencer creates a sequencer in StateIdle.
func NewSequencer(fctx *Context, tasks []Task, options ...Option) *Sequencer {
	if fctx == nil {
		fctx = NewContext(nil)
	}
	ret := &Sequencer{
		tasks:   tasks,
		fctx:    fctx,
		state:   StateIdle,
		current: -1,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// State returns the current state.
func (s *Sequencer) State() State {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.state
}

// Current returns the index of the task being applied, or -1.
func (s *Sequencer) Current() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.current
}

func (s *Sequencer) setState(state State, current int) {
	s.mux.Lock()
	s.state = state
	s.current = current
	s.mux.Unlock()
}

// Run executes the tasks in order. On success it returns the context produced
// by the last task (the initial one for an empty list). On failure it returns
// the failing task's error unchanged.
func (s *Sequencer) Run(ctx context.Context) (*Context, error) {
	s.mux.Lock()
	if s.state != StateIdle {
		s.mux.Unlock()
		return nil, ErrAlreadyStarted
	}
	s.state = StateRunning
	s.mux.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	total := len(s.tasks)
	progress := s.fctx.Progress()
	progress.Start(total)
	started := time.Now()
	s.notify(&Event{Type: EventRunStarted, Index: -1, Total: total})

	fctx := s.fctx
	for i, task := range s.tasks {
		if err := ctx.Err(); err != nil {
			progress.Finish()
			cancelled := fmt.Errorf("%w: %w", ErrCancelled, err)
			s.setState(StateCancelled, i)
			s.notify(&Event{Type: EventRunCancelled, Index: i, Total: total, Err: cancelled, Elapsed: time.Since(started)})
			return nil, cancelled
		}
		s.setState(StateRunning, i)
		name := NameOf(task)
		s.notify(&Event{Type: EventTaskStarted, Task: name, Index: i, Total: total})
		taskStarted := time.Now()

		next, err := s.decorate(task).Apply(ctx, fctx)
		if err != nil {
			progress.Finish()
			s.setState(StateFailed, i)
			s.notify(&Event{Type: EventTaskFailed, Task: name, Index: i, Total: total, Err: err, Elapsed: time.Since(taskStarted)})
			s.notify(&Event{Type: EventRunFailed, Task: name, Index: i, Total: total, Err: err, Elapsed: time.Since(started)})
			return nil, err
		}
		if next != nil {
			fctx = next
		}
		progress.Tick()
		s.notify(&Event{Type: EventTaskDone, Task: name, Index: i, Total: total, Elapsed: time.Since(taskStarted)})
	}
	progress.Finish()
	s.setState(StateSucceeded, -1)
	s.notify(&Event{Type: EventRunSucceeded, Index: total, Total: total, Elapsed: time.Since(started)})
	return fctx, nil
}

func (s *Sequencer) decorate(task Task) Task {
	for _, decorator := range s.decorators {
		task = decorator(task)
	}
	return task
}

func (s *Sequencer) notify(event *Event) {
	if len(s.listeners) == 0 {
		return
	}
	event.Flow = s.name
	event.RunID = s.runID
	event.Time = time.Now()
	for _, listener := range s.listeners {
		listener(event)
	}
}

// Outcome is the terminal result of an asynchronous run.
type Outcome struct {
	Context *Context
	Err     error
	State   State
}

// Start runs the chain in its own goroutine. The returned channel receives
// exactly one Outcome and is then closed.
func (s *Sequencer) Start(ctx context.Context) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		fctx, err := s.Run(ctx)
		ch <- Outcome{Context: fctx, Err: err, State: s.State()}
	}()
	return ch
}

// Await blocks for the outcome and calls onSuccess or onFailure. Either
// continuation may be nil. The outcome is returned for further inspection.
// A drained channel yields ErrOutcomeConsumed with no state and no
// continuation call.
func Await(ch <-chan Outcome, onSuccess func(fctx *Context), onFailure func(err error)) Outcome {
	outcome, ok := <-ch
	if !ok {
		return Outcome{Err: ErrOutcomeConsumed}
	}
	if outcome.Err != nil {
		if onFailure != nil {
			onFailure(outcome.Err)
		}
		return outcome
	}
	if onSuccess != nil {
		onSuccess(outcome.Context)
	}
	return outcome
}

// Sequential runs tasks in order against fctx.
func Sequential(ctx context.Context, fctx *Context, tasks ...Task) (*Context, error) {
	return NewSequencer(fctx, tasks).Run(ctx)
}

// Runner executes named chains. The root service implements it with logging,
// metrics, tracing and journaling; DefaultRunner runs bare chains.
type Runner interface {
	Run(ctx context.Context, name string, fctx *Context, tasks ...Task) (*Context, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, name string, fctx *Context, tasks ...Task) (*Context, error)

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, name string, fctx *Context, tasks ...Task) (*Context, error) {
	return f(ctx, name, fctx, tasks...)
}

// DefaultRunner runs chains with a plain Sequencer.
var DefaultRunner Runner = RunnerFunc(func(ctx context.Context, name string, fctx *Context, tasks ...Task) (*Context, error) {
	return NewSequencer(fctx, tasks, WithName(name)).Run(ctx)
})
