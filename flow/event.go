package flow

import "time"

// EventType identifies a sequencer transition.
type EventType string

const (
	EventRunStarted   EventType = "runStarted"
	EventTaskStarted  EventType = "taskStarted"
	EventTaskDone     EventType = "taskDone"
	EventTaskFailed   EventType = "taskFailed"
	EventRunSucceeded EventType = "runSucceeded"
	EventRunFailed    EventType = "runFailed"
	EventRunCancelled EventType = "runCancelled"
)

// Event describes a sequencer transition delivered to listeners.
type Event struct {
	Type    EventType
	Flow    string
	RunID   string
	Task    string
	Index   int
	Total   int
	Err     error
	Elapsed time.Duration
	Time    time.Time
}

// Terminal returns true for run level terminal events.
func (e *Event) Terminal() bool {
	switch e.Type {
	case EventRunSucceeded, EventRunFailed, EventRunCancelled:
		return true
	}
	return false
}

// Listener observes sequencer transitions. Listeners run synchronously in
// the chain goroutine and must not mutate the flow context.
type Listener func(event *Event)

// Listeners fans an event out to several listeners.
func Listeners(listeners ...Listener) Listener {
	return func(event *Event) {
		for _, listener := range listeners {
			if listener != nil {
				listener(event)
			}
		}
	}
}
