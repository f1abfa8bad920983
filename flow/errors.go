package flow

import "errors"

var (
	// ErrEmptyStack is returned by Pop and Peek when the context stack holds
	// no values. It signals a broken contract between adjacent tasks.
	ErrEmptyStack = errors.New("flow: empty stack")

	// ErrCancelled is returned when the run context is done before the next
	// task could be started.
	ErrCancelled = errors.New("flow: cancelled")

	// ErrAlreadyStarted is returned when a Sequencer is run more than once.
	ErrAlreadyStarted = errors.New("flow: sequencer already started")

	// ErrOutcomeConsumed is returned by Await on a channel whose outcome was
	// already received.
	ErrOutcomeConsumed = errors.New("flow: outcome already consumed")
)
