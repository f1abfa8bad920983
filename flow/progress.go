package flow

// Progress is an advisory progress indicator notified by the Sequencer.
// Implementations must not fail and must tolerate being called from the
// goroutine that runs the chain.
type Progress interface {
	// Start is called once, before the first task, with the number of tasks.
	Start(total int)
	// Tick is called after every task that completed successfully.
	Tick()
	// Finish is called once the run reached a terminal state.
	Finish()
}

// NoopProgress ignores all notifications.
var NoopProgress Progress = noopProgress{}

type noopProgress struct{}

func (noopProgress) Start(int) {}
func (noopProgress) Tick()     {}
func (noopProgress) Finish()   {}
