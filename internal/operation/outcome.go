package operation

import "sync"

// Status is the terminal outcome of an operation.
type Status string

const (
	// StatusCompleted means the stream reached its terminal success event.
	StatusCompleted Status = "completed"
	// StatusCancelled means cancellation was requested and observed.
	StatusCancelled Status = "cancelled"
	// StatusTimedOut means the global deadline fired before completion.
	StatusTimedOut Status = "timed_out"
	// StatusFailed means the stream reported a terminal error or ended
	// without a terminal event.
	StatusFailed Status = "failed"
)

// outcome latches the first terminal resolution of an operation. Once
// set, later attempts to resolve differently are ignored: a timeout that
// fires while a successful completion is being processed must not turn
// the completion into a failure.
type outcome struct {
	mu     sync.Mutex
	set    bool
	status Status
	err    error
}

// resolve records the terminal state if none is recorded yet. It returns
// true if this call won the latch.
func (o *outcome) resolve(status Status, err error) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.set {
		return false
	}
	o.set = true
	o.status = status
	o.err = err
	return true
}

// get returns the latched state, if any.
func (o *outcome) get() (Status, error, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.status, o.err, o.set
}

// resolved reports whether a terminal state has been latched.
func (o *outcome) resolved() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.set
}
