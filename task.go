package threadpool

import "time"

// Task is a unit of work. Whatever it returns is delivered to the submitter
// through the task's Handle.
type Task func() (interface{}, error)

// WorkItem pairs a queued task with the handle its outcome is delivered
// through.
type WorkItem struct {
	task   Task
	handle *Handle
}

// Handle tracks the outcome of one submitted task. It is resolved exactly
// once, when a worker finishes (or recovers) the task.
type Handle struct {
	done   chan struct{}
	result interface{}
	err    error
}

func newHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// complete records the outcome and releases every waiter.
func (h *Handle) complete(result interface{}, err error) {
	h.result = result
	h.err = err
	close(h.done)
}

// Done returns a channel that is closed once the task has finished, for
// select-based callers.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result blocks until the task finishes and returns its outcome. A timeout
// <= 0 waits indefinitely; otherwise ErrResultTimeout is returned if the
// task does not finish in time.
func (h *Handle) Result(timeout time.Duration) (interface{}, error) {
	if timeout <= 0 {
		<-h.done
		return h.result, h.err
	}
	select {
	case <-h.done:
		return h.result, h.err
	case <-time.After(timeout):
		return nil, ErrResultTimeout
	}
}

// Err waits like Result but drops the payload, for tasks that only matter
// for their side effects.
func (h *Handle) Err(timeout time.Duration) error {
	_, err := h.Result(timeout)
	return err
}
