package threadpool

import "github.com/pkg/errors"

var (
	// Pool
	ErrPoolStopped     = errors.New("thread pool stopped")
	ErrQueueFull       = errors.New("work queue is full")
	ErrShutdownTimeout = errors.New("shutdown timeout exceeded")

	// Handle
	ErrResultTimeout = errors.New("timed out waiting for task result")
)
