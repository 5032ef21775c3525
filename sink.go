package threadpool

import "time"

// MetricsSink receives pool activity as it happens, for export to an
// external monitoring system. Implementations must be safe for concurrent
// use; every method is called on hot paths and should return quickly.
type MetricsSink interface {
	IncTasksTotal()
	IncTasksCompleted()
	IncTasksFailed()
	SetActiveWorkers(n int)
	SetQueueSize(n int)
	ObserveExecutionTime(d time.Duration)
}

// nopSink is the default sink. It drops everything.
type nopSink struct{}

func (nopSink) IncTasksTotal()                     {}
func (nopSink) IncTasksCompleted()                 {}
func (nopSink) IncTasksFailed()                    {}
func (nopSink) SetActiveWorkers(int)               {}
func (nopSink) SetQueueSize(int)                   {}
func (nopSink) ObserveExecutionTime(time.Duration) {}
