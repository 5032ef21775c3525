package threadpool

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
)

const (
	execWindowSize  = 100 // rolling window that feeds the long-run average
	recentExecCount = 10  // trailing samples that feed the trend average
)

// Metrics is a point-in-time snapshot of pool activity, as returned by
// Pool.GetMetrics.
type Metrics struct {
	TasksTotal     int64         `json:"tasks_total"`
	TasksCompleted int64         `json:"tasks_completed"`
	TasksFailed    int64         `json:"tasks_failed"`
	ActiveWorkers  int           `json:"active_workers"`
	PeakWorkers    int           `json:"peak_workers"`
	QueueSize      int           `json:"queue_size"`
	AvgExecTime    time.Duration `json:"avg_execution_time"`
}

// poolStats aggregates the live counters. Counters are atomics and the
// execution window carries its own lock, so every method is safe for
// concurrent use.
type poolStats struct {
	tasksTotal     atomic.Int64
	tasksCompleted atomic.Int64
	tasksFailed    atomic.Int64
	activeWorkers  atomic.Int32
	peakWorkers    atomic.Int32
	window         *execWindow
}

func newPoolStats() *poolStats {
	return &poolStats{
		window: newExecWindow(execWindowSize, recentExecCount),
	}
}

func (s *poolStats) taskSubmitted() {
	s.tasksTotal.Add(1)
}

// taskCompleted records one success. Only successful runs feed the execution
// window, so a burst of fast failures cannot fake a speedup.
func (s *poolStats) taskCompleted(d time.Duration) {
	s.tasksCompleted.Add(1)
	s.window.add(d)
}

func (s *poolStats) taskFailed() {
	s.tasksFailed.Add(1)
}

func (s *poolStats) setActiveWorkers(n int) {
	s.activeWorkers.Store(int32(n))
	for {
		peak := s.peakWorkers.Load()
		if int32(n) <= peak || s.peakWorkers.CompareAndSwap(peak, int32(n)) {
			return
		}
	}
}

func (s *poolStats) snapshot(queueSize int) Metrics {
	return Metrics{
		TasksTotal:     s.tasksTotal.Load(),
		TasksCompleted: s.tasksCompleted.Load(),
		TasksFailed:    s.tasksFailed.Load(),
		ActiveWorkers:  int(s.activeWorkers.Load()),
		PeakWorkers:    int(s.peakWorkers.Load()),
		QueueSize:      queueSize,
		AvgExecTime:    s.window.average(),
	}
}

// execWindow keeps the most recent execution times in a ring buffer with a
// running sum, so both averages are cheap to read.
type execWindow struct {
	mu      sync.Mutex
	ring    *queue.Queue
	sum     time.Duration
	size    int
	recentN int
}

func newExecWindow(size, recentN int) *execWindow {
	return &execWindow{
		ring:    queue.New(),
		size:    size,
		recentN: recentN,
	}
}

func (w *execWindow) add(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.ring.Add(d)
	w.sum += d
	if w.ring.Length() > w.size {
		w.sum -= w.ring.Remove().(time.Duration)
	}
}

// average returns the mean over the whole window, or 0 while it is empty.
func (w *execWindow) average() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := w.ring.Length()
	if n == 0 {
		return 0
	}
	return w.sum / time.Duration(n)
}

// recentAverage returns the mean of the newest recentN samples. Until that
// many samples exist it returns 0, which callers read as "no trend yet".
func (w *execWindow) recentAverage() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ring.Length() < w.recentN {
		return 0
	}
	var sum time.Duration
	for i := 1; i <= w.recentN; i++ {
		sum += w.ring.Get(-i).(time.Duration)
	}
	return sum / time.Duration(w.recentN)
}
