package threadpool

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
)

// testLogger collects log lines so tests can assert on them.
type testLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *testLogger) logf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *testLogger) Debugf(format string, args ...interface{}) { l.logf(format, args...) }
func (l *testLogger) Infof(format string, args ...interface{})  { l.logf(format, args...) }
func (l *testLogger) Errorf(format string, args ...interface{}) { l.logf(format, args...) }

func (l *testLogger) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func testConfig(minWorkers, maxWorkers, queueCap int) Config {
	return Config{
		MinWorkers:         minWorkers,
		MaxWorkers:         maxWorkers,
		IdleTimeout:        time.Minute,
		QueueCapacity:      queueCap,
		MonitoringEnabled:  false, // Keep scaling deterministic; monitor has its own tests
		ScalingFactor:      1.5,
		ScaleDownThreshold: 0.3,
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestPool_SubmitAndCollectResults(t *testing.T) {
	pool := New(testConfig(2, 4, 100))
	defer pool.Shutdown(true, 5*time.Second)

	const taskNum = 20
	handles := make([]*Handle, 0, taskNum)
	for i := 0; i < taskNum; i++ {
		i := i
		h, err := pool.Submit(func() (interface{}, error) {
			return i * 2, nil
		})
		if err != nil {
			t.Fatalf("1. Expected Submit %d to succeed. Got: %v", i, err)
		}
		handles = append(handles, h)
	}

	for i, h := range handles {
		got, err := h.Result(5 * time.Second)
		if err != nil {
			t.Fatalf("2. Expected task %d to succeed. Got: %v", i, err)
		}
		if got != i*2 {
			t.Fatalf("3. Expected task %d result %d. Got: %v", i, i*2, got)
		}
	}

	m := pool.GetMetrics()
	if m.TasksTotal != taskNum {
		t.Fatalf("4. Expected %d tasks total. Got: %d", taskNum, m.TasksTotal)
	}
	if m.TasksCompleted != taskNum {
		t.Fatalf("5. Expected %d tasks completed. Got: %d", taskNum, m.TasksCompleted)
	}
	if m.TasksFailed != 0 {
		t.Fatalf("6. Expected no failed tasks. Got: %d", m.TasksFailed)
	}
	if m.ActiveWorkers != 2 || m.PeakWorkers != 2 {
		t.Fatalf("7. Expected 2 active/peak workers. Got: %d/%d", m.ActiveWorkers, m.PeakWorkers)
	}
	if m.QueueSize != 0 {
		t.Fatalf("8. Expected empty queue after all results. Got: %d", m.QueueSize)
	}
}

func TestPool_FailingTask(t *testing.T) {
	pool := New(testConfig(1, 1, 10))
	defer pool.Shutdown(true, 5*time.Second)

	taskErr := errors.New("backend unavailable")
	h, err := pool.Submit(func() (interface{}, error) {
		return nil, taskErr
	})
	if err != nil {
		t.Fatalf("1. Expected Submit to succeed. Got: %v", err)
	}
	if err := h.Err(5 * time.Second); err != taskErr {
		t.Fatalf("2. Expected the task error through the handle. Got: %v", err)
	}

	m := pool.GetMetrics()
	if m.TasksFailed != 1 || m.TasksCompleted != 0 {
		t.Fatalf("3. Expected 1 failed, 0 completed. Got: %d failed, %d completed", m.TasksFailed, m.TasksCompleted)
	}
	if m.AvgExecTime != 0 {
		t.Fatalf("4. Expected failures to stay out of the execution window. Got average: %v", m.AvgExecTime)
	}
}

func TestPool_PanickingTask(t *testing.T) {
	pool := New(testConfig(1, 1, 10))
	defer pool.Shutdown(true, 5*time.Second)

	h, err := pool.Submit(func() (interface{}, error) {
		panic("kaboom")
	})
	if err != nil {
		t.Fatalf("1. Expected Submit to succeed. Got: %v", err)
	}
	taskErr := h.Err(5 * time.Second)
	if taskErr == nil || !strings.Contains(taskErr.Error(), "task panicked") {
		t.Fatalf("2. Expected the panic as an error through the handle. Got: %v", taskErr)
	}

	// The worker survives the panic and keeps serving.
	h2, err := pool.Submit(func() (interface{}, error) {
		return "still alive", nil
	})
	if err != nil {
		t.Fatalf("3. Expected Submit after panic to succeed. Got: %v", err)
	}
	if got, err := h2.Result(5 * time.Second); err != nil || got != "still alive" {
		t.Fatalf("4. Expected the next task to run normally. Got: %v, %v", got, err)
	}

	if m := pool.GetMetrics(); m.TasksFailed != 1 {
		t.Fatalf("5. Expected the panicked task counted as failed. Got: %d", m.TasksFailed)
	}
}

func TestPool_QueueFullBackpressure(t *testing.T) {
	pool := New(testConfig(1, 1, 2))
	defer pool.Shutdown(true, 5*time.Second)

	gate := make(chan struct{})
	blocker, err := pool.Submit(func() (interface{}, error) {
		<-gate
		return nil, nil
	})
	if err != nil {
		t.Fatalf("1. Expected blocker Submit to succeed. Got: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return pool.GetMetrics().QueueSize == 0 },
		"2. Expected the worker to pick up the blocker")

	fill1, err := pool.Submit(func() (interface{}, error) { return nil, nil })
	if err != nil {
		t.Fatalf("3. Expected first fill Submit to succeed. Got: %v", err)
	}
	fill2, err := pool.Submit(func() (interface{}, error) { return nil, nil })
	if err != nil {
		t.Fatalf("4. Expected second fill Submit to succeed. Got: %v", err)
	}

	if _, err := pool.Submit(func() (interface{}, error) { return nil, nil }); err != ErrQueueFull {
		t.Fatalf("5. Expected ErrQueueFull on a full queue. Got: %v", err)
	}
	if m := pool.GetMetrics(); m.TasksTotal != 3 {
		t.Fatalf("6. Expected the rejected task to not be counted. Got total: %d", m.TasksTotal)
	}

	close(gate)
	for i, h := range []*Handle{blocker, fill1, fill2} {
		if err := h.Err(5 * time.Second); err != nil {
			t.Fatalf("7. Expected task %d to finish after the gate opened. Got: %v", i, err)
		}
	}
}

func TestPool_Resize(t *testing.T) {
	pool := New(testConfig(2, 8, 10))

	if m := pool.GetMetrics(); m.ActiveWorkers != 2 {
		t.Fatalf("1. Expected pool to start at MinWorkers. Got: %d", m.ActiveWorkers)
	}

	if err := pool.Resize(5); err != nil {
		t.Fatalf("2. Expected Resize(5) to succeed. Got: %v", err)
	}
	if m := pool.GetMetrics(); m.ActiveWorkers != 5 || m.PeakWorkers != 5 {
		t.Fatalf("3. Expected 5 active/peak workers. Got: %d/%d", m.ActiveWorkers, m.PeakWorkers)
	}

	if err := pool.Resize(100); err != nil {
		t.Fatalf("4. Expected Resize(100) to succeed. Got: %v", err)
	}
	if m := pool.GetMetrics(); m.ActiveWorkers != 8 {
		t.Fatalf("5. Expected resize clamped to MaxWorkers. Got: %d", m.ActiveWorkers)
	}

	if err := pool.Resize(0); err != nil {
		t.Fatalf("6. Expected Resize(0) to succeed. Got: %v", err)
	}
	if m := pool.GetMetrics(); m.ActiveWorkers != 2 {
		t.Fatalf("7. Expected resize clamped to MinWorkers. Got: %d", m.ActiveWorkers)
	}

	// Every generation, including the retired ones, exits on shutdown.
	if err := pool.Shutdown(true, 5*time.Second); err != nil {
		t.Fatalf("8. Expected graceful shutdown. Got: %v", err)
	}
	if err := pool.Resize(4); err != ErrPoolStopped {
		t.Fatalf("9. Expected ErrPoolStopped after shutdown. Got: %v", err)
	}
}

func TestPool_ResizeKeepsQueuedWork(t *testing.T) {
	pool := New(testConfig(1, 8, 200))
	defer pool.Shutdown(true, 5*time.Second)

	var ran atomic.Int64
	const taskNum = 60
	handles := make([]*Handle, 0, taskNum)

	for i := 0; i < taskNum; i++ {
		h, err := pool.Submit(func() (interface{}, error) {
			time.Sleep(2 * time.Millisecond)
			ran.Add(1)
			return nil, nil
		})
		if err != nil {
			t.Fatalf("1. Expected Submit %d to succeed. Got: %v", i, err)
		}
		handles = append(handles, h)

		// Churn generations mid-stream.
		switch i {
		case taskNum / 3:
			if err := pool.Resize(6); err != nil {
				t.Fatalf("2. Expected Resize(6) to succeed. Got: %v", err)
			}
		case 2 * taskNum / 3:
			if err := pool.Resize(1); err != nil {
				t.Fatalf("3. Expected Resize(1) to succeed. Got: %v", err)
			}
		}
	}

	for i, h := range handles {
		if err := h.Err(10 * time.Second); err != nil {
			t.Fatalf("4. Expected task %d to complete across resizes. Got: %v", i, err)
		}
	}
	if got := ran.Load(); got != taskNum {
		t.Fatalf("5. Expected every task to run exactly once. Got: %d", got)
	}
	if m := pool.GetMetrics(); m.TasksCompleted != taskNum {
		t.Fatalf("6. Expected %d completed. Got: %d", taskNum, m.TasksCompleted)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := New(testConfig(1, 2, 10))

	if err := pool.Shutdown(true, 5*time.Second); err != nil {
		t.Fatalf("1. Expected graceful shutdown. Got: %v", err)
	}
	if _, err := pool.Submit(func() (interface{}, error) { return nil, nil }); err != ErrPoolStopped {
		t.Fatalf("2. Expected ErrPoolStopped. Got: %v", err)
	}
	// Shutdown is idempotent.
	if err := pool.Shutdown(true, 5*time.Second); err != nil {
		t.Fatalf("3. Expected repeated shutdown to succeed. Got: %v", err)
	}
}

func TestPool_ShutdownDrainsQueuedTasks(t *testing.T) {
	pool := New(testConfig(2, 4, 100))

	var ran atomic.Int64
	const taskNum = 30
	for i := 0; i < taskNum; i++ {
		if _, err := pool.Submit(func() (interface{}, error) {
			time.Sleep(time.Millisecond)
			ran.Add(1)
			return nil, nil
		}); err != nil {
			t.Fatalf("1. Expected Submit %d to succeed. Got: %v", i, err)
		}
	}

	if err := pool.Shutdown(true, 10*time.Second); err != nil {
		t.Fatalf("2. Expected graceful shutdown. Got: %v", err)
	}
	if got := ran.Load(); got != taskNum {
		t.Fatalf("3. Expected shutdown to drain all queued tasks. Got: %d of %d", got, taskNum)
	}
	m := pool.GetMetrics()
	if m.TasksCompleted != taskNum {
		t.Fatalf("4. Expected %d completed. Got: %d", taskNum, m.TasksCompleted)
	}
	if m.QueueSize != 0 {
		t.Fatalf("5. Expected empty queue after drain. Got: %d", m.QueueSize)
	}
}

func TestPool_ShutdownTimeout(t *testing.T) {
	pool := New(testConfig(1, 1, 10))

	gate := make(chan struct{})
	if _, err := pool.Submit(func() (interface{}, error) {
		<-gate
		return nil, nil
	}); err != nil {
		t.Fatalf("1. Expected Submit to succeed. Got: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return pool.GetMetrics().QueueSize == 0 },
		"2. Expected the worker to pick up the blocker")

	if err := pool.Shutdown(true, 100*time.Millisecond); err != ErrShutdownTimeout {
		t.Fatalf("3. Expected ErrShutdownTimeout while a task hangs. Got: %v", err)
	}

	close(gate)
	if err := pool.Shutdown(true, 5*time.Second); err != nil {
		t.Fatalf("4. Expected shutdown to finish once the task unblocked. Got: %v", err)
	}
}

func TestPool_ShutdownNoWait(t *testing.T) {
	pool := New(testConfig(1, 1, 10))

	gate := make(chan struct{})
	if _, err := pool.Submit(func() (interface{}, error) {
		<-gate
		return nil, nil
	}); err != nil {
		t.Fatalf("1. Expected Submit to succeed. Got: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return pool.GetMetrics().QueueSize == 0 },
		"2. Expected the worker to pick up the blocker")

	start := time.Now()
	if err := pool.Shutdown(false, 0); err != nil {
		t.Fatalf("3. Expected non-waiting shutdown to succeed. Got: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("4. Expected non-waiting shutdown to return immediately. Took: %v", elapsed)
	}

	close(gate)
	if err := pool.Shutdown(true, 5*time.Second); err != nil {
		t.Fatalf("5. Expected the drain to finish in the background. Got: %v", err)
	}
}

func TestPool_NameLoggerAndTaskContext(t *testing.T) {
	lg := &testLogger{}
	pool := New(testConfig(1, 1, 10), WithName("focused_turing"), WithLogger(lg))
	defer pool.Shutdown(true, 5*time.Second)

	if pool.Name() != "focused_turing" {
		t.Fatalf("1. Expected WithName to stick. Got: %q", pool.Name())
	}
	if !lg.contains("pool [focused_turing]: worker pool started") {
		t.Fatalf("2. Expected startup to be logged")
	}

	pool.TaskContext("reindex")()
	if !lg.contains(`task "reindex" completed`) {
		t.Fatalf("3. Expected TaskContext to log the named block")
	}

	pool.TaskContext("")()
	if lg.contains(`task ""`) {
		t.Fatalf("4. Expected unnamed TaskContext to stay quiet")
	}

	// TaskContext never feeds the pool counters.
	if m := pool.GetMetrics(); m.TasksTotal != 0 {
		t.Fatalf("5. Expected no tasks counted. Got: %d", m.TasksTotal)
	}
}

func ExampleNew() {
	pool := New(DefaultConfig())

	handle, _ := pool.Submit(func() (interface{}, error) {
		return 21 * 2, nil
	})
	result, _ := handle.Result(time.Second)
	fmt.Println(result)

	_ = pool.Shutdown(true, time.Second)
	// Output: 42
}
