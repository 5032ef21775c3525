package threadpool

import (
	"testing"
	"time"
)

func Test_execWindow_average(t *testing.T) {
	w := newExecWindow(100, 10)

	if got := w.average(); got != 0 {
		t.Fatalf("1. Expected empty window average 0. Got: %v", got)
	}

	w.add(10 * time.Millisecond)
	w.add(20 * time.Millisecond)
	w.add(30 * time.Millisecond)
	if got, want := w.average(), 20*time.Millisecond; got != want {
		t.Fatalf("2. Expected average %v. Got: %v", want, got)
	}
}

func Test_execWindow_rollsOldSamplesOut(t *testing.T) {
	w := newExecWindow(3, 2)

	for _, d := range []time.Duration{
		1 * time.Millisecond,
		2 * time.Millisecond,
		3 * time.Millisecond,
		4 * time.Millisecond, // Pushes the 1ms sample out
	} {
		w.add(d)
	}

	if got := w.ring.Length(); got != 3 {
		t.Fatalf("1. Expected window capped at 3 samples. Got: %d", got)
	}
	if got, want := w.average(), 3*time.Millisecond; got != want {
		t.Fatalf("2. Expected average %v over the surviving samples. Got: %v", want, got)
	}
}

func Test_execWindow_recentAverage(t *testing.T) {
	w := newExecWindow(100, 3)

	w.add(10 * time.Millisecond)
	w.add(20 * time.Millisecond)
	if got := w.recentAverage(); got != 0 {
		t.Fatalf("1. Expected no trend signal below 3 samples. Got: %v", got)
	}

	w.add(60 * time.Millisecond)
	if got, want := w.recentAverage(), 30*time.Millisecond; got != want {
		t.Fatalf("2. Expected recent average %v. Got: %v", want, got)
	}

	// The recent average follows the newest samples only.
	w.add(100 * time.Millisecond)
	if got, want := w.recentAverage(), 60*time.Millisecond; got != want {
		t.Fatalf("3. Expected recent average %v. Got: %v", want, got)
	}
}

func Test_poolStats_snapshot(t *testing.T) {
	s := newPoolStats()

	s.taskSubmitted()
	s.taskSubmitted()
	s.taskSubmitted()
	s.taskCompleted(10 * time.Millisecond)
	s.taskCompleted(30 * time.Millisecond)
	s.taskFailed()
	s.setActiveWorkers(4)
	s.setActiveWorkers(2) // Peak must survive the shrink

	got := s.snapshot(7)
	want := Metrics{
		TasksTotal:     3,
		TasksCompleted: 2,
		TasksFailed:    1,
		ActiveWorkers:  2,
		PeakWorkers:    4,
		QueueSize:      7,
		AvgExecTime:    20 * time.Millisecond,
	}
	if got != want {
		t.Fatalf("1. Expected snapshot %+v. Got: %+v", want, got)
	}
}

func Test_poolStats_failuresStayOutOfWindow(t *testing.T) {
	s := newPoolStats()

	s.taskFailed()
	s.taskFailed()
	if got := s.snapshot(0).AvgExecTime; got != 0 {
		t.Fatalf("1. Expected failures to not feed the execution window. Got average: %v", got)
	}
}
