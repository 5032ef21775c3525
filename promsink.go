package threadpool

import (
	"errors"
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const promNamespace = "thread_pool"

// PrometheusSink publishes pool activity as Prometheus series under the
// thread_pool namespace (thread_pool_tasks_total, thread_pool_active_workers
// and so on).
type PrometheusSink struct {
	tasksTotal     prom.Counter
	tasksCompleted prom.Counter
	tasksFailed    prom.Counter
	activeWorkers  prom.Gauge
	queueSize      prom.Gauge
	executionTime  prom.Histogram
}

var _ MetricsSink = (*PrometheusSink)(nil)

// NewPrometheusSink creates the thread_pool_* collectors and registers them
// with reg, or with the default registerer when reg is nil. Collectors that
// are already registered are reused, so building a second sink against the
// same registerer is safe.
func NewPrometheusSink(reg prom.Registerer) (*PrometheusSink, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}

	tasksTotal := prom.NewCounter(prom.CounterOpts{
		Namespace: promNamespace,
		Name:      "tasks_total",
		Help:      "Total number of tasks submitted to the thread pool.",
	})
	tasksCompleted := prom.NewCounter(prom.CounterOpts{
		Namespace: promNamespace,
		Name:      "tasks_completed_total",
		Help:      "Total number of tasks completed.",
	})
	tasksFailed := prom.NewCounter(prom.CounterOpts{
		Namespace: promNamespace,
		Name:      "tasks_failed_total",
		Help:      "Total number of tasks that failed.",
	})
	activeWorkers := prom.NewGauge(prom.GaugeOpts{
		Namespace: promNamespace,
		Name:      "active_workers",
		Help:      "Current number of active workers.",
	})
	queueSize := prom.NewGauge(prom.GaugeOpts{
		Namespace: promNamespace,
		Name:      "queue_size",
		Help:      "Current size of the work queue.",
	})
	executionTime := prom.NewHistogram(prom.HistogramOpts{
		Namespace: promNamespace,
		Name:      "task_execution_seconds",
		Help:      "Task execution time in seconds.",
		Buckets:   prom.DefBuckets,
	})

	var err error
	if tasksTotal, err = registerCollector(reg, tasksTotal); err != nil {
		return nil, err
	}
	if tasksCompleted, err = registerCollector(reg, tasksCompleted); err != nil {
		return nil, err
	}
	if tasksFailed, err = registerCollector(reg, tasksFailed); err != nil {
		return nil, err
	}
	if activeWorkers, err = registerCollector(reg, activeWorkers); err != nil {
		return nil, err
	}
	if queueSize, err = registerCollector(reg, queueSize); err != nil {
		return nil, err
	}
	if executionTime, err = registerCollector(reg, executionTime); err != nil {
		return nil, err
	}

	return &PrometheusSink{
		tasksTotal:     tasksTotal,
		tasksCompleted: tasksCompleted,
		tasksFailed:    tasksFailed,
		activeWorkers:  activeWorkers,
		queueSize:      queueSize,
		executionTime:  executionTime,
	}, nil
}

func (s *PrometheusSink) IncTasksTotal()     { s.tasksTotal.Inc() }
func (s *PrometheusSink) IncTasksCompleted() { s.tasksCompleted.Inc() }
func (s *PrometheusSink) IncTasksFailed()    { s.tasksFailed.Inc() }

func (s *PrometheusSink) SetActiveWorkers(n int) { s.activeWorkers.Set(float64(n)) }
func (s *PrometheusSink) SetQueueSize(n int)     { s.queueSize.Set(float64(n)) }

func (s *PrometheusSink) ObserveExecutionTime(d time.Duration) {
	s.executionTime.Observe(d.Seconds())
}

// registerCollector registers c, reusing the existing collector when one
// with the same descriptor is already registered.
func registerCollector[T prom.Collector](reg prom.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}

	var already prom.AlreadyRegisteredError
	if errors.As(err, &already) {
		existing, ok := already.ExistingCollector.(T)
		if !ok {
			return c, fmt.Errorf("collector type mismatch for %T", c)
		}
		return existing, nil
	}

	return c, err
}
