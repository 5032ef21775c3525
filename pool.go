package threadpool

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultMonitorInterval = 5 * time.Second
	defaultScaleCooldown   = 10 * time.Second
	defaultPollInterval    = 250 * time.Millisecond
)

type (
	// Option customizes a Pool at construction.
	Option func(*Pool)

	// Pool is an adaptive worker pool. Submitted tasks land on a shared
	// bounded queue; a cohort of workers drains it, and a background monitor
	// grows or shrinks the cohort to follow the workload.
	Pool struct {
		name string
		conf Config
		log  Logger
		sink MetricsSink

		queue  *WorkQueue
		policy ScalePolicy
		stats  *poolStats

		mu           sync.Mutex // guards gen and worker spawning
		gen          *generation
		lastWorkerID int

		wg       sync.WaitGroup
		stopped  atomic.Bool
		stopOnce sync.Once
		stopChan chan struct{}

		// Tick knobs, fixed at construction. Tests shorten them.
		monitorInterval time.Duration
		scaleCooldown   time.Duration
		pollInterval    time.Duration
	}
)

// WithName overrides the generated pool name.
func WithName(name string) Option {
	return func(p *Pool) {
		if name != "" {
			p.name = name
		}
	}
}

// WithLogger sets the pool logger. *logrus.Logger and *logrus.Entry satisfy
// Logger directly.
func WithLogger(log Logger) Option {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

// WithMetricsSink attaches a sink that receives pool activity, e.g. a
// PrometheusSink.
func WithMetricsSink(sink MetricsSink) Option {
	return func(p *Pool) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// WithScalePolicy replaces the default factor policy.
func WithScalePolicy(policy ScalePolicy) Option {
	return func(p *Pool) {
		if policy != nil {
			p.policy = policy
		}
	}
}

// New builds a running pool: the config is normalized, MinWorkers workers
// are spawned, and when MonitoringEnabled the autoscaling monitor starts.
// There is no separate start call; the pool accepts work as soon as New
// returns.
func New(conf Config, opts ...Option) *Pool {
	return newPool(conf, defaultMonitorInterval, defaultScaleCooldown, defaultPollInterval, opts...)
}

func newPool(conf Config, monitorInterval, scaleCooldown, pollInterval time.Duration, opts ...Option) *Pool {
	validateConfig(&conf)

	p := &Pool{
		name: getRandomName(0),
		conf: conf,
		log:  &discardLogger{},
		sink: nopSink{},

		queue: NewWorkQueue(conf.QueueCapacity),
		stats: newPoolStats(),

		stopChan: make(chan struct{}),

		monitorInterval: monitorInterval,
		scaleCooldown:   scaleCooldown,
		pollInterval:    pollInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.policy == nil {
		p.policy = NewFactorPolicy(conf.ScalingFactor, conf.ScaleDownThreshold)
	}

	p.log.Infof("pool [%s]: starting %d workers", p.name, conf.MinWorkers)
	p.mu.Lock()
	p.spawnGenerationLocked(conf.MinWorkers)
	p.mu.Unlock()

	if conf.MonitoringEnabled {
		go p.monitor()
	}
	p.log.Infof("pool [%s]: worker pool started", p.name)
	return p
}

func (p *Pool) Name() string {
	return p.name
}

// Submit enqueues a task and returns a Handle for its outcome. Submit never
// blocks: it fails with ErrPoolStopped after shutdown and with ErrQueueFull
// when the queue is at capacity. A rejected task touches no counters.
func (p *Pool) Submit(task Task) (*Handle, error) {
	if p.stopped.Load() {
		return nil, ErrPoolStopped
	}

	it := &WorkItem{task: task, handle: newHandle()}
	if err := p.queue.Put(it); err != nil {
		p.log.Debugf("pool [%s]: submit rejected: %v", p.name, err)
		return nil, err
	}

	p.stats.taskSubmitted()
	p.sink.IncTasksTotal()
	p.log.Debugf("pool [%s]: task enqueued", p.name)
	return it.handle, nil
}

// Resize sets the worker count to n, clamped to [MinWorkers, MaxWorkers].
// The current cohort is retired and a fresh one spawned; retiring workers
// finish the task in hand, and queued items carry over untouched. Resizing
// a stopped pool returns ErrPoolStopped.
func (p *Pool) Resize(n int) error {
	n = min(max(n, p.conf.MinWorkers), p.conf.MaxWorkers)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped.Load() {
		return ErrPoolStopped
	}
	if p.gen.size == n {
		return nil
	}

	old := p.gen
	p.log.Infof("pool [%s]: resizing from %d to %d workers", p.name, old.size, n)
	p.spawnGenerationLocked(n)
	old.retire()
	p.queue.wake()
	return nil
}

// spawnGenerationLocked starts a fresh worker cohort and makes it current.
// Callers hold p.mu.
func (p *Pool) spawnGenerationLocked(size int) {
	genID := 1
	if p.gen != nil {
		genID = p.gen.id + 1
	}
	gen := newGeneration(genID, size)

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		p.lastWorkerID++
		w := newWorker(fmt.Sprintf("%s-%d", p.name, p.lastWorkerID), p, gen)
		go w.run()
	}

	p.gen = gen
	p.stats.setActiveWorkers(size)
	p.sink.SetActiveWorkers(size)
	p.log.Debugf("pool [%s]: generation %d started with %d workers", p.name, gen.id, size)
}

// GetMetrics returns a snapshot of the pool counters with the queue size
// read fresh from the work queue.
func (p *Pool) GetMetrics() Metrics {
	return p.stats.snapshot(p.queue.Size())
}

// Shutdown stops the pool. Later Submits fail with ErrPoolStopped; work
// already queued is still drained by the current workers. With wait=true,
// Shutdown blocks until every worker has exited, up to timeout (a timeout
// <= 0 waits indefinitely), and returns ErrShutdownTimeout when the
// deadline passes first. With wait=false it returns immediately while the
// drain continues in the background.
func (p *Pool) Shutdown(wait bool, timeout time.Duration) error {
	p.stopOnce.Do(func() {
		p.log.Infof("pool [%s]: stopping worker pool", p.name)

		// Taking the lock here orders the flag against any in-flight Resize:
		// either its cohort is fully spawned and covered by the WaitGroup,
		// or it observes the flag and spawns nothing.
		p.mu.Lock()
		p.stopped.Store(true)
		p.mu.Unlock()

		close(p.stopChan)
		p.queue.Close()
	})

	if !wait {
		return nil
	}

	start := time.Now()
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	if timeout <= 0 {
		<-done
		p.log.Infof("pool [%s]: worker pool shutdown gracefully in %v", p.name, time.Since(start))
		return nil
	}
	select {
	case <-done:
		p.log.Infof("pool [%s]: worker pool shutdown gracefully in %v", p.name, time.Since(start))
		return nil
	case <-time.After(timeout):
		p.log.Infof("pool [%s]: shutdown timeout exceeded, workers still draining", p.name)
		return ErrShutdownTimeout
	}
}

// TaskContext times a named block of work. It returns a stop function meant
// for defer:
//
//	defer pool.TaskContext("rebuild-index")()
//
// The elapsed time is logged at debug level when name is non-empty; pool
// counters are never touched.
func (p *Pool) TaskContext(name string) func() {
	start := time.Now()
	return func() {
		if name != "" {
			p.log.Debugf("pool [%s]: task %q completed in %v", p.name, name, time.Since(start))
		}
	}
}
