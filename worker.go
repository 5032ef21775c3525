package threadpool

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

// generation is one cohort of workers spawned at a single size. Resizing
// spawns a fresh generation and retires the previous one; retired workers
// finish the task in hand and exit without taking further work, while queued
// items stay on the shared queue for the new cohort.
type generation struct {
	id   int
	size int
	stop chan struct{}
	once sync.Once
}

func newGeneration(id, size int) *generation {
	return &generation{
		id:   id,
		size: size,
		stop: make(chan struct{}),
	}
}

// retire tells every worker of this generation to exit after its current
// task. Safe to call more than once.
func (g *generation) retire() {
	g.once.Do(func() {
		close(g.stop)
	})
}

type worker struct {
	name string
	pool *Pool
	gen  *generation
}

func newWorker(name string, p *Pool, gen *generation) *worker {
	return &worker{
		name: name,
		pool: p,
		gen:  gen,
	}
}

// run is the worker loop: take from the front of the queue, steal from the
// back when the front runs dry, exit when the generation retires or the
// queue is closed and drained.
func (w *worker) run() {
	p := w.pool
	defer p.wg.Done()

	p.log.Debugf("pool [%s]: worker %s started", p.name, w.name)
	defer p.log.Debugf("pool [%s]: worker %s exited", p.name, w.name)

	idleSince := time.Now()
	for {
		if w.retired() {
			return
		}

		it, ok := p.queue.Get(p.pollInterval, w.gen.stop)
		if !ok {
			// The front came up empty. Re-check retirement before touching
			// the back: a retired worker must not pick up new work.
			if w.retired() {
				return
			}
			it, ok = p.queue.Steal()
		}
		if !ok {
			if p.queue.drained() {
				return
			}
			if idle := time.Since(idleSince); idle >= p.conf.IdleTimeout {
				p.log.Debugf("pool [%s]: worker %s idle for %v", p.name, w.name, idle)
				idleSince = time.Now()
			}
			continue
		}

		w.execute(it)
		idleSince = time.Now()
	}
}

func (w *worker) retired() bool {
	select {
	case <-w.gen.stop:
		return true
	default:
		return false
	}
}

// execute runs one task, records its outcome and resolves its handle. The
// handle is resolved last so counters are already visible to anyone woken by
// it.
func (w *worker) execute(it *WorkItem) {
	p := w.pool

	start := time.Now()
	result, err := runTask(it.task)
	elapsed := time.Since(start)

	if err != nil {
		p.stats.taskFailed()
		p.sink.IncTasksFailed()
		p.log.Debugf("pool [%s]: task failed on worker %s: %v", p.name, w.name, err)
	} else {
		p.stats.taskCompleted(elapsed)
		p.sink.IncTasksCompleted()
		p.sink.ObserveExecutionTime(elapsed)
		p.log.Debugf("pool [%s]: task done on worker %s in %v", p.name, w.name, elapsed)
	}

	it.handle.complete(result, err)
}

// runTask executes the task, converting a panic into a regular error so one
// bad task cannot take the worker down.
func runTask(task Task) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("task panicked: %v", r)
		}
	}()
	return task()
}
