package threadpool

import (
	"sync"
	"time"
)

const (
	initialQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// WorkQueue is the bounded buffer shared by all workers. The front is
// consumed in FIFO order via Get; Steal takes from the back, so an idle
// worker can grab the freshest item without contending on the front.
type WorkQueue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	items    []*WorkItem
	capacity int
	closed   bool
}

func NewWorkQueue(capacity int) *WorkQueue {
	if capacity < 1 {
		capacity = defaultQueueCapacity
	}
	q := &WorkQueue{
		items:    make([]*WorkItem, 0, initialQueueCap),
		capacity: capacity,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Put appends an item to the back of the queue. It never blocks: a full
// queue returns ErrQueueFull and a closed queue returns ErrPoolStopped.
func (q *WorkQueue) Put(it *WorkItem) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrPoolStopped
	}
	if len(q.items) >= q.capacity {
		return ErrQueueFull
	}
	q.items = append(q.items, it)
	q.notEmpty.Signal()
	return nil
}

// Get pops the item at the front of the queue, blocking up to timeout while
// the queue is empty. A timeout <= 0 blocks indefinitely. Get returns early
// with ok=false when the stop channel closes or when the queue is closed and
// has no items left; a closed queue with items still serves them so shutdown
// can drain.
func (q *WorkQueue) Get(timeout time.Duration, stop <-chan struct{}) (*WorkItem, bool) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for {
		select {
		case <-stop:
			return nil, false
		default:
		}
		if len(q.items) > 0 {
			return q.popFrontLocked(), true
		}
		if q.closed {
			return nil, false
		}
		if timeout <= 0 {
			q.notEmpty.Wait()
			continue
		}
		remain := time.Until(deadline)
		if remain <= 0 {
			return nil, false
		}
		// sync.Cond has no timed wait, so arm a one-shot broadcast to get
		// woken at the deadline and loop back to re-check.
		t := time.AfterFunc(remain, q.notEmpty.Broadcast)
		q.notEmpty.Wait()
		t.Stop()
	}
}

// Steal pops the item at the back of the queue. It never blocks.
func (q *WorkQueue) Steal() (*WorkItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	if n == 0 {
		return nil, false
	}
	it := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	return it, true
}

func (q *WorkQueue) popFrontLocked() *WorkItem {
	it := q.items[0]
	// Zero out the element in the underlying array to prevent memory leak
	q.items[0] = nil
	q.items = q.items[1:]
	q.maybeCompactLocked()
	return it
}

func (q *WorkQueue) maybeCompactLocked() {
	n := len(q.items)
	c := cap(q.items)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.items = make([]*WorkItem, 0, initialQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	fresh := make([]*WorkItem, n, max(c/2, initialQueueCap))
	copy(fresh, q.items)
	q.items = fresh
}

// Close marks the queue closed and wakes every waiter. Later Puts are
// rejected; items already queued remain consumable.
func (q *WorkQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.notEmpty.Broadcast()
	q.mu.Unlock()
}

// wake forces all blocked Gets to re-check their stop channels.
func (q *WorkQueue) wake() {
	q.mu.Lock()
	q.notEmpty.Broadcast()
	q.mu.Unlock()
}

// drained reports whether the queue is closed and empty, i.e. no more work
// will ever come out of it.
func (q *WorkQueue) drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed && len(q.items) == 0
}

func (q *WorkQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *WorkQueue) Empty() bool {
	return q.Size() == 0
}
