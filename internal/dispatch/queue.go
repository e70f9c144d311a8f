package dispatch

import (
	"sync"
	"time"

	"github.com/tqbui/vqagen/internal/domain"
)

// Item is one entry in the work queue: either a job or a stop sentinel.
type Item struct {
	Job *domain.Job
}

// Sentinel returns the stop-sentinel item. A worker that dequeues it
// acknowledges it and exits.
func Sentinel() Item {
	return Item{}
}

// IsSentinel reports whether the item is a stop signal.
func (it Item) IsSentinel() bool {
	return it.Job == nil
}

// Queue is an unbounded concurrency-safe FIFO with explicit per-item
// acknowledgment. Every Put (or PutFront) raises the outstanding count
// by one; every dequeued item must be acknowledged with Done exactly
// once. Join blocks until the outstanding count reaches zero, so a
// retried job must be re-put before the failed attempt is acknowledged.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	allDone  *sync.Cond
	items    []Item
	// outstanding counts items put but not yet acknowledged, including
	// items currently held by workers.
	outstanding int
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.notEmpty = sync.NewCond(&q.mu)
	q.allDone = sync.NewCond(&q.mu)
	return q
}

// Put appends an item to the tail of the queue.
func (q *Queue) Put(it Item) {
	q.mu.Lock()
	q.items = append(q.items, it)
	q.outstanding++
	q.mu.Unlock()
	q.notEmpty.Signal()
}

// PutFront inserts an item at the head of the queue. Used only for stop
// sentinels after an interrupt, so workers observe the stop signal even
// while pending jobs remain behind it.
func (q *Queue) PutFront(it Item) {
	q.mu.Lock()
	q.items = append([]Item{it}, q.items...)
	q.outstanding++
	q.mu.Unlock()
	q.notEmpty.Signal()
}

// Get dequeues the next item, waiting up to timeout for one to arrive.
// The second return value is false if the queue stayed empty for the
// whole timeout.
func (q *Queue) Get(timeout time.Duration) (Item, bool) {
	deadline := time.Now().Add(timeout)

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return Item{}, false
		}
		// sync.Cond has no timed wait; a timer broadcast bounds it.
		// Spurious wakeups are absorbed by the loop.
		t := time.AfterFunc(remaining, q.notEmpty.Broadcast)
		q.notEmpty.Wait()
		t.Stop()
	}

	it := q.items[0]
	q.items = q.items[1:]
	return it, true
}

// Done acknowledges one previously dequeued item. Calling it more times
// than items were put is a bookkeeping bug and panics.
func (q *Queue) Done() {
	q.mu.Lock()
	if q.outstanding == 0 {
		q.mu.Unlock()
		panic("dispatch: Done called more times than items were put")
	}
	q.outstanding--
	drained := q.outstanding == 0
	q.mu.Unlock()

	if drained {
		q.allDone.Broadcast()
	}
}

// Join blocks until every item ever put has been acknowledged.
func (q *Queue) Join() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.outstanding > 0 {
		q.allDone.Wait()
	}
}

// Len returns the number of items currently waiting in the queue,
// excluding items held by workers.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Outstanding returns the number of unacknowledged items, including
// items currently held by workers.
func (q *Queue) Outstanding() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.outstanding
}
