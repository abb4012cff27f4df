// Package opqueue implements the default bounded priority operation queue
// that diskcache.New uses when no queue is injected. It supports
// fire-and-forget scheduling and identifier-based coalescing of
// not-yet-running submissions, per the contract diskcache requires from any
// injected queue.
package opqueue

import (
	"container/heap"
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Priority orders pending operations; higher values run first.
type Priority int

const (
	Low    Priority = 0
	Normal Priority = 1
	High   Priority = 2
)

// Operation is the unit of work the queue runs. data is nil for
// uncoalesced submissions, or the (possibly merged) coalescing payload for
// coalesced ones.
type Operation func(data any)

// MergeFunc combines an already-queued coalescing payload with a newly
// submitted one for operations sharing an identifier.
type MergeFunc func(existing, incoming any) any

// Queue is a bounded-concurrency priority queue with FIFO ordering within a
// priority level and identifier-based coalescing.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   opHeap
	byID    map[string]*opItem
	sem     *semaphore.Weighted
	wg      sync.WaitGroup
	closed  bool
	nextSeq int64
}

// New constructs a Queue that runs at most concurrency operations at once.
// concurrency <= 0 defaults to runtime.GOMAXPROCS(0).
func New(concurrency int) *Queue {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	q := &Queue{
		sem:  semaphore.NewWeighted(int64(concurrency)),
		byID: make(map[string]*opItem),
	}
	q.cond = sync.NewCond(&q.mu)
	go q.dispatch()
	return q
}

// Schedule enqueues a fire-and-forget operation at the given priority.
func (q *Queue) Schedule(op func(), priority Priority) {
	q.ScheduleCoalesced(func(any) { op() }, priority, "", nil, nil, nil)
}

// ScheduleCoalesced enqueues op at priority under identifier. If an
// operation with the same identifier is already queued and has not yet
// started running, its coalescing payload is replaced by
// merge(existing, data), the duplicate submission is dropped, and
// completion is appended to the set of completions that fire when the
// (eventually merged) operation finishes. An empty identifier never
// coalesces.
func (q *Queue) ScheduleCoalesced(op Operation, priority Priority, identifier string, data any, merge MergeFunc, completion func()) {
	q.mu.Lock()
	if identifier != "" {
		if existing, ok := q.byID[identifier]; ok {
			if merge != nil {
				existing.data = merge(existing.data, data)
			} else {
				existing.data = data
			}
			if completion != nil {
				existing.completions = append(existing.completions, completion)
			}
			q.mu.Unlock()
			return
		}
	}

	item := &opItem{
		fn:         op,
		priority:   priority,
		seq:        q.nextSeq,
		data:       data,
		identifier: identifier,
	}
	q.nextSeq++
	if completion != nil {
		item.completions = append(item.completions, completion)
	}
	heap.Push(&q.items, item)
	if identifier != "" {
		q.byID[identifier] = item
	}
	q.cond.Signal()
	q.mu.Unlock()
}

// Close stops accepting the dispatch loop from blocking forever once
// drained and waits for all in-flight operations to complete. Already
// queued operations still run.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	q.wg.Wait()
}

// Len reports the number of operations currently queued (not yet dispatched
// to a worker). Mainly useful for tests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *Queue) dispatch() {
	for {
		// Take a worker slot before popping, so an item stays in the heap
		// (where priority ordering and coalescing apply) until it can run.
		if err := q.sem.Acquire(context.Background(), 1); err != nil {
			continue
		}
		q.mu.Lock()
		for len(q.items) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.items) == 0 && q.closed {
			q.mu.Unlock()
			q.sem.Release(1)
			return
		}
		item := heap.Pop(&q.items).(*opItem)
		if item.identifier != "" {
			delete(q.byID, item.identifier)
		}
		q.mu.Unlock()

		q.wg.Add(1)
		go func(it *opItem) {
			defer q.wg.Done()
			defer q.sem.Release(1)
			it.fn(it.data)
			for _, c := range it.completions {
				c()
			}
		}(item)
	}
}

type opItem struct {
	fn          Operation
	priority    Priority
	seq         int64
	data        any
	identifier  string
	completions []func()
	index       int
}

// opHeap implements container/heap.Interface with higher priority first,
// then FIFO among equal priorities.
type opHeap []*opItem

func (h opHeap) Len() int { return len(h) }

func (h opHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority > h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h opHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *opHeap) Push(x any) {
	it := x.(*opItem)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *opHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}
