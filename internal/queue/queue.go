// Package queue hands detected clipboard values from the poller goroutine to
// the consumer goroutine.
package queue

import "sync"

// Queue is an unbounded FIFO of clipboard values. Push never blocks and the
// consumer takes everything at once with DrainAll. The zero value is ready to
// use.
type Queue struct {
	mu    sync.Mutex
	items []string
}

// New returns an empty Queue.
func New() *Queue { return &Queue{} }

// Push appends v.
func (q *Queue) Push(v string) {
	q.mu.Lock()
	q.items = append(q.items, v)
	q.mu.Unlock()
}

// DrainAll removes and returns every queued value in push order, or nil when
// the queue is empty.
func (q *Queue) DrainAll() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len reports how many values are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
