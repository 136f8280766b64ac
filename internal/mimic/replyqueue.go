package mimic

import (
	"sync"
	"time"
)

// ReplyQueue tracks pending delayed deliveries so they can be cancelled
// in bulk when impersonation stops. Jobs are removed automatically when
// they fire. Safe for concurrent use.
type ReplyQueue struct {
	mu      sync.Mutex
	nextID  int
	pending map[int]*time.Timer
}

// NewReplyQueue returns an empty queue.
func NewReplyQueue() *ReplyQueue {
	return &ReplyQueue{pending: make(map[int]*time.Timer)}
}

// Schedule runs fn after d unless the queue is cancelled first.
func (q *ReplyQueue) Schedule(d time.Duration, fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.nextID++
	id := q.nextID
	q.pending[id] = time.AfterFunc(d, func() {
		q.mu.Lock()
		_, live := q.pending[id]
		delete(q.pending, id)
		q.mu.Unlock()

		// A timer that lost the race against CancelAll stays silent.
		if live {
			fn()
		}
	})
}

// CancelAll stops every pending delivery and returns how many were
// cancelled.
func (q *ReplyQueue) CancelAll() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.pending)
	for id, timer := range q.pending {
		timer.Stop()
		delete(q.pending, id)
	}
	return n
}

// Len returns the number of pending deliveries.
func (q *ReplyQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
