// Package uploads drains queued upload jobs to the file server on a fixed
// cadence and publishes every job state transition.
package uploads

import (
	"errors"
	"sync"

	"github.com/dmitrijs2005/scimaterials/internal/client/models"
)

var ErrQueueFull = errors.New("upload queue is full")

// Queue is a FIFO of pending upload jobs. Enqueue is safe for many
// producers and never blocks. TryDequeue is meant for a single consumer.
type Queue struct {
	mu       sync.Mutex
	items    []*models.UploadRequest
	capacity int
}

// NewQueue returns a queue holding at most capacity jobs, 0 means unbounded.
func NewQueue(capacity int) *Queue {
	return &Queue{capacity: capacity}
}

func (q *Queue) Enqueue(job *models.UploadRequest) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.capacity > 0 && len(q.items) >= q.capacity {
		return ErrQueueFull
	}
	q.items = append(q.items, job)
	return nil
}

// TryDequeue removes the oldest job. ok is false when the queue is empty.
func (q *Queue) TryDequeue() (job *models.UploadRequest, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}
	job = q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return job, true
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Drain empties the queue and returns its jobs in FIFO order.
func (q *Queue) Drain() []*models.UploadRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	return items
}
