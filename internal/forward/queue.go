package forward

import (
	"errors"

	"github.com/evlog/forwarder/internal/eventlog"
)

// ErrQueueFull is returned by Enqueue when the queue is at capacity.
// The record is rejected (drop-newest); a subscription callback must
// never block on a full queue.
var ErrQueueFull = errors.New("forward: queue full")

// Queue is the shared bounded queue between the channel subscription
// callbacks (multiple producers) and the batch dispatcher (single
// consumer). FIFO order is preserved per producer.
type Queue struct {
	ch chan *eventlog.Record
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan *eventlog.Record, capacity)}
}

// Enqueue adds one record without blocking. On overflow the newest
// record is rejected with ErrQueueFull.
func (q *Queue) Enqueue(record *eventlog.Record) error {
	select {
	case q.ch <- record:
		return nil
	default:
		return ErrQueueFull
	}
}

// PopBatch removes up to max queued records without blocking, returning
// fewer (possibly none) when the queue holds less.
func (q *Queue) PopBatch(max int) []*eventlog.Record {
	var batch []*eventlog.Record
	for len(batch) < max {
		select {
		case record := <-q.ch:
			batch = append(batch, record)
		default:
			return batch
		}
	}
	return batch
}

func (q *Queue) Len() int {
	return len(q.ch)
}

func (q *Queue) Cap() int {
	return cap(q.ch)
}
