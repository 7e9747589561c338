package can

import "sync/atomic"

// Bus is the non-blocking send/receive primitive over a shared bus.
type Bus interface {
	// TrySend queues the frame for transmission without waiting for it
	// to be delivered. A nil error doesn't mean any peer received it.
	TrySend(Frame) error
	// TryReceive returns the oldest pending frame, if any.
	TryReceive() (Frame, bool)
}

// DefaultQueueSize is the receive queue size used by transports.
const DefaultQueueSize = 256

// Queue is a bounded frame queue which drops new frames when full.
// It is safe for concurrent use.
type Queue struct {
	ch      chan Frame
	dropped atomic.Uint64
}

// NewQueue creates a Queue, size <= 0 means DefaultQueueSize.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan Frame, size)}
}

// Push enqueues a frame and reports false if it was dropped.
func (q *Queue) Push(f Frame) bool {
	select {
	case q.ch <- f:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Pop dequeues a frame without blocking.
func (q *Queue) Pop() (Frame, bool) {
	select {
	case f := <-q.ch:
		return f, true
	default:
		return Frame{}, false
	}
}

// Len returns the number of pending frames.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Dropped returns the number of frames dropped because the queue was full.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}
