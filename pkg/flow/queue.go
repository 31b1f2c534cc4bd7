package flow

import (
	"context"
	"sync"
)

// DefaultQueueSize is the capacity used when none is given.
const DefaultQueueSize = 100

// Queue is a bounded FIFO flow safe for many concurrent producers and
// meant to be drained by a single consumer.
//
// Ordering follows enqueue completion: two producers racing on a full
// queue are served in the order the runtime lets them in.
type Queue[T any] struct {
	data    chan T
	lk      sync.Mutex
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

func NewQueue[T any](size uint) *Queue[T] {
	if size == 0 {
		size = DefaultQueueSize
	}
	return &Queue[T]{
		data:    make(chan T, size),
		closeCh: make(chan struct{}),
	}
}

// Send enqueues msg, waiting for room if the queue is full.
func (q *Queue[T]) Send(ctx context.Context, msg T) error {
	q.lk.Lock()
	if q.closed {
		q.lk.Unlock()
		return ErrFlowClosed
	}
	q.wg.Add(1)
	defer q.wg.Done()
	q.lk.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.closeCh:
		return ErrFlowClosed
	case q.data <- msg:
		return nil
	}
}

// Recv dequeues the next message.
//
// Recv MUST NOT be called concurrently.
func (q *Queue[T]) Recv(ctx context.Context) (msg T, err error) {
	select {
	case <-q.closeCh:
		return msg, ErrFlowClosed
	default:
	}

	select {
	case <-ctx.Done():
		return msg, ctx.Err()
	case <-q.closeCh:
		return msg, ErrFlowClosed
	case elem, ok := <-q.data:
		if !ok {
			return msg, ErrFlowClosed
		}
		return elem, nil
	}
}

// Done is closed once the queue stops accepting messages.
func (q *Queue[T]) Done() <-chan struct{} {
	return q.closeCh
}

// Closed reports whether Close was called.
func (q *Queue[T]) Closed() bool {
	select {
	case <-q.closeCh:
		return true
	default:
		return false
	}
}

// Len is a snapshot of the number of queued messages.
func (q *Queue[T]) Len() int {
	return len(q.data)
}

// Cap is the fixed capacity of the queue.
func (q *Queue[T]) Cap() int {
	return cap(q.data)
}

// Close stops the queue: blocked and future producers get ErrFlowClosed.
// Messages left in the queue can be collected with Drain.
func (q *Queue[T]) Close() error {
	q.lk.Lock()
	defer q.lk.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	close(q.closeCh)
	q.wg.Wait()
	close(q.data)
	return nil
}

// Drain hands every message still queued to fn and returns how many there
// were. It only makes sense after Close, otherwise it stops at the first
// empty read.
func (q *Queue[T]) Drain(fn func(T)) (n int) {
	for {
		select {
		case elem, ok := <-q.data:
			if !ok {
				return n
			}
			fn(elem)
			n++
		default:
			return n
		}
	}
}
