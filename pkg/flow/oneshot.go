package flow

import (
	"context"
	"sync"
)

// Oneshot allocates a single-slot channel. The sender half travels with a
// request, the receiver half stays with whoever waits for the answer.
//
// At most one value ever crosses it. If the sender is dropped without a
// value, the receiver observes ErrFlowClosed.
func Oneshot[T any]() (*OneshotSender[T], *OneshotReceiver[T]) {
	s := &slot[T]{
		ch: make(chan T, 1),
	}
	return &OneshotSender[T]{s: s}, &OneshotReceiver[T]{s: s}
}

type slot[T any] struct {
	ch chan T
	lk sync.Mutex

	// settled once a value was put or the sender was dropped.
	settled bool
	// abandoned once the receiver stopped waiting.
	abandoned bool
}

type OneshotSender[T any] struct {
	s *slot[T]
}

// Send puts v in the slot. It never blocks.
//
// It returns ErrFlowClosed if the receiver was abandoned and ErrSlotSettled
// on a second use.
func (tx *OneshotSender[T]) Send(v T) error {
	tx.s.lk.Lock()
	defer tx.s.lk.Unlock()
	if tx.s.settled {
		return ErrSlotSettled
	}
	tx.s.settled = true
	if tx.s.abandoned {
		close(tx.s.ch)
		return ErrFlowClosed
	}
	tx.s.ch <- v
	close(tx.s.ch)
	return nil
}

// Drop settles the slot without a value. No-op if already settled.
func (tx *OneshotSender[T]) Drop() {
	tx.s.lk.Lock()
	defer tx.s.lk.Unlock()
	if tx.s.settled {
		return
	}
	tx.s.settled = true
	close(tx.s.ch)
}

// Alive reports whether someone may still read a value sent now.
func (tx *OneshotSender[T]) Alive() bool {
	tx.s.lk.Lock()
	defer tx.s.lk.Unlock()
	return !tx.s.settled && !tx.s.abandoned
}

type OneshotReceiver[T any] struct {
	s *slot[T]
}

// Recv waits for the value. When ctx ends first, the receiver is abandoned
// so that a late Send fails instead of silently vanishing.
func (rx *OneshotReceiver[T]) Recv(ctx context.Context) (result T, err error) {
	select {
	case <-ctx.Done():
		rx.Abandon()
		// the value may have landed while we were giving up.
		select {
		case v, ok := <-rx.s.ch:
			if ok {
				return v, nil
			}
		default:
		}
		return result, ctx.Err()
	case v, ok := <-rx.s.ch:
		if !ok {
			return result, ErrFlowClosed
		}
		return v, nil
	}
}

// Abandon tells the sender nobody will read the slot anymore.
func (rx *OneshotReceiver[T]) Abandon() {
	rx.s.lk.Lock()
	defer rx.s.lk.Unlock()
	rx.s.abandoned = true
}
