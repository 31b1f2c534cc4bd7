// Package flow holds the channel primitives switchboard is built on: a
// bounded multi-producer/single-consumer [Queue], a single-slot [Oneshot]
// response channel, and [Copy] to hand independent values to many receivers.
package flow

import "errors"

var (
	// ErrFlowClosed is returned when the other end of a flow is gone.
	ErrFlowClosed = errors.New("flow closed")

	// ErrSlotSettled is returned when sending on a one-shot channel which
	// already carried a value or was dropped.
	ErrSlotSettled = errors.New("flow: one-shot already settled")
)
