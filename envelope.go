package switchboard

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/raskyld/switchboard/pkg/flow"
)

// Envelope is what travels through a center's queue: one call of one of
// the operations bound to C, together with its private response channel.
//
// The set of envelopes of a center is closed: the only implementation is
// [*Request], one per [Binding] of C. Use [Binding.Match] or a [Router] to
// recover the typed request.
type Envelope[C any] interface {
	// Operation is the name of the called operation.
	Operation() string
	// Drop discards the envelope without replying, the caller observes
	// ErrClosed.
	Drop()
	fmt.Stringer
	slog.LogValuer

	envelope(C)
}

var _ Envelope[struct{}] = (*Request[struct{}, int, int])(nil)

// Request is the envelope variant of one operation.
type Request[C, P, R any] struct {
	binding Binding[C, P, R]
	params  P
	reply   *flow.OneshotSender[R]
}

func (req *Request[C, P, R]) envelope(C) {}

func (req *Request[C, P, R]) Operation() string {
	return req.binding.op.name
}

func (req *Request[C, P, R]) Params() P {
	return req.params
}

// Reply sends the response to the caller. It can succeed only once.
//
// If the caller does not wait anymore (it used CallNoResponse or its
// context ended) the error is a *ClosedError caused by ClosedByCaller.
func (req *Request[C, P, R]) Reply(result R) error {
	err := req.reply.Send(result)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, flow.ErrFlowClosed):
		return closedBy(ClosedByCaller, req.binding.name)
	case errors.Is(err, flow.ErrSlotSettled):
		return fmt.Errorf("%w: %s", ErrAlreadyAnswered, req.binding.name)
	default:
		return err
	}
}

// Expected reports whether a caller still waits for this request's reply.
func (req *Request[C, P, R]) Expected() bool {
	return req.reply.Alive()
}

func (req *Request[C, P, R]) Drop() {
	req.reply.Drop()
}

func (req *Request[C, P, R]) String() string {
	return fmt.Sprintf("%s(%+v)", req.binding.name, req.params)
}

func (req *Request[C, P, R]) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String(string(LabelOperation), req.binding.name),
		slog.Any(string(LabelParams), req.params),
	)
}
