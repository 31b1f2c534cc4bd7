package switchboard

import (
	"context"
	"errors"
	"time"

	"github.com/raskyld/switchboard/pkg/flow"
)

// Phone places calls on a center. Phones are cheap: they all share the
// producing end of the center's queue, and can be used concurrently.
type Phone[C any] struct {
	*line[C]
}

// Clone returns another phone for the same center.
func (ph *Phone[C]) Clone() *Phone[C] {
	return &Phone[C]{line: ph.line}
}

// Alive reports whether the center still consumes calls.
func (ph *Phone[C]) Alive() bool {
	return !ph.queue.Closed()
}

// Center is the name of the called center.
func (ph *Phone[C]) Center() string {
	return ph.name
}

func (ph *Phone[C]) enqueue(ctx context.Context, env Envelope[C]) error {
	err := ph.queue.Send(ctx, env)
	if errors.Is(err, flow.ErrFlowClosed) {
		return closedBy(ClosedByCenter, ph.name)
	}
	return err
}

func (ph *Phone[C]) failed(op string, err error) {
	ph.msink.IncrCounterWithLabels(
		MetricCallErrorCount,
		1.0,
		withLabels(ph.labels, LabelOperation.M(op), LabelError.M(errorLabel(err))),
	)
	ph.logger.Debug("call failed", LabelOperation.L(op), LabelError.L(err))
}

// Call places a call and waits for its response.
//
// It returns ErrClosed if the center is gone, or if the request was
// dropped without a reply. Cancelling ctx stops the wait; a reply sent
// afterwards is discarded.
func Call[C, P, R any](ctx context.Context, ph *Phone[C], b Binding[C, P, R], params P) (result R, err error) {
	start := time.Now()
	op := b.Operation()
	ph.logger.Debug("calling", LabelOperation.L(b.Name()), LabelParams.L(params))

	req, resp := b.MakeCall(params)
	if err = ph.enqueue(ctx, req); err != nil {
		ph.failed(op, err)
		return result, err
	}

	result, err = resp.Recv(ctx)
	if err != nil {
		if errors.Is(err, flow.ErrFlowClosed) {
			err = closedBy(ClosedByUnanswered, b.Name())
		}
		ph.failed(op, err)
		return result, err
	}

	mLabels := withLabels(ph.labels, LabelOperation.M(op))
	ph.msink.IncrCounterWithLabels(MetricCallCount, 1.0, mLabels)
	ph.msink.AddSampleWithLabels(MetricCallLatency, sinceMillis(start), mLabels)
	ph.logger.Debug("response received", LabelOperation.L(b.Name()), LabelResponse.L(result))
	return result, nil
}

// CallNoResponse places a call without waiting for it to be handled. It
// only fails if the call cannot be enqueued. The handler's reply, if any,
// is discarded.
func CallNoResponse[C, P, R any](ctx context.Context, ph *Phone[C], b Binding[C, P, R], params P) error {
	ph.logger.Debug("calling without response", LabelOperation.L(b.Name()), LabelParams.L(params))

	req, resp := b.MakeCall(params)
	resp.Abandon()
	if err := ph.enqueue(ctx, req); err != nil {
		ph.failed(b.Operation(), err)
		return err
	}

	ph.msink.IncrCounterWithLabels(MetricCallCount, 1.0, withLabels(ph.labels, LabelOperation.M(b.Operation())))
	return nil
}

func errorLabel(err error) string {
	var closedErr *ClosedError
	switch {
	case errors.As(err, &closedErr):
		return "closed_by_" + closedErr.cause.labelValue()
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	default:
		return "unknown"
	}
}
