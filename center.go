package switchboard

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hashicorp/go-metrics"
	"github.com/raskyld/switchboard/pkg/flow"
)

// line is the producing end shared by a center and all its phones.
type line[C any] struct {
	name   string
	queue  *flow.Queue[Envelope[C]]
	logger *slog.Logger
	msink  metrics.MetricSink
	labels []metrics.Label
}

// Center receives the calls made on the operations bound to C. It owns the
// single consuming end of a bounded queue; phones made from it are the
// producers.
type Center[C any] struct {
	*line[C]
}

// NewCenter creates a center with an empty queue.
func NewCenter[C any](opts ...Option) (*Center[C], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.name == "" {
		cfg.name = centerName[C]()
	}

	return &Center[C]{
		line: &line[C]{
			name:   cfg.name,
			queue:  flow.NewQueue[Envelope[C]](cfg.queueSize),
			logger: cfg.logger(),
			msink:  cfg.msink,
			labels: withLabels(cfg.metricLabels, LabelCenter.M(cfg.name)),
		},
	}, nil
}

func (c *Center[C]) Name() string {
	return c.name
}

// MakePhone returns a new phone calling this center.
func (c *Center[C]) MakePhone() *Phone[C] {
	return &Phone[C]{line: c.line}
}

// HandleRequest waits for the next envelope. The owner is expected to
// match it against its bindings, run the handler and reply exactly once,
// a [Router] does all of that.
//
// It returns ErrClosed once the center is closed.
func (c *Center[C]) HandleRequest(ctx context.Context) (Envelope[C], error) {
	env, err := c.queue.Recv(ctx)
	if err != nil {
		if errors.Is(err, flow.ErrFlowClosed) {
			return nil, closedBy(ClosedByCenter, c.name)
		}
		return nil, err
	}

	c.msink.SetGaugeWithLabels(MetricQueueDepth, float32(c.queue.Len()), c.labels)
	return env, nil
}

// Pending is a snapshot of how many envelopes wait in the queue.
func (c *Center[C]) Pending() int {
	return c.queue.Len()
}

// Close stops the center. Phones can no longer enqueue, pending callers
// blocked on a full queue are released, and envelopes still queued are
// dropped so their callers get ErrClosed rather than waiting forever.
//
// Requests already handed out by HandleRequest are not affected.
func (c *Center[C]) Close() error {
	if c.queue.Closed() {
		return nil
	}
	if err := c.queue.Close(); err != nil {
		return err
	}

	dropped := c.queue.Drain(func(env Envelope[C]) {
		env.Drop()
	})
	if dropped > 0 {
		c.msink.IncrCounterWithLabels(MetricCenterDroppedOnStop, float32(dropped), c.labels)
	}
	c.logger.Info("center closed", LabelCount.L(dropped))
	return nil
}
