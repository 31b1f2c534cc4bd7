package switchboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-metrics"
)

// HandlerFunc answers one operation. x is the value given to
// [Router.Dispatch] or [Router.Serve], shared by every handler.
type HandlerFunc[X, P, R any] func(ctx context.Context, x X, params P) R

type dispatchFunc[C, X any] func(ctx context.Context, x X, env Envelope[C]) error

// Router maps the operations of the center C to their handlers and runs
// the dispatch loop.
type Router[C, X any] struct {
	lk sync.RWMutex
	h  map[string]dispatchFunc[C, X]

	name   string
	logger *slog.Logger
	msink  metrics.MetricSink
	labels []metrics.Label
}

func NewRouter[C, X any](opts ...Option) (*Router[C, X], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.name == "" {
		cfg.name = centerName[C]()
	}

	return &Router[C, X]{
		h:      make(map[string]dispatchFunc[C, X]),
		name:   cfg.name,
		logger: cfg.logger(),
		msink:  cfg.msink,
		labels: withLabels(cfg.metricLabels, LabelCenter.M(cfg.name)),
	}, nil
}

// Handle registers fn as the handler of the operation of b, replacing any
// previous one.
func Handle[C, X, P, R any](rt *Router[C, X], b Binding[C, P, R], fn HandlerFunc[X, P, R]) {
	rt.lk.Lock()
	defer rt.lk.Unlock()

	rt.h[b.Operation()] = func(ctx context.Context, x X, env Envelope[C]) error {
		req, ok := b.Match(env)
		if !ok {
			panic(
				fmt.Sprintf(
					"switchboard: envelope %s routed to the handler of %s",
					env.Operation(),
					b.Name(),
				),
			)
		}
		return req.Reply(fn(ctx, x, req.Params()))
	}
}

// Missing lists the operations bound to C which have no handler yet.
func (rt *Router[C, X]) Missing() (missing []string) {
	rt.lk.RLock()
	defer rt.lk.RUnlock()

	for _, op := range catalogs.operations(reflect.TypeFor[C]()) {
		if _, ok := rt.h[op]; !ok {
			missing = append(missing, op)
		}
	}
	return
}

// Dispatch runs the handler matching env and sends its result back.
//
// An envelope with no handler is dropped and ErrNotRouted is returned.
// When the result cannot be delivered, the error wraps ErrReplyFailed and
// the reason, see [Request.Reply].
func (rt *Router[C, X]) Dispatch(ctx context.Context, x X, env Envelope[C]) error {
	start := time.Now()
	op := env.Operation()

	rt.lk.RLock()
	handler, ok := rt.h[op]
	rt.lk.RUnlock()

	if !ok {
		env.Drop()
		rt.msink.IncrCounterWithLabels(
			MetricDispatchErrorCount,
			1.0,
			withLabels(rt.labels, LabelOperation.M(op), LabelError.M("not_routed")),
		)
		rt.logger.Warn("dropped a call with no handler", LabelOperation.L(op))
		return fmt.Errorf("%w: %s", ErrNotRouted, op)
	}

	mLabels := withLabels(rt.labels, LabelOperation.M(op))
	rt.msink.IncrCounterWithLabels(MetricDispatchCount, 1.0, mLabels)

	if err := handler(ctx, x, env); err != nil {
		rt.msink.IncrCounterWithLabels(
			MetricDispatchErrorCount,
			1.0,
			append(mLabels, LabelError.M(errorLabel(err))),
		)
		return fmt.Errorf("%w: %w", ErrReplyFailed, err)
	}

	rt.logger.Debug("call handled", LabelOperation.L(op), LabelDuration.L(time.Since(start)))
	return nil
}

// Serve dispatches the calls received by center until it is closed, in
// which case it returns nil, or ctx ends.
//
// Serve refuses to start if an operation bound to C has no handler. A
// reply nobody waits for anymore is logged and skipped; any other failure
// to reply stops the loop and is returned, since it means a caller may be
// stuck.
func (rt *Router[C, X]) Serve(ctx context.Context, center *Center[C], x X) error {
	if missing := rt.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: no handler for %s", ErrRouterIncomplete, strings.Join(missing, ", "))
	}

	for {
		env, err := center.HandleRequest(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) {
				rt.logger.Debug("center closed, dispatch loop stopped")
				return nil
			}
			return err
		}

		err = rt.Dispatch(ctx, x, env)
		switch {
		case err == nil:
		case errors.Is(err, ErrNotRouted):
			// already logged, the caller observes ErrClosed.
		case IsClosedBy(err, ClosedByCaller):
			rt.logger.Debug("reply discarded, caller is gone", LabelOperation.L(env.Operation()))
		default:
			rt.logger.Error("failed to deliver a reply", LabelOperation.L(env.Operation()), LabelError.L(err))
			return err
		}
	}
}

// Operations lists the operations this router handles.
func (rt *Router[C, X]) Operations() []string {
	rt.lk.RLock()
	defer rt.lk.RUnlock()

	ops := make([]string, 0, len(rt.h))
	for op := range rt.h {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}
