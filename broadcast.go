package switchboard

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/hashicorp/go-metrics"
	"github.com/raskyld/switchboard/pkg/flow"
	"golang.org/x/sync/errgroup"
)

// Group is an unordered set of phones called together. The zero value is
// an empty group using the default logger and metrics.
//
// Phones whose center was closed are pruned the next time a phone is
// attached; until then they are simply excluded from results.
type Group[C any] struct {
	lk     sync.RWMutex
	phones []*Phone[C]

	init        sync.Once
	fanOutLimit int
	logger      *slog.Logger
	msink       metrics.MetricSink
	labels      []metrics.Label
}

func NewGroup[C any](opts ...Option) (*Group[C], error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	g := &Group[C]{}
	g.configure(cfg)
	return g, nil
}

func (g *Group[C]) configure(cfg config) {
	g.init.Do(func() {
		g.fanOutLimit = cfg.fanOutLimit
		g.logger = cfg.logger()
		g.msink = cfg.msink
		g.labels = cfg.metricLabels
	})
}

func (g *Group[C]) defaults() {
	g.init.Do(func() {
		g.logger = slog.Default()
		g.msink = metrics.Default()
	})
}

// Attach adds ph to the group, then sweeps the phones whose center is
// gone.
func (g *Group[C]) Attach(ph *Phone[C]) {
	g.defaults()

	g.lk.Lock()
	g.phones = append(g.phones, ph)
	before := len(g.phones)
	g.phones = slices.DeleteFunc(g.phones, func(member *Phone[C]) bool {
		return !member.Alive()
	})
	pruned := before - len(g.phones)
	g.lk.Unlock()

	if pruned > 0 {
		g.msink.IncrCounterWithLabels(MetricGroupPrunedCount, float32(pruned), g.labels)
		g.logger.Debug("pruned dead phones", LabelCount.L(pruned))
	}
}

// Len is the number of attached phones, including dead ones not yet
// pruned.
func (g *Group[C]) Len() int {
	g.lk.RLock()
	defer g.lk.RUnlock()
	return len(g.phones)
}

func (g *Group[C]) snapshot() []*Phone[C] {
	g.lk.RLock()
	defer g.lk.RUnlock()
	return slices.Clone(g.phones)
}

// fanOut runs call once per member, at most fanOutLimit at a time.
func (g *Group[C]) fanOut(members []*Phone[C], call func(i int, ph *Phone[C])) {
	var eg errgroup.Group
	if g.fanOutLimit > 0 {
		eg.SetLimit(g.fanOutLimit)
	}
	for i, ph := range members {
		eg.Go(func() error {
			call(i, ph)
			return nil
		})
	}
	_ = eg.Wait()
}

// Broadcast calls every member of g concurrently and returns the
// responses of those which answered. Members failing are left out, so the
// result may be shorter than the group, or empty. Results are in no
// particular order.
//
// Each member receives its own copy of params, see [flow.Copy].
func Broadcast[C, P, R any](ctx context.Context, g *Group[C], b Binding[C, P, R], params P) []R {
	g.defaults()
	members := g.snapshot()

	results := make([]R, len(members))
	answered := make([]bool, len(members))
	g.fanOut(members, func(i int, ph *Phone[C]) {
		result, err := Call(ctx, ph, b, flow.Copy(params))
		if err != nil {
			return
		}
		results[i] = result
		answered[i] = true
	})

	responses := make([]R, 0, len(members))
	for i, ok := range answered {
		if ok {
			responses = append(responses, results[i])
		}
	}

	g.msink.AddSampleWithLabels(
		MetricBroadcastResponses,
		float32(len(responses)),
		withLabels(g.labels, LabelOperation.M(b.Operation())),
	)
	g.logger.Debug(
		"broadcast done",
		LabelOperation.L(b.Name()),
		LabelMembers.L(len(members)),
		LabelCount.L(len(responses)),
	)
	return responses
}

// BroadcastNoResponse calls every member of g without waiting for the
// calls to be handled.
func BroadcastNoResponse[C, P, R any](ctx context.Context, g *Group[C], b Binding[C, P, R], params P) {
	g.defaults()
	g.fanOut(g.snapshot(), func(_ int, ph *Phone[C]) {
		_ = CallNoResponse(ctx, ph, b, flow.Copy(params))
	})
}
