package switchboard

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-metrics"
	"github.com/stretchr/testify/require"
)

func counterSum(sink *metrics.InmemSink, key []string) (sum float64) {
	prefix := strings.Join(key, ".") + ";"
	for _, interval := range sink.Data() {
		for name, value := range interval.Counters {
			if strings.HasPrefix(name, prefix) {
				sum += value.Sum
			}
		}
	}
	return
}

func TestMetrics_CallAndDispatch(t *testing.T) {
	ctx := testContext(t)
	sink := metrics.NewInmemSink(time.Minute, time.Minute)
	labels := []metrics.Label{{Name: "env", Value: "test"}}

	center, err := NewCenter[echoCenter](WithMetricSink(sink), WithMetricLabels(labels))
	require.NoError(t, err)
	rt, err := NewRouter[echoCenter, int](WithMetricSink(sink), WithMetricLabels(labels))
	require.NoError(t, err)
	Handle(rt, echoCall, func(_ context.Context, x int, params int) int {
		return params * x
	})
	serve(t, ctx, center, rt, 2)

	phone := center.MakePhone()
	for i := range 3 {
		_, err := Call(ctx, phone, echoCall, i)
		require.NoError(t, err)
	}

	require.Equal(t, 3.0, counterSum(sink, MetricCallCount))
	require.Equal(t, 3.0, counterSum(sink, MetricDispatchCount))

	require.NoError(t, center.Close())
	_, err = Call(ctx, phone, echoCall, 1)
	require.ErrorIs(t, err, ErrClosed)
	require.Equal(t, 1.0, counterSum(sink, MetricCallErrorCount))
}

func TestErrorLabel(t *testing.T) {
	require.Equal(t, "closed_by_center", errorLabel(closedBy(ClosedByCenter, "x")))
	require.Equal(t, "canceled", errorLabel(context.Canceled))
	require.Equal(t, "deadline_exceeded", errorLabel(context.DeadlineExceeded))
	require.Equal(t, "unknown", errorLabel(ErrNotRouted))
}
