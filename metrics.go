package switchboard

import (
	"log/slog"
	"time"

	"github.com/hashicorp/go-metrics"
)

var (
	MetricCallCount           = []string{"switchboard", "call", "count"}
	MetricCallErrorCount      = []string{"switchboard", "call", "error", "count"}
	MetricCallLatency         = []string{"switchboard", "call", "latency"}
	MetricDispatchCount       = []string{"switchboard", "dispatch", "count"}
	MetricDispatchErrorCount  = []string{"switchboard", "dispatch", "error", "count"}
	MetricQueueDepth          = []string{"switchboard", "queue", "depth"}
	MetricBroadcastResponses  = []string{"switchboard", "broadcast", "responses"}
	MetricGroupPrunedCount    = []string{"switchboard", "group", "pruned", "count"}
	MetricCenterDroppedOnStop = []string{"switchboard", "center", "dropped", "count"}
)

type TelemetryLabel string

var (
	LabelCenter    TelemetryLabel = "center"
	LabelOperation TelemetryLabel = "operation"
	LabelParams    TelemetryLabel = "params"
	LabelResponse  TelemetryLabel = "response"
	LabelTopic     TelemetryLabel = "topic"
	LabelError     TelemetryLabel = "error"
	LabelMembers   TelemetryLabel = "members"
	LabelCount     TelemetryLabel = "count"
	LabelDuration  TelemetryLabel = "duration"
)

func (lab TelemetryLabel) M(val string) metrics.Label {
	return metrics.Label{Name: string(lab), Value: val}
}

func (lab TelemetryLabel) L(val any) slog.Attr {
	return slog.Attr{
		Key:   string(lab),
		Value: slog.AnyValue(val),
	}
}

// withLabels returns a fresh slice so callers never share the static
// labels backing array.
func withLabels(static []metrics.Label, dynamic ...metrics.Label) []metrics.Label {
	labels := make([]metrics.Label, 0, len(static)+len(dynamic))
	labels = append(labels, static...)
	return append(labels, dynamic...)
}

func sinceMillis(start time.Time) float32 {
	return float32(time.Since(start)) / float32(time.Millisecond)
}
