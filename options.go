package switchboard

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/hashicorp/go-metrics"
	"github.com/kelseyhightower/envconfig"
	"github.com/raskyld/switchboard/pkg/flow"
)

type config struct {
	name         string
	queueSize    uint
	fanOutLimit  int
	logHandler   slog.Handler
	logLevel     *slog.Level
	msink        metrics.MetricSink
	metricLabels []metrics.Label
}

// Option to pass to `NewCenter`, `NewGroup`, `NewTopics` and `NewRouter`.
// Options which do not apply to a constructor are ignored by it.
type Option func(*config) error

func newConfig(opts []Option) (config, error) {
	cfg := config{
		queueSize: flow.DefaultQueueSize,
	}

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return cfg, fmt.Errorf("%w: %w", ErrInvalidCfg, err)
		}
	}

	if cfg.logHandler == nil && cfg.logLevel != nil {
		cfg.logHandler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.logLevel,
		})
	}

	if cfg.msink == nil {
		cfg.msink = metrics.Default()
	}

	return cfg, nil
}

func (cfg *config) logger() *slog.Logger {
	logger := slog.Default()
	if cfg.logHandler != nil {
		logger = slog.New(cfg.logHandler)
	}
	if cfg.name != "" {
		logger = logger.With(LabelCenter.L(cfg.name))
	}
	return logger
}

// WithName names the center (or group, topics, router) in logs and metrics.
func WithName(name string) Option {
	return func(c *config) error {
		c.name = name
		return nil
	}
}

// WithQueueSize sets the capacity of a center's queue. Callers wait when
// the queue is full. Zero means the default of 100.
func WithQueueSize(size uint) Option {
	return func(c *config) error {
		if size == 0 {
			size = flow.DefaultQueueSize
		}
		c.queueSize = size
		return nil
	}
}

// WithFanOutLimit caps how many calls a broadcast runs at the same time.
// Zero or a negative value means no limit.
func WithFanOutLimit(limit int) Option {
	return func(c *config) error {
		if limit < 0 {
			limit = 0
		}
		c.fanOutLimit = limit
		return nil
	}
}

// WithLog specifies which `slog.Handler` to use.
func WithLog(handler slog.Handler) Option {
	return func(c *config) error {
		c.logHandler = handler
		return nil
	}
}

// WithMetricSink allows you to chose how to collect the metrics emitted.
// A nil sink discards them.
func WithMetricSink(ms metrics.MetricSink) Option {
	return func(c *config) error {
		if ms == nil {
			ms = &metrics.BlackholeSink{}
		}
		c.msink = ms
		return nil
	}
}

// WithMetricLabels adds static labels to all metrics produced.
func WithMetricLabels(labels []metrics.Label) Option {
	return func(c *config) error {
		c.metricLabels = labels
		return nil
	}
}

// envSettings avoids `envconfig` tags on purpose: a tag would make
// envconfig fall back to the unprefixed variable, e.g. a global NAME.
type envSettings struct {
	Name        string
	QueueSize   uint   `split_words:"true"`
	FanoutLimit int    `split_words:"true"`
	LogLevel    string `split_words:"true"`
}

// WithEnv reads `<PREFIX>_NAME`, `<PREFIX>_QUEUE_SIZE`,
// `<PREFIX>_FANOUT_LIMIT` and `<PREFIX>_LOG_LEVEL` from the environment.
// Unset variables leave the current value untouched, so WithEnv placed
// after other options overrides them.
//
// The log level only applies when no handler is given with WithLog.
func WithEnv(prefix string) Option {
	return func(c *config) error {
		var env envSettings
		if err := envconfig.Process(prefix, &env); err != nil {
			return err
		}

		if env.Name != "" {
			c.name = env.Name
		}
		if env.QueueSize != 0 {
			c.queueSize = env.QueueSize
		}
		if env.FanoutLimit > 0 {
			c.fanOutLimit = env.FanoutLimit
		}
		if env.LogLevel != "" {
			var lvl slog.Level
			if err := lvl.UnmarshalText([]byte(env.LogLevel)); err != nil {
				return fmt.Errorf("%s_LOG_LEVEL: %w", prefix, err)
			}
			c.logLevel = &lvl
		}
		return nil
	}
}
