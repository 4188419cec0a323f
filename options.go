package condqueue

import (
	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Option configures a queue at construction time.
type Option func(*config)

type config struct {
	name   string
	logger logr.Logger
	meter  metric.Meter
}

// DefaultName is the queue name used in logs and metric attributes when
// WithName is not given.
const DefaultName = "default"

// WithName sets the name reported in log lines and as the "queue" metric
// attribute.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithLogger sets the logger. Blocked operations are logged at V(1) once
// they resume. The default discards everything.
func WithLogger(l logr.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithMeter records queue metrics on m instead of the global
// MeterProvider's meter.
func WithMeter(m metric.Meter) Option {
	return func(c *config) { c.meter = m }
}

// WithMeterProvider records queue metrics on a meter obtained from mp.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) { c.meter = mp.Meter(meterName) }
}

func buildConfig(opts []Option) config {
	c := config{
		name:   DefaultName,
		logger: logr.Discard(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.meter == nil {
		c.meter = otel.Meter(meterName)
	}
	return c
}
