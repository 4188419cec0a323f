package condqueue

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for queue metrics.
const meterName = "github.com/xyhelper/condqueue"

type op string

const (
	opPush op = "push"
	opPop  op = "pop"
)

// instruments holds the per-queue OTel instruments. With the default global
// MeterProvider they are noops.
//
// Instruments:
//   - condqueue.pushes (Int64Counter): elements pushed
//   - condqueue.pops (Int64Counter): elements popped
//   - condqueue.depth (Int64UpDownCounter): elements currently queued
//   - condqueue.blocked (Int64Counter): operations that had to wait, by op
//   - condqueue.wait.duration (Float64Histogram): time spent waiting, by op
type instruments struct {
	pushes   metric.Int64Counter
	pops     metric.Int64Counter
	depth    metric.Int64UpDownCounter
	blockedN metric.Int64Counter
	waitTime metric.Float64Histogram

	queueAttrs metric.MeasurementOption
	opAttrs    map[op]metric.MeasurementOption
}

func newInstruments(meter metric.Meter, name string) *instruments {
	// On error the API hands back noop instruments, so errors are dropped.
	pushes, _ := meter.Int64Counter(
		"condqueue.pushes",
		metric.WithDescription("Total number of elements pushed"),
		metric.WithUnit("{element}"),
	)
	pops, _ := meter.Int64Counter(
		"condqueue.pops",
		metric.WithDescription("Total number of elements popped"),
		metric.WithUnit("{element}"),
	)
	depth, _ := meter.Int64UpDownCounter(
		"condqueue.depth",
		metric.WithDescription("Number of elements currently queued"),
		metric.WithUnit("{element}"),
	)
	blockedN, _ := meter.Int64Counter(
		"condqueue.blocked",
		metric.WithDescription("Number of push or pop calls that had to wait"),
		metric.WithUnit("{call}"),
	)
	waitTime, _ := meter.Float64Histogram(
		"condqueue.wait.duration",
		metric.WithDescription("Time blocked push or pop calls spent waiting in seconds"),
		metric.WithUnit("s"),
	)

	queue := attribute.String("queue", name)
	return &instruments{
		pushes:     pushes,
		pops:       pops,
		depth:      depth,
		blockedN:   blockedN,
		waitTime:   waitTime,
		queueAttrs: metric.WithAttributeSet(attribute.NewSet(queue)),
		opAttrs: map[op]metric.MeasurementOption{
			opPush: metric.WithAttributeSet(attribute.NewSet(queue, attribute.String("op", string(opPush)))),
			opPop:  metric.WithAttributeSet(attribute.NewSet(queue, attribute.String("op", string(opPop)))),
		},
	}
}

func (i *instruments) pushed() {
	ctx := context.Background()
	i.pushes.Add(ctx, 1, i.queueAttrs)
	i.depth.Add(ctx, 1, i.queueAttrs)
}

func (i *instruments) popped() {
	ctx := context.Background()
	i.pops.Add(ctx, 1, i.queueAttrs)
	i.depth.Add(ctx, -1, i.queueAttrs)
}

func (i *instruments) blocked(o op, waited time.Duration) {
	ctx := context.Background()
	i.blockedN.Add(ctx, 1, i.opAttrs[o])
	i.waitTime.Record(ctx, waited.Seconds(), i.opAttrs[o])
}
