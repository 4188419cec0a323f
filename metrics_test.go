package condqueue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupTestMeter() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	return reader, mp
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func hasAttrs(set attribute.Set, kvs ...attribute.KeyValue) bool {
	for _, kv := range kvs {
		v, ok := set.Value(kv.Key)
		if !ok || v.Emit() != kv.Value.Emit() {
			return false
		}
	}
	return true
}

// sumValue adds up the data points of an int64 sum matching kvs.
func sumValue(t *testing.T, rm metricdata.ResourceMetrics, name string, kvs ...attribute.KeyValue) int64 {
	t.Helper()
	m := findMetric(rm, name)
	require.NotNil(t, m, "%s metric not found", name)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s: expected Sum[int64] data type", name)

	var total int64
	for _, dp := range sum.DataPoints {
		if hasAttrs(dp.Attributes, kvs...) {
			total += dp.Value
		}
	}
	return total
}

func TestMetricsCountPushesAndPops(t *testing.T) {
	reader, mp := setupTestMeter()
	q := New[int](WithName("jobs"), WithMeterProvider(mp))

	q.Push(1)
	q.Push(2)
	q.Push(3)
	q.Pop()
	_, ok := q.TryPop()
	require.True(t, ok)

	rm := collectMetrics(t, reader)
	name := attribute.String("queue", "jobs")
	require.Equal(t, int64(3), sumValue(t, rm, "condqueue.pushes", name))
	require.Equal(t, int64(2), sumValue(t, rm, "condqueue.pops", name))
	require.Equal(t, int64(1), sumValue(t, rm, "condqueue.depth", name))

	depth := findMetric(rm, "condqueue.depth")
	require.False(t, depth.Data.(metricdata.Sum[int64]).IsMonotonic, "depth must be an up/down counter")
	require.Nil(t, findMetric(rm, "condqueue.blocked"), "nothing blocked yet")
}

func TestMetricsRecordBlockedPush(t *testing.T) {
	reader, mp := setupTestMeter()
	q := MustNewBounded[int](1, WithName("bounded"), WithMeter(mp.Meter("test")))
	q.Push(1)

	done := make(chan struct{})
	go func() {
		q.Push(2)
		close(done)
	}()
	waitForWaiters(t, q.s, 0, 1)
	q.Pop()
	receive(t, done)

	rm := collectMetrics(t, reader)
	name := attribute.String("queue", "bounded")
	require.Equal(t, int64(1), sumValue(t, rm, "condqueue.blocked", name, attribute.String("op", "push")))
	require.Equal(t, int64(0), sumValue(t, rm, "condqueue.blocked", name, attribute.String("op", "pop")))

	m := findMetric(rm, "condqueue.wait.duration")
	require.NotNil(t, m)
	hist, ok := m.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "expected Histogram[float64] data type")
	require.Len(t, hist.DataPoints, 1)
	require.Equal(t, uint64(1), hist.DataPoints[0].Count)
	require.True(t, hasAttrs(hist.DataPoints[0].Attributes, name, attribute.String("op", "push")))
}

func TestMetricsRecordBlockedPop(t *testing.T) {
	reader, mp := setupTestMeter()
	q := New[string](WithMeterProvider(mp))

	got := make(chan string, 1)
	go func() { got <- q.Pop() }()
	waitForWaiters(t, q.s, 1, 0)
	q.Push("x")
	receive(t, got)

	rm := collectMetrics(t, reader)
	name := attribute.String("queue", DefaultName)
	require.Equal(t, int64(1), sumValue(t, rm, "condqueue.blocked", name, attribute.String("op", "pop")))
	require.Equal(t, int64(0), sumValue(t, rm, "condqueue.depth", name))
}
