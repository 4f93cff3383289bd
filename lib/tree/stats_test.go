package tree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNilHeapStats(t *testing.T) {
	var stats *heapStats
	stats.RecordPush(1)
	stats.RecordPop(1)
	stats.IncreaseEmptyPopCount()
	stats.RecordRelease(3)
}

func TestMaxHeap_Stats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() {
		_ = provider.Shutdown(context.Background())
	}()
	otel.SetMeterProvider(provider)

	h := NewMaxHeap(WithMaxHeapStats("stats-test"), WithMaxHeapValues(1, 2, 3, 4))
	_, err := h.Pop()
	require.NoError(t, err)
	h.Release()
	_, err = h.Pop()
	require.ErrorIs(t, err, ErrHeapEmpty)

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var scope *metricdata.ScopeMetrics
	for i := range rm.ScopeMetrics {
		if rm.ScopeMetrics[i].Scope.Name == HeapStatsName+"/stats-test" {
			scope = &rm.ScopeMetrics[i]
		}
	}
	require.NotNil(t, scope)

	sums := map[string]int64{}
	var swapsCount uint64
	for _, m := range scope.Metrics {
		switch data := m.Data.(type) {
		case metricdata.Sum[int64]:
			for _, dp := range data.DataPoints {
				sums[m.Name] += dp.Value
			}
		case metricdata.Histogram[int64]:
			require.Equal(t, "xbtree.heap.sift.swaps", m.Name)
			for _, dp := range data.DataPoints {
				swapsCount += dp.Count
			}
		}
	}
	require.Equal(t, int64(0), sums["xbtree.heap.size"])
	require.Equal(t, int64(4), sums["xbtree.heap.push.count"])
	require.Equal(t, int64(1), sums["xbtree.heap.pop.count"])
	require.Equal(t, int64(1), sums["xbtree.heap.pop.empty.count"])
	require.Equal(t, uint64(5), swapsCount)
}
