package tree

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	HeapStatsName = "xbtree/heap"
)

type heapStats struct {
	size          metric.Int64UpDownCounter
	pushCount     metric.Int64Counter
	popCount      metric.Int64Counter
	emptyPopCount metric.Int64Counter
	siftSwaps     metric.Int64Histogram
}

func (stats *heapStats) RecordPush(swaps int) {
	if stats == nil {
		return
	}
	ctx := context.Background()
	stats.size.Add(ctx, 1)
	stats.pushCount.Add(ctx, 1)
	stats.siftSwaps.Record(ctx, int64(swaps))
}

func (stats *heapStats) RecordPop(swaps int) {
	if stats == nil {
		return
	}
	ctx := context.Background()
	stats.size.Add(ctx, -1)
	stats.popCount.Add(ctx, 1)
	stats.siftSwaps.Record(ctx, int64(swaps))
}

func (stats *heapStats) IncreaseEmptyPopCount() {
	if stats == nil {
		return
	}
	stats.emptyPopCount.Add(context.Background(), 1)
}

func (stats *heapStats) RecordRelease(count int64) {
	if stats == nil || count <= 0 {
		return
	}
	stats.size.Add(context.Background(), -count)
}

func newHeapStats(name string) *heapStats {
	meterName := fmt.Sprintf("%s/%s", HeapStatsName, name)
	meter := otel.Meter(meterName)
	return &heapStats{
		size: lo.Must[metric.Int64UpDownCounter](meter.Int64UpDownCounter(
			"xbtree.heap.size",
			metric.WithDescription("The number of nodes in the heap."),
		)),
		pushCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xbtree.heap.push.count",
			metric.WithDescription("The number of values pushed into the heap."),
		)),
		popCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xbtree.heap.pop.count",
			metric.WithDescription("The number of maximum values popped from the heap."),
		)),
		emptyPopCount: lo.Must[metric.Int64Counter](meter.Int64Counter(
			"xbtree.heap.pop.empty.count",
			metric.WithDescription("The number of pops against an empty heap."),
		)),
		siftSwaps: lo.Must[metric.Int64Histogram](meter.Int64Histogram(
			"xbtree.heap.sift.swaps",
			metric.WithDescription("The value swaps done by a single sift-up or sift-down."),
		)),
	}
}
