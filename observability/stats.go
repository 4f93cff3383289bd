package observability

import (
	"context"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/xbtree/lib/infra"
)

const AppStatsName = "xbtree/app"

var (
	appStatsOnce sync.Once
	appStatsErr  error
)

type appStats struct {
	proc       *process.Process
	goroutines metric.Int64ObservableGauge
	procs      metric.Int64ObservableGauge
	rss        metric.Int64ObservableGauge
}

func (stats *appStats) observe(_ context.Context, ob metric.Observer) error {
	ob.ObserveInt64(stats.goroutines, int64(runtime.NumGoroutine()))
	ob.ObserveInt64(stats.procs, int64(runtime.GOMAXPROCS(0)))
	if stats.proc == nil {
		return nil
	}
	if mem, err := stats.proc.MemoryInfo(); err == nil && mem != nil {
		ob.ObserveInt64(stats.rss, int64(mem.RSS))
	}
	return nil
}

// InitAppStats registers the process gauges and the Go runtime metrics
// with the global meter provider. Only the first call takes effect.
func InitAppStats(name string) error {
	appStatsOnce.Do(func() {
		appStatsErr = initAppStats(name)
	})
	return appStatsErr
}

func initAppStats(name string) error {
	if name = strings.TrimSpace(name); len(name) == 0 {
		name = "default"
	}
	meter := otel.Meter(
		AppStatsName+"/"+name,
		metric.WithInstrumentationVersion(otelruntime.Version()),
	)
	stats := &appStats{
		goroutines: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
			"xbtree.app.goroutines",
			metric.WithDescription("The number of live goroutines."),
		)),
		procs: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
			"xbtree.app.gomaxprocs",
			metric.WithDescription("The GOMAXPROCS of the process."),
		)),
		rss: lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
			"xbtree.app.memory.rss",
			metric.WithDescription("The resident set size of the process."),
			metric.WithUnit("By"),
		)),
	}
	// The RSS gauge stays empty where the process info is unavailable.
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		stats.proc = proc
	}
	if _, err := meter.RegisterCallback(stats.observe, stats.goroutines, stats.procs, stats.rss); err != nil {
		return infra.WrapErrorStack(err)
	}
	return infra.WrapErrorStack(otelruntime.Start(
		otelruntime.WithMinimumReadMemStatsInterval(time.Second),
	))
}
