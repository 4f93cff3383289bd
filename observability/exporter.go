package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/multierr"

	"github.com/benz9527/xbtree/lib/infra"
)

type MetricsExporter string

const (
	NoopExporter       MetricsExporter = "none"
	ConsoleExporter    MetricsExporter = "console"
	PrometheusExporter MetricsExporter = "prometheus"
)

func ParseMetricsExporter(exporter string) (MetricsExporter, error) {
	switch e := MetricsExporter(strings.ToLower(strings.TrimSpace(exporter))); e {
	case "", NoopExporter:
		return NoopExporter, nil
	case ConsoleExporter, PrometheusExporter:
		return e, nil
	default:
	}
	return NoopExporter, infra.NewErrorStack("[observability] unknown metrics exporter " + exporter)
}

// InitMetricsExporter installs the global meter provider of the exporter.
// The returned shutdown flushes the metrics collected so far into w.
func InitMetricsExporter(exporter MetricsExporter, w io.Writer, interval time.Duration) (func(ctx context.Context) error, error) {
	switch exporter {
	case ConsoleExporter:
		return newConsoleMetricsExporter(w, interval)
	case PrometheusExporter:
		return newPrometheusMetricsExporter(w)
	case NoopExporter:
		return func(context.Context) error { return nil }, nil
	default:
	}
	return nil, infra.NewErrorStack("[observability] unknown metrics exporter " + string(exporter))
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(w io.Writer, interval time.Duration) (func(ctx context.Context) error, error) {
	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	if interval <= 0 {
		interval = time.Minute
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
	)))
	otel.SetMeterProvider(mp)
	// The periodic reader exports once more on shutdown.
	return mp.Shutdown, nil
}

// Dumps the prometheus text exposition on shutdown instead of serving it by HTTP.
func newPrometheusMetricsExporter(w io.Writer) (func(ctx context.Context) error, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return func(ctx context.Context) error {
		families, err := registry.Gather()
		if err != nil {
			return multierr.Append(infra.WrapErrorStack(err), mp.Shutdown(ctx))
		}
		for _, mf := range families {
			if _, err = expfmt.MetricFamilyToText(w, mf); err != nil {
				return multierr.Append(infra.WrapErrorStack(err), mp.Shutdown(ctx))
			}
		}
		return mp.Shutdown(ctx)
	}, nil
}
