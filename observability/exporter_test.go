package observability

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestParseMetricsExporter(t *testing.T) {
	testcases := []struct {
		in       string
		expected MetricsExporter
		wantErr  bool
	}{
		{"", NoopExporter, false},
		{"none", NoopExporter, false},
		{"Console", ConsoleExporter, false},
		{" prometheus ", PrometheusExporter, false},
		{"otlp", NoopExporter, true},
	}
	for _, tc := range testcases {
		e, err := ParseMetricsExporter(tc.in)
		require.Equal(t, tc.expected, e, tc.in)
		if tc.wantErr {
			require.Error(t, err, tc.in)
		} else {
			require.NoError(t, err, tc.in)
		}
	}
}

func TestInitMetricsExporter_Unknown(t *testing.T) {
	_, err := InitMetricsExporter(MetricsExporter("otlp"), &bytes.Buffer{}, time.Second)
	require.Error(t, err)

	shutdown, err := InitMetricsExporter(NoopExporter, nil, 0)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func recordTestCounter(t *testing.T) {
	counter, err := otel.Meter("xbtree/test").Int64Counter("xbtree.test.count")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)
}

func TestInitMetricsExporter_Console(t *testing.T) {
	buf := &bytes.Buffer{}
	shutdown, err := InitMetricsExporter(ConsoleExporter, buf, time.Hour)
	require.NoError(t, err)
	recordTestCounter(t)
	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, buf.String(), "xbtree.test.count")
}

func TestInitMetricsExporter_Prometheus(t *testing.T) {
	buf := &bytes.Buffer{}
	shutdown, err := InitMetricsExporter(PrometheusExporter, buf, 0)
	require.NoError(t, err)
	recordTestCounter(t)
	require.NoError(t, shutdown(context.Background()))
	require.Contains(t, buf.String(), "# TYPE xbtree_test_count")
}
