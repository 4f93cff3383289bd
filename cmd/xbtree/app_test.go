package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xbtree/lib/tree"
	"github.com/benz9527/xbtree/lib/xlog"
	"github.com/benz9527/xbtree/observability"
)

func noEnv(string) string { return "" }

func TestParseArgs(t *testing.T) {
	cfg, err := parseArgs([]string{"5", "3", "8"}, noEnv)
	require.NoError(t, err)
	require.Equal(t, []int{5, 3, 8}, cfg.values)
	require.Equal(t, xlog.LogLevelWarn, cfg.logLevel)
	require.Equal(t, xlog.PlainText, cfg.encoder)
	require.Equal(t, observability.NoopExporter, cfg.stats)

	cfg, err = parseArgs([]string{"--log-level", "debug", "--encoder=json", "--stats", "--", "-1", "2"}, noEnv)
	require.NoError(t, err)
	require.Equal(t, []int{-1, 2}, cfg.values)
	require.Equal(t, xlog.LogLevelDebug, cfg.logLevel)
	require.Equal(t, xlog.JSON, cfg.encoder)
	require.Equal(t, observability.ConsoleExporter, cfg.stats)

	cfg, err = parseArgs([]string{"--stats=prometheus", "1"}, noEnv)
	require.NoError(t, err)
	require.Equal(t, observability.PrometheusExporter, cfg.stats)
}

func TestParseArgs_Env(t *testing.T) {
	env := map[string]string{
		envLogLevel: "error",
		envStats:    "prometheus",
	}
	getenv := func(key string) string { return env[key] }

	cfg, err := parseArgs([]string{"1"}, getenv)
	require.NoError(t, err)
	require.Equal(t, xlog.LogLevelError, cfg.logLevel)
	require.Equal(t, observability.PrometheusExporter, cfg.stats)

	// The flags win over the environment.
	cfg, err = parseArgs([]string{"--log-level=info", "--stats=none", "1"}, getenv)
	require.NoError(t, err)
	require.Equal(t, xlog.LogLevelInfo, cfg.logLevel)
	require.Equal(t, observability.NoopExporter, cfg.stats)
}

func TestParseArgs_Invalid(t *testing.T) {
	testcases := [][]string{
		{},
		{"1", "x"},
		{"--encoder=yaml", "1"},
		{"--stats=otlp", "1"},
		{"--unknown", "1"},
		{"-1"},
	}
	for _, args := range testcases {
		_, err := parseArgs(args, noEnv)
		require.Error(t, err, args)
	}
	_, err := parseArgs([]string{"--help"}, noEnv)
	require.ErrorIs(t, err, pflag.ErrHelp)
}

func startAndStop(t *testing.T, cfg *cliConfig) {
	app := newApp(cfg)
	require.NoError(t, app.Err())
	require.NoError(t, app.Start(context.Background()))
	require.NoError(t, app.Stop(context.Background()))
}

func TestApp_Report(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg, err := parseArgs([]string{"--log-level=error", "5", "3", "8", "1", "4", "9", "2", "8"}, noEnv)
	require.NoError(t, err)
	cfg.out = buf
	startAndStop(t, cfg)

	out := buf.String()
	require.Contains(t, out, "avl in-order: 1 2 3 4 5 8 9\n")
	require.Contains(t, out, "avl level-order: 4 2 8 1 3 5 9\n")
	require.Contains(t, out, "avl height: 3 balanced: true\n")
	require.Contains(t, out, "heap sorted: 9 8 8 5 4 3 2 1\n")
}

func TestApp_PrometheusStatsAndLogFile(t *testing.T) {
	dir := t.TempDir()
	buf := &bytes.Buffer{}
	cfg, err := parseArgs([]string{
		"--log-level=info",
		"--encoder=json",
		"--stats=prometheus",
		"--log-file", filepath.Join(dir, "xbtree.log"),
		"3", "1", "2",
	}, noEnv)
	require.NoError(t, err)
	cfg.out = buf
	startAndStop(t, cfg)

	out := buf.String()
	require.Contains(t, out, "heap sorted: 3 2 1\n")
	require.Contains(t, out, "xbtree_heap_push_count")
	require.Contains(t, out, "xbtree_app_goroutines")

	data, err := os.ReadFile(filepath.Join(dir, "xbtree.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), "[xbtree] heap sorted")
}

func TestApp_ReportEmptyHeap(t *testing.T) {
	cfg := &cliConfig{
		logLevel: xlog.LogLevelError,
		stats:    observability.NoopExporter,
	}
	h := tree.NewMaxHeap()
	require.ErrorIs(t, report(cfg, h, xlog.NewNopXLogger()), tree.ErrTreeEmpty)
}
