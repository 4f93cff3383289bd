package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/benz9527/xbtree/lib/infra"
	"github.com/benz9527/xbtree/lib/xlog"
	"github.com/benz9527/xbtree/observability"
)

const (
	envLogLevel = "XBTREE_LOG_LEVEL"
	envStats    = "XBTREE_STATS"
)

type cliConfig struct {
	logLevel xlog.LogLevel
	encoder  xlog.LogEncoderType
	logFile  string
	stats    observability.MetricsExporter
	values   []int
	out      io.Writer
}

func usage(fs *pflag.FlagSet) string {
	return fmt.Sprintf("Usage: xbtree [flags] [--] <int>...\n%s", fs.FlagUsages())
}

// parseArgs reads the flags first, the environment fills the flags left unset.
// Negative values have to follow "--".
func parseArgs(args []string, getenv func(string) string) (*cliConfig, error) {
	fs := pflag.NewFlagSet("xbtree", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	logLevel := fs.String("log-level", "WARN", "log level, one of DEBUG, INFO, WARN, ERROR (env "+envLogLevel+")")
	encoder := fs.String("encoder", "text", "log encoder, json or text")
	logFile := fs.String("log-file", "", "also write the logs into this size rotated file")
	stats := fs.String("stats", "none", "metrics exporter, one of none, console, prometheus (env "+envStats+")")
	fs.Lookup("stats").NoOptDefVal = string(observability.ConsoleExporter)

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil, err
		}
		return nil, infra.WrapErrorStackWithMessage(err, usage(fs))
	}
	if !fs.Changed("log-level") && getenv != nil {
		if v := getenv(envLogLevel); len(v) > 0 {
			*logLevel = v
		}
	}
	if !fs.Changed("stats") && getenv != nil {
		if v := getenv(envStats); len(v) > 0 {
			*stats = v
		}
	}

	cfg := &cliConfig{
		logLevel: xlog.ParseLogLevel(*logLevel),
		logFile:  strings.TrimSpace(*logFile),
	}
	switch strings.ToLower(strings.TrimSpace(*encoder)) {
	case "json":
		cfg.encoder = xlog.JSON
	case "text", "plain":
		cfg.encoder = xlog.PlainText
	default:
		return nil, infra.NewErrorStack("unknown log encoder " + *encoder)
	}
	exporter, err := observability.ParseMetricsExporter(*stats)
	if err != nil {
		return nil, err
	}
	cfg.stats = exporter

	if fs.NArg() == 0 {
		return nil, infra.NewErrorStack("at least one integer is required\n" + usage(fs))
	}
	cfg.values = make([]int, 0, fs.NArg())
	for _, arg := range fs.Args() {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, infra.WrapErrorStackWithMessage(err, "invalid integer "+arg)
		}
		cfg.values = append(cfg.values, v)
	}
	return cfg, nil
}
