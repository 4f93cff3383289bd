package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xbtree/lib/tree"
	"github.com/benz9527/xbtree/lib/xlog"
	"github.com/benz9527/xbtree/observability"
)

const statsInterval = 10 * time.Second

func newLogger(cfg *cliConfig) xlog.XLogger {
	opts := []xlog.XLoggerOption{
		xlog.WithXLoggerLevel(cfg.logLevel),
		xlog.WithXLoggerEncoder(cfg.encoder),
		xlog.WithXLoggerWriter(xlog.StdOut),
	}
	if len(cfg.logFile) > 0 {
		opts = append(opts, xlog.WithXLoggerTeeCore(&xlog.FileCoreConfig{
			FilePath:         filepath.Dir(cfg.logFile),
			Filename:         filepath.Base(cfg.logFile),
			FileMaxSize:      "10MB",
			FileMaxBackups:   3,
			FileCompressible: true,
		}))
	}
	return xlog.NewXLogger(opts...)
}

// metricsExporter marks the global meter provider as installed.
type metricsExporter struct {
	exporter observability.MetricsExporter
}

func newMetricsExporter(lc fx.Lifecycle, cfg *cliConfig, logger xlog.XLogger) (*metricsExporter, error) {
	shutdown, err := observability.InitMetricsExporter(cfg.stats, cfg.out, statsInterval)
	if err != nil {
		return nil, err
	}
	if cfg.stats != observability.NoopExporter {
		if err = observability.InitAppStats("cli"); err != nil {
			logger.ErrorStack(err, "[xbtree] app stats disabled")
		}
	}
	lc.Append(fx.Hook{
		OnStop: shutdown,
	})
	return &metricsExporter{exporter: cfg.stats}, nil
}

func newMaxHeap(lc fx.Lifecycle, cfg *cliConfig, logger xlog.XLogger, exporter *metricsExporter) tree.MaxHeap {
	opts := []tree.MaxHeapOption{
		tree.WithMaxHeapLogger(logger),
	}
	if exporter.exporter != observability.NoopExporter {
		opts = append(opts, tree.WithMaxHeapStats("cli"))
	}
	h := tree.NewMaxHeap(opts...)
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			h.Release()
			return nil
		},
	})
	return h
}

func setMaxProcs(lc fx.Lifecycle, logger xlog.XLogger) error {
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Logf(zapcore.DebugLevel, format, args...)
	}))
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			undo()
			return nil
		},
	})
	return nil
}

func joinInts(values []int) string {
	return strings.Join(lo.Map(values, func(v int, _ int) string {
		return fmt.Sprint(v)
	}), " ")
}

// report builds the AVL tree of the distinct values and heap sorts all of them.
func report(cfg *cliConfig, h tree.MaxHeap, logger xlog.XLogger) error {
	out := cfg.out
	if out == nil {
		out = io.Discard
	}

	distinct := lo.Uniq(cfg.values)
	root, err := tree.NewSortedAVL(distinct)
	if err != nil {
		logger.Error(err, "[xbtree] build avl tree")
		return err
	}
	_, _ = fmt.Fprintf(out, "avl in-order: %s\n", joinInts(tree.InOrder(root)))
	_, _ = fmt.Fprintf(out, "avl level-order: %s\n", joinInts(tree.LevelOrder(root)))
	_, _ = fmt.Fprintf(out, "avl height: %d balanced: %t\n", tree.Height(root), tree.IsBalancedSearchTree(root))
	logger.Info("[xbtree] avl tree built",
		zap.Int("nodes", tree.Count(root)),
		zap.Int("height", tree.Height(root)),
	)
	tree.Release(root)

	for _, v := range cfg.values {
		h.Push(v)
	}
	if err = tree.MaxHeapValidate(h.Root()); err != nil {
		logger.Error(err, "[xbtree] max heap rules violated")
		return err
	}
	sorted := make([]int, 0, len(cfg.values))
	for h.Len() > 0 {
		v, err := h.Pop()
		if err != nil {
			return err
		}
		sorted = append(sorted, v)
	}
	_, _ = fmt.Fprintf(out, "heap sorted: %s\n", joinInts(sorted))
	logger.Info("[xbtree] heap sorted", zap.Int("values", len(sorted)))
	return nil
}

func newApp(cfg *cliConfig) *fx.App {
	return fx.New(
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			newMetricsExporter,
			newMaxHeap,
		),
		fx.WithLogger(func(logger xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.RecoverFromPanics(),
		fx.Invoke(setMaxProcs, report),
		fx.Invoke(func(lc fx.Lifecycle, logger xlog.XLogger) {
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					_ = logger.Sync()
					return nil
				},
			})
		}),
	)
}
