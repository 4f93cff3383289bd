package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/fx"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := parseArgs(args, os.Getenv)
	if errors.Is(err, pflag.ErrHelp) {
		_, _ = fmt.Fprintln(os.Stdout, "Usage: xbtree [--log-level L] [--encoder json|text] [--log-file F] [--stats[=console|prometheus]] [--] <int>...")
		return 0
	} else if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 2
	}
	cfg.out = os.Stdout

	app := newApp(cfg)
	startCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err = app.Start(startCtx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 1
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancel()
	if err = app.Stop(stopCtx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
