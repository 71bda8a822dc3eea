package main

import (
	"context"
	"flag"
	"time"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/kmordo/tearcheck"
)

// runCmd implements subcommands.Command for the "run" command.
type runCmd struct {
	workers      int
	iters        int
	repr         string
	skipInstance bool
	timeout      time.Duration
}

// Name implements subcommands.Command.
func (*runCmd) Name() string {
	return "run"
}

// Synopsis implements subcommands.Command.
func (*runCmd) Synopsis() string {
	return "race workers over the shared pair locations and watch for torn reads"
}

// Usage implements subcommands.Command.
func (*runCmd) Usage() string {
	return `run [-workers N] [-iters N] [-repr packed|boxed|seq|loose] [-skip-instance] [-timeout D]
`
}

// SetFlags implements subcommands.Command.
func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.workers, "workers", tearcheck.DefaultWorkers, "number of racing workers")
	f.IntVar(&c.iters, "iters", tearcheck.DefaultIterations, "iterations per worker")
	f.StringVar(&c.repr, "repr", string(tearcheck.Packed), "pair representation under test")
	f.BoolVar(&c.skipInstance, "skip-instance", false, "exclude the per-harness location")
	f.DurationVar(&c.timeout, "timeout", 0, "abort the run after this duration (0 = no limit)")
}

// Execute implements subcommands.Command.
func (c *runCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	h, err := tearcheck.New(tearcheck.Config{
		Workers:      c.workers,
		Iterations:   c.iters,
		Repr:         tearcheck.Representation(c.repr),
		SkipInstance: c.skipInstance,
	})
	if err != nil {
		logrus.Error(err)
		return subcommands.ExitUsageError
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	log := logrus.WithFields(logrus.Fields{
		"workers": c.workers,
		"iters":   c.iters,
		"repr":    c.repr,
	})

	start := time.Now()
	if err := h.Run(ctx); err != nil {
		log.WithField("after", time.Since(start).Round(time.Millisecond)).Error(err)
		return subcommands.ExitFailure
	}
	log.WithField("duration", time.Since(start).Round(time.Millisecond)).Info("no torn reads observed")
	return subcommands.ExitSuccess
}
