package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/setstate/cmd/setstate/internal/store"
	"github.com/go-drift/setstate/pkg/cell"
	"github.com/go-drift/setstate/pkg/core"
	"github.com/go-drift/setstate/pkg/engine"
)

type counterOptions struct {
	interval  time.Duration
	ticks     int
	stateFile string
}

func newCounterCommand(global *globalOptions) *cobra.Command {
	opts := &counterOptions{}

	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Run an interval driven counter",
		Long: `Run a counter whose value is advanced by an updater function on
every tick. The change callback writes the value into the terminal
title; it does not run for the starting value.

With --state-file the final value is saved and used as the starting
value of the next run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := global.cfg
			flags := cmd.Flags()
			if !flags.Changed("interval") {
				opts.interval = cfg.Interval
			}
			if !flags.Changed("ticks") {
				opts.ticks = cfg.Ticks
			}
			if !flags.Changed("state-file") {
				opts.stateFile = cfg.StateFile
			}
			if opts.interval <= 0 {
				return fmt.Errorf("--interval must be positive (got %s)", opts.interval)
			}
			if opts.ticks < 0 {
				return fmt.Errorf("--ticks cannot be negative (got %d)", opts.ticks)
			}
			return runCounter(cmd.Context(), cmd.OutOrStdout(), global.logger, cfg.TitleFormat, opts)
		},
	}

	flags := cmd.Flags()
	flags.DurationVar(&opts.interval, "interval", 0, "time between ticks (default from config, 1s)")
	flags.IntVar(&opts.ticks, "ticks", 0, "stop after this many ticks, 0 runs until interrupted")
	flags.StringVar(&opts.stateFile, "state-file", "", "file the counter value is loaded from and saved to")
	return cmd
}

// counterState holds a counter cell the way a component would.
type counterState struct {
	core.StateBase
	start       int
	titleFormat string
	out         io.Writer
	logger      *zap.Logger

	count *cell.Cell[int]
}

func (s *counterState) InitState() {
	s.count = core.UseSetStateFunc(s, func() int { return s.start }, s.onChange, cell.WithName("counter"))
}

func (s *counterState) Build() {
	fmt.Fprintf(s.out, "Interval based timer updater function: %d\n", s.count.Value())
}

func (s *counterState) onChange(n int) {
	fmt.Fprintf(s.out, "\033]0;%s\007", fmt.Sprintf(s.titleFormat, n))
	s.logger.Info("counter changed", zap.Int("value", n))
}

func increment(n int) int {
	return n + 1
}

func runCounter(ctx context.Context, out io.Writer, logger *zap.Logger, titleFormat string, opts *counterOptions) error {
	start := 0
	if opts.stateFile != "" {
		v, ok, err := store.Load[int](opts.stateFile)
		if err != nil {
			return err
		}
		if ok {
			start = v
			logger.Debug("restored counter", zap.String("file", opts.stateFile), zap.Int("value", v))
		}
	}

	s := &counterState{start: start, titleFormat: titleFormat, out: out, logger: logger}
	r := engine.NewRunner()
	r.Mount(s)
	r.StepFrame()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		ticker := time.NewTicker(opts.interval)
		defer ticker.Stop()
		for n := 0; opts.ticks == 0 || n < opts.ticks; n++ {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
			}
			r.Dispatch(func() { s.count.Update(increment) })
		}
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	// The loop has stopped; settle whatever the last ticks queued.
	r.StepFrame()
	final := s.count.Value()
	r.Unmount(s)
	r.StepFrame()

	logger.Debug("counter stopped", zap.Int("value", final), zap.Int64("frames", r.Frames()))
	if opts.stateFile != "" {
		if err := store.Save(opts.stateFile, final); err != nil {
			return err
		}
	}
	return nil
}
