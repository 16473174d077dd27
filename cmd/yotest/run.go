package main

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"yotest/internal/console"
	"yotest/internal/fixture"
	"yotest/internal/report"
	"yotest/internal/runner"
	"yotest/internal/trace"
	"yotest/internal/ui"
	"yotest/internal/version"
)

type runOptions struct {
	failed bool
	report string
	ui     uiMode
}

func newRunCmd(c *cli) *cobra.Command {
	var (
		failed bool
		out    string
		uiFlag string
	)
	cmd := &cobra.Command{
		Use:     "run [TARGET]",
		Aliases: []string{"test"},
		Short:   "Run the tests on a fixture or a folder of fixtures",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := readUIMode(uiFlag)
			if err != nil {
				return err
			}
			target := ""
			if len(args) > 0 {
				target = args[0]
			}
			return c.runTarget(cmd.Context(), target, runOptions{failed: failed, report: out, ui: mode})
		},
	}
	cmd.Flags().BoolVar(&failed, "failed", false, "re-run only the fixtures that failed last time")
	cmd.Flags().StringVar(&out, "report", "", "write a canonical JSON report to this file")
	cmd.Flags().StringVar(&uiFlag, "ui", "auto", "progress view (auto|on|off)")
	return cmd
}

func newFullCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "full",
		Aliases: []string{"all"},
		Short:   "Test and type check everything (for CI)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTarget(cmd.Context(), "", runOptions{ui: uiModeOff})
		},
	}
}

// runTarget evaluates target (the configured default when empty), prints
// the summary and fails when any case failed.
func (c *cli) runTarget(ctx context.Context, target string, opts runOptions) error {
	if target == "" {
		target = c.cfg.Fixtures.Target
	}
	if opts.ui == "" {
		opts.ui = uiModeOff
	}

	var files []string
	if opts.failed {
		last := c.lastRun()
		files = last.Failed()
		if len(files) == 0 {
			c.console.Info("No failed fixtures recorded for %s", c.cfg.Root())
			return nil
		}
	}

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "run")
	span.WithExtra("target", target)
	stats := runner.NewRunStats()
	idx := c.timer.Begin("run")

	var err error
	if shouldUseTUI(opts.ui, c.stdout) {
		err = c.runWithUI(ctx, target, files, stats)
	} else {
		r := c.newRunner(c.console)
		err = evaluate(ctx, r, target, files, stats)
	}
	c.timer.End(idx, fmt.Sprintf("%d cases", stats.Cases()))
	span.End(fmt.Sprintf("failed=%d ignored=%d", stats.Failed, stats.Ignored))
	if err != nil {
		return err
	}

	if err := runner.WriteSummary(c.stdout, stats); err != nil {
		return err
	}
	c.saveLastRun(target, stats)
	if opts.report != "" {
		if err := report.New(version.String(), target, stats).WriteFile(opts.report); err != nil {
			return err
		}
	}
	c.printTimings()
	if !stats.OK() {
		return errFailed
	}
	return nil
}

func evaluate(ctx context.Context, r *runner.Runner, target string, files []string, stats *runner.RunStats) error {
	if files != nil {
		return r.RunFiles(ctx, files, stats)
	}
	return r.Run(ctx, target, stats)
}

// runWithUI shows the progress view while the run goes on in the
// background. Console output is held back and printed once the view exits.
func (c *cli) runWithUI(ctx context.Context, target string, files []string, stats *runner.RunStats) error {
	shown := files
	if shown == nil {
		kind, err := fixture.Resolve(target)
		if err != nil {
			return err
		}
		shown = []string{target}
		if kind == fixture.TargetDir {
			if shown, err = fixture.Collect(target, c.cfg.Fixtures.Ext); err != nil {
				return err
			}
		}
	}

	var held bytes.Buffer
	p := console.New(&held, c.stderr, c.quiet)
	r := c.newRunner(p)
	err := ui.RunWithProgress(c.stdout, "yotest run "+target, shown, len(c.cfg.Fixtures.Subcommands), func(sink runner.EventSink) error {
		r.Events = sink
		return evaluate(ctx, r, target, files, stats)
	})
	if _, werr := c.stdout.Write(held.Bytes()); werr != nil && err == nil {
		err = werr
	}
	return err
}

func (c *cli) openCache() *report.Cache {
	cache, err := report.OpenCache("yotest")
	if err != nil {
		c.console.Warn("last-run cache unavailable: %v", err)
		return nil
	}
	return cache
}

func (c *cli) lastRun() *report.LastRun {
	last, ok, err := c.openCache().Get(c.cfg.Root())
	if err != nil {
		c.console.Warn("could not read last run: %v", err)
		return nil
	}
	if !ok {
		return nil
	}
	return last
}

func (c *cli) saveLastRun(target string, stats *runner.RunStats) {
	err := c.openCache().Put(&report.LastRun{
		Root:        c.cfg.Root(),
		Target:      target,
		FailedFiles: stats.FailedFiles,
		Finished:    time.Now().UTC(),
	})
	if err != nil {
		c.console.Warn("could not save last run: %v", err)
	}
}
