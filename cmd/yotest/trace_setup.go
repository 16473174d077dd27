package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"yotest/internal/trace"
)

// setupTracing initializes the tracer from the trace flags and attaches it
// to the command context. The returned cleanup stops the heartbeat and
// flushes the output.
func setupTracing(cmd *cobra.Command, c *cli) (func(), error) {
	level, err := trace.ParseLevel(c.traceLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	// An output without an explicit level means "trace the phases".
	if level == trace.LevelOff && c.traceOutput != "" && !cmd.Flags().Changed("trace-level") {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		return func() {}, nil
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		OutputPath: c.traceOutput,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx, span := trace.Start(trace.WithTracer(cmd.Context(), tracer), trace.ScopeDriver, cmd.CommandPath())
	cmd.SetContext(ctx)

	heartbeat := trace.StartHeartbeat(tracer, c.traceHeartbeat)

	return func() {
		heartbeat.Stop()
		span.End("")
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(c.stderr, "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(c.stderr, "trace: close error: %v\n", err)
		}
	}, nil
}
