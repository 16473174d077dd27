// Package trace records what the driver is doing while it walks fixtures.
//
// A hung compiler process hangs the whole run, so spans around every
// fixture, case and child process (plus an optional heartbeat) make it
// possible to see where a run got stuck.
//
// # Usage
//
//	yotest run --trace=- --trace-level=detail Example/
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Nothing is streamed
//   - LevelPhase: Driver and fixture boundaries
//   - LevelDetail: Per-subcommand cases
//   - LevelDebug: Everything including child processes
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopeFixture, path, parentID)
//	defer span.End("")
package trace
