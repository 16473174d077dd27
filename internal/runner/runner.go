// Package runner replays golden records against the compiler under test and
// accumulates the results of a run.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"yotest/internal/console"
	"yotest/internal/fixture"
	"yotest/internal/invoke"
	"yotest/internal/observ"
	"yotest/internal/record"
	"yotest/internal/trace"
)

// DefaultSubcommands is the ordered set of compiler modes checked per fixture.
var DefaultSubcommands = []string{"lex", "parse", "check"}

// Runner evaluates fixtures. The zero value is not usable; set at least
// Compiler and Invoker.
type Runner struct {
	Compiler    string
	Ext         string   // fixture extension, fixture.DefaultExt when empty
	Subcommands []string // DefaultSubcommands when empty
	// Plain drops the -stdout flag from replayed command lines.
	Plain   bool
	Invoker invoke.Invoker
	Console *console.Printer
	Events  EventSink
	Timer   *observ.Timer
}

func (r *Runner) ext() string {
	if r.Ext == "" {
		return fixture.DefaultExt
	}
	return r.Ext
}

func (r *Runner) subcommands() []string {
	if len(r.Subcommands) == 0 {
		return DefaultSubcommands
	}
	return r.Subcommands
}

func (r *Runner) emit(ev Event) {
	if r.Events != nil {
		r.Events.OnEvent(ev)
	}
}

// Evaluate replays the record of fixturePath for subcommand and adds the
// outcome to stats. Mismatches and failed builds are recorded in stats; the
// returned error is reserved for conditions that must stop the whole run
// (a malformed record, a compiler that cannot be started).
func (r *Runner) Evaluate(ctx context.Context, fixturePath, subcommand string, stats *RunStats) error {
	if err := fixture.CheckFile(fixturePath, r.ext()); err != nil {
		return err
	}
	r.Console.Info("Testing %s, With Subcommand %s", fixturePath, subcommand)
	r.emit(Event{File: fixturePath, Subcommand: subcommand, Status: StatusWorking})

	ctx, span := trace.Start(ctx, trace.ScopeCase, subcommand)
	span.WithExtra("fixture", fixturePath)

	res, err := r.evaluate(ctx, fixturePath, subcommand)
	if err != nil {
		span.End("error")
		return err
	}
	stats.record(res)
	r.emit(Event{File: fixturePath, Subcommand: subcommand, Status: statusFor(res.Outcome)})
	span.WithExtra("exit", strconv.Itoa(res.ExitCode)).End(string(res.Outcome))
	return nil
}

func (r *Runner) evaluate(ctx context.Context, fixturePath, subcommand string) (CaseResult, error) {
	res := CaseResult{Fixture: fixturePath, Subcommand: subcommand}

	tc, err := record.Load(record.Path(fixturePath, subcommand, r.ext()))
	if errors.Is(err, record.ErrNotFound) {
		return r.buildOnly(ctx, res)
	}
	if err != nil {
		return res, err
	}

	argv := invoke.CaseCommand(r.Compiler, subcommand, fixturePath, !r.Plain, tc.Argv)
	actual, err := r.Invoker.Run(ctx, argv, tc.Stdin)
	if err != nil {
		return res, err
	}
	r.Timer.Add(subcommand, actual.Elapsed)
	res.ExitCode = actual.ExitCode
	res.Elapsed = actual.Elapsed

	if Matches(tc, actual) {
		res.Outcome = OutcomePassed
		return res, nil
	}
	res.Outcome = OutcomeFailed
	r.reportMismatch(tc, actual)
	return res, nil
}

// buildOnly is the fallback when no record exists: only compilation success
// is checked.
func (r *Runner) buildOnly(ctx context.Context, res CaseResult) (CaseResult, error) {
	r.Console.Warn("Could not find any input/output data for %s. Ignoring testing. Only checking if it compiles.", res.Fixture)
	actual, err := r.Invoker.Run(ctx, invoke.BuildCommand(r.Compiler, res.Fixture), nil)
	if err != nil {
		return res, err
	}
	r.Timer.Add(invoke.BuildSubcommand, actual.Elapsed)
	res.ExitCode = actual.ExitCode
	res.Elapsed = actual.Elapsed
	if actual.ExitCode == 0 {
		res.Outcome = OutcomeIgnored
		return res, nil
	}
	res.Outcome = OutcomeBuildFailed
	r.Console.Error("%s does not compile (exit code %d)", res.Fixture, actual.ExitCode)
	if len(actual.Stdout) > 0 {
		r.Console.Printf("%s", console.Text(actual.Stdout))
	}
	if len(actual.Stderr) > 0 {
		r.Console.Printf("%s", console.Text(actual.Stderr))
	}
	return res, nil
}

// Matches compares exit code, stdout and stderr exactly and independently.
func Matches(tc *record.TestCase, actual *invoke.Result) bool {
	return actual.ExitCode == tc.ReturnCode &&
		bytes.Equal(actual.Stdout, tc.Stdout) &&
		bytes.Equal(actual.Stderr, tc.Stderr)
}

func (r *Runner) reportMismatch(tc *record.TestCase, actual *invoke.Result) {
	r.Console.Error("Unexpected output")
	r.Console.Printf("  Expected:\n")
	r.printTriple(tc.ReturnCode, tc.Stdout, tc.Stderr)
	r.Console.Printf("  Actual:\n")
	r.printTriple(actual.ExitCode, actual.Stdout, actual.Stderr)
}

func (r *Runner) printTriple(code int, stdout, stderr []byte) {
	r.Console.Printf("    return code: %d\n", code)
	r.Console.Printf("    stdout: \n%s\n", console.Text(stdout))
	r.Console.Printf("    stderr: \n%s\n", console.Text(stderr))
}

// EvaluateAll runs Evaluate for every configured subcommand, in order.
func (r *Runner) EvaluateAll(ctx context.Context, fixturePath string, stats *RunStats) error {
	ctx, span := trace.Start(ctx, trace.ScopeFixture, fixturePath)
	failedBefore := stats.Failed
	ignoredBefore := stats.Ignored
	for _, sub := range r.subcommands() {
		if err := r.Evaluate(ctx, fixturePath, sub, stats); err != nil {
			span.End("error")
			return err
		}
	}
	status := StatusPassed
	switch {
	case stats.Failed > failedBefore:
		status = StatusFailed
	case stats.Ignored > ignoredBefore:
		status = StatusIgnored
	}
	r.emit(Event{File: fixturePath, Status: status})
	span.End(string(status))
	return nil
}

// Run evaluates target: a single fixture file, or every fixture found under
// a directory. Targets that are neither yield *fixture.InvalidTargetError.
func (r *Runner) Run(ctx context.Context, target string, stats *RunStats) error {
	if stats == nil {
		return fmt.Errorf("runner: nil stats")
	}
	kind, err := fixture.Resolve(target)
	if err != nil {
		return err
	}
	if kind == fixture.TargetFile {
		return r.EvaluateAll(ctx, target, stats)
	}
	return fixture.Walk(target, r.ext(), func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return r.EvaluateAll(ctx, path, stats)
	})
}

// RunFiles evaluates an explicit list of fixtures in the given order.
func (r *Runner) RunFiles(ctx context.Context, files []string, stats *RunStats) error {
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.EvaluateAll(ctx, path, stats); err != nil {
			return err
		}
	}
	return nil
}
