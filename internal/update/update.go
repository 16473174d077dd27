// Package update re-records golden data from the compiler's current
// behavior. Every operation overwrites the record file unconditionally.
package update

import (
	"context"
	"fmt"
	"io"

	"yotest/internal/console"
	"yotest/internal/fixture"
	"yotest/internal/invoke"
	"yotest/internal/observ"
	"yotest/internal/record"
	"yotest/internal/runner"
	"yotest/internal/trace"
)

// AllSubcommands selects every configured subcommand.
const AllSubcommands = "all"

// Updater rewrites records next to fixtures.
type Updater struct {
	Compiler    string
	Ext         string
	Subcommands []string
	Invoker     invoke.Invoker
	Console     *console.Printer
	Timer       *observ.Timer
}

func (u *Updater) ext() string {
	if u.Ext == "" {
		return fixture.DefaultExt
	}
	return u.Ext
}

func (u *Updater) subcommands() []string {
	if len(u.Subcommands) == 0 {
		return runner.DefaultSubcommands
	}
	return u.Subcommands
}

// Output re-runs the compiler for fixturePath and subcommand with the
// recorded argv and stdin (empty when no record exists) and overwrites the
// recorded return code, stdout and stderr. With stdoutVariant the -stdout
// flag is passed, matching what a run replays.
func (u *Updater) Output(ctx context.Context, fixturePath, subcommand string, stdoutVariant bool) error {
	path := record.Path(fixturePath, subcommand, u.ext())
	tc, err := record.LoadOrEmpty(path)
	if err != nil {
		return err
	}

	ctx, span := trace.Start(ctx, trace.ScopeCase, subcommand)
	span.WithExtra("fixture", fixturePath)
	defer span.End("")

	argv := invoke.CaseCommand(u.Compiler, subcommand, fixturePath, stdoutVariant, tc.Argv)
	res, err := u.Invoker.Run(ctx, argv, tc.Stdin)
	if err != nil {
		return err
	}
	u.Timer.Add(subcommand, res.Elapsed)

	tc.ReturnCode = res.ExitCode
	tc.Stdout = res.Stdout
	tc.Stderr = res.Stderr
	u.Console.Info("Saving output to %s", path)
	return record.Save(path, tc)
}

// OutputAll runs Output with the -stdout flag for every configured subcommand.
func (u *Updater) OutputAll(ctx context.Context, fixturePath string) error {
	ctx, span := trace.Start(ctx, trace.ScopeFixture, fixturePath)
	defer span.End("")
	for _, sub := range u.subcommands() {
		if err := u.Output(ctx, fixturePath, sub, true); err != nil {
			return err
		}
	}
	return nil
}

// OutputTree updates target, a fixture or a directory walked recursively.
// subcommand AllSubcommands updates every configured subcommand through
// OutputAll; any other name updates that subcommand alone without -stdout.
func (u *Updater) OutputTree(ctx context.Context, target, subcommand string) error {
	kind, err := fixture.Resolve(target)
	if err != nil {
		return err
	}
	if subcommand != AllSubcommands {
		u.Console.Warn("Recording %s output without %s; run replays with %s, so these records will only match a plain run.", subcommand, invoke.FlagStdout, invoke.FlagStdout)
	}
	apply := func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if subcommand == AllSubcommands {
			return u.OutputAll(ctx, path)
		}
		return u.Output(ctx, path, subcommand, false)
	}
	if kind == fixture.TargetFile {
		return apply(target)
	}
	return fixture.Walk(target, u.ext(), apply)
}

// Input replaces the recorded argv and stdin of fixturePath while keeping
// the recorded output. The new stdin is read from in until end of stream.
// subcommand AllSubcommands writes the same input into the record of every
// configured subcommand.
func (u *Updater) Input(fixturePath, subcommand string, argv []string, in io.Reader) error {
	if !fixture.IsFixture(fixturePath, u.ext()) {
		return fmt.Errorf("%s: %w (want *%s)", fixturePath, fixture.ErrNotFixture, u.ext())
	}
	subs := []string{subcommand}
	if subcommand == AllSubcommands {
		subs = u.subcommands()
	}

	u.Console.Info("Provide the stdin for the test case. Press ^D when you are done.")
	stdin, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if argv == nil {
		argv = []string{}
	}

	for _, sub := range subs {
		path := record.Path(fixturePath, sub, u.ext())
		tc, err := record.LoadOrEmpty(path)
		if err != nil {
			return err
		}
		tc.Argv = argv
		tc.Stdin = stdin
		u.Console.Info("Saving input to %s", path)
		if err := record.Save(path, tc); err != nil {
			return err
		}
	}
	return nil
}
