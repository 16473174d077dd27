package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"yotest/internal/config"
	"yotest/internal/console"
	"yotest/internal/invoke"
	"yotest/internal/observ"
	"yotest/internal/runner"
	"yotest/internal/trace"
	"yotest/internal/update"
)

// skipBuildAnnotation marks commands that never need a fresh compiler.
const skipBuildAnnotation = "yotest/skip-build"

// cli holds the flag values and the state shared by all subcommands of one
// invocation.
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	colorFlag      string
	quiet          bool
	timings        bool
	noBuild        bool
	compiler       string
	configPath     string
	traceOutput    string
	traceLevel     string
	traceHeartbeat time.Duration

	cfg     *config.Config
	console *console.Printer
	timer   *observ.Timer
	cleanup []func()
}

func newCLI(stdin io.Reader, stdout, stderr io.Writer) *cli {
	return &cli{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		cfg:    config.Default(),
		timer:  observ.NewTimer(),
	}
}

// setup runs before every subcommand: output colors, configuration,
// tracing and the compiler build step.
func (c *cli) setup(cmd *cobra.Command) error {
	mode, err := console.ParseColorMode(c.colorFlag)
	if err != nil {
		return err
	}
	c.applyColor(mode)
	c.console = console.New(c.stdout, c.stderr, c.quiet)

	cfg, err := config.Load(c.configPath, ".")
	if err != nil {
		return err
	}
	if c.compiler != "" {
		cfg.Compiler.Path = c.compiler
	}
	c.cfg = cfg

	cleanup, err := setupTracing(cmd, c)
	if err != nil {
		return err
	}
	c.cleanup = append(c.cleanup, cleanup)

	if c.noBuild || cmd.Annotations[skipBuildAnnotation] == "true" {
		return nil
	}
	return c.buildCompiler(cmd)
}

func (c *cli) applyColor(mode console.ColorMode) {
	if mode == console.ColorAuto {
		f, ok := c.stdout.(*os.File)
		if !ok || !console.IsTerminal(f) {
			mode = console.ColorOff
		}
	}
	console.ApplyColorMode(mode)
}

// buildCompiler runs the configured build command, echoed like every other
// child process. Its output is passed through.
func (c *cli) buildCompiler(cmd *cobra.Command) error {
	argv := c.cfg.Compiler.Build
	if len(argv) == 0 {
		return nil
	}
	ctx, span := trace.Start(cmd.Context(), trace.ScopeDriver, "build")
	idx := c.timer.Begin("build")
	res, err := c.invoker(c.console).Run(ctx, argv, nil)
	if err != nil {
		c.timer.End(idx, "error")
		span.End("error")
		return fmt.Errorf("build step: %w", err)
	}
	c.timer.End(idx, "")
	trace.Point(trace.FromContext(ctx), trace.ScopeDriver, "build-exit", strconv.Itoa(res.ExitCode), span.ID())
	span.End("")
	if _, err := c.stdout.Write(res.Stdout); err != nil {
		return err
	}
	if _, err := c.stderr.Write(res.Stderr); err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return errFailed
	}
	return nil
}

func (c *cli) invoker(p *console.Printer) invoke.Invoker {
	return &invoke.Exec{Console: p}
}

func (c *cli) newRunner(p *console.Printer) *runner.Runner {
	return &runner.Runner{
		Compiler:    c.cfg.Compiler.Path,
		Ext:         c.cfg.Fixtures.Ext,
		Subcommands: c.cfg.Fixtures.Subcommands,
		Invoker:     c.invoker(p),
		Console:     p,
		Timer:       c.timer,
	}
}

func (c *cli) newUpdater() *update.Updater {
	return &update.Updater{
		Compiler:    c.cfg.Compiler.Path,
		Ext:         c.cfg.Fixtures.Ext,
		Subcommands: c.cfg.Fixtures.Subcommands,
		Invoker:     c.invoker(c.console),
		Console:     c.console,
		Timer:       c.timer,
	}
}

// printTimings writes the timer summary when --timings is set.
func (c *cli) printTimings() {
	if !c.timings {
		return
	}
	fmt.Fprint(c.stdout, c.timer.Summary())
}

// usage prints the top-level help text to stdout.
func (c *cli) usage() {
	ext := c.cfg.Fixtures.Ext
	target := c.cfg.Fixtures.Target
	fmt.Fprintf(c.stdout, `Usage: yotest [SUBCOMMAND]
  Run or update the tests. The default [SUBCOMMAND] is 'run'.

  SUBCOMMAND:
    run [TARGET]
      Run the test on the [TARGET]. The [TARGET] is either a *%[1]s file or 
      folder with *%[1]s files. The default [TARGET] is '%[2]s'.

    update [SUBSUBCOMMAND]
      Update the input or output of the tests.
      The default [SUBSUBCOMMAND] is 'output'

      SUBSUBCOMMAND:
        input <TARGET>
          Update the input of the <TARGET>. The <TARGET> can only be
          a *%[1]s file.

        output [TARGET] [TYPE]
          Update the output of the [TARGET]. The [TARGET] is either a *%[1]s
          file or folder with *%[1]s files. The default [TARGET] is
          '%[2]s'

    full (synonyms: all)
      Test and type check everything. (Should be run on CI)

    version
      Print version information.

    help
      Print this message to stdout and exit with 0 code.
`, ext, target)
}

func (c *cli) close() {
	for i := len(c.cleanup) - 1; i >= 0; i-- {
		c.cleanup[i]()
	}
	c.cleanup = nil
}
