package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"yotest/internal/console"
	"yotest/internal/version"
)

// exitError ends the process with code without printing anything more.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return "exit status " + strconv.Itoa(e.code)
}

var errFailed = &exitError{code: 1}

// newRootCmd wires every subcommand around one cli state.
func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "yotest [SUBCOMMAND]",
		Short:         "Golden-record regression tests for the yot compiler",
		Version:       version.String(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				c.usage()
				return fmt.Errorf("unknown subcommand `%s`", args[0])
			}
			return c.runTarget(cmd.Context(), "", runOptions{})
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.colorFlag, "color", "auto", "colorize output (auto|on|off)")
	flags.BoolVar(&c.quiet, "quiet", false, "suppress [INFO] and [CMD] lines")
	flags.BoolVar(&c.timings, "timings", false, "show timing information")
	flags.BoolVar(&c.noBuild, "no-build", false, "skip the compiler build step")
	flags.StringVar(&c.compiler, "compiler", "", "compiler executable (overrides yotest.toml)")
	flags.StringVar(&c.configPath, "config", "", "path to yotest.toml")
	flags.StringVar(&c.traceOutput, "trace", "", "trace output file (- for stderr)")
	flags.StringVar(&c.traceLevel, "trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.DurationVar(&c.traceHeartbeat, "trace-heartbeat", 0, "emit a heartbeat trace event at this interval")

	rootCmd.AddCommand(newRunCmd(c))
	rootCmd.AddCommand(newFullCmd(c))
	rootCmd.AddCommand(newUpdateCmd(c))
	rootCmd.AddCommand(newVersionCmd(c))

	helpCmd := &cobra.Command{
		Use:         "help",
		Short:       "Print usage and exit",
		Args:        cobra.ArbitraryArgs,
		Annotations: map[string]string{skipBuildAnnotation: "true"},
		Run: func(*cobra.Command, []string) {
			c.usage()
		},
	}
	rootCmd.SetHelpCommand(helpCmd)
	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd == rootCmd {
			c.usage()
			return
		}
		defaultHelp(cmd, args)
	})
	rootCmd.SetOut(c.stdout)
	rootCmd.SetErr(c.stderr)
	rootCmd.SetIn(c.stdin)
	return rootCmd
}

// execute runs the CLI with args and returns the process exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	c := newCLI(stdin, stdout, stderr)
	defer c.close()

	rootCmd := newRootCmd(c)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	console.New(stdout, stderr, false).Fatal("%v", err)
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
