// Package invoke runs the compiler under test as a child process and
// captures what it does.
package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"syscall"
	"time"

	shellquote "github.com/kballard/go-shellquote"
	"golang.org/x/sync/errgroup"

	"yotest/internal/console"
	"yotest/internal/trace"
)

// Result is the observable behavior of one process run.
type Result struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Elapsed  time.Duration
}

// Invoker runs a command line with the given standard input and returns
// its exit code and captured output. A non-zero exit is a result, not an
// error; errors mean the process could not be run at all.
type Invoker interface {
	Run(ctx context.Context, argv []string, stdin []byte) (*Result, error)
}

// Exec runs real processes.
type Exec struct {
	// Console receives the [CMD] echo of every command line. May be nil.
	Console *console.Printer
	// Dir is the working directory of the child; empty means the current one.
	Dir string
}

// CommandLine renders argv the way a POSIX shell would need it quoted.
func CommandLine(argv []string) string {
	return shellquote.Join(argv...)
}

// Run implements Invoker. The call blocks until the child exits; there is
// no timeout, only cancellation through ctx.
func (e *Exec) Run(ctx context.Context, argv []string, stdin []byte) (*Result, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty argv")
	}
	line := CommandLine(argv)
	e.Console.Cmd(line)

	_, span := trace.Start(ctx, trace.ScopeProcess, argv[0])
	span.WithExtra("argv", line)

	// #nosec G204 -- argv is the compiler under test with recorded arguments.
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = e.Dir

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		span.End("error")
		return nil, err
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		span.End("error")
		return nil, err
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		span.End("error")
		return nil, err
	}

	started := time.Now()
	if err := cmd.Start(); err != nil {
		span.End("error")
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}

	var stdout, stderr bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		defer func() {
			_ = stdinPipe.Close() //nolint:errcheck
		}()
		if _, err := stdinPipe.Write(stdin); err != nil && !isClosedPipe(err) {
			return fmt.Errorf("write stdin: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		_, err := io.Copy(&stdout, stdoutPipe)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&stderr, stderrPipe)
		return err
	})
	pumpErr := g.Wait()
	waitErr := cmd.Wait()
	elapsed := time.Since(started)

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		span.End("error")
		return nil, fmt.Errorf("wait %s: %w", argv[0], waitErr)
	}
	if pumpErr != nil {
		span.End("error")
		return nil, pumpErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		span.End("cancelled")
		return nil, ctxErr
	}

	res := &Result{
		ExitCode: exitCode(cmd.ProcessState),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Elapsed:  elapsed,
	}
	span.WithExtra("exit", strconv.Itoa(res.ExitCode)).End("")
	return res, nil
}

// exitCode returns the exit status, or the negated signal number for a
// child killed by a signal.
func exitCode(state *os.ProcessState) int {
	if state == nil {
		return -1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -int(ws.Signal())
	}
	return state.ExitCode()
}

func isClosedPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed)
}
