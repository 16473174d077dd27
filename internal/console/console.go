// Package console prints the driver's human-readable progress lines.
//
// Every line starts with a bracketed tag ([INFO], [WARNING], [ERROR], [CMD])
// colored with fatih/color; --quiet drops the INFO and CMD chatter while
// warnings, errors and summaries are always shown.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
	"golang.org/x/text/encoding/unicode"
)

var (
	infoColor  = color.New(color.FgCyan, color.Bold)
	warnColor  = color.New(color.FgYellow, color.Bold)
	errorColor = color.New(color.FgRed, color.Bold)
	cmdColor   = color.New(color.FgBlue)
)

// Printer writes tagged lines to an output and an error stream.
// It is safe for concurrent use.
type Printer struct {
	mu    sync.Mutex
	out   io.Writer
	err   io.Writer
	quiet bool
}

// New returns a Printer writing regular lines to out and fatal errors to errOut.
func New(out, errOut io.Writer, quiet bool) *Printer {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	return &Printer{out: out, err: errOut, quiet: quiet}
}

// Discard returns a Printer that drops everything.
func Discard() *Printer {
	return New(io.Discard, io.Discard, true)
}

// Out returns the regular output stream.
func (p *Printer) Out() io.Writer {
	if p == nil {
		return io.Discard
	}
	return p.out
}

func (p *Printer) line(w io.Writer, c *color.Color, tag, format string, args ...any) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(w, "%s %s\n", c.Sprint(tag), fmt.Sprintf(format, args...)) //nolint:errcheck
}

// Info prints an [INFO] line unless the printer is quiet.
func (p *Printer) Info(format string, args ...any) {
	if p == nil || p.quiet {
		return
	}
	p.line(p.out, infoColor, "[INFO]", format, args...)
}

// Warn prints a [WARNING] line.
func (p *Printer) Warn(format string, args ...any) {
	if p == nil {
		return
	}
	p.line(p.out, warnColor, "[WARNING]", format, args...)
}

// Error prints an [ERROR] line on the regular output.
func (p *Printer) Error(format string, args ...any) {
	if p == nil {
		return
	}
	p.line(p.out, errorColor, "[ERROR]", format, args...)
}

// Fatal prints an [ERROR] line on the error stream.
func (p *Printer) Fatal(format string, args ...any) {
	if p == nil {
		return
	}
	p.line(p.err, errorColor, "[ERROR]", format, args...)
}

// Cmd echoes an external command line unless the printer is quiet.
func (p *Printer) Cmd(commandLine string) {
	if p == nil || p.quiet {
		return
	}
	p.line(p.out, cmdColor, "[CMD]", "%s", commandLine)
}

// Println writes an untagged line.
func (p *Printer) Println(args ...any) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.out, args...) //nolint:errcheck
}

// Printf writes untagged formatted text.
func (p *Printer) Printf(format string, args ...any) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, format, args...) //nolint:errcheck
}

// Text renders captured process output for display. Invalid UTF-8 is
// replaced with U+FFFD so binary output cannot break the terminal.
func Text(b []byte) string {
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}

// ColorMode selects when output is colorized.
type ColorMode string

const (
	ColorAuto ColorMode = "auto"
	ColorOn   ColorMode = "on"
	ColorOff  ColorMode = "off"
)

// ParseColorMode validates a --color value.
func ParseColorMode(value string) (ColorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return ColorAuto, nil
	case "on":
		return ColorOn, nil
	case "off":
		return ColorOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// ApplyColorMode sets the global fatih/color switch.
func ApplyColorMode(mode ColorMode) {
	switch mode {
	case ColorOn:
		color.NoColor = false
	case ColorOff:
		color.NoColor = true
	default:
		color.NoColor = !IsTerminal(os.Stdout)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
