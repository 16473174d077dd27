package ui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"yotest/internal/runner"
)

// RunWithProgress runs work on a separate goroutine while the progress view
// renders its events to out. work must only report through sink; the
// channel is closed when work returns.
func RunWithProgress(out io.Writer, title string, files []string, subcommands int, work func(sink runner.EventSink) error) error {
	events := make(chan runner.Event, 256)
	workErr := make(chan error, 1)

	go func() {
		err := work(runner.ChannelSink{Ch: events})
		close(events)
		workErr <- err
	}()

	program := tea.NewProgram(NewProgressModel(title, files, subcommands, events), tea.WithOutput(out), tea.WithInput(nil))
	_, uiErr := program.Run()
	// The view may quit early; keep draining so work can finish.
	for range events {
	}
	err := <-workErr
	if uiErr != nil {
		return uiErr
	}
	return err
}
