// Package ui renders a live view of a directory run in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"yotest/internal/runner"
)

type progressModel struct {
	title       string
	events      <-chan runner.Event
	spinner     spinner.Model
	prog        progress.Model
	items       []fixtureItem
	index       map[string]int
	subcommands int
	width       int
	done        bool
}

type fixtureItem struct {
	path     string
	status   runner.Status
	current  string // subcommand being evaluated
	finished int    // subcommands evaluated so far
}

type eventMsg runner.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that shows one line per
// fixture and an overall progress bar. subcommands is the number of cases
// evaluated per fixture.
func NewProgressModel(title string, files []string, subcommands int, events <-chan runner.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fixtureItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fixtureItem{path: file, status: runner.StatusQueued})
		index[file] = i
	}
	if subcommands <= 0 {
		subcommands = 1
	}
	return &progressModel{
		title:       title,
		events:      events,
		spinner:     sp,
		prog:        prog,
		items:       items,
		index:       index,
		subcommands: subcommands,
		width:       80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(runner.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		pm, cmd := m.prog.Update(msg)
		m.prog = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	const statusWidth = 12
	nameWidth := max(m.width-statusWidth-4, 20)

	for _, item := range m.items {
		label := statusLabel(item)
		status := styleStatus(item.status).Render(fmt.Sprintf("%12s", label))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(item.path, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev runner.Event) tea.Cmd {
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	item := &m.items[idx]
	switch {
	case ev.Subcommand == "":
		item.status = ev.Status
		item.current = ""
		item.finished = m.subcommands
	case ev.Status == runner.StatusWorking:
		if item.status == runner.StatusQueued {
			item.status = runner.StatusWorking
		}
		item.current = ev.Subcommand
	default:
		item.finished++
	}
	return m.prog.SetPercent(m.fraction())
}

// fraction is the share of all cases evaluated so far.
func (m *progressModel) fraction() float64 {
	if len(m.items) == 0 {
		return 0
	}
	total := 0
	for _, item := range m.items {
		total += min(item.finished, m.subcommands)
	}
	return float64(total) / float64(len(m.items)*m.subcommands)
}

func statusLabel(item fixtureItem) string {
	if item.status == runner.StatusWorking && item.current != "" {
		return item.current
	}
	return string(item.status)
}

func styleStatus(status runner.Status) lipgloss.Style {
	switch status {
	case runner.StatusPassed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case runner.StatusFailed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case runner.StatusIgnored:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case runner.StatusWorking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
