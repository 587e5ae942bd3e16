package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	okStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	spinnerFrame = []string{"|", "/", "-", "\\"}
)

// Task is one tool action rendered by Run.
type Task struct {
	Title   string
	Timeout time.Duration
	Action  func(context.Context) ([]string, error)
}

type doneMsg struct {
	details []string
	err     error
	elapsed time.Duration
}

type tickMsg struct{}

type model struct {
	task    Task
	ctx     context.Context
	frame   int
	started time.Time
	result  *doneMsg
}

func tick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m model) Init() tea.Cmd {
	run := func() tea.Msg {
		start := time.Now()
		details, err := m.task.Action(m.ctx)
		return doneMsg{details: details, err: err, elapsed: time.Since(start)}
	}
	return tea.Batch(run, tick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.result = &doneMsg{err: context.Canceled, elapsed: time.Since(m.started)}
			return m, tea.Quit
		}
	case tickMsg:
		if m.result != nil {
			return m, nil
		}
		m.frame = (m.frame + 1) % len(spinnerFrame)
		return m, tick()
	case doneMsg:
		m.result = &msg
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.task.Title))
	b.WriteString("\n")
	if m.result == nil {
		fmt.Fprintf(&b, "%s running %s\n", spinnerFrame[m.frame], mutedStyle.Render(time.Since(m.started).Round(100*time.Millisecond).String()))
		return b.String()
	}
	elapsed := mutedStyle.Render("(" + m.result.elapsed.Round(time.Millisecond).String() + ")")
	if m.result.err != nil {
		fmt.Fprintf(&b, "%s %s: %v\n", failStyle.Render("FAILED"), elapsed, m.result.err)
	} else {
		fmt.Fprintf(&b, "%s %s\n", okStyle.Render("OK"), elapsed)
	}
	for _, d := range m.result.details {
		b.WriteString("  • " + d + "\n")
	}
	return b.String()
}

// Run executes task behind an interactive spinner and returns its result.
func Run(task Task) ([]string, error) {
	if task.Timeout <= 0 {
		task.Timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), task.Timeout)
	defer cancel()

	final, err := tea.NewProgram(model{task: task, ctx: ctx, started: time.Now()}).Run()
	if err != nil {
		return nil, err
	}
	res := final.(model).result
	if res == nil {
		return nil, context.Canceled
	}
	return res.details, res.err
}
