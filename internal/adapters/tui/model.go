// Package tui provides a minimal bubbletea live-status view: the current
// activity segment and the pomodoro countdown, polled from the Coordinator's
// query surface. It deliberately has no setup wizard or completion flow —
// those belong to the CLI's flag-driven subcommands instead.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kodeflow/tempod/internal/coordinator"
	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/pomodoro"
)

var (
	activityStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	stateStyle    = lipgloss.NewStyle().Bold(true)
)

const pollInterval = time.Second

type tickMsg time.Time

type statusMsg struct {
	activity *domain.Activity
	pomo     pomodoro.Snapshot
	err      error
}

// Model is the bubbletea model for the live-status view.
type Model struct {
	co       *coordinator.Coordinator
	activity *domain.Activity
	pomo     pomodoro.Snapshot
	err      error
	quitting bool
	progress progress.Model
}

// NewModel builds the live-status model bound to co's command/query surface.
func NewModel(co *coordinator.Coordinator) Model {
	return Model{
		co:       co,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.poll(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) poll() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		activity, err := m.co.GetCurrentActivity(ctx)
		if err != nil {
			return statusMsg{err: err}
		}
		snap, err := m.co.GetCurrentPomodoro(ctx)
		if err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{activity: activity, pomo: snap}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "p":
			_ = m.co.PausePomodoro(context.Background())
		case "r":
			_ = m.co.ResumePomodoro(context.Background())
		case "s":
			_ = m.co.StopPomodoro(context.Background())
		}
		return m, nil
	case tickMsg:
		return m, tea.Batch(m.poll(), tickCmd())
	case statusMsg:
		m.activity = msg.activity
		m.pomo = msg.pomo
		m.err = msg.err
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.err != nil {
		return fmt.Sprintf("error: %v\n", m.err)
	}

	var b strings.Builder
	b.WriteString(labelStyle.Render("activity") + "  ")
	if m.activity != nil {
		b.WriteString(activityStyle.Render(fmt.Sprintf("%s — %s", m.activity.AppName, m.activity.WindowTitle)))
	} else {
		b.WriteString("none")
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("pomodoro") + "  ")
	b.WriteString(stateStyle.Render(m.pomo.State.String()))
	if m.pomo.Session != nil {
		b.WriteString(fmt.Sprintf("  %s remaining\n", m.pomo.Remaining.Round(time.Second)))
		b.WriteString(m.progress.ViewAs(m.pomoFraction()))
	} else {
		b.WriteString("\n")
	}
	b.WriteString("\n\n[p] pause  [r] resume  [s] stop  [q] quit\n")
	return b.String()
}

func (m Model) pomoFraction() float64 {
	if m.pomo.Session == nil {
		return 0
	}
	total := m.pomo.Elapsed + m.pomo.Remaining
	if total <= 0 {
		return 0
	}
	return float64(m.pomo.Elapsed) / float64(total)
}

// Run starts the bubbletea program until the user quits or ctx is canceled.
func Run(ctx context.Context, co *coordinator.Coordinator) error {
	p := tea.NewProgram(NewModel(co))
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}
