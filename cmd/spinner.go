package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type submitDoneMsg struct {
	err error
}

// submitSpinnerModel animates a dot spinner while a submission round-trips.
// The work function runs once, started from Init; its error is carried out
// through the final model.
type submitSpinnerModel struct {
	spinner spinner.Model
	label   string
	work    func() error
	err     error
	done    bool
}

func newSubmitSpinnerModel(label string, work func() error) submitSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return submitSpinnerModel{
		spinner: s,
		label:   label,
		work:    work,
	}
}

func (m submitSpinnerModel) Init() tea.Cmd {
	submit := func() tea.Msg {
		return submitDoneMsg{err: m.work()}
	}
	return tea.Batch(m.spinner.Tick, submit)
}

func (m submitSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case submitDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m submitSpinnerModel) View() string {
	if m.done {
		// The caller prints the outcome; leave no spinner residue behind.
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

func runWithSpinner(ctx context.Context, output io.Writer, label string, work func(context.Context) error) error {
	p := tea.NewProgram(
		newSubmitSpinnerModel(label, func() error { return work(ctx) }),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(submitSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
