package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobapplicator/internal/model"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// ErrCancelled is returned by RunLoader when the user presses ctrl+c.
var ErrCancelled = errors.New("cancelled")

type loadDoneMsg struct {
	jobs []model.ScoredJob
	err  error
}

type spinnerTickMsg struct{}

type loaderModel struct {
	label   string
	ctx     context.Context
	cancel  context.CancelFunc
	loadFn  func(ctx context.Context) ([]model.ScoredJob, error)
	frame   int
	started time.Time
	result  []model.ScoredJob
	err     error
	done    bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doLoad(), m.tick())
}

func (m loaderModel) doLoad() tea.Cmd {
	ctx, loadFn := m.ctx, m.loadFn
	return func() tea.Msg {
		jobs, err := loadFn(ctx)
		return loadDoneMsg{jobs: jobs, err: err}
	}
}

func (m loaderModel) tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDoneMsg:
		m.result = msg.jobs
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinnerTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, m.tick()
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	spinner := lipgloss.NewStyle().Foreground(lipgloss.Color("33")).Render(spinnerFrames[m.frame])
	elapsed := time.Since(m.started).Round(time.Second)
	return fmt.Sprintf("%s %s... %s\n", spinner, m.label, elapsed)
}

// RunLoader shows a spinner while loadFn scrapes and ranks. It renders
// inline (no alt screen) and cancels loadFn's context on ctrl+c.
func RunLoader(ctx context.Context, label string, loadFn func(ctx context.Context) ([]model.ScoredJob, error)) ([]model.ScoredJob, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := loaderModel{
		label:   label,
		ctx:     ctx,
		cancel:  cancel,
		loadFn:  loadFn,
		started: time.Now(),
	}
	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
