package tui

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobapplicator/internal/model"
)

// Lines per application in the list (title + subtitle + blank separator).
const appItemHeight = 3

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(12)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// letterLoadedMsg is sent when an async letter read completes.
type letterLoadedMsg struct {
	path string
	text string
	err  error
}

type reviewModel struct {
	apps       []model.Application
	readLetter func(path string) (string, error)

	listViewport   viewport.Model
	letterViewport viewport.Model
	activePane     int // 0=list, 1=letter
	cursor         int
	width          int
	height         int
	ready          bool

	letters map[string]string // path → contents, filled lazily
	loading string            // path being read
	errMsg  string
}

func newReviewModel(apps []model.Application, readLetter func(string) (string, error)) reviewModel {
	m := reviewModel{
		apps:       apps,
		readLetter: readLetter,
		letters:    make(map[string]string),
	}
	if len(apps) > 0 {
		m.loading = apps[0].LetterPath
	}
	return m
}

func (m reviewModel) Init() tea.Cmd {
	if m.loading == "" {
		return nil
	}
	return readLetterCmd(m.readLetter, m.loading)
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case letterLoadedMsg:
		if msg.path == m.loading {
			m.loading = ""
		}
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("failed to read letter: %v", msg.err)
		} else {
			m.errMsg = ""
			m.letters[msg.path] = msg.text
		}
		m.recalcContent()
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m reviewModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "o":
		if app, ok := m.selected(); ok {
			openURL(app.Job.URL)
		}
		return m, nil
	}

	if m.activePane == 0 {
		switch msg.String() {
		case "up", "k":
			return m.moveCursor(-1)
		case "down", "j":
			return m.moveCursor(1)
		}
	}

	// Forward other keys (pgup/pgdn/home/end, arrows in the letter pane).
	var cmd tea.Cmd
	if m.activePane == 0 {
		m.listViewport, cmd = m.listViewport.Update(msg)
	} else {
		m.letterViewport, cmd = m.letterViewport.Update(msg)
	}
	return m, cmd
}

func (m reviewModel) moveCursor(delta int) (tea.Model, tea.Cmd) {
	next := clamp(m.cursor+delta, 0, max(len(m.apps)-1, 0))
	if next == m.cursor {
		return m, nil
	}
	m.cursor = next
	m.errMsg = ""
	m.letterViewport.SetYOffset(0)
	m.recalcContent()
	m.ensureCursorVisible()
	cmd := m.loadSelected()
	return m, cmd
}

func (m *reviewModel) selected() (model.Application, bool) {
	if len(m.apps) == 0 {
		return model.Application{}, false
	}
	return m.apps[m.cursor], true
}

// loadSelected reads the selected letter unless it is cached or in flight.
func (m *reviewModel) loadSelected() tea.Cmd {
	app, ok := m.selected()
	if !ok || app.LetterPath == "" {
		return nil
	}
	if _, cached := m.letters[app.LetterPath]; cached || m.loading == app.LetterPath {
		return nil
	}
	m.loading = app.LetterPath
	return readLetterCmd(m.readLetter, app.LetterPath)
}

func readLetterCmd(read func(string) (string, error), path string) tea.Cmd {
	return func() tea.Msg {
		text, err := read(path)
		return letterLoadedMsg{path: path, text: text, err: err}
	}
}

func (m *reviewModel) ensureCursorVisible() {
	vp := &m.listViewport
	top := m.cursor * appItemHeight
	bottom := top + appItemHeight - 1
	if top < vp.YOffset {
		vp.SetYOffset(top)
	} else if bottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(bottom - vp.Height + 1)
	}
}

func (m *reviewModel) recalcLayout() {
	// List takes a third of the width; 2 border chars per pane + 1 gap.
	listWidth := max(m.width/3-2, 20)
	letterWidth := max(m.width-listWidth-5, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(listWidth, paneHeight)
		m.letterViewport = viewport.New(letterWidth, paneHeight)
		m.ready = true
	} else {
		m.listViewport.Width = listWidth
		m.listViewport.Height = paneHeight
		m.letterViewport.Width = letterWidth
		m.letterViewport.Height = paneHeight
	}
	m.recalcContent()
}

func (m *reviewModel) recalcContent() {
	m.listViewport.SetContent(renderApps(m.apps, m.cursor, m.activePane == 0))
	m.letterViewport.SetContent(m.renderLetter())
}

func (m reviewModel) renderLetter() string {
	app, ok := m.selected()
	if !ok {
		return "  (no applications yet: run `jobapplicator run`)"
	}

	var b strings.Builder
	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}
	field("Title", app.Job.Title)
	field("Board", app.Job.Board)
	field("Match", fmt.Sprintf("%.1f%%", app.Score*100))
	field("Mood", app.MoodTag)
	field("Drafted", app.CreatedAt.Local().Format("2006-01-02 15:04"))
	field("Follow up", app.FollowupAt.Local().Format("2006-01-02"))
	field("URL", app.Job.URL)
	field("Letter", filepath.Base(app.LetterPath))

	width := max(m.letterViewport.Width-2, 20)
	b.WriteByte('\n')
	b.WriteString(dividerStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n\n")

	switch {
	case m.errMsg != "":
		b.WriteString(errorStyle.Render("⚠ " + m.errMsg))
	case m.loading == app.LetterPath:
		b.WriteString("  loading letter...")
	default:
		b.WriteString(wrapText(m.letters[app.LetterPath], width))
	}
	b.WriteByte('\n')
	return b.String()
}

func (m reviewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	listHeader := fmt.Sprintf(" Applications (%d)", len(m.apps))
	letterHeader := " Letter"

	listBorder, letterBorder := inactiveBorderStyle, activeBorderStyle
	listHeaderSt, letterHeaderSt := inactiveHeaderStyle, activeHeaderStyle
	if m.activePane == 0 {
		listBorder, letterBorder = activeBorderStyle, inactiveBorderStyle
		listHeaderSt, letterHeaderSt = activeHeaderStyle, inactiveHeaderStyle
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(m.listViewport.Width+2).Render(listHeaderSt.Render(listHeader)),
		" ",
		lipgloss.NewStyle().Width(m.letterViewport.Width+2).Render(letterHeaderSt.Render(letterHeader)),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		listBorder.Width(m.listViewport.Width).Render(m.listViewport.View()),
		" ",
		letterBorder.Width(m.letterViewport.Width).Render(m.letterViewport.View()),
	)

	statusText := " ←/→/Tab switch  ↑/↓ select  o open posting  q quit"
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func renderApps(apps []model.Application, cursor int, isActive bool) string {
	if len(apps) == 0 {
		return "  (no applications)"
	}

	var b strings.Builder
	for i, a := range apps {
		titleSt, subtitleSt, prefix := titleStyle, subtitleStyle, "  "
		if i == cursor {
			prefix = "> "
			if isActive {
				titleSt, subtitleSt = selectedTitleStyle, selectedSubtitleStyle
			}
		}

		b.WriteString(prefix)
		b.WriteString(titleSt.Render(a.Job.Title))
		b.WriteByte('\n')
		b.WriteString(prefix)
		b.WriteString(subtitleSt.Render(fmt.Sprintf("%s · %s · %.0f%%",
			a.Job.Board, a.CreatedAt.Local().Format("2006-01-02"), a.Score*100)))
		b.WriteByte('\n')

		if i < len(apps)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// wrapText word-wraps each line of text to width, keeping blank lines.
func wrapText(text string, width int) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			if len(cur)+1+len(w) <= width {
				cur += " " + w
			} else {
				out = append(out, cur)
				cur = w
			}
		}
		out = append(out, cur)
	}
	return strings.Join(out, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// RunReview launches the full-screen application browser. readLetter loads
// a letter by path when its application is selected.
func RunReview(apps []model.Application, readLetter func(path string) (string, error)) error {
	p := tea.NewProgram(newReviewModel(apps, readLetter), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
