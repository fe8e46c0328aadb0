// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typetest/internal/clock"
	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/session"
)

const (
	defaultWidth = 80
	inputHeight  = 4
)

// ResultStore persists finished sessions.
type ResultStore interface {
	InsertResult(ctx context.Context, r model.Result) (int64, error)
	BestWPM(ctx context.Context) (int, bool, error)
}

// tickMsg carries a clock callback onto the Bubble Tea loop.
type tickMsg struct {
	fn func()
}

type keyMap struct {
	Start key.Binding
	Reset key.Binding
	Quit  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Start, k.Reset, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func newKeyMap() keyMap {
	return keyMap{
		Start: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		Reset: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "reset")),
		Quit:  key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// Model implements the Bubble Tea typing UI. It is the session's display
// and holds the only reference to it.
type Model struct {
	config  model.Config
	session *session.Session
	store   ResultStore

	ticks chan func()
	done  chan struct{}

	input    textarea.Model
	progress progress.Model
	help     help.Model
	keys     keyMap

	width  int
	height int

	snap     session.Snapshot
	recorded string

	bestWPM int
	hasBest bool
	lastErr string
}

// NewModel constructs a typing TUI model driven by the wall clock. st may
// be nil to skip saving results; extra receives every snapshot too.
func NewModel(cfg model.Config, picker session.Picker, st ResultStore, extra session.Display) *Model {
	ticks := make(chan func())
	done := make(chan struct{})
	clk := clock.NewReal(func(fn func()) {
		select {
		case ticks <- fn:
		case <-done:
		}
	})
	m := newModel(cfg, clk, picker, st, extra)
	m.ticks = ticks
	m.done = done
	return m
}

func newModel(cfg model.Config, clk clock.Clock, picker session.Picker, st ResultStore, extra session.Display) *Model {
	m := &Model{
		config:   cfg,
		store:    st,
		done:     make(chan struct{}),
		input:    newInput(),
		progress: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.session = session.New(cfg.Duration, clk, picker, session.Displays{m, extra})
	m.snap = m.session.Snapshot()
	m.loadBest()
	m.resize(defaultWidth)
	m.updateKeys()
	return m
}

func newInput() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Start typing..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.SetHeight(inputHeight)
	ta.Blur()
	return ta
}

// Show implements session.Display.
func (m *Model) Show(snap session.Snapshot) {
	m.snap = snap
	if snap.State == session.Finished && snap.Result != nil && snap.Result.RunID != m.recorded {
		m.recorded = snap.Result.RunID
		m.recordResult(*snap.Result)
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.listen()
}

func (m *Model) listen() tea.Cmd {
	if m.ticks == nil {
		return nil
	}
	ticks, done := m.ticks, m.done
	return func() tea.Msg {
		select {
		case fn := <-ticks:
			return tickMsg{fn: fn}
		case <-done:
			return nil
		}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize(msg.Width)
		return m, nil
	case tickMsg:
		msg.fn()
		m.syncInput()
		return m, m.listen()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		if m.session.Running() {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quit()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Reset):
		m.session.Reset()
		m.input.Reset()
		m.syncInput()
		return m, nil
	case !m.session.Running() && key.Matches(msg, m.keys.Start):
		m.lastErr = ""
		m.session.Start()
		m.input.Reset()
		cmd := m.input.Focus()
		m.updateKeys()
		return m, cmd
	case m.session.Running():
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if value := m.input.Value(); value != m.session.Typed() {
			m.session.InputChanged(value)
		}
		m.syncInput()
		return m, cmd
	default:
		return m, nil
	}
}

// syncInput blurs the input once the session stops running.
func (m *Model) syncInput() {
	if !m.session.Running() && m.input.Focused() {
		m.input.Blur()
	}
	m.updateKeys()
}

func (m *Model) updateKeys() {
	running := m.session.Running()
	m.keys.Start.SetEnabled(!running)
	m.keys.Reset.SetEnabled(m.session.State() != session.Idle)
}

func (m *Model) quit() {
	m.session.Close()
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}

func (m *Model) resize(width int) {
	contentWidth := contentWidthFor(width)
	m.input.SetWidth(contentWidth)
	m.progress.Width = contentWidth
	m.help.Width = contentWidth
}

func contentWidthFor(width int) int {
	if width <= 0 {
		width = defaultWidth
	}
	return max(20, int(float64(width)*0.70))
}

func (m *Model) loadBest() {
	if m.store == nil {
		return
	}
	best, ok, err := m.store.BestWPM(context.Background())
	if err != nil {
		logErrf("failed to load best wpm: %v\n", err)
		return
	}
	m.bestWPM = best
	m.hasBest = ok
}

func (m *Model) recordResult(r model.Result) {
	if !m.hasBest || r.WPM > m.bestWPM {
		m.bestWPM = r.WPM
		m.hasBest = true
	}
	if m.store == nil || !m.config.Save {
		return
	}
	if _, err := m.store.InsertResult(context.Background(), r); err != nil {
		m.lastErr = fmt.Sprintf("failed to save result: %v", err)
		logErrf("%s\n", m.lastErr)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	width := contentWidthFor(m.width)
	sections := []string{
		m.renderMetrics(),
		m.progress.ViewAs(m.snap.Progress / 100),
		"",
	}
	switch m.snap.State {
	case session.Idle:
		sections = append(sections, hintStyle.Render(fmt.Sprintf("Press enter to start a %ds typing test.", m.session.Duration())))
	default:
		sections = append(sections, renderReference(m.snap.Reference, m.session.Typed(), width), "", m.input.View())
	}
	if m.snap.State == session.Finished && m.snap.Result != nil {
		sections = append(sections, "", renderBadge(*m.snap.Result))
	}
	sections = append(sections, "", m.renderFooter())
	if m.lastErr != "" {
		sections = append(sections, errorStyle.Render(m.lastErr))
	}
	sections = append(sections, m.help.View(m.keys))

	content := lipgloss.NewStyle().Width(width).Render(strings.Join(sections, "\n"))
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderMetrics() string {
	return strings.Join([]string{
		"WPM " + metricStyle.Render(fmt.Sprintf("%d", m.snap.WPM)),
		"Accuracy " + metricStyle.Render(fmt.Sprintf("%d%%", m.snap.Accuracy)),
		"Time " + metricStyle.Render(fmt.Sprintf("%ds", m.snap.Remaining)),
	}, "   ")
}

func (m *Model) renderFooter() string {
	segments := []string{fmt.Sprintf("Progress %d%%", int(m.snap.Progress))}
	if m.hasBest {
		segments = append(segments, fmt.Sprintf("Best %d WPM", m.bestWPM))
	}
	if m.store == nil || !m.config.Save {
		segments = append(segments, "Results not saved")
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
