package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typetest/internal/model"
)

type fakeLister struct {
	results []model.Result
	err     error
	calls   []model.HistoryConfig
}

func (f *fakeLister) ListResults(_ context.Context, cfg model.HistoryConfig) ([]model.Result, error) {
	f.calls = append(f.calls, cfg)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func sampleResults() []model.Result {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	out := make([]model.Result, 0, 3)
	for i, wpm := range []int{30, 45, 62} {
		out = append(out, model.Result{
			ID:        int64(i + 1),
			RunID:     "run-" + string(rune('a'+i)),
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			EndedAt:   base.Add(time.Duration(i)*time.Hour + time.Minute),
			Elapsed:   time.Minute,
			Reference: "the quick brown fox",
			Correct:   19,
			Total:     19,
			WPM:       wpm,
			Accuracy:  100,
			Grade:     model.Grade{Letter: "B", Label: "Good Progress"},
			Reason:    model.ReasonTimeout,
		})
	}
	return out
}

func resize(t *testing.T, m *Model, w, h int) {
	t.Helper()
	m.Update(tea.WindowSizeMsg{Width: w, Height: h})
}

func TestOverviewShowsSummary(t *testing.T) {
	m := NewModel(&fakeLister{results: sampleResults()}, model.HistoryConfig{})
	resize(t, m, 100, 30)

	view := m.View()
	for _, want := range []string{"Overview", "Results", "Best WPM", "62", "WPM trend", "window=5"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestResultsTabSelectsNewestFirst(t *testing.T) {
	m := NewModel(&fakeLister{results: sampleResults()}, model.HistoryConfig{})
	resize(t, m, 100, 30)
	m.Update(tea.KeyMsg{Type: tea.KeyRight})

	if m.activeTab != tabResults {
		t.Fatalf("expected results tab, got %d", m.activeTab)
	}
	r, ok := m.Selected()
	if !ok || r.WPM != 62 {
		t.Fatalf("expected newest result selected, got %+v", r)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	r, ok = m.Selected()
	if !ok || r.WPM != 45 {
		t.Fatalf("expected second newest after down, got %+v", r)
	}
	if view := m.View(); !strings.Contains(view, "Good Progress") {
		t.Fatalf("expected detail line in view:\n%s", view)
	}
}

func TestWindowKeys(t *testing.T) {
	m := NewModel(&fakeLister{results: sampleResults()}, model.HistoryConfig{Window: 5})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	if m.cfg.Window != 10 {
		t.Fatalf("expected window 10, got %d", m.cfg.Window)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	if m.cfg.Window != 1 {
		t.Fatalf("expected window 1, got %d", m.cfg.Window)
	}
}

func TestFilterAppliesAndReloads(t *testing.T) {
	lister := &fakeLister{results: sampleResults()}
	m := NewModel(lister, model.HistoryConfig{})
	resize(t, m, 100, 30)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.filterInputs[0].SetValue("2024-03-01")
	m.filterInputs[1].SetValue("2")
	m.filterInputs[2].SetValue("3")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	if m.filterMode {
		t.Fatalf("expected filter mode to close")
	}
	if len(lister.calls) != 2 {
		t.Fatalf("expected reload, got %d calls", len(lister.calls))
	}
	cfg := lister.calls[1]
	if cfg.Since == nil || cfg.Since.Format("2006-01-02") != "2024-03-01" || cfg.Last != 2 || cfg.Window != 3 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(m.report.Results) != 2 {
		t.Fatalf("expected last 2 results, got %d", len(m.report.Results))
	}
}

func TestFilterRejectsBadInput(t *testing.T) {
	m := NewModel(&fakeLister{results: sampleResults()}, model.HistoryConfig{})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m.filterInputs[0].SetValue("yesterday")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected filter error, mode=%v err=%q", m.filterMode, m.filterError)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterMode {
		t.Fatalf("expected esc to cancel")
	}
}

func TestLoadErrorShownInFooter(t *testing.T) {
	m := NewModel(&fakeLister{err: errors.New("boom")}, model.HistoryConfig{})
	resize(t, m, 80, 20)
	if view := m.View(); !strings.Contains(view, "failed to load history: boom") {
		t.Fatalf("expected error in view:\n%s", view)
	}
	if _, ok := m.Selected(); ok {
		t.Fatalf("expected no selection")
	}
}

func TestQuitKeys(t *testing.T) {
	m := NewModel(&fakeLister{}, model.HistoryConfig{})
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Fatalf("expected quit command")
	}
}

func TestFitLines(t *testing.T) {
	got := fitLines("ab\ncd\nef", 3, 2)
	if got != "ab \ncd " {
		t.Fatalf("unexpected fit: %q", got)
	}
	if got := truncateLine("abcdefgh", 6); got != "abc..." {
		t.Fatalf("unexpected truncate: %q", got)
	}
}
