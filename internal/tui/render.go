package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typetest/internal/model"
)

const missedSpace = '·'

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cursorStyle    = pendingStyle.Underline(true)
	extraStyle     = incorrectStyle.Bold(true)
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	metricStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")).Italic(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))

	badgeBase   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	badgeStyles = map[string]lipgloss.Style{
		"S": badgeBase.Foreground(lipgloss.Color("#1A1A1A")).Background(lipgloss.Color("#FFD700")),
		"A": badgeBase.Foreground(lipgloss.Color("#1A1A1A")).Background(lipgloss.Color("#52C41A")),
		"B": badgeBase.Foreground(lipgloss.Color("#1A1A1A")).Background(lipgloss.Color("#40A9FF")),
		"C": badgeBase.Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#8C8C8C")),
	}
)

// cell is one reference rune after styling.
type cell struct {
	text  string
	width int
	space bool
}

// styleReference colors each reference rune by comparing it with the typed
// rune at the same position. The first untyped rune carries the cursor.
func styleReference(reference, typed []rune) []cell {
	cells := make([]cell, 0, len(reference))
	for i, want := range reference {
		shown := want
		var style lipgloss.Style
		switch {
		case i < len(typed) && typed[i] == want:
			style = correctStyle
		case i < len(typed):
			style = incorrectStyle
			if want == ' ' {
				shown = missedSpace
			}
		case i == len(typed):
			style = cursorStyle
		default:
			style = pendingStyle
		}
		cells = append(cells, cell{
			text:  style.Render(string(shown)),
			width: runewidth.RuneWidth(shown),
			space: want == ' ',
		})
	}
	return cells
}

// wrapCells breaks cells into lines of at most width columns, preferring
// to break at spaces. A word longer than width is split.
func wrapCells(cells []cell, width int) []string {
	if width <= 0 {
		return []string{joinCells(cells)}
	}
	var lines []string
	var line []cell
	lineWidth := 0
	emit := func() {
		lines = append(lines, joinCells(line))
		line = nil
		lineWidth = 0
	}
	for _, word := range splitWords(cells) {
		w := cellsWidth(word)
		if lineWidth > 0 && lineWidth+w > width {
			emit()
		}
		for _, c := range word {
			if lineWidth+c.width > width && lineWidth > 0 {
				emit()
			}
			line = append(line, c)
			lineWidth += c.width
		}
	}
	if len(line) > 0 || len(lines) == 0 {
		emit()
	}
	return lines
}

// splitWords groups cells into words, each keeping its trailing space.
func splitWords(cells []cell) [][]cell {
	var words [][]cell
	start := 0
	for i, c := range cells {
		if c.space {
			words = append(words, cells[start:i+1])
			start = i + 1
		}
	}
	if start < len(cells) {
		words = append(words, cells[start:])
	}
	return words
}

func cellsWidth(cells []cell) int {
	total := 0
	for _, c := range cells {
		total += c.width
	}
	return total
}

func joinCells(cells []cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(c.text)
	}
	return b.String()
}

// renderReference renders the reference wrapped to width, followed by a
// marker for runes typed past its end.
func renderReference(reference, typed string, width int) string {
	ref := []rune(reference)
	in := []rune(typed)
	out := strings.Join(wrapCells(styleReference(ref, in), width), "\n")
	if extra := len(in) - len(ref); extra > 0 {
		out += "\n" + extraStyle.Render(fmt.Sprintf("+%d extra", extra))
	}
	return out
}

// renderBadge renders "S - Typing Legend (85 WPM, 96%)" in the grade's colors.
func renderBadge(r model.Result) string {
	style, ok := badgeStyles[r.Grade.Letter]
	if !ok {
		style = badgeBase
	}
	return style.Render(fmt.Sprintf("%s - %s (%d WPM, %d%%)", r.Grade.Letter, r.Grade.Label, r.WPM, r.Accuracy))
}
