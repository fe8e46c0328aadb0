package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Ended", "WPM", "Grade"}
	rows := [][]string{
		{"1 minute ago", "87", "S"},
		{"now", "5", "C"},
	}
	rightAlign := map[int]bool{1: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Ended        WPM Grade" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "1 minute ago  87 S" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "now            5 C" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"A", "B"}, [][]string{{"日本", "x"}}, nil)
	if lines[0] != "A    B" {
		t.Fatalf("expected header padded to display width, got %q", lines[0])
	}
}
