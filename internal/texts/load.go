package texts

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadParagraphs reads paragraphs from path. Paragraphs are separated by
// blank lines; the lines of one paragraph are joined with single spaces.
func LoadParagraphs(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only paragraphs file.
			_ = cerr
		}
	}()

	var paragraphs []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paragraphs = append(paragraphs, strings.Join(current, " "))
			current = current[:0]
		}
	}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.Join(strings.Fields(scanner.Text()), " ")
		if line == "" {
			flush()
			continue
		}
		current = append(current, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	if len(paragraphs) == 0 {
		return nil, fmt.Errorf("paragraphs file is empty")
	}
	return paragraphs, nil
}

// Resolve returns the paragraphs from path, or the built-in pool when path
// is empty.
func Resolve(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return Builtin(), nil
	}
	paragraphs, err := LoadParagraphs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load paragraphs from %s: %w", path, err)
	}
	return paragraphs, nil
}
