// Package stats contains result history calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/typetest/internal/model"
)

const sparkChars = " .:-=+*#%@"

var gradeOrder = []string{"S", "A", "B", "C"}

// Summary aggregates a set of results.
type Summary struct {
	Count       int
	AvgWPM      float64
	BestWPM     int
	AvgAccuracy float64
	Completed   int
	Grades      map[string]int
}

// Summarize computes averages, the best WPM and grade counts.
func Summarize(results []model.Result) Summary {
	sum := Summary{Grades: map[string]int{}}
	if len(results) == 0 {
		return sum
	}
	var totalWPM, totalAcc float64
	for _, r := range results {
		totalWPM += float64(r.WPM)
		totalAcc += float64(r.Accuracy)
		if r.WPM > sum.BestWPM {
			sum.BestWPM = r.WPM
		}
		if r.Reason == model.ReasonCompleted {
			sum.Completed++
		}
		sum.Grades[r.Grade.Letter]++
	}
	sum.Count = len(results)
	sum.AvgWPM = totalWPM / float64(sum.Count)
	sum.AvgAccuracy = totalAcc / float64(sum.Count)
	return sum
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	last := len(sparkChars) - 1
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[max(0, min(idx, last))])
	}
	return b.String()
}

// RenderSummary prints summary lines for the results.
func RenderSummary(w io.Writer, results []model.Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results found.")
		return err
	}
	sum := Summarize(results)
	grades := make([]string, 0, len(gradeOrder))
	for _, g := range gradeOrder {
		grades = append(grades, fmt.Sprintf("%s:%d", g, sum.Grades[g]))
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Tests: %d (%d completed early)", sum.Count, sum.Completed),
		fmt.Sprintf("Avg WPM: %.1f", sum.AvgWPM),
		fmt.Sprintf("Best WPM: %d", sum.BestWPM),
		fmt.Sprintf("Avg Accuracy: %.1f%%", sum.AvgAccuracy),
		fmt.Sprintf("Grades: %s", strings.Join(grades, " ")),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTrend prints a moving-average WPM sparkline no wider than width.
// A non-positive width leaves the line unbounded.
func RenderTrend(w io.Writer, results []model.Result, window, width int) error {
	if len(results) == 0 {
		return nil
	}
	wpms := make([]float64, len(results))
	for i, r := range results {
		wpms[i] = float64(r.WPM)
	}
	wpms = MovingAverage(wpms, window)
	const label = "WPM trend "
	if width > 0 {
		keep := width - len(label) - 2
		if keep < 1 {
			keep = 1
		}
		if len(wpms) > keep {
			wpms = wpms[len(wpms)-keep:]
		}
	}
	if _, err := fmt.Fprintf(w, "%s[%s]\n\n", label, Sparkline(wpms)); err != nil {
		return err
	}
	return nil
}
