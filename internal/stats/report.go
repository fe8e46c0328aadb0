package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/typetest/internal/model"
)

// ResultLister loads stored results.
type ResultLister interface {
	ListResults(ctx context.Context, cfg model.HistoryConfig) ([]model.Result, error)
}

// Report contains precomputed data for history rendering.
type Report struct {
	Results []model.Result
	Summary Summary
}

// BuildReport loads results and keeps the last cfg.Last of them.
func BuildReport(ctx context.Context, st ResultLister, cfg model.HistoryConfig) (Report, error) {
	results, err := st.ListResults(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(results) > cfg.Last {
		results = results[len(results)-cfg.Last:]
	}
	return Report{
		Results: results,
		Summary: Summarize(results),
	}, nil
}

// TableHeaders names the columns produced by TableRows.
var TableHeaders = []string{"Ended", "WPM", "Accuracy", "Grade", "Time", "Finish"}

// TableRows formats one row per result, newest first, with end times
// relative to now.
func TableRows(results []model.Result, now time.Time) [][]string {
	rows := make([][]string, 0, len(results))
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		rows = append(rows, []string{
			humanize.RelTime(r.EndedAt, now, "ago", "from now"),
			fmt.Sprintf("%d", r.WPM),
			fmt.Sprintf("%d%%", r.Accuracy),
			r.Grade.Letter,
			fmt.Sprintf("%.1fs", r.Elapsed.Seconds()),
			string(r.Reason),
		})
	}
	return rows
}

// RenderTable prints the TableRows of results as aligned text.
func RenderTable(w io.Writer, results []model.Result, now time.Time) error {
	if len(results) == 0 {
		return nil
	}
	rightAlign := map[int]bool{1: true, 2: true, 4: true}
	for _, line := range formatTable(TableHeaders, TableRows(results, now), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
