package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/typetest/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "typetest.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func testResult(runID string, endedAt time.Time, wpm int) model.Result {
	return model.Result{
		RunID:           runID,
		StartedAt:       endedAt.Add(-30 * time.Second),
		EndedAt:         endedAt,
		Elapsed:         30 * time.Second,
		DurationSeconds: 60,
		Reference:       "cat",
		Typed:           "cat",
		Correct:         3,
		Total:           3,
		WPM:             wpm,
		Accuracy:        100,
		Grade:           model.Grade{Letter: "C", Label: "Keep Practicing"},
		Reason:          model.ReasonCompleted,
	}
}

func TestInsertAndListResults(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	if _, err := st.InsertResult(ctx, testResult("b", base.Add(time.Hour), 42)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := st.InsertResult(ctx, testResult("a", base, 12)); err != nil {
		t.Fatalf("insert: %v", err)
	}

	results, err := st.ListResults(ctx, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].RunID != "a" || results[1].RunID != "b" {
		t.Fatalf("expected results ordered by end time, got %s, %s", results[0].RunID, results[1].RunID)
	}
	got := results[0]
	if got.Elapsed != 30*time.Second || got.Reason != model.ReasonCompleted || got.Grade.Label != "Keep Practicing" {
		t.Fatalf("unexpected round trip: %+v", got)
	}
	if !got.EndedAt.Equal(base) {
		t.Fatalf("unexpected ended_at %v", got.EndedAt)
	}

	since := base.Add(30 * time.Minute)
	filtered, err := st.ListResults(ctx, model.HistoryConfig{Since: &since})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(filtered) != 1 || filtered[0].RunID != "b" {
		t.Fatalf("unexpected filtered results: %+v", filtered)
	}
}

func TestInsertRejectsDuplicateRunID(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	r := testResult("dup", time.Now(), 10)
	if _, err := st.InsertResult(ctx, r); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := st.InsertResult(ctx, r); err == nil {
		t.Fatalf("expected unique constraint error")
	}
	r.RunID = ""
	if _, err := st.InsertResult(ctx, r); err == nil {
		t.Fatalf("expected error for missing run id")
	}
}

func TestBestWPM(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if _, ok, err := st.BestWPM(ctx); err != nil || ok {
		t.Fatalf("expected empty history, ok=%v err=%v", ok, err)
	}
	now := time.Now()
	for i, wpm := range []int{31, 77, 54} {
		if _, err := st.InsertResult(ctx, testResult(string(rune('a'+i)), now.Add(time.Duration(i)*time.Minute), wpm)); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	best, ok, err := st.BestWPM(ctx)
	if err != nil || !ok || best != 77 {
		t.Fatalf("expected best 77, got %d ok=%v err=%v", best, ok, err)
	}
}
