// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/typetest/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout has fixed-width fractions so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for test results.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL UNIQUE,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_s INTEGER NOT NULL,
			elapsed_ms INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			total INTEGER NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			grade TEXT NOT NULL,
			grade_label TEXT NOT NULL,
			reason TEXT NOT NULL,
			reference TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_ended_at ON results(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertResult stores a finished session and returns its row id.
func (s *Store) InsertResult(ctx context.Context, r model.Result) (int64, error) {
	if r.RunID == "" {
		return 0, fmt.Errorf("result has no run id")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO results (run_id, started_at, ended_at, duration_s, elapsed_ms, correct, total, wpm, accuracy, grade, grade_label, reason, reference)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID,
		r.StartedAt.UTC().Format(timeLayout),
		r.EndedAt.UTC().Format(timeLayout),
		r.DurationSeconds,
		r.Elapsed.Milliseconds(),
		r.Correct,
		r.Total,
		r.WPM,
		r.Accuracy,
		r.Grade.Letter,
		r.Grade.Label,
		string(r.Reason),
		r.Reference,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListResults returns results filtered by cfg.Since, oldest first. Typed
// text is not persisted and is left empty.
func (s *Store) ListResults(ctx context.Context, cfg model.HistoryConfig) ([]model.Result, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, run_id, started_at, ended_at, duration_s, elapsed_ms, correct, total, wpm, accuracy, grade, grade_label, reason, reference
		FROM results
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.Result
	for rows.Next() {
		var r model.Result
		var startedAt, endedAt, reason string
		var elapsedMs int64
		if err := rows.Scan(&r.ID, &r.RunID, &startedAt, &endedAt, &r.DurationSeconds, &elapsedMs,
			&r.Correct, &r.Total, &r.WPM, &r.Accuracy, &r.Grade.Letter, &r.Grade.Label, &reason, &r.Reference); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, err
		}
		if r.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
			return nil, err
		}
		r.Elapsed = time.Duration(elapsedMs) * time.Millisecond
		r.Reason = model.FinishReason(reason)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// BestWPM returns the highest WPM on record, or 0 with ok=false when the
// history is empty.
func (s *Store) BestWPM(ctx context.Context) (int, bool, error) {
	var best sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(wpm) FROM results`).Scan(&best); err != nil {
		return 0, false, err
	}
	if !best.Valid {
		return 0, false, nil
	}
	return int(best.Int64), true, nil
}
