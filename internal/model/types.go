// Package model defines shared data structures.
package model

import "time"

// Config defines typing test settings.
type Config struct {
	Duration  int
	TextsPath string
	Save      bool
	Broadcast string
}

// HistoryConfig defines filters and options for history output.
type HistoryConfig struct {
	Since  *time.Time
	Last   int
	Window int
}

// FinishReason records how a session ended.
type FinishReason string

// Finish reasons.
const (
	ReasonCompleted FinishReason = "completed"
	ReasonTimeout   FinishReason = "timeout"
)

// Grade is a letter grade with its label.
type Grade struct {
	Letter string
	Label  string
}

// Result captures a finished typing session.
type Result struct {
	ID              int64
	RunID           string
	StartedAt       time.Time
	EndedAt         time.Time
	Elapsed         time.Duration
	DurationSeconds int
	Reference       string
	Typed           string
	Correct         int
	Total           int
	WPM             int
	Accuracy        int
	Grade           Grade
	Reason          FinishReason
}
