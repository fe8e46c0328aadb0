package session

import (
	"fmt"

	"github.com/verte-zerg/typetest/internal/model"
)

// State is the session lifecycle state.
type State int

// Session states.
const (
	Idle State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{Idle, Running, Finished} {
		if candidate.String() == string(text) {
			*s = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", text)
}

// Snapshot holds the values a display renders after a state change.
type Snapshot struct {
	State     State         `json:"state"`
	Reference string        `json:"reference"`
	Remaining int           `json:"remaining"`
	Duration  int           `json:"duration"`
	Progress  float64       `json:"progress"`
	WPM       int           `json:"wpm"`
	Accuracy  int           `json:"accuracy"`
	Correct   int           `json:"correct"`
	Total     int           `json:"total"`
	Result    *model.Result `json:"result,omitempty"`
}

// Display receives snapshots from a session.
type Display interface {
	Show(Snapshot)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(Snapshot)

// Show calls f.
func (f DisplayFunc) Show(s Snapshot) {
	f(s)
}

// Displays fans a snapshot out to several displays in order.
type Displays []Display

// Show forwards s to every non-nil display.
func (ds Displays) Show(s Snapshot) {
	for _, d := range ds {
		if d != nil {
			d.Show(s)
		}
	}
}

// Picker chooses the reference text for a new session.
type Picker interface {
	Pick() string
}
