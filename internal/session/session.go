// Package session implements the timed typing test state machine.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typetest/internal/clock"
	"github.com/verte-zerg/typetest/internal/model"
)

// DefaultDuration is the default session length in seconds.
const DefaultDuration = 60

const tickInterval = time.Second

// Session owns the timing and scoring state of one typing test. It is not
// safe for concurrent use: the host must call it from a single goroutine.
type Session struct {
	duration int
	clock    clock.Clock
	picker   Picker
	display  Display

	reference    string
	refRunes     []rune
	typed        string
	correct      int
	total        int
	liveWPM      int
	liveAccuracy int
	remaining    int
	startedAt    time.Time
	state        State
	ticker       clock.Handle
	generation   int
	result       *model.Result
}

// New returns an idle session. A non-positive duration falls back to
// DefaultDuration; a nil display discards snapshots.
func New(durationSeconds int, clk clock.Clock, picker Picker, display Display) *Session {
	if durationSeconds <= 0 {
		durationSeconds = DefaultDuration
	}
	if display == nil {
		display = DisplayFunc(func(Snapshot) {})
	}
	return &Session{
		duration:  durationSeconds,
		clock:     clk,
		picker:    picker,
		display:   display,
		remaining: durationSeconds,
	}
}

// Start begins a new session with a freshly picked reference text. It is a
// no-op while a session is running.
func (s *Session) Start() {
	if s.state == Running {
		return
	}
	s.stopTicker()
	s.reference = s.picker.Pick()
	s.refRunes = []rune(s.reference)
	s.typed = ""
	s.correct = 0
	s.total = 0
	s.liveWPM = 0
	s.liveAccuracy = 0
	s.result = nil
	s.startedAt = s.clock.Now()
	s.remaining = s.duration
	s.state = Running
	s.generation++
	gen := s.generation
	s.ticker = s.clock.Every(tickInterval, func() {
		// A tick queued by a previous session's handle must not reach this one.
		if gen == s.generation {
			s.Tick()
		}
	})
	s.push()
}

// InputChanged replaces the typed text and rescores it. Typing the
// reference exactly finishes the session early.
func (s *Session) InputChanged(text string) {
	if s.state != Running {
		return
	}
	s.typed = text
	s.correct, s.total = CountCorrect(s.refRunes, []rune(text))
	s.liveWPM = WPM(s.correct, s.clock.Now().Sub(s.startedAt))
	s.liveAccuracy = Accuracy(s.correct, s.total)
	s.push()
	if text == s.reference {
		s.finish(model.ReasonCompleted)
	}
}

// Tick counts down one second and finishes the session when time is up.
func (s *Session) Tick() {
	if s.state != Running {
		return
	}
	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		s.finish(model.ReasonTimeout)
		return
	}
	s.push()
}

// Finish ends a running session and computes the final result.
func (s *Session) Finish() {
	s.finish(model.ReasonCompleted)
}

func (s *Session) finish(reason model.FinishReason) {
	if s.state != Running {
		return
	}
	s.stopTicker()
	s.state = Finished
	endedAt := s.clock.Now()
	elapsed := endedAt.Sub(s.startedAt)
	wpm := WPM(s.correct, elapsed)
	acc := Accuracy(s.correct, s.total)
	s.liveWPM = wpm
	s.liveAccuracy = acc
	s.result = &model.Result{
		RunID:           uuid.NewString(),
		StartedAt:       s.startedAt,
		EndedAt:         endedAt,
		Elapsed:         elapsed,
		DurationSeconds: s.duration,
		Reference:       s.reference,
		Typed:           s.typed,
		Correct:         s.correct,
		Total:           s.total,
		WPM:             wpm,
		Accuracy:        acc,
		Grade:           GradeFor(wpm, acc),
		Reason:          reason,
	}
	s.push()
}

// Reset aborts any session and returns to idle.
func (s *Session) Reset() {
	s.stopTicker()
	s.state = Idle
	s.reference = ""
	s.refRunes = nil
	s.typed = ""
	s.correct = 0
	s.total = 0
	s.liveWPM = 0
	s.liveAccuracy = 0
	s.result = nil
	s.startedAt = time.Time{}
	s.remaining = s.duration
	s.push()
}

// Close releases the clock handle without notifying the display.
func (s *Session) Close() {
	s.stopTicker()
}

func (s *Session) stopTicker() {
	if s.ticker != nil {
		s.ticker.Stop()
		s.ticker = nil
	}
}

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Running reports whether a session is in progress.
func (s *Session) Running() bool { return s.state == Running }

// Reference returns the current reference text.
func (s *Session) Reference() string { return s.reference }

// Typed returns the latest typed text.
func (s *Session) Typed() string { return s.typed }

// Remaining returns the seconds left.
func (s *Session) Remaining() int { return s.remaining }

// Duration returns the configured length in seconds.
func (s *Session) Duration() int { return s.duration }

// Counts returns the correct and total typed character counts.
func (s *Session) Counts() (correct, total int) { return s.correct, s.total }

// Result returns the final result of the last finished session.
func (s *Session) Result() (model.Result, bool) {
	if s.result == nil {
		return model.Result{}, false
	}
	return *s.result, true
}

// Snapshot returns the current display values.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:     s.state,
		Reference: s.reference,
		Remaining: s.remaining,
		Duration:  s.duration,
		Progress:  float64(s.duration-s.remaining) / float64(s.duration) * 100,
		WPM:       s.liveWPM,
		Accuracy:  s.liveAccuracy,
		Correct:   s.correct,
		Total:     s.total,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

func (s *Session) push() {
	s.display.Show(s.Snapshot())
}
