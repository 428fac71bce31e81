package models

import (
	"time"
)

// Timer represents a single countdown belonging to one group.
//
// The running/paused state is fully described by four fields: StartsAt marks
// the logical start of the run, PausedAt is non-nil exactly while the timer
// is paused, TotalPausedMs accumulates completed pause intervals, and
// LengthSec is the total run duration. There is no stored "remaining" field;
// remaining time is derived from these timestamps at read time so that any
// holder of the same tuple computes the same answer regardless of when it
// evaluates.
type Timer struct {
	ID            string     `json:"id"`
	GroupID       string     `json:"group_id"`
	Label         string     `json:"label"`
	LengthSec     int64      `json:"length_sec"`
	StartsAt      time.Time  `json:"starts_at"`
	PausedAt      *time.Time `json:"paused_at,omitempty"`
	TotalPausedMs int64      `json:"total_paused_ms"`
}

// TimerState is the derived view of a timer at some instant
type TimerState struct {
	Remaining time.Duration
	Completed bool
}

// Length returns the total run duration
func (t *Timer) Length() time.Duration {
	return time.Duration(t.LengthSec) * time.Second
}

// TotalPaused returns time spent in completed pause intervals
func (t *Timer) TotalPaused() time.Duration {
	return time.Duration(t.TotalPausedMs) * time.Millisecond
}

// Paused reports whether the timer is currently paused
func (t *Timer) Paused() bool {
	return t.PausedAt != nil
}

// StateAt derives the timer's state at the given instant. While paused the
// stored pause instant substitutes for now, so the result is frozen. The
// returned Remaining may be negative once the timer has run past its length;
// Display clamps it for rendering.
func (t *Timer) StateAt(now time.Time) TimerState {
	reference := now
	if t.PausedAt != nil {
		reference = *t.PausedAt
	}

	elapsed := reference.Sub(t.StartsAt.Add(t.TotalPaused()))
	remaining := t.Length() - elapsed

	return TimerState{
		Remaining: remaining,
		Completed: elapsed >= t.Length(),
	}
}

// Display returns the remaining duration clamped to zero for rendering
func (s TimerState) Display() time.Duration {
	if s.Remaining < 0 {
		return 0
	}
	return s.Remaining
}
