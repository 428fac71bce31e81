package events

import (
	"time"
)

// TimerCreatedPayload is the payload for a timer-created event
type TimerCreatedPayload struct {
	TimerID   string    `json:"timer_id"`
	Label     string    `json:"label"`
	LengthSec int64     `json:"length_sec"`
	StartsAt  time.Time `json:"starts_at"`
}

// TimerPausedPayload is the payload for a timer-paused event
type TimerPausedPayload struct {
	TimerID  string    `json:"timer_id"`
	PausedAt time.Time `json:"paused_at"`
}

// TimerResumedPayload is the payload for a timer-resumed event
type TimerResumedPayload struct {
	TimerID       string `json:"timer_id"`
	TotalPausedMs int64  `json:"total_paused_ms"`
}

// TimerResetPayload is the payload for a timer-reset event
type TimerResetPayload struct {
	TimerID  string    `json:"timer_id"`
	StartsAt time.Time `json:"starts_at"`
}

// TimerDeletedPayload is the payload for a timer-deleted event
type TimerDeletedPayload struct {
	TimerID string `json:"timer_id"`
}

// TimerAddTimePayload is the payload for a timer-add-time event. It carries
// the new total length rather than the increment so replicas converge even
// if an event is dropped.
type TimerAddTimePayload struct {
	TimerID   string `json:"timer_id"`
	LengthSec int64  `json:"length_sec"`
}
