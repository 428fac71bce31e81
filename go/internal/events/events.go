// Package events defines the typed timer events propagated over the
// per-group broadcast topic. Each payload carries the timer id plus exactly
// the fields its transition changed, which is enough for a remote replica to
// apply the delta without re-fetching.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType identifies the kind of timer event
type EventType string

const (
	EventTypeTimerCreated EventType = "timer-created"
	EventTypeTimerPaused  EventType = "timer-paused"
	EventTypeTimerResumed EventType = "timer-resumed"
	EventTypeTimerReset   EventType = "timer-reset"
	EventTypeTimerDeleted EventType = "timer-deleted"
	EventTypeTimerAddTime EventType = "timer-add-time"
)

// TimerEvent is the envelope for all timer events on a group topic
type TimerEvent struct {
	ID        string          `json:"id"`        // Event UUID
	GroupID   string          `json:"group_id"`  // Owning group code
	Type      EventType       `json:"type"`      // Event type
	Timestamp time.Time       `json:"timestamp"` // Event creation time
	Data      json.RawMessage `json:"data"`      // Event-specific payload
}

// ParsePayload parses the envelope's data into the payload struct for its
// type.
func ParsePayload(event *TimerEvent) (interface{}, error) {
	switch event.Type {
	case EventTypeTimerCreated:
		var payload TimerCreatedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTimerPaused:
		var payload TimerPausedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTimerResumed:
		var payload TimerResumedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTimerReset:
		var payload TimerResetPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTimerDeleted:
		var payload TimerDeletedPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	case EventTypeTimerAddTime:
		var payload TimerAddTimePayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			return nil, err
		}
		return payload, nil

	default:
		return nil, fmt.Errorf("unknown event type: %s", event.Type)
	}
}
