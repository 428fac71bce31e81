// Package sync keeps a client-side replica of a group's timers consistent
// with server state: events arriving on the group topic mutate the replica,
// while a fixed redraw tick re-derives remaining times against the wall
// clock. The two paths share nothing but the replica itself.
package sync

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/grouptick/grouptick/go/internal/events"
	"github.com/grouptick/grouptick/go/internal/models"
)

// Replica is an in-memory copy of one group's timers, ordered by start
// instant with insertion order breaking ties. Every update replaces the
// whole timer record so readers never observe a half-applied delta.
type Replica struct {
	mu     sync.RWMutex
	timers []models.Timer
}

// NewReplica seeds a replica from a full fetch
func NewReplica(seed []models.Timer) *Replica {
	r := &Replica{timers: make([]models.Timer, len(seed))}
	copy(r.timers, seed)
	r.sortLocked()
	return r
}

// Apply applies one timer event's delta to the replica. Events for timer ids
// the replica does not hold are dropped; that covers out-of-order delivery
// after a delete.
func (r *Replica) Apply(event *events.TimerEvent) {
	payload, err := events.ParsePayload(event)
	if err != nil {
		log.Warn().Err(err).Str("event_type", string(event.Type)).Msg("dropping unparseable timer event")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch p := payload.(type) {
	case events.TimerCreatedPayload:
		if r.indexLocked(p.TimerID) >= 0 {
			return
		}
		r.timers = append(r.timers, models.Timer{
			ID:        p.TimerID,
			GroupID:   event.GroupID,
			Label:     p.Label,
			LengthSec: p.LengthSec,
			StartsAt:  p.StartsAt,
		})
		r.sortLocked()

	case events.TimerPausedPayload:
		r.replaceLocked(p.TimerID, func(t models.Timer) models.Timer {
			pausedAt := p.PausedAt
			t.PausedAt = &pausedAt
			return t
		})

	case events.TimerResumedPayload:
		r.replaceLocked(p.TimerID, func(t models.Timer) models.Timer {
			t.PausedAt = nil
			t.TotalPausedMs = p.TotalPausedMs
			return t
		})

	case events.TimerResetPayload:
		r.replaceLocked(p.TimerID, func(t models.Timer) models.Timer {
			t.StartsAt = p.StartsAt
			t.PausedAt = nil
			t.TotalPausedMs = 0
			return t
		})
		r.sortLocked()

	case events.TimerAddTimePayload:
		r.replaceLocked(p.TimerID, func(t models.Timer) models.Timer {
			t.LengthSec = p.LengthSec
			return t
		})

	case events.TimerDeletedPayload:
		if i := r.indexLocked(p.TimerID); i >= 0 {
			r.timers = append(r.timers[:i], r.timers[i+1:]...)
		}
	}
}

// Snapshot returns a copy of the replica's timers in display order
func (r *Replica) Snapshot() []models.Timer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Timer, len(r.timers))
	copy(out, r.timers)
	return out
}

// Len returns the number of timers held
func (r *Replica) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.timers)
}

func (r *Replica) indexLocked(timerID string) int {
	for i := range r.timers {
		if r.timers[i].ID == timerID {
			return i
		}
	}
	return -1
}

// replaceLocked swaps in a fully rebuilt record; the update function works
// on a copy so a torn read can never surface.
func (r *Replica) replaceLocked(timerID string, update func(models.Timer) models.Timer) {
	i := r.indexLocked(timerID)
	if i < 0 {
		return
	}
	r.timers[i] = update(r.timers[i])
}

func (r *Replica) sortLocked() {
	sort.SliceStable(r.timers, func(i, j int) bool {
		return r.timers[i].StartsAt.Before(r.timers[j].StartsAt)
	})
}
