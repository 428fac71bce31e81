package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/grouptick/grouptick/go/internal/apperr"
	"github.com/grouptick/grouptick/go/internal/broadcast"
	"github.com/grouptick/grouptick/go/internal/events"
	"github.com/grouptick/grouptick/go/internal/ids"
	"github.com/grouptick/grouptick/go/internal/models"
)

// TimerRepository defines what the timer app layer needs from the repository
type TimerRepository interface {
	CreateTimer(ctx context.Context, t *models.Timer) error
	GetTimer(ctx context.Context, groupID, timerID string) (*models.Timer, error)
	Pause(ctx context.Context, timerID string, pausedAt time.Time) (*models.Timer, error)
	Resume(ctx context.Context, timerID string, pausedMs int64) (*models.Timer, error)
	Reset(ctx context.Context, timerID string, startsAt time.Time) (*models.Timer, error)
	AddTime(ctx context.Context, timerID string, incrementSec int64) (*models.Timer, error)
	DeleteTimer(ctx context.Context, timerID string) error
	ListTimersForGroup(ctx context.Context, groupID string) ([]models.Timer, error)
}

// GroupAccess defines what the timer app needs from the group store to
// authorize callers
type GroupAccess interface {
	GetGroup(ctx context.Context, id string) (*models.Group, error)
}

// App is the timer mutation engine. Every operation resolves the group,
// verifies the caller's membership, resolves the timer within that group,
// enforces the transition guard, persists, and then broadcasts the delta.
// Persistence is the source of truth; a failed broadcast is logged and
// swallowed so it never alters the mutation's reported outcome.
type App struct {
	repo      TimerRepository
	groups    GroupAccess
	publisher broadcast.Publisher
	clock     clockwork.Clock
}

// NewApp creates a new timer App
func NewApp(repo TimerRepository, groups GroupAccess, publisher broadcast.Publisher, clock clockwork.Clock) *App {
	return &App{
		repo:      repo,
		groups:    groups,
		publisher: publisher,
		clock:     clock,
	}
}

// CreateTimer creates a running timer in the group, started at the server's
// clock
func (a *App) CreateTimer(ctx context.Context, callerID, groupID string, req CreateTimerRequest) (*models.Timer, error) {
	if err := a.authorize(ctx, callerID, groupID); err != nil {
		return nil, err
	}

	v := &apperr.ValidationError{}
	if req.Label == "" {
		v.Add("label", "label is required")
	}
	if req.LengthSec <= 0 {
		v.Add("length_sec", "length must be positive")
	}
	if v.HasErrors() {
		return nil, v
	}

	t := &models.Timer{
		ID:        ids.NewCode(),
		GroupID:   groupID,
		Label:     req.Label,
		LengthSec: req.LengthSec,
		StartsAt:  a.clock.Now().UTC(),
	}
	if err := a.repo.CreateTimer(ctx, t); err != nil {
		return nil, err
	}

	a.publish(ctx, groupID, events.EventTypeTimerCreated, events.TimerCreatedPayload{
		TimerID:   t.ID,
		Label:     t.Label,
		LengthSec: t.LengthSec,
		StartsAt:  t.StartsAt,
	})

	log.Info().
		Str("timer_id", t.ID).
		Str("group_id", groupID).
		Int64("length_sec", t.LengthSec).
		Msg("timer created")

	return t, nil
}

// PauseTimer freezes a running timer at the given instant
func (a *App) PauseTimer(ctx context.Context, callerID, groupID, timerID string, req InstantRequest) (*models.Timer, error) {
	t, err := a.resolve(ctx, callerID, groupID, timerID)
	if err != nil {
		return nil, err
	}
	if t.Paused() {
		return nil, fmt.Errorf("timer %s is already paused: %w", timerID, apperr.ErrConflict)
	}

	pausedAt := a.instant(req)
	t, err = a.repo.Pause(ctx, timerID, pausedAt)
	if err != nil {
		return nil, err
	}

	a.publish(ctx, groupID, events.EventTypeTimerPaused, events.TimerPausedPayload{
		TimerID:  timerID,
		PausedAt: pausedAt,
	})

	return t, nil
}

// ResumeTimer unfreezes a paused timer, folding the completed pause interval
// into the timer's running total
func (a *App) ResumeTimer(ctx context.Context, callerID, groupID, timerID string, req InstantRequest) (*models.Timer, error) {
	t, err := a.resolve(ctx, callerID, groupID, timerID)
	if err != nil {
		return nil, err
	}
	if !t.Paused() {
		return nil, fmt.Errorf("timer %s is not paused: %w", timerID, apperr.ErrConflict)
	}

	resumedAt := a.instant(req)
	pausedMs := resumedAt.Sub(*t.PausedAt).Milliseconds()
	if pausedMs < 0 {
		return nil, apperr.NewValidation("instant_ms", "resume instant precedes the pause instant")
	}

	t, err = a.repo.Resume(ctx, timerID, pausedMs)
	if err != nil {
		return nil, err
	}

	a.publish(ctx, groupID, events.EventTypeTimerResumed, events.TimerResumedPayload{
		TimerID:       timerID,
		TotalPausedMs: t.TotalPausedMs,
	})

	return t, nil
}

// ResetTimer restarts a timer from the given instant with a clean pause
// history. There is no guard beyond membership: resetting is always legal.
func (a *App) ResetTimer(ctx context.Context, callerID, groupID, timerID string, req InstantRequest) (*models.Timer, error) {
	if _, err := a.resolve(ctx, callerID, groupID, timerID); err != nil {
		return nil, err
	}

	startsAt := a.instant(req)
	t, err := a.repo.Reset(ctx, timerID, startsAt)
	if err != nil {
		return nil, err
	}

	a.publish(ctx, groupID, events.EventTypeTimerReset, events.TimerResetPayload{
		TimerID:  timerID,
		StartsAt: startsAt,
	})

	return t, nil
}

// AddTime extends the timer by the fixed increment. Pause state is
// untouched: only the length changes.
func (a *App) AddTime(ctx context.Context, callerID, groupID, timerID string) (*models.Timer, error) {
	if _, err := a.resolve(ctx, callerID, groupID, timerID); err != nil {
		return nil, err
	}

	t, err := a.repo.AddTime(ctx, timerID, AddTimeIncrementSec)
	if err != nil {
		return nil, err
	}

	a.publish(ctx, groupID, events.EventTypeTimerAddTime, events.TimerAddTimePayload{
		TimerID:   timerID,
		LengthSec: t.LengthSec,
	})

	return t, nil
}

// DeleteTimer removes a timer permanently
func (a *App) DeleteTimer(ctx context.Context, callerID, groupID, timerID string) error {
	if _, err := a.resolve(ctx, callerID, groupID, timerID); err != nil {
		return err
	}

	if err := a.repo.DeleteTimer(ctx, timerID); err != nil {
		return err
	}

	a.publish(ctx, groupID, events.EventTypeTimerDeleted, events.TimerDeletedPayload{
		TimerID: timerID,
	})

	log.Info().
		Str("timer_id", timerID).
		Str("group_id", groupID).
		Msg("timer deleted")

	return nil
}

// ListTimers lists the group's timers for a member
func (a *App) ListTimers(ctx context.Context, callerID, groupID string) ([]models.Timer, error) {
	if err := a.authorize(ctx, callerID, groupID); err != nil {
		return nil, err
	}
	return a.repo.ListTimersForGroup(ctx, groupID)
}

// authorize resolves the group and verifies the caller's membership
func (a *App) authorize(ctx context.Context, callerID, groupID string) error {
	g, err := a.groups.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !g.HasMember(callerID) {
		return fmt.Errorf("member %s is not in group %s: %w", callerID, groupID, apperr.ErrForbidden)
	}
	return nil
}

// resolve authorizes the caller and fetches the timer within the group
func (a *App) resolve(ctx context.Context, callerID, groupID, timerID string) (*models.Timer, error) {
	if err := a.authorize(ctx, callerID, groupID); err != nil {
		return nil, err
	}
	return a.repo.GetTimer(ctx, groupID, timerID)
}

// instant converts a client-supplied clock reading, falling back to the
// server clock when the client sent none
func (a *App) instant(req InstantRequest) time.Time {
	if req.InstantMs != nil {
		return time.UnixMilli(*req.InstantMs).UTC()
	}
	return a.clock.Now().UTC()
}

// publish broadcasts a mutation's delta to the group topic. Failures are
// logged only: the persisted mutation already succeeded.
func (a *App) publish(ctx context.Context, groupID string, eventType events.EventType, payload interface{}) {
	if err := a.publisher.Publish(ctx, groupID, eventType, payload); err != nil {
		log.Error().
			Err(err).
			Str("group_id", groupID).
			Str("event_type", string(eventType)).
			Msg("failed to broadcast timer event")
	}
}
