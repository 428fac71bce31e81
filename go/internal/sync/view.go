package sync

import (
	"fmt"
	gosync "sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/grouptick/grouptick/go/internal/broadcast"
	"github.com/grouptick/grouptick/go/internal/events"
	"github.com/grouptick/grouptick/go/internal/models"
)

// RedrawInterval is the display refresh period. Clients accept remaining
// times being visibly stale up to this long.
const RedrawInterval = 200 * time.Millisecond

// Subscriber is the view's handle on the broadcast connection
type Subscriber interface {
	Subscribe(groupID string, handler func(*events.TimerEvent)) (*broadcast.Subscription, error)
}

// RenderFunc receives the timers and their derived states on every redraw
// tick, in display order
type RenderFunc func(timers []models.Timer, states []models.TimerState)

// AlarmFunc fires once per timer each time it first transitions into
// completed
type AlarmFunc func(t models.Timer)

// GroupView owns one group's replica for the lifetime of a client view: it
// subscribes the group topic on open, re-renders on a fixed tick, and
// releases both on Close.
type GroupView struct {
	groupID string
	replica *Replica
	sub     *broadcast.Subscription
	clock   clockwork.Clock
	render  RenderFunc
	alarm   AlarmFunc

	alarmed map[string]bool
	done    chan struct{}
	closed  gosync.Once
}

// OpenView seeds a replica from the given full fetch, subscribes the group's
// topic and starts the redraw loop. render may be nil for headless uses;
// alarm may be nil to disable alarms.
func OpenView(groupID string, seed []models.Timer, conn Subscriber, clock clockwork.Clock, render RenderFunc, alarm AlarmFunc) (*GroupView, error) {
	v := &GroupView{
		groupID: groupID,
		replica: NewReplica(seed),
		clock:   clock,
		render:  render,
		alarm:   alarm,
		alarmed: make(map[string]bool),
		done:    make(chan struct{}),
	}

	sub, err := conn.Subscribe(groupID, v.replica.Apply)
	if err != nil {
		return nil, fmt.Errorf("subscribe group %s: %w", groupID, err)
	}
	v.sub = sub

	go v.redrawLoop()

	return v, nil
}

// Replica exposes the view's replica for direct reads
func (v *GroupView) Replica() *Replica {
	return v.replica
}

// Close unsubscribes the topic and stops the redraw loop. Safe to call more
// than once.
func (v *GroupView) Close() error {
	var err error
	v.closed.Do(func() {
		close(v.done)
		err = v.sub.Unsubscribe()
	})
	return err
}

// redrawLoop re-derives every timer's state on a fixed cadence. It only
// reads the replica; all writes happen on the event path.
func (v *GroupView) redrawLoop() {
	ticker := v.clock.NewTicker(RedrawInterval)
	defer ticker.Stop()

	for {
		select {
		case <-v.done:
			return
		case <-ticker.Chan():
			v.redraw()
		}
	}
}

func (v *GroupView) redraw() {
	timers := v.replica.Snapshot()
	now := v.clock.Now()

	states := make([]models.TimerState, len(timers))
	for i := range timers {
		states[i] = timers[i].StateAt(now)
		v.checkAlarm(timers[i], states[i])
	}

	if v.render != nil {
		v.render(timers, states)
	}
}

// checkAlarm fires the alarm on a timer's first tick in the completed state.
// Leaving completed (reset or add-time) re-arms it.
func (v *GroupView) checkAlarm(t models.Timer, s models.TimerState) {
	if !s.Completed {
		delete(v.alarmed, t.ID)
		return
	}
	if v.alarmed[t.ID] {
		return
	}
	v.alarmed[t.ID] = true
	if v.alarm != nil {
		v.alarm(t)
	}
}
