package models

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func runningTimer(lengthSec int64) Timer {
	return Timer{
		ID:        "TIMER0000001",
		GroupID:   "GROUP0000001",
		Label:     "standup",
		LengthSec: lengthSec,
		StartsAt:  epoch,
	}
}

func TestStateAtRunning(t *testing.T) {
	timer := runningTimer(300)

	s := timer.StateAt(epoch.Add(120 * time.Second))
	if s.Completed {
		t.Fatal("timer should not be completed")
	}
	if s.Remaining != 180*time.Second {
		t.Fatalf("remaining = %v, want 3m0s", s.Remaining)
	}
}

func TestStateAtNeverIncreasesWhileRunning(t *testing.T) {
	timer := runningTimer(300)

	prev := timer.StateAt(epoch).Remaining
	for i := 1; i <= 400; i++ {
		s := timer.StateAt(epoch.Add(time.Duration(i) * time.Second))
		if s.Remaining > prev {
			t.Fatalf("remaining increased at +%ds: %v > %v", i, s.Remaining, prev)
		}
		prev = s.Remaining
	}
}

func TestStateAtFrozenWhilePaused(t *testing.T) {
	timer := runningTimer(300)
	pausedAt := epoch.Add(100 * time.Second)
	timer.PausedAt = &pausedAt

	first := timer.StateAt(epoch.Add(101 * time.Second))
	later := timer.StateAt(epoch.Add(24 * time.Hour))
	if first != later {
		t.Fatalf("paused state drifted: %+v vs %+v", first, later)
	}
	if first.Remaining != 200*time.Second {
		t.Fatalf("remaining = %v, want 3m20s", first.Remaining)
	}
}

func TestPauseResumeAccountingPreservesRemaining(t *testing.T) {
	// Pause at +100s for 50s; afterwards the timer should read exactly as if
	// the pause never happened, shifted by the pause duration.
	timer := runningTimer(300)
	timer.TotalPausedMs = 50_000

	s := timer.StateAt(epoch.Add(150 * time.Second))
	if s.Remaining != 200*time.Second {
		t.Fatalf("remaining = %v, want 3m20s", s.Remaining)
	}
}

func TestStateAtCompleted(t *testing.T) {
	timer := runningTimer(60)

	s := timer.StateAt(epoch.Add(60 * time.Second))
	if !s.Completed {
		t.Fatal("timer should complete exactly at its length")
	}
	if s.Remaining != 0 {
		t.Fatalf("remaining = %v, want 0", s.Remaining)
	}

	s = timer.StateAt(epoch.Add(90 * time.Second))
	if !s.Completed {
		t.Fatal("timer should stay completed past its length")
	}
	if s.Remaining != -30*time.Second {
		t.Fatalf("remaining = %v, want -30s", s.Remaining)
	}
	if s.Display() != 0 {
		t.Fatalf("display = %v, want 0", s.Display())
	}
}

func TestStateAtBeforeStart(t *testing.T) {
	// A reset into the future yields more than the full length until the
	// start instant arrives; display still shows the raw value.
	timer := runningTimer(60)

	s := timer.StateAt(epoch.Add(-10 * time.Second))
	if s.Completed {
		t.Fatal("timer should not be completed before its start")
	}
	if s.Remaining != 70*time.Second {
		t.Fatalf("remaining = %v, want 1m10s", s.Remaining)
	}
}

func TestPaused(t *testing.T) {
	timer := runningTimer(60)
	if timer.Paused() {
		t.Fatal("fresh timer should not be paused")
	}
	at := epoch.Add(time.Second)
	timer.PausedAt = &at
	if !timer.Paused() {
		t.Fatal("timer with PausedAt set should be paused")
	}
}
