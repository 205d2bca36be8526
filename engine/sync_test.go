package engine

import (
	"testing"
	"time"

	"bot-arena-system/models"
)

func syncTestMatch(createdAt time.Time) *models.BotMatch {
	return &models.BotMatch{
		ID:                  "sync-test",
		Status:              models.MatchStatusActive,
		TotalTurns:          10,
		TurnDurationMs:      DefaultTurnDurationMs,
		BettingClosesAtTurn: BettingClosesAtTurn,
		Timestamps:          models.Timestamps{CreatedAt: createdAt},
	}
}

func TestCurrentTurnIndex_WindowBoundary(t *testing.T) {
	t0 := time.Now()
	m := syncTestMatch(t0)

	// The first playback turn only begins its own full duration after the
	// window closes — index stays 0 on both sides of the boundary.
	if idx := CurrentTurnIndex(m, t0.Add(29999*time.Millisecond)); idx != 0 {
		t.Fatalf("index 1ms before window close = %d, want 0", idx)
	}
	if idx := CurrentTurnIndex(m, t0.Add(30001*time.Millisecond)); idx != 0 {
		t.Fatalf("index 1ms after window close = %d, want 0", idx)
	}
	if idx := CurrentTurnIndex(m, t0.Add(32499*time.Millisecond)); idx != 0 {
		t.Fatalf("index 1ms before first turn elapses = %d, want 0", idx)
	}
	if idx := CurrentTurnIndex(m, t0.Add(32500*time.Millisecond)); idx != 1 {
		t.Fatalf("index at first turn boundary = %d, want 1", idx)
	}
}

func TestCurrentTurnIndex_ClampsToLedger(t *testing.T) {
	t0 := time.Now()
	m := syncTestMatch(t0)

	farFuture := t0.Add(time.Hour)
	if idx := CurrentTurnIndex(m, farFuture); idx != m.TotalTurns-1 {
		t.Fatalf("index long after the match = %d, want %d", idx, m.TotalTurns-1)
	}
	if idx := CurrentTurnIndex(m, t0.Add(-time.Minute)); idx != 0 {
		t.Fatalf("index before creation = %d, want 0", idx)
	}
}

func TestCurrentTurnIndex_Monotonic(t *testing.T) {
	t0 := time.Now()
	m := syncTestMatch(t0)

	prev := -1
	for ms := int64(0); ms <= TotalDurationMs(m)+10000; ms += 100 {
		idx := CurrentTurnIndex(m, t0.Add(time.Duration(ms)*time.Millisecond))
		if idx < prev {
			t.Fatalf("turn index went backwards at %dms: %d -> %d", ms, prev, idx)
		}
		if idx < 0 || idx > m.TotalTurns-1 {
			t.Fatalf("turn index out of bounds at %dms: %d", ms, idx)
		}
		prev = idx
	}
}

func TestIsFinished_Boundary(t *testing.T) {
	t0 := time.Now()
	m := syncTestMatch(t0)
	total := TotalDurationMs(m) // 30000 + 10×2500 = 55000

	if IsFinished(m, t0.Add(time.Duration(total-1)*time.Millisecond)) {
		t.Fatal("match must not be finished 1ms before total duration")
	}
	if !IsFinished(m, t0.Add(time.Duration(total)*time.Millisecond)) {
		t.Fatal("match must be finished at total duration")
	}
}

func TestIsFinished_CompletedStatusWins(t *testing.T) {
	t0 := time.Now()
	m := syncTestMatch(t0)
	m.Status = models.MatchStatusCompleted

	// Stored state and clock must agree; whichever fires first is
	// authoritative.
	if !IsFinished(m, t0.Add(time.Second)) {
		t.Fatal("completed status must report finished regardless of the clock")
	}
}

func TestLifecycleState_Transitions(t *testing.T) {
	t0 := time.Now()
	m := syncTestMatch(t0)

	cases := []struct {
		atMs int64
		want string
	}{
		{0, models.LifecycleBetting},
		{29999, models.LifecycleBetting},
		{30000, models.LifecyclePlaying},
		{54999, models.LifecyclePlaying},
		{55000, models.LifecycleFinished},
		{90000, models.LifecycleFinished},
	}
	for _, c := range cases {
		got := LifecycleState(m, t0.Add(time.Duration(c.atMs)*time.Millisecond))
		if got != c.want {
			t.Fatalf("lifecycle at %dms = %s, want %s", c.atMs, got, c.want)
		}
	}

	m.Status = models.MatchStatusCompleted
	if got := LifecycleState(m, t0.Add(time.Minute)); got != models.LifecycleResolved {
		t.Fatalf("completed match should be resolved, got %s", got)
	}
}

func TestGetBettingStatus(t *testing.T) {
	t0 := time.Now()
	m := syncTestMatch(t0)

	open := GetBettingStatus(m, t0.Add(5*time.Second))
	if !open.IsOpen {
		t.Fatalf("betting should be open 5s in: %+v", open)
	}
	if open.SecondsRemaining != 25 {
		t.Fatalf("seconds remaining = %d, want 25", open.SecondsRemaining)
	}

	lastSecond := GetBettingStatus(m, t0.Add(29999*time.Millisecond))
	if !lastSecond.IsOpen || lastSecond.SecondsRemaining != 1 {
		t.Fatalf("1ms before close should report 1s remaining: %+v", lastSecond)
	}

	playing := GetBettingStatus(m, t0.Add(31*time.Second))
	if playing.IsOpen {
		t.Fatalf("betting should close with the window: %+v", playing)
	}

	done := GetBettingStatus(m, t0.Add(time.Hour))
	if done.IsOpen || done.Reason != "match finished" {
		t.Fatalf("betting after the match should report finished: %+v", done)
	}
}

func TestElapsedAndTotalDuration(t *testing.T) {
	t0 := time.Now()
	m := syncTestMatch(t0)

	if got := TotalDurationMs(m); got != 55000 {
		t.Fatalf("total duration = %d, want 55000", got)
	}
	if got := ElapsedMs(m, t0.Add(1500*time.Millisecond)); got != 1500 {
		t.Fatalf("elapsed = %d, want 1500", got)
	}
}
