// engine/sync.go
//
// Playback synchronizer and lifecycle state machine. Every consumer — the
// API, the scheduler, the render client's sync endpoint — derives match
// progress through these functions so the boundary arithmetic lives in one
// place. All of them are pure reads of (match, now): safe under unbounded
// concurrent callers, identical answers for identical inputs.
package engine

import (
	"time"

	"bot-arena-system/models"
)

// Protocol constants. These are wire-visible and must not drift: clients
// time their countdowns and playback against the same numbers.
const (
	BettingWindowMs       = 30000
	DefaultTurnDurationMs = 2500
	MaxSimulationTurns    = 100
	BettingClosesAtTurn   = 3
	DefaultBestOf         = 3
)

// ElapsedMs is the wall-clock time since match creation in milliseconds.
func ElapsedMs(m *models.BotMatch, now time.Time) int64 {
	return now.Sub(m.CreatedAt).Milliseconds()
}

// TotalDurationMs is the betting window plus full playback length.
func TotalDurationMs(m *models.BotMatch) int64 {
	return BettingWindowMs + int64(m.TotalTurns)*int64(m.TurnDurationMs)
}

// CurrentTurnIndex maps elapsed real time to the turn a late joiner should be
// watching: 0 throughout the betting window, then floor(playback/turn
// duration), clamped to the ledger bounds. The first turn owns its full
// duration after window close — index 1 begins only once a whole turn has
// played out.
func CurrentTurnIndex(m *models.BotMatch, now time.Time) int {
	if m.TotalTurns == 0 {
		return 0
	}

	playback := ElapsedMs(m, now) - BettingWindowMs
	if playback < 0 {
		return 0
	}

	idx := int(playback / int64(m.TurnDurationMs))
	if idx > m.TotalTurns-1 {
		idx = m.TotalTurns - 1
	}
	return idx
}

// IsFinished reports whether playback has run its course. The stored status
// and the clock must agree here: whichever fires first is authoritative, and
// observing true while the status is still active is the trigger for the
// one-time active → completed transition (made idempotent at the persistence
// layer, not here).
func IsFinished(m *models.BotMatch, now time.Time) bool {
	if m.Status == models.MatchStatusCompleted {
		return true
	}
	return ElapsedMs(m, now) >= TotalDurationMs(m)
}

// LifecycleState derives the coarse state from time plus the stored flag.
func LifecycleState(m *models.BotMatch, now time.Time) string {
	if m.Status == models.MatchStatusCompleted {
		return models.LifecycleResolved
	}
	if IsFinished(m, now) {
		return models.LifecycleFinished
	}
	if ElapsedMs(m, now) < BettingWindowMs {
		return models.LifecycleBetting
	}
	return models.LifecyclePlaying
}

// BettingStatus is the countdown payload for wagering UIs.
type BettingStatus struct {
	IsOpen           bool   `json:"is_open"`
	SecondsRemaining int    `json:"seconds_remaining"`
	Reason           string `json:"reason"`
}

// GetBettingStatus reports whether wagers may still be placed. Betting is
// strictly the betting window, double-checked against both the turn-index
// close convention and total match duration to stay safe under clock skew.
func GetBettingStatus(m *models.BotMatch, now time.Time) BettingStatus {
	elapsed := ElapsedMs(m, now)

	if elapsed >= TotalDurationMs(m) || m.Status == models.MatchStatusCompleted {
		return BettingStatus{Reason: "match finished"}
	}
	if elapsed >= BettingWindowMs {
		return BettingStatus{Reason: "match in progress"}
	}
	if idx := CurrentTurnIndex(m, now); idx > m.BettingClosesAtTurn {
		return BettingStatus{Reason: "betting closed"}
	}

	remaining := BettingWindowMs - elapsed
	return BettingStatus{
		IsOpen:           true,
		SecondsRemaining: int((remaining + 999) / 1000),
		Reason:           "betting open",
	}
}
