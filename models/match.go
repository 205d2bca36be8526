// models/match.go
package models

const (
	MatchStatusActive    = "active"
	MatchStatusCompleted = "completed"
)

// Lifecycle states are derived from wall-clock time, never stored — only the
// terminal resolved state is backed by the persisted status flag.
const (
	LifecycleBetting  = "betting"
	LifecyclePlaying  = "playing"
	LifecycleFinished = "finished"
	LifecycleResolved = "resolved"
)

const (
	SideFighter1 = "fighter1"
	SideFighter2 = "fighter2"
)

// BotMatch is the aggregate root: a fully pre-simulated fight plus the
// metadata observers need to replay it against the wall clock. The turn
// ledger is append-only at creation and immutable afterwards; the only
// mutable column is Status, which flips active → completed exactly once.
type BotMatch struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Seed string `gorm:"not null" json:"seed"` // equals ID by convention

	Fighter1ID   string `gorm:"not null" json:"fighter1_id"`
	Fighter1Name string `json:"fighter1_name"`
	Fighter2ID   string `gorm:"not null" json:"fighter2_id"`
	Fighter2Name string `json:"fighter2_name"`

	Format     int `gorm:"default:3" json:"format"` // best-of-N rounds
	TotalTurns int `json:"total_turns"`

	MaxHP1     int `json:"max_hp1"`
	MaxEnergy1 int `json:"max_energy1"`
	MaxHP2     int `json:"max_hp2"`
	MaxEnergy2 int `json:"max_energy2"`

	TurnDurationMs      int `json:"turn_duration_ms"`
	BettingClosesAtTurn int `json:"betting_closes_at_turn"`

	Status string `gorm:"default:'active';index" json:"status"` // active | completed

	// Winner is the winning side ("fighter1"/"fighter2"), predetermined at
	// simulation time; nil when the safety cap was hit with no conclusion.
	Winner     *string `json:"winner,omitempty"`
	WinnerName string  `json:"winner_name,omitempty"`

	Turns []Turn `gorm:"foreignKey:MatchID" json:"turns,omitempty"`

	Timestamps
}

// Turn is one immutable row of the match ledger.
type Turn struct {
	ID      string `gorm:"primaryKey" json:"id"`
	MatchID string `gorm:"index;not null" json:"match_id"`

	TurnNumber int `gorm:"not null" json:"turn_number"` // 1-based, contiguous
	Round      int `gorm:"not null" json:"round"`

	// Resolved moves, post stun substitution.
	Move1 string `json:"move1"`
	Move2 string `json:"move2"`

	HP1     int `json:"hp1"`
	HP2     int `json:"hp2"`
	Energy1 int `json:"energy1"`
	Energy2 int `json:"energy2"`
	Guard1  int `json:"guard1"`
	Guard2  int `json:"guard2"`

	Narrative string `json:"narrative"`

	IsRoundEnd  bool    `json:"is_round_end"`
	IsMatchEnd  bool    `json:"is_match_end"`
	RoundWinner *string `json:"round_winner,omitempty"` // side, not archetype
	MatchWinner *string `json:"match_winner,omitempty"`

	Timestamps
}
