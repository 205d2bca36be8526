// models/pool.go
package models

const (
	PoolStatusOpen     = "open"
	PoolStatusLocked   = "locked"
	PoolStatusResolved = "resolved"
)

const (
	WagerStatusPlaced   = "placed"
	WagerStatusWon      = "won"
	WagerStatusLost     = "lost"
	WagerStatusRefunded = "refunded"
)

// WagerPool aggregates the bets on one match. Its status is the second
// contended write in the system: open → locked happens once when the betting
// window closes, locked → resolved once when payouts settle. Both transitions
// are conditional updates so concurrent scheduler passes collapse to one
// effective write.
type WagerPool struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	MatchID string `gorm:"uniqueIndex;not null" json:"match_id"`

	Status string `gorm:"default:'open';index" json:"status"` // open | locked | resolved

	TotalFighter1 float64 `gorm:"default:0" json:"total_fighter1"`
	TotalFighter2 float64 `gorm:"default:0" json:"total_fighter2"`

	Wagers []Wager `gorm:"foreignKey:PoolID" json:"wagers,omitempty"`

	Timestamps
}

// Wager is a single user's bet on one side of a match.
type Wager struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	PoolID  string `gorm:"index;not null" json:"pool_id"`
	MatchID string `gorm:"index;not null" json:"match_id"`
	UserID  string `gorm:"index;not null" json:"user_id"` // external user ID

	Side   string  `gorm:"type:varchar(16);not null" json:"side"` // fighter1 | fighter2
	Amount float64 `gorm:"not null" json:"amount"`

	Status string  `gorm:"default:'placed'" json:"status"` // placed | won | lost | refunded
	Payout float64 `gorm:"default:0" json:"payout"`

	Timestamps
}
