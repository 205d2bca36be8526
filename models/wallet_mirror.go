// models/wallet_mirror.go
package models

import (
	"time"

	"gorm.io/gorm"
)

// WalletMirror mirrors balance data from the external wallet service so
// wager affordability checks stay local. It is read-only here except for the
// polling worker's upserts; funds never move through this table.
// Table name: wallet_mirror
type WalletMirror struct {
	ID       string  `gorm:"primaryKey;type:uuid;not null" json:"id"`
	UserID   string  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"` // External user ID
	Currency string  `gorm:"type:varchar(16);not null" json:"currency"`
	Balance  float64 `gorm:"not null" json:"balance"`

	LastSyncedAt time.Time `gorm:"not null" json:"last_synced_at"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`

	DeletedAt gorm.DeletedAt `gorm:"index"`
}
