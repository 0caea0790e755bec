package models

import (
	"time"
)

// FavoriteStock is one watchlist entry: a user tracking a symbol with an
// optional target price. Symbol is stored normalized (trimmed, uppercase);
// at most one row may exist per (user, symbol).
type FavoriteStock struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"uniqueIndex:idx_user_symbol" json:"userId"`
	Symbol       string    `gorm:"uniqueIndex:idx_user_symbol" json:"symbol"`
	DesiredPrice *float64  `json:"desiredPrice"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
