package models

import "time"

// Progress is the per-user denormalized study summary. CompletedCards must
// always equal the number of that user's completed UserCardProgress rows;
// every mutation of either side happens inside one transaction.
//
// Unlike User and Card these rows are hard-deleted, never soft-deleted: a
// lingering soft-deleted row would collide with the unique indexes that the
// ledger's exactly-once guarantees depend on.
type Progress struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string    `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	TotalCards      int       `json:"total_cards" gorm:"default:0" validate:"gte=0"`
	CompletedCards  int       `json:"completed_cards" gorm:"default:0" validate:"gte=0"`
	MarkedImportant int       `json:"marked_important" gorm:"default:0" validate:"gte=0"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// UserCardProgress records the completion state of one (user, card) pair.
// The composite unique index keeps at most one row per pair, which is what
// makes concurrent MarkComplete calls increment the aggregate exactly once.
type UserCardProgress struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string     `json:"user_id" gorm:"uniqueIndex:idx_user_card;type:varchar(36)"`
	CardID      string     `json:"card_id" gorm:"uniqueIndex:idx_user_card;type:varchar(36)"`
	IsCompleted bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
