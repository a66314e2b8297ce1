package models

import "time"

// ActionCompletion records the fact that a contributor completed one action.
// The composite unique index enforces at most one completion per
// (contributor, action); creation races resolve through conflict-ignore.
type ActionCompletion struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;index;uniqueIndex:idx_completion_user_action" json:"user_id"`
	ActionID    uint       `gorm:"not null;index;uniqueIndex:idx_completion_user_action" json:"action_id"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
