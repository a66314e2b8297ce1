package models

import "time"

// Action kinds supported by the challenge builder.
const (
	ActionTypeCall     = "call"
	ActionTypeVisit    = "visit"
	ActionTypeSale     = "sale"
	ActionTypeTraining = "training"
)

// Action is a single ordered step of a challenge.
type Action struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ChallengeID uint      `gorm:"index;not null" json:"challenge_id"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	Type        string    `gorm:"size:32;not null" json:"type"`
	Label       string    `gorm:"size:255;not null" json:"label"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
