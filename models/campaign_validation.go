package models

import "time"

// Validation statuses for a contributor's campaign review.
const (
	ValidationStatusPending  = "pending"
	ValidationStatusApproved = "approved"
	ValidationStatusRejected = "rejected"
)

// IsValidValidationStatus reports whether status belongs to the enum.
func IsValidValidationStatus(status string) bool {
	return status == ValidationStatusPending ||
		status == ValidationStatusApproved ||
		status == ValidationStatusRejected
}

// CampaignValidation is the single review record per (contributor, campaign).
// It is created lazily with a pending status on first read; the composite
// unique index makes concurrent first-creation a recoverable conflict.
// ValidatedBy/ValidatedAt are stamped on approval or rejection and cleared
// when a reviewer reverts the record to pending.
type CampaignValidation struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_validation_user_campaign" json:"user_id"`
	CampaignID  uint       `gorm:"not null;uniqueIndex:idx_validation_user_campaign" json:"campaign_id"`
	Status      string     `gorm:"size:16;not null;default:'pending'" json:"status"`
	ValidatedBy *uint      `json:"validated_by"`
	ValidatedAt *time.Time `json:"validated_at"`
	Comment     string     `gorm:"size:1024" json:"comment"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
