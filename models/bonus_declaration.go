package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bonus kinds and statuses. Declarations are auto-approved at creation under
// the current business rule; the status column stays in the contract so a
// review workflow can be added without a schema change.
const (
	BonusKindReferral   = "referral"
	BonusKindDirectSale = "direct_sale"

	BonusStatusPending  = "pending"
	BonusStatusApproved = "approved"
	BonusStatusRejected = "rejected"
)

// BonusDeclaration is an ad-hoc monetary bonus declared by a contributor for
// a date inside a campaign.
type BonusDeclaration struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `gorm:"index;not null" json:"user_id"`
	CampaignID uint            `gorm:"index;not null" json:"campaign_id"`
	Kind       string          `gorm:"size:32;not null" json:"kind"`
	Amount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Date       time.Time       `gorm:"type:date;not null" json:"date"`
	Status     string          `gorm:"size:16;not null;default:'pending'" json:"status"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
