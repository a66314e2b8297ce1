package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Challenge is one day's objective inside a campaign. Value is the euro amount
// earned when every action under the challenge is completed; it is stored as
// a fixed-point decimal to keep earnings sums exact.
type Challenge struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CampaignID uint            `gorm:"index;not null" json:"campaign_id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Date       time.Time       `gorm:"type:date;not null" json:"date"`
	Value      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"value"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Actions    []Action        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"actions,omitempty"`
}
