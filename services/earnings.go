package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salesboost/salesboost/models"
)

// CampaignStanding is the aggregated completion and earnings view for one
// (contributor, campaign) pair. Amounts are exact decimals; the percentage is
// rounded half-up to two places.
type CampaignStanding struct {
	TotalEarnings        decimal.Decimal `json:"total_earnings"`
	CompletedChallenges  int             `json:"completed_challenges"`
	TotalChallenges      int             `json:"total_challenges"`
	CompletionPercentage decimal.Decimal `json:"completion_percentage"`
}

// EarningsService computes campaign standings. All methods are read-only.
type EarningsService struct {
	db *gorm.DB
}

// NewEarningsService creates an EarningsService backed by db.
func NewEarningsService(db *gorm.DB) *EarningsService {
	return &EarningsService{db: db}
}

// ComputeCampaignStanding aggregates the contributor's completion state and
// earnings over one campaign. A challenge counts as complete only when it has
// at least one action and every action carries a completion fact for the
// contributor; total earnings combine the euro values of complete challenges
// with approved bonus amounts. A valid pair with no data yields an all-zero
// standing rather than an error.
func (e *EarningsService) ComputeCampaignStanding(contributorID, campaignID uint) (*CampaignStanding, error) {
	var contributor models.User
	if err := e.db.First(&contributor, contributorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("contributor %d: %w", contributorID, ErrNotFound)
		}
		return nil, err
	}

	var campaign models.Campaign
	if err := e.db.First(&campaign, campaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("campaign %d: %w", campaignID, ErrNotFound)
		}
		return nil, err
	}

	var challenges []models.Challenge
	if err := e.db.Preload("Actions").Where("campaign_id = ?", campaignID).Find(&challenges).Error; err != nil {
		return nil, err
	}

	completed, err := e.completedActionSet(contributorID, challenges)
	if err != nil {
		return nil, err
	}

	completedChallenges := 0
	challengeEarnings := decimal.Zero
	for _, challenge := range challenges {
		if challengeComplete(challenge, completed) {
			completedChallenges++
			challengeEarnings = challengeEarnings.Add(challenge.Value)
		}
	}

	bonusEarnings, err := e.sumApprovedBonuses(contributorID, campaignID)
	if err != nil {
		return nil, err
	}

	standing := &CampaignStanding{
		TotalEarnings:        challengeEarnings.Add(bonusEarnings),
		CompletedChallenges:  completedChallenges,
		TotalChallenges:      len(challenges),
		CompletionPercentage: completionPercentage(completedChallenges, len(challenges)),
	}
	return standing, nil
}

// completedActionSet loads the contributor's completion facts restricted to
// the actions of the given challenges.
func (e *EarningsService) completedActionSet(contributorID uint, challenges []models.Challenge) (map[uint]struct{}, error) {
	var actionIDs []uint
	for _, challenge := range challenges {
		for _, action := range challenge.Actions {
			actionIDs = append(actionIDs, action.ID)
		}
	}

	done := make(map[uint]struct{}, len(actionIDs))
	if len(actionIDs) == 0 {
		return done, nil
	}

	var completions []models.ActionCompletion
	if err := e.db.Where("user_id = ? AND action_id IN ?", contributorID, actionIDs).Find(&completions).Error; err != nil {
		return nil, err
	}
	for _, c := range completions {
		done[c.ActionID] = struct{}{}
	}
	return done, nil
}

func (e *EarningsService) sumApprovedBonuses(contributorID, campaignID uint) (decimal.Decimal, error) {
	var bonuses []models.BonusDeclaration
	err := e.db.Where("user_id = ? AND campaign_id = ? AND status = ?",
		contributorID, campaignID, models.BonusStatusApproved).Find(&bonuses).Error
	if err != nil {
		return decimal.Zero, err
	}

	// Summed in Go as decimals so MySQL and SQLite agree digit for digit.
	total := decimal.Zero
	for _, b := range bonuses {
		total = total.Add(b.Amount)
	}
	return total, nil
}

// challengeComplete applies the completion rule: at least one action, and
// every action completed. A zero-action challenge is never complete.
func challengeComplete(challenge models.Challenge, done map[uint]struct{}) bool {
	if len(challenge.Actions) == 0 {
		return false
	}
	for _, action := range challenge.Actions {
		if _, ok := done[action.ID]; !ok {
			return false
		}
	}
	return true
}

func completionPercentage(completed, total int) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(completed)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		Round(2)
}
