package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salesboost/salesboost/models"
)

// Standing combines the validation record with the aggregated earnings view
// for one (contributor, campaign) pair.
type Standing struct {
	Validation models.CampaignValidation `json:"validation"`
	Earnings   CampaignStanding          `json:"earnings"`
}

// ValidationService owns the per-(contributor, campaign) approval records and
// the only legal transitions on them.
type ValidationService struct {
	db       *gorm.DB
	access   *AccessService
	earnings *EarningsService
}

// NewValidationService creates a ValidationService.
func NewValidationService(db *gorm.DB, access *AccessService, earnings *EarningsService) *ValidationService {
	return &ValidationService{db: db, access: access, earnings: earnings}
}

// GetOrCreateStanding returns the contributor's standing for a campaign,
// lazily materializing a pending validation record on first read. The lazy
// insert uses conflict-ignore on the (user, campaign) unique index: losing a
// concurrent first-creation race means someone else created the row, so it is
// re-fetched instead of failing.
func (v *ValidationService) GetOrCreateStanding(contributorID, campaignID uint) (*Standing, error) {
	// Computes the earnings first: it verifies both the contributor and the
	// campaign exist before any row is written.
	earnings, err := v.earnings.ComputeCampaignStanding(contributorID, campaignID)
	if err != nil {
		return nil, err
	}

	record, err := v.fetchOrInitValidation(contributorID, campaignID)
	if err != nil {
		return nil, err
	}

	return &Standing{Validation: *record, Earnings: *earnings}, nil
}

func (v *ValidationService) fetchOrInitValidation(contributorID, campaignID uint) (*models.CampaignValidation, error) {
	var record models.CampaignValidation
	err := v.db.Where("user_id = ? AND campaign_id = ?", contributorID, campaignID).First(&record).Error
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	record = models.CampaignValidation{
		UserID:     contributorID,
		CampaignID: campaignID,
		Status:     models.ValidationStatusPending,
	}
	if err := v.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return nil, err
	}
	if record.ID != 0 {
		return &record, nil
	}

	// Conflict swallowed: another request created the row first.
	if err := v.db.Where("user_id = ? AND campaign_id = ?", contributorID, campaignID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// SetValidation applies a state machine transition on behalf of managerID.
// Approval and rejection stamp the reviewer and timestamp; reverting to
// pending clears both, legitimizing the correction of a mistaken review.
// Re-transitions are always allowed; two concurrent reviewers race at last
// write wins.
func (v *ValidationService) SetValidation(managerID, contributorID, campaignID uint, status, comment string) (*models.CampaignValidation, error) {
	if !models.IsValidValidationStatus(status) {
		return nil, fmt.Errorf("status %q: %w", status, ErrInvalidStatus)
	}

	allowed, err := v.access.CanValidate(managerID, contributorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("manager %d over contributor %d: %w", managerID, contributorID, ErrForbidden)
	}

	var campaign models.Campaign
	if err := v.db.First(&campaign, campaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("campaign %d: %w", campaignID, ErrNotFound)
		}
		return nil, err
	}

	var record models.CampaignValidation
	err = v.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND campaign_id = ?", contributorID, campaignID).
			First(&record).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		record.UserID = contributorID
		record.CampaignID = campaignID
		record.Status = status
		record.Comment = comment
		if status == models.ValidationStatusPending {
			record.ValidatedBy = nil
			record.ValidatedAt = nil
		} else {
			now := time.Now()
			record.ValidatedBy = &managerID
			record.ValidatedAt = &now
		}

		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListTeamStandings returns one standing per contributor transitively under
// managerID, ordered by contributor id. Records are lazily created the same
// way GetOrCreateStanding does.
func (v *ValidationService) ListTeamStandings(managerID, campaignID uint) ([]Standing, error) {
	contributors, err := v.access.hierarchy.ResolveContributors(managerID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(contributors))
	for id := range contributors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	standings := make([]Standing, 0, len(ids))
	for _, id := range ids {
		standing, err := v.GetOrCreateStanding(id, campaignID)
		if err != nil {
			return nil, err
		}
		standings = append(standings, *standing)
	}
	return standings, nil
}
