package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salesboost/salesboost/models"
	"github.com/salesboost/salesboost/utils"
)

// BonusController handles ad-hoc bonus declarations.
type BonusController struct {
	db *gorm.DB
}

// NewBonusController creates a new controller instance.
func NewBonusController(db *gorm.DB) *BonusController {
	return &BonusController{db: db}
}

// DeclareBonus records a bonus for the caller. Declarations are auto-approved
// under the current business rule; the status column keeps the three-state
// contract so a review step can be introduced later without touching callers.
func (b *BonusController) DeclareBonus(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		CampaignID uint   `json:"campaign_id" binding:"required"`
		Kind       string `json:"kind" binding:"required"`
		Amount     string `json:"amount" binding:"required"`
		Date       string `json:"date" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40080, "invalid request payload")
		return
	}

	if req.Kind != models.BonusKindReferral && req.Kind != models.BonusKindDirectSale {
		utils.Error(ctx, http.StatusBadRequest, 40081, "invalid bonus kind")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		utils.Error(ctx, http.StatusBadRequest, 40082, "invalid amount, expected a positive decimal")
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40083, "invalid date, expected YYYY-MM-DD")
		return
	}

	var campaign models.Campaign
	if err := b.db.First(&campaign, req.CampaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50080, "failed to load campaign")
		return
	}
	if date.Before(campaign.StartDate) || date.After(campaign.EndDate) {
		utils.Error(ctx, http.StatusBadRequest, 40084, "date falls outside the campaign window")
		return
	}

	bonus := models.BonusDeclaration{
		UserID:     userID,
		CampaignID: campaign.ID,
		Kind:       req.Kind,
		Amount:     amount.Round(2),
		Date:       date,
		Status:     models.BonusStatusApproved,
	}
	if err := b.db.Create(&bonus).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50081, "failed to record bonus")
		return
	}

	// Standings for this contributor changed
	utils.InvalidateByPrefix(standingCachePrefix(userID))

	utils.Success(ctx, gin.H{"bonus": bonus})
}

// ListMyBonuses returns the caller's declarations, optionally for one campaign.
func (b *BonusController) ListMyBonuses(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	query := b.db.Where("user_id = ?", userID).Order("date DESC")
	if raw := ctx.Query("campaign_id"); raw != "" {
		campaignID, ok := parseUintQuery(raw)
		if !ok {
			utils.Error(ctx, http.StatusBadRequest, 40085, "invalid campaign_id")
			return
		}
		query = query.Where("campaign_id = ?", campaignID)
	}

	var bonuses []models.BonusDeclaration
	if err := query.Find(&bonuses).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50082, "failed to list bonuses")
		return
	}

	utils.Success(ctx, gin.H{"bonuses": bonuses, "count": len(bonuses)})
}
