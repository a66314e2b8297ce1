package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/salesboost/salesboost/models"
	"github.com/salesboost/salesboost/utils"
)

// CompletionController records action completion facts for contributors.
type CompletionController struct {
	db *gorm.DB
}

// NewCompletionController creates a new controller instance.
func NewCompletionController(db *gorm.DB) *CompletionController {
	return &CompletionController{db: db}
}

// CompleteAction marks an action as done by the caller. At most one
// completion fact may exist per (contributor, action): the composite unique
// index plus conflict-ignore makes repeats and concurrent submissions
// converge on the first recorded fact.
func (cc *CompletionController) CompleteAction(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	actionID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40070, "invalid action id")
		return
	}

	var action models.Action
	if err := cc.db.First(&action, actionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "action not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load action")
		return
	}

	now := time.Now()
	completion := models.ActionCompletion{
		UserID:      userID,
		ActionID:    action.ID,
		CompletedAt: &now,
	}
	if err := cc.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&completion).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to record completion")
		return
	}
	if completion.ID == 0 {
		// Conflict swallowed: the fact already exists, return it.
		if err := cc.db.Where("user_id = ? AND action_id = ?", userID, action.ID).First(&completion).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to record completion")
			return
		}
	}

	// Standings for this contributor changed
	utils.InvalidateByPrefix(standingCachePrefix(userID))

	utils.Success(ctx, gin.H{"completion": completion})
}

// ListMyCompletions returns the caller's completion facts, optionally
// restricted to one campaign.
func (cc *CompletionController) ListMyCompletions(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	query := cc.db.Where("user_id = ?", userID).Order("created_at DESC")

	if raw := ctx.Query("campaign_id"); raw != "" {
		campaignID, ok := parseUintQuery(raw)
		if !ok {
			utils.Error(ctx, http.StatusBadRequest, 40071, "invalid campaign_id")
			return
		}
		query = query.Where(
			"action_id IN (SELECT actions.id FROM actions JOIN challenges ON challenges.id = actions.challenge_id WHERE challenges.campaign_id = ?)",
			campaignID,
		)
	}

	var completions []models.ActionCompletion
	if err := query.Find(&completions).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to list completions")
		return
	}

	utils.Success(ctx, gin.H{"completions": completions, "count": len(completions)})
}
