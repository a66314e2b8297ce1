package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salesboost/salesboost/models"
	"github.com/salesboost/salesboost/services"
	"github.com/salesboost/salesboost/utils"
)

// ValidationController is the HTTP boundary of the engine: standings, team
// validation lists and state machine transitions.
type ValidationController struct {
	db         *gorm.DB
	hierarchy  *services.HierarchyService
	validation *services.ValidationService
}

// NewValidationController creates a new controller instance.
func NewValidationController(db *gorm.DB, hierarchy *services.HierarchyService, validation *services.ValidationService) *ValidationController {
	return &ValidationController{db: db, hierarchy: hierarchy, validation: validation}
}

// GetStanding returns the caller's standing for a campaign, or a subordinate's
// via ?user_id= for ancestor managers. The validation record is created lazily
// with a pending status.
func (vc *ValidationController) GetStanding(ctx *gin.Context) {
	callerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	campaignID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40090, "invalid campaign id")
		return
	}

	targetID := callerID
	if raw := ctx.Query("user_id"); raw != "" {
		requested, ok := parseUintQuery(raw)
		if !ok {
			utils.Error(ctx, http.StatusBadRequest, 40091, "invalid user_id")
			return
		}
		targetID = requested
	}

	// Contributor-or-ancestor rule: self access is always allowed, anything
	// else requires the caller above the target in the manager chain.
	allowed, err := vc.hierarchy.IsAncestorManagerOf(callerID, targetID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50090, "failed to check access")
		return
	}
	if !allowed {
		utils.Error(ctx, http.StatusForbidden, 40320, "not a member of your team")
		return
	}

	cacheKey := standingCacheKey(targetID, campaignID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(200, "application/json", b)
		return
	}

	standing, err := vc.validation.GetOrCreateStanding(targetID, campaignID)
	if err != nil {
		vc.respondEngineError(ctx, err)
		return
	}

	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: gin.H{"standing": standing}}, 5*time.Minute)
	utils.Success(ctx, gin.H{"standing": standing})
}

// ListValidations returns one standing per contributor transitively under the
// calling manager. Manager role is enforced by route middleware.
func (vc *ValidationController) ListValidations(ctx *gin.Context) {
	managerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	campaignID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40090, "invalid campaign id")
		return
	}

	var campaign models.Campaign
	if err := vc.db.First(&campaign, campaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50091, "failed to load campaign")
		return
	}

	standings, err := vc.validation.ListTeamStandings(managerID, campaignID)
	if err != nil {
		vc.respondEngineError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{"validations": standings, "count": len(standings)})
}

// SetValidation applies a review transition to a contributor's campaign
// validation record on behalf of the calling manager.
func (vc *ValidationController) SetValidation(ctx *gin.Context) {
	managerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	campaignID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40090, "invalid campaign id")
		return
	}
	contributorID, ok := parseUintParam(ctx, "userId")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40091, "invalid user_id")
		return
	}

	var req struct {
		Status  string `json:"status" binding:"required"`
		Comment string `json:"comment"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40092, "invalid request payload")
		return
	}
	if !models.IsValidValidationStatus(req.Status) {
		utils.Error(ctx, http.StatusBadRequest, 40093, "status must be pending, approved or rejected")
		return
	}

	record, err := vc.validation.SetValidation(managerID, contributorID, campaignID, req.Status, utils.Sanitize(req.Comment))
	if err != nil {
		vc.respondEngineError(ctx, err)
		return
	}

	// The contributor's cached standing now carries a stale status
	utils.InvalidateByPrefix(standingCachePrefix(contributorID))

	utils.Sugar.Infof("validation campaign=%d contributor=%d status=%s by manager=%d",
		campaignID, contributorID, record.Status, managerID)
	utils.Success(ctx, gin.H{"validation": record})
}

// respondEngineError maps engine sentinels onto the response envelope,
// keeping Forbidden and NotFound distinguishable for the UI.
func (vc *ValidationController) respondEngineError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40321, "not a member of your team")
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40422, "referenced resource not found")
	case errors.Is(err, services.ErrInvalidStatus):
		utils.Error(ctx, http.StatusBadRequest, 40093, "status must be pending, approved or rejected")
	default:
		utils.Error(ctx, http.StatusInternalServerError, 50092, "validation operation failed")
	}
}
