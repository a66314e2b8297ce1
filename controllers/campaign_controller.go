package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/salesboost/salesboost/models"
	"github.com/salesboost/salesboost/utils"
)

const dateLayout = "2006-01-02"

// CampaignController manages campaign, challenge and action CRUD. The engine
// only reads these entities; writes stay in this thin layer.
type CampaignController struct {
	db *gorm.DB
}

// NewCampaignController creates a new controller instance.
func NewCampaignController(db *gorm.DB) *CampaignController {
	return &CampaignController{db: db}
}

// CreateCampaign opens a new campaign window. Manager-class only (enforced by
// route middleware).
func (c *CampaignController) CreateCampaign(ctx *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required,min=1,max=255"`
		StartDate string `json:"start_date" binding:"required"`
		EndDate   string `json:"end_date" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40051, "invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40052, "invalid end_date, expected YYYY-MM-DD")
		return
	}
	if end.Before(start) {
		utils.Error(ctx, http.StatusBadRequest, 40053, "end_date must not precede start_date")
		return
	}

	campaign := models.Campaign{
		Name:      utils.Sanitize(strings.TrimSpace(req.Name)),
		StartDate: start,
		EndDate:   end,
	}
	if err := c.db.Create(&campaign).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to create campaign")
		return
	}

	utils.Success(ctx, gin.H{"campaign": campaign})
}

// ListCampaigns returns campaigns newest first, paginated.
func (c *CampaignController) ListCampaigns(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var campaigns []models.Campaign
	var total int64

	if err := c.db.Model(&models.Campaign{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to count campaigns")
		return
	}
	if err := c.db.Order("start_date DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&campaigns).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to list campaigns")
		return
	}

	utils.Success(ctx, gin.H{
		"campaigns": campaigns,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetCampaign returns one campaign with its challenges and actions.
func (c *CampaignController) GetCampaign(ctx *gin.Context) {
	id, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40054, "invalid campaign id")
		return
	}

	var campaign models.Campaign
	err := c.db.Preload("Challenges", func(db *gorm.DB) *gorm.DB {
		return db.Order("challenges.date")
	}).Preload("Challenges.Actions", func(db *gorm.DB) *gorm.DB {
		return db.Order("actions.position")
	}).First(&campaign, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load campaign")
		return
	}

	utils.Success(ctx, gin.H{"campaign": campaign})
}

// CreateChallenge adds a scheduled challenge to a campaign.
func (c *CampaignController) CreateChallenge(ctx *gin.Context) {
	campaignID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40054, "invalid campaign id")
		return
	}

	var req struct {
		Name  string `json:"name" binding:"required,min=1,max=255"`
		Date  string `json:"date" binding:"required"`
		Value string `json:"value" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40055, "invalid request payload")
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40056, "invalid date, expected YYYY-MM-DD")
		return
	}
	value, err := decimal.NewFromString(req.Value)
	if err != nil || value.IsNegative() {
		utils.Error(ctx, http.StatusBadRequest, 40057, "invalid value, expected a non-negative decimal amount")
		return
	}

	var campaign models.Campaign
	if err := c.db.First(&campaign, campaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, "campaign not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to load campaign")
		return
	}

	challenge := models.Challenge{
		CampaignID: campaign.ID,
		Name:       utils.Sanitize(strings.TrimSpace(req.Name)),
		Date:       date,
		Value:      value.Round(2),
	}
	if err := c.db.Create(&challenge).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50054, "failed to create challenge")
		return
	}

	utils.Success(ctx, gin.H{"challenge": challenge})
}

// CreateAction appends an ordered action to a challenge.
func (c *CampaignController) CreateAction(ctx *gin.Context) {
	challengeID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40058, "invalid challenge id")
		return
	}

	var req struct {
		Type     string `json:"type" binding:"required"`
		Label    string `json:"label" binding:"required,min=1,max=255"`
		Position *int   `json:"position"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40059, "invalid request payload")
		return
	}

	switch req.Type {
	case models.ActionTypeCall, models.ActionTypeVisit, models.ActionTypeSale, models.ActionTypeTraining:
	default:
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid action type")
		return
	}

	var challenge models.Challenge
	if err := c.db.First(&challenge, challengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40421, "challenge not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50055, "failed to load challenge")
		return
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		var count int64
		if err := c.db.Model(&models.Action{}).Where("challenge_id = ?", challenge.ID).Count(&count).Error; err == nil {
			position = int(count)
		}
	}

	action := models.Action{
		ChallengeID: challenge.ID,
		Type:        req.Type,
		Label:       utils.Sanitize(strings.TrimSpace(req.Label)),
		Position:    position,
	}
	if err := c.db.Create(&action).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50056, "failed to create action")
		return
	}

	utils.Success(ctx, gin.H{"action": action})
}
