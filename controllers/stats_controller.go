package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salesboost/salesboost/models"
	"github.com/salesboost/salesboost/utils"
)

// StatsController provides platform counters for the dashboard.
type StatsController struct {
	db *gorm.DB
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{db: db}
}

// GetStats returns aggregate platform statistics. Individual counter failures
// fall back to zero instead of failing the whole endpoint.
func (s *StatsController) GetStats(ctx *gin.Context) {
	var userCount int64
	var campaignCount int64
	var completionsToday int64
	var requestsToday int64

	if err := s.db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		userCount = 0
	}
	if err := s.db.Model(&models.Campaign{}).Count(&campaignCount).Error; err != nil {
		campaignCount = 0
	}

	now := time.Now().In(time.Local)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := s.db.Model(&models.ActionCompletion{}).
		Where("created_at >= ?", todayStart).
		Count(&completionsToday).Error; err != nil {
		completionsToday = 0
	}

	// Daily API activity recorded by middleware; string date equality avoids
	// timezone/type mismatches with the DATE column.
	today := now.Format("2006-01-02")
	if err := s.db.Model(&models.Activity{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count),0)").
		Scan(&requestsToday).Error; err != nil {
		requestsToday = 0
	}

	utils.Success(ctx, gin.H{
		"user_count":        userCount,
		"campaign_count":    campaignCount,
		"completions_today": completionsToday,
		"requests_today":    requestsToday,
	})
}
