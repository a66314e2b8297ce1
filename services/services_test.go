package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/salesboost/salesboost/models"
)

// newTestDB creates an in-memory SQLite database migrated with every model
// and closed when the test finishes.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Campaign{},
		&models.Challenge{},
		&models.Action{},
		&models.ActionCompletion{},
		&models.BonusDeclaration{},
		&models.CampaignValidation{},
		&models.EvidenceFile{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func createUser(t *testing.T, db *gorm.DB, username, role string, managerID *uint) models.User {
	t.Helper()
	user := models.User{Username: username, Role: role, ManagerID: managerID}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createCampaign(t *testing.T, db *gorm.DB, name string) models.Campaign {
	t.Helper()
	campaign := models.Campaign{
		Name:      name,
		StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&campaign).Error)
	return campaign
}

// createChallenge adds a challenge worth value with actionCount actions.
func createChallenge(t *testing.T, db *gorm.DB, campaignID uint, value string, actionCount int) models.Challenge {
	t.Helper()
	challenge := models.Challenge{
		CampaignID: campaignID,
		Name:       fmt.Sprintf("challenge-%s", value),
		Date:       time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		Value:      decimal.RequireFromString(value),
	}
	require.NoError(t, db.Create(&challenge).Error)
	for i := 0; i < actionCount; i++ {
		action := models.Action{
			ChallengeID: challenge.ID,
			Position:    i,
			Type:        models.ActionTypeCall,
			Label:       fmt.Sprintf("action %d", i),
		}
		require.NoError(t, db.Create(&action).Error)
	}
	require.NoError(t, db.Preload("Actions").First(&challenge, challenge.ID).Error)
	return challenge
}

func completeActions(t *testing.T, db *gorm.DB, userID uint, actions []models.Action) {
	t.Helper()
	for _, action := range actions {
		now := time.Now()
		require.NoError(t, db.Create(&models.ActionCompletion{
			UserID:      userID,
			ActionID:    action.ID,
			CompletedAt: &now,
		}).Error)
	}
}

func ptr(v uint) *uint { return &v }
