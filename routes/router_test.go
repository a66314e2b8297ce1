package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/salesboost/salesboost/config"
	"github.com/salesboost/salesboost/models"
	"github.com/salesboost/salesboost/utils"
)

var loggerOnce sync.Once

// newTestRouter builds the full engine stack on an in-memory SQLite database.
func newTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	config.SetForTesting(config.AppConfig{
		JWTSecret:          "router-test-secret",
		GinMode:            "test",
		AllowedOrigins:     []string{"*"},
		RateLimitPerMinute: 100000,
		EvidenceDir:        t.TempDir(),
		EvidenceURLTTLMin:  15,
		EvidenceMaxSizeMB:  10,
		LogLevel:           "error",
	})
	loggerOnce.Do(func() {
		require.NoError(t, utils.InitLogger(config.Get()))
	})

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
		&models.Activity{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return SetupRouter(db), db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string, managerID *uint) (models.User, string) {
	t.Helper()
	user := models.User{Username: username, Role: role, ManagerID: managerID}
	require.NoError(t, db.Create(&user).Error)
	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, time.Hour)
	require.NoError(t, err)
	return user, token
}

func seedCampaign(t *testing.T, db *gorm.DB) models.Campaign {
	t.Helper()
	campaign := models.Campaign{
		Name:      "rentrée",
		StartDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(&campaign).Error)
	return campaign
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (int, map[string]interface{}) {
	t.Helper()
	var env struct {
		Code int                    `json:"code"`
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env.Code, env.Data
}

func TestRegisterLoginMe(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "marion",
		"password": "s3cret-pass",
		"role":     "marraine",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, data := decodeEnvelope(t, w)
	user := data["user"].(map[string]interface{})
	require.Equal(t, models.RoleTop, user["role"])

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "marion",
		"password": "s3cret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, data = decodeEnvelope(t, w)
	token := data["token"].(string)
	require.NotEmpty(t, token)

	w = doJSON(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, data = decodeEnvelope(t, w)
	require.Equal(t, "marion", data["user"].(map[string]interface{})["username"])

	w = doJSON(t, r, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "marion",
		"password": "wrong-pass",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/api/v1/campaigns", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	code, _ := decodeEnvelope(t, w)
	require.Equal(t, 40101, code)
}

func TestStandingAccessRules(t *testing.T) {
	r, db := newTestRouter(t)

	manager, managerToken := seedUser(t, db, "manager", models.RoleManager, nil)
	contributor, contributorToken := seedUser(t, db, "contributor", models.RoleContributor, &manager.ID)
	_, strangerToken := seedUser(t, db, "stranger", models.RoleContributor, nil)
	campaign := seedCampaign(t, db)

	// Self access
	w := doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/v1/campaigns/%d/standing", campaign.ID), contributorToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, data := decodeEnvelope(t, w)
	standing := data["standing"].(map[string]interface{})
	validation := standing["validation"].(map[string]interface{})
	require.Equal(t, models.ValidationStatusPending, validation["status"])

	// Ancestor manager access via user_id
	w = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/v1/campaigns/%d/standing?user_id=%d", campaign.ID, contributor.ID), managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Stranger is denied before anything is computed
	w = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/v1/campaigns/%d/standing?user_id=%d", campaign.ID, contributor.ID), strangerToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	code, _ := decodeEnvelope(t, w)
	require.Equal(t, 40320, code)

	// Unknown campaign maps the engine sentinel onto 404
	w = doJSON(t, r, http.MethodGet, "/api/v1/campaigns/9999/standing", contributorToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidationRoutes(t *testing.T) {
	r, db := newTestRouter(t)

	manager, managerToken := seedUser(t, db, "manager", models.RoleManager, nil)
	contributor, contributorToken := seedUser(t, db, "contributor", models.RoleContributor, &manager.ID)
	campaign := seedCampaign(t, db)

	// Contributor role cannot reach manager routes
	w := doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/v1/campaigns/%d/validations", campaign.ID), contributorToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	code, _ := decodeEnvelope(t, w)
	require.Equal(t, 40310, code)

	// Manager lists one pending standing per team contributor
	w = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/v1/campaigns/%d/validations", campaign.ID), managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, data := decodeEnvelope(t, w)
	require.Equal(t, float64(1), data["count"])

	// Approve, then read the stamped record back
	w = doJSON(t, r, http.MethodPut,
		fmt.Sprintf("/api/v1/campaigns/%d/validations/%d", campaign.ID, contributor.ID),
		managerToken, gin.H{"status": "approved", "comment": "bravo"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, data = decodeEnvelope(t, w)
	validation := data["validation"].(map[string]interface{})
	require.Equal(t, models.ValidationStatusApproved, validation["status"])
	require.NotNil(t, validation["validated_by"])

	w = doJSON(t, r, http.MethodPut,
		fmt.Sprintf("/api/v1/campaigns/%d/validations/%d", campaign.ID, contributor.ID),
		managerToken, gin.H{"status": "nonsense"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEvidenceUploadAccessDownload(t *testing.T) {
	r, db := newTestRouter(t)

	manager, managerToken := seedUser(t, db, "manager", models.RoleManager, nil)
	contributor, contributorToken := seedUser(t, db, "contributor", models.RoleContributor, &manager.ID)
	_, strangerToken := seedUser(t, db, "stranger", models.RoleContributor, nil)
	campaign := seedCampaign(t, db)

	challenge := models.Challenge{
		CampaignID: campaign.ID,
		Name:       "jour 1",
		Date:       time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
		Value:      decimal.RequireFromString("1.00"),
	}
	require.NoError(t, db.Create(&challenge).Error)
	action := models.Action{ChallengeID: challenge.ID, Position: 1, Type: models.ActionTypeCall, Label: "appeler"}
	require.NoError(t, db.Create(&action).Error)
	completion := models.ActionCompletion{UserID: contributor.ID, ActionID: action.ID}
	require.NoError(t, db.Create(&completion).Error)

	// Upload linked to the completion
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("completion_id", fmt.Sprint(completion.ID)))
	fw, err := mw.CreateFormFile("file", "proof.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("signed order form"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/evidence", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+contributorToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, data := decodeEnvelope(t, w)
	evidenceID := uint(data["evidence"].(map[string]interface{})["id"].(float64))

	// Ancestor manager is granted a signed URL
	w = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/v1/evidence/%d/access", evidenceID), managerToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, data = decodeEnvelope(t, w)
	require.Equal(t, true, data["granted"])
	url := data["url"].(string)
	require.NotEmpty(t, url)

	// The signed URL downloads without any session auth
	w = doJSON(t, r, http.MethodGet, url, "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "signed order form", w.Body.String())

	// A tampered signature is rejected
	w = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/v1/evidence/%d/download?exp=9999999999&sig=bogus", evidenceID), "", nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// A stranger gets a denial, not a URL
	w = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/v1/evidence/%d/access", evidenceID), strangerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	_, data = decodeEnvelope(t, w)
	require.Equal(t, false, data["granted"])
	_, hasURL := data["url"]
	require.False(t, hasURL)
}

func TestCompleteActionAndStanding(t *testing.T) {
	r, db := newTestRouter(t)

	manager, _ := seedUser(t, db, "manager", models.RoleManager, nil)
	_, contributorToken := seedUser(t, db, "contributor", models.RoleContributor, &manager.ID)
	campaign := seedCampaign(t, db)

	challenge := models.Challenge{
		CampaignID: campaign.ID,
		Name:       "jour 1",
		Date:       time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
		Value:      decimal.RequireFromString("2.50"),
	}
	require.NoError(t, db.Create(&challenge).Error)
	action := models.Action{ChallengeID: challenge.ID, Position: 1, Type: models.ActionTypeSale, Label: "vendre"}
	require.NoError(t, db.Create(&action).Error)

	w := doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/actions/%d/complete", action.ID), contributorToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Completing twice stays idempotent
	w = doJSON(t, r, http.MethodPost,
		fmt.Sprintf("/api/v1/actions/%d/complete", action.ID), contributorToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet,
		fmt.Sprintf("/api/v1/campaigns/%d/standing", campaign.ID), contributorToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	_, data := decodeEnvelope(t, w)
	earnings := data["standing"].(map[string]interface{})["earnings"].(map[string]interface{})
	require.Equal(t, "2.5", fmt.Sprint(earnings["total_earnings"]))
	require.Equal(t, float64(1), earnings["completed_challenges"])
}
