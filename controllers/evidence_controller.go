package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/salesboost/salesboost/config"
	"github.com/salesboost/salesboost/models"
	"github.com/salesboost/salesboost/services"
	"github.com/salesboost/salesboost/utils"
)

// EvidenceController stores uploaded proof files and gates access to them
// through the engine's ownership chain.
type EvidenceController struct {
	db     *gorm.DB
	access *services.AccessService
}

// NewEvidenceController creates a new controller instance.
func NewEvidenceController(db *gorm.DB, access *services.AccessService) *EvidenceController {
	return &EvidenceController{db: db, access: access}
}

// Upload stores a proof file for the caller and links it to exactly one of
// their completion or bonus records. The link is what later derives the
// owning contributor; a file is never stored without one.
func (e *EvidenceController) Upload(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	completionID, hasCompletion := parseOptionalUintForm(ctx, "completion_id")
	bonusID, hasBonus := parseOptionalUintForm(ctx, "bonus_id")
	if hasCompletion == hasBonus {
		utils.Error(ctx, http.StatusBadRequest, 40095, "exactly one of completion_id or bonus_id is required")
		return
	}

	// The linked record must exist and belong to the uploader.
	var link models.EvidenceFile
	if hasCompletion {
		var completion models.ActionCompletion
		if err := e.db.First(&completion, completionID).Error; err != nil || completion.UserID != userID {
			utils.Error(ctx, http.StatusBadRequest, 40096, "completion not found or not yours")
			return
		}
		link.CompletionID = &completion.ID
	} else {
		var bonus models.BonusDeclaration
		if err := e.db.First(&bonus, bonusID).Error; err != nil || bonus.UserID != userID {
			utils.Error(ctx, http.StatusBadRequest, 40097, "bonus not found or not yours")
			return
		}
		link.BonusID = &bonus.ID
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40098, "missing file")
		return
	}

	cfg := config.Get()
	if file.Size > int64(cfg.EvidenceMaxSizeMB)*1024*1024 {
		utils.Error(ctx, http.StatusBadRequest, 40099, fmt.Sprintf("file exceeds %dMB limit", cfg.EvidenceMaxSizeMB))
		return
	}

	if err := os.MkdirAll(cfg.EvidenceDir, 0o755); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50100, "failed to prepare storage")
		return
	}

	ext := filepath.Ext(file.Filename)
	storedName := uuid.NewString() + ext
	storedPath := filepath.Join(cfg.EvidenceDir, storedName)

	src, err := file.Open()
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50101, "failed to read upload")
		return
	}
	defer src.Close()

	dst, err := os.Create(storedPath)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50102, "failed to store file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(storedPath)
		utils.Error(ctx, http.StatusInternalServerError, 50102, "failed to store file")
		return
	}

	link.FileName = file.Filename
	link.FilePath = storedPath
	link.ContentType = file.Header.Get("Content-Type")
	link.SizeBytes = file.Size

	if err := e.db.Create(&link).Error; err != nil {
		_ = os.Remove(storedPath)
		utils.Error(ctx, http.StatusInternalServerError, 50103, "failed to record evidence")
		return
	}

	utils.Success(ctx, gin.H{"evidence": link})
}

// Access answers whether the caller may view an evidence file and, when
// granted, issues a short-lived signed download URL. Denial is a 200 with
// granted=false so the evidence store layer can consume the decision as data.
func (e *EvidenceController) Access(ctx *gin.Context) {
	callerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	evidenceID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40094, "invalid evidence id")
		return
	}

	var evidence models.EvidenceFile
	if err := e.db.First(&evidence, evidenceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "evidence not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50104, "failed to load evidence")
		return
	}

	granted, err := e.access.CanAccessEvidence(callerID, &evidence)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50105, "failed to check access")
		return
	}

	resp := gin.H{"granted": granted}
	if granted {
		ttl := time.Duration(config.Get().EvidenceURLTTLMin) * time.Minute
		resp["url"] = utils.SignEvidenceURL(evidence.ID, ttl)
	}
	utils.Success(ctx, resp)
}

// Download serves the stored bytes after verifying the signed URL. No session
// auth here: the signature is the grant.
func (e *EvidenceController) Download(ctx *gin.Context) {
	evidenceID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40094, "invalid evidence id")
		return
	}

	if !utils.VerifyEvidenceURL(evidenceID, ctx.Query("exp"), ctx.Query("sig")) {
		utils.Error(ctx, http.StatusForbidden, 40330, "invalid or expired download link")
		return
	}

	var evidence models.EvidenceFile
	if err := e.db.First(&evidence, evidenceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "evidence not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50104, "failed to load evidence")
		return
	}

	ctx.FileAttachment(evidence.FilePath, evidence.FileName)
}

// Delete removes an evidence file. Allowed for the owning contributor and any
// ancestor manager.
func (e *EvidenceController) Delete(ctx *gin.Context) {
	callerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	evidenceID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40094, "invalid evidence id")
		return
	}

	var evidence models.EvidenceFile
	if err := e.db.First(&evidence, evidenceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40440, "evidence not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50104, "failed to load evidence")
		return
	}

	granted, err := e.access.CanAccessEvidence(callerID, &evidence)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50105, "failed to check access")
		return
	}
	if !granted {
		utils.Error(ctx, http.StatusForbidden, 40331, "you cannot delete this evidence")
		return
	}

	if err := e.db.Delete(&models.EvidenceFile{}, evidence.ID).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50106, "failed to delete evidence")
		return
	}
	if evidence.FilePath != "" {
		_ = os.Remove(evidence.FilePath)
	}

	utils.Success(ctx, gin.H{"deleted": true})
}

func parseOptionalUintForm(ctx *gin.Context, field string) (uint, bool) {
	raw := ctx.PostForm(field)
	if raw == "" {
		return 0, false
	}
	id, ok := parseUintQuery(raw)
	if !ok {
		return 0, false
	}
	return id, true
}
