package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/salesboost/salesboost/models"
)

// AccessService answers authorization questions on top of the hierarchy
// resolvers. Denial is a boolean result here; turning it into an HTTP error
// is the caller's job.
type AccessService struct {
	db        *gorm.DB
	hierarchy *HierarchyService
}

// NewAccessService creates an AccessService.
func NewAccessService(db *gorm.DB, hierarchy *HierarchyService) *AccessService {
	return &AccessService{db: db, hierarchy: hierarchy}
}

// CanValidate reports whether contributorID is transitively under managerID.
func (a *AccessService) CanValidate(managerID, contributorID uint) (bool, error) {
	contributors, err := a.hierarchy.ResolveContributors(managerID)
	if err != nil {
		return false, err
	}
	_, ok := contributors[contributorID]
	return ok, nil
}

// CanAccessEvidence resolves the contributor owning the evidence file through
// its completion or bonus link, then checks candidateID against the owner's
// manager chain. Unlinked or dangling evidence is denied.
func (a *AccessService) CanAccessEvidence(candidateID uint, evidence *models.EvidenceFile) (bool, error) {
	ownerID, ok, err := a.EvidenceOwner(evidence)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return a.hierarchy.IsAncestorManagerOf(candidateID, ownerID)
}

// EvidenceOwner derives the owning contributor of an evidence file. The
// second result is false when the file is not linked to exactly one existing
// completion or bonus declaration.
func (a *AccessService) EvidenceOwner(evidence *models.EvidenceFile) (uint, bool, error) {
	if evidence == nil || !evidence.Linked() {
		return 0, false, nil
	}

	if evidence.CompletionID != nil {
		var completion models.ActionCompletion
		err := a.db.First(&completion, *evidence.CompletionID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, false, nil
			}
			return 0, false, err
		}
		return completion.UserID, true, nil
	}

	var bonus models.BonusDeclaration
	err := a.db.First(&bonus, *evidence.BonusID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return bonus.UserID, true, nil
}
