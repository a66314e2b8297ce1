package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/salesboost/salesboost/models"
)

func TestCanValidate(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db, NewHierarchyService(db))

	top := createUser(t, db, "top", models.RoleTop, nil)
	manager := createUser(t, db, "manager", models.RoleManager, ptr(top.ID))
	stranger := createUser(t, db, "stranger", models.RoleManager, ptr(top.ID))
	contributor := createUser(t, db, "c", models.RoleContributor, ptr(manager.ID))

	ok, err := access.CanValidate(manager.ID, contributor.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = access.CanValidate(top.ID, contributor.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = access.CanValidate(stranger.ID, contributor.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCanAccessEvidenceThroughCompletion(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db, NewHierarchyService(db))

	top := createUser(t, db, "top", models.RoleTop, nil)
	manager := createUser(t, db, "manager", models.RoleManager, ptr(top.ID))
	stranger := createUser(t, db, "stranger", models.RoleManager, ptr(top.ID))
	contributor := createUser(t, db, "c", models.RoleContributor, ptr(manager.ID))

	campaign := createCampaign(t, db, "august")
	challenge := createChallenge(t, db, campaign.ID, "1.00", 1)
	completeActions(t, db, contributor.ID, challenge.Actions)

	var completion models.ActionCompletion
	require.NoError(t, db.Where("user_id = ?", contributor.ID).First(&completion).Error)

	evidence := models.EvidenceFile{
		FileName:     "proof.jpg",
		FilePath:     "static/uploads/proof.jpg",
		CompletionID: &completion.ID,
	}
	require.NoError(t, db.Create(&evidence).Error)

	for _, tc := range []struct {
		name      string
		candidate uint
		want      bool
	}{
		{"owner", contributor.ID, true},
		{"direct manager", manager.ID, true},
		{"top supervisor", top.ID, true},
		{"unrelated manager", stranger.ID, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := access.CanAccessEvidence(tc.candidate, &evidence)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCanAccessEvidenceThroughBonus(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db, NewHierarchyService(db))

	manager := createUser(t, db, "manager", models.RoleManager, nil)
	contributor := createUser(t, db, "c", models.RoleContributor, ptr(manager.ID))
	campaign := createCampaign(t, db, "august")

	bonus := models.BonusDeclaration{
		UserID:     contributor.ID,
		CampaignID: campaign.ID,
		Kind:       models.BonusKindReferral,
		Amount:     decimal.RequireFromString("20.00"),
		Date:       time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC),
		Status:     models.BonusStatusApproved,
	}
	require.NoError(t, db.Create(&bonus).Error)

	evidence := models.EvidenceFile{FileName: "r.pdf", FilePath: "static/uploads/r.pdf", BonusID: &bonus.ID}
	require.NoError(t, db.Create(&evidence).Error)

	got, err := access.CanAccessEvidence(manager.ID, &evidence)
	require.NoError(t, err)
	require.True(t, got)
}

func TestEvidenceDeniedWhenLinkBroken(t *testing.T) {
	db := newTestDB(t)
	access := NewAccessService(db, NewHierarchyService(db))

	contributor := createUser(t, db, "c", models.RoleContributor, nil)

	// dangling link: completion id points nowhere
	missing := uint(9999)
	dangling := models.EvidenceFile{FileName: "x", FilePath: "x", CompletionID: &missing}
	got, err := access.CanAccessEvidence(contributor.ID, &dangling)
	require.NoError(t, err)
	require.False(t, got)

	// no link at all
	unlinked := models.EvidenceFile{FileName: "y", FilePath: "y"}
	got, err = access.CanAccessEvidence(contributor.ID, &unlinked)
	require.NoError(t, err)
	require.False(t, got)

	// both links set violates the exactly-one invariant, deny
	one, two := uint(1), uint(2)
	double := models.EvidenceFile{FileName: "z", FilePath: "z", CompletionID: &one, BonusID: &two}
	got, err = access.CanAccessEvidence(contributor.ID, &double)
	require.NoError(t, err)
	require.False(t, got)
}
