package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/salesboost/salesboost/models"
)

func TestResolveContributorsThreeLevels(t *testing.T) {
	db := newTestDB(t)
	h := NewHierarchyService(db)

	top := createUser(t, db, "top", models.RoleTop, nil)
	manager := createUser(t, db, "manager", models.RoleManager, ptr(top.ID))
	subManager := createUser(t, db, "sub-manager", models.RoleManager, ptr(manager.ID))
	c1 := createUser(t, db, "c1", models.RoleContributor, ptr(manager.ID))
	c2 := createUser(t, db, "c2", models.RoleContributor, ptr(subManager.ID))
	// a direct report of top, sibling branch
	c3 := createUser(t, db, "c3", models.RoleContributor, ptr(top.ID))

	fromTop, err := h.ResolveContributors(top.ID)
	require.NoError(t, err)
	require.Len(t, fromTop, 3)
	require.Contains(t, fromTop, c1.ID)
	require.Contains(t, fromTop, c2.ID)
	require.Contains(t, fromTop, c3.ID)

	fromManager, err := h.ResolveContributors(manager.ID)
	require.NoError(t, err)
	require.Len(t, fromManager, 2)
	require.Contains(t, fromManager, c1.ID)
	require.Contains(t, fromManager, c2.ID)
	require.NotContains(t, fromManager, c3.ID)

	fromSub, err := h.ResolveContributors(subManager.ID)
	require.NoError(t, err)
	require.Len(t, fromSub, 1)
	require.Contains(t, fromSub, c2.ID)
}

func TestResolveContributorsEmptyCases(t *testing.T) {
	db := newTestDB(t)
	h := NewHierarchyService(db)

	contributor := createUser(t, db, "leaf", models.RoleContributor, nil)

	// unknown id
	got, err := h.ResolveContributors(9999)
	require.NoError(t, err)
	require.Empty(t, got)

	// a contributor has no reports by invariant
	got, err = h.ResolveContributors(contributor.ID)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestIsAncestorManagerOf(t *testing.T) {
	db := newTestDB(t)
	h := NewHierarchyService(db)

	top := createUser(t, db, "top", models.RoleTop, nil)
	manager := createUser(t, db, "manager", models.RoleManager, ptr(top.ID))
	other := createUser(t, db, "other", models.RoleManager, ptr(top.ID))
	contributor := createUser(t, db, "c", models.RoleContributor, ptr(manager.ID))

	cases := []struct {
		name      string
		candidate uint
		owner     uint
		want      bool
	}{
		{"direct manager", manager.ID, contributor.ID, true},
		{"grandparent", top.ID, contributor.ID, true},
		{"self", contributor.ID, contributor.ID, true},
		{"sibling branch", other.ID, contributor.ID, false},
		{"inverted", contributor.ID, manager.ID, false},
		{"missing owner fails closed", manager.ID, 9999, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := h.IsAncestorManagerOf(tc.candidate, tc.owner)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

// The downward expansion and the upward walk must agree on every
// (manager, contributor) pair.
func TestHierarchyOwnershipDuality(t *testing.T) {
	db := newTestDB(t)
	h := NewHierarchyService(db)

	top := createUser(t, db, "top", models.RoleTop, nil)
	m1 := createUser(t, db, "m1", models.RoleManager, ptr(top.ID))
	m2 := createUser(t, db, "m2", models.RoleManager, ptr(top.ID))
	m3 := createUser(t, db, "m3", models.RoleManager, ptr(m1.ID))
	contributors := []models.User{
		createUser(t, db, "c1", models.RoleContributor, ptr(m1.ID)),
		createUser(t, db, "c2", models.RoleContributor, ptr(m2.ID)),
		createUser(t, db, "c3", models.RoleContributor, ptr(m3.ID)),
		createUser(t, db, "c4", models.RoleContributor, ptr(top.ID)),
	}
	managers := []models.User{top, m1, m2, m3}

	for _, m := range managers {
		resolved, err := h.ResolveContributors(m.ID)
		require.NoError(t, err)
		for _, c := range contributors {
			ancestor, err := h.IsAncestorManagerOf(m.ID, c.ID)
			require.NoError(t, err)
			_, member := resolved[c.ID]
			require.Equalf(t, member, ancestor,
				"duality violated for manager %s over contributor %s", m.Username, c.Username)
		}
	}
}

// A corrupted cyclic manager graph must terminate in both directions instead
// of hanging or overflowing the stack.
func TestCyclicHierarchyTerminates(t *testing.T) {
	db := newTestDB(t)
	h := NewHierarchyService(db)

	a := createUser(t, db, "a", models.RoleManager, nil)
	b := createUser(t, db, "b", models.RoleManager, ptr(a.ID))
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", a.ID).Update("manager_id", b.ID).Error)
	contributor := createUser(t, db, "c", models.RoleContributor, ptr(a.ID))

	resolved, err := h.ResolveContributors(a.ID)
	require.NoError(t, err)
	require.Contains(t, resolved, contributor.ID)

	// walking up from inside the cycle fails closed
	got, err := h.IsAncestorManagerOf(9999, contributor.ID)
	require.NoError(t, err)
	require.False(t, got)
}
