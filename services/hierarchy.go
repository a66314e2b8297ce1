package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/salesboost/salesboost/models"
)

// maxHierarchyDepth bounds both traversal directions far beyond any plausible
// organizational depth so a corrupted (cyclic) manager graph terminates
// instead of looping.
const maxHierarchyDepth = 32

// HierarchyService resolves the manager/report tree in both directions.
type HierarchyService struct {
	db *gorm.DB
}

// NewHierarchyService creates a HierarchyService backed by db.
func NewHierarchyService(db *gorm.DB) *HierarchyService {
	return &HierarchyService{db: db}
}

type reportRow struct {
	ID        uint
	Role      string
	ManagerID *uint
}

// ResolveContributors returns the ids of every contributor transitively under
// managerID. The manager→reports adjacency is loaded once and walked in
// memory, one query per call regardless of depth. An unknown id or a user
// without reports yields an empty set, never an error.
func (h *HierarchyService) ResolveContributors(managerID uint) (map[uint]struct{}, error) {
	var rows []reportRow
	if err := h.db.Model(&models.User{}).
		Select("id", "role", "manager_id").
		Where("manager_id IS NOT NULL").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	reports := make(map[uint][]reportRow, len(rows))
	for _, r := range rows {
		reports[*r.ManagerID] = append(reports[*r.ManagerID], r)
	}

	result := make(map[uint]struct{})
	h.collectContributors(reports, managerID, result, 0)
	return result, nil
}

func (h *HierarchyService) collectContributors(reports map[uint][]reportRow, managerID uint, out map[uint]struct{}, depth int) {
	if depth >= maxHierarchyDepth {
		return
	}
	for _, r := range reports[managerID] {
		switch r.Role {
		case models.RoleContributor:
			out[r.ID] = struct{}{}
		default:
			// manager or top: recurse into the sub-tree, unless already seen
			// through a corrupted edge
			h.collectContributors(reports, r.ID, out, depth+1)
		}
	}
}

// IsAncestorManagerOf walks the managerId chain upward from ownerID and
// reports whether candidateID appears on it. A user owns their own records.
// This gates security decisions, so every abnormal case (missing owner,
// exhausted depth) fails closed with false.
func (h *HierarchyService) IsAncestorManagerOf(candidateID, ownerID uint) (bool, error) {
	if candidateID == ownerID {
		return true, nil
	}

	current := ownerID
	for depth := 0; depth < maxHierarchyDepth; depth++ {
		var row reportRow
		err := h.db.Model(&models.User{}).
			Select("id", "role", "manager_id").
			Where("id = ?", current).
			First(&row).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		if row.ManagerID == nil {
			return false, nil
		}
		if *row.ManagerID == candidateID {
			return true, nil
		}
		current = *row.ManagerID
	}
	return false, nil
}
