package controllers

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/salesboost/salesboost/models"
	"github.com/salesboost/salesboost/services"
	"github.com/salesboost/salesboost/utils"
)

// UserController exposes the team surface built on the hierarchy resolver.
type UserController struct {
	db        *gorm.DB
	hierarchy *services.HierarchyService
}

// NewUserController creates a new controller instance.
func NewUserController(db *gorm.DB, hierarchy *services.HierarchyService) *UserController {
	return &UserController{db: db, hierarchy: hierarchy}
}

// ListTeam returns every contributor transitively under the calling manager.
func (u *UserController) ListTeam(ctx *gin.Context) {
	managerID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	ids, err := u.hierarchy.ResolveContributors(managerID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to resolve team")
		return
	}

	ordered := make([]uint, 0, len(ids))
	for id := range ids {
		ordered = append(ordered, id)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	var users []models.User
	if len(ordered) > 0 {
		if err := u.db.Where("id IN ?", ordered).Order("id").Find(&users).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load team members")
			return
		}
	}

	utils.Success(ctx, gin.H{"team": users, "count": len(users)})
}

// ReassignManager moves a user under a different manager. Only the top
// supervisor may rewire the tree; the new manager must be manager-class so
// contributors stay leaves.
func (u *UserController) ReassignManager(ctx *gin.Context) {
	if getRole(ctx) != models.RoleTop {
		utils.Error(ctx, http.StatusForbidden, 40311, "only the top supervisor can reassign managers")
		return
	}

	userID, ok := parseUintParam(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid user id")
		return
	}

	var req struct {
		ManagerID uint `json:"manager_id" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid request payload")
		return
	}

	var user models.User
	if err := u.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40411, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to load user")
		return
	}

	var manager models.User
	if err := u.db.First(&manager, req.ManagerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40412, "manager not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to load manager")
		return
	}
	if manager.Role == models.RoleContributor {
		utils.Error(ctx, http.StatusBadRequest, 40042, "contributors cannot manage users")
		return
	}
	if manager.ID == user.ID {
		utils.Error(ctx, http.StatusBadRequest, 40043, "a user cannot manage themselves")
		return
	}

	// Reject edges that would close a cycle in the manager tree.
	if user.Role != models.RoleContributor {
		above, err := u.hierarchy.IsAncestorManagerOf(user.ID, manager.ID)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to verify hierarchy")
			return
		}
		if above {
			utils.Error(ctx, http.StatusBadRequest, 40044, "reassignment would create a cycle")
			return
		}
	}

	user.ManagerID = &manager.ID
	if err := u.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to reassign manager")
		return
	}

	utils.Sugar.Infof("user %d reassigned under manager %d", user.ID, manager.ID)
	utils.Success(ctx, gin.H{"user": user})
}
