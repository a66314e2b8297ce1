package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role values form a closed set. Historical free-form labels from the legacy
// data ("marraine", "commercial") are normalized at the auth boundary and
// never stored.
const (
	RoleTop         = "top"
	RoleManager     = "manager"
	RoleContributor = "contributor"
)

// NormalizeRole maps legacy role labels onto the closed role set. Unknown
// labels fall back to contributor, the least privileged role.
func NormalizeRole(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case RoleTop, "marraine", "supervisor":
		return RoleTop
	case RoleManager, "chef", "cheffe":
		return RoleManager
	default:
		return RoleContributor
	}
}

// IsValidRole reports whether role is one of the three known values.
func IsValidRole(role string) bool {
	return role == RoleTop || role == RoleManager || role == RoleContributor
}

// User represents a platform member. ManagerID is a weak "reports to"
// back-reference: contributors are always leaves, and the manager subgraph is
// a tree rooted at the single top user (ManagerID nil).
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"size:64;not null;uniqueIndex" json:"username"`
	Email        string         `gorm:"size:255" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:16;not null;default:'contributor'" json:"role"`
	ManagerID    *uint          `gorm:"index" json:"manager_id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
