package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleStudent UserRole = "student"
	RoleFaculty UserRole = "faculty"
	RoleMentor  UserRole = "mentor"
)

// SystemRoles are the built-in roles whose name/description are immutable.
var SystemRoles = []UserRole{RoleAdmin, RoleStudent, RoleFaculty, RoleMentor}

// PermissionOverrides is the per-user explicit permission map. A key present
// here wins over the role default (e.g. faculty granted manageCorpus).
type PermissionOverrides map[string]bool

type User struct {
	ID    string   `json:"id" gorm:"primaryKey;size:255"`
	Name  string   `json:"name" gorm:"not null;size:100"`
	Email string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role  UserRole `json:"role" gorm:"not null;size:20;default:student"`

	// Explicit permission overrides, stored as a JSON object of flag -> bool.
	Permissions datatypes.JSON `json:"permissions" gorm:"type:jsonb"`

	// PasswordHash is only set for credential logins; OAuth users have none.
	PasswordHash string `json:"-" gorm:"size:255"`

	IsActive bool `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// Overrides decodes the stored permission override map. A nil/empty column
// yields an empty map, never an error surfaced to callers.
func (u *User) Overrides() PermissionOverrides {
	out := PermissionOverrides{}
	if len(u.Permissions) == 0 {
		return out
	}
	_ = jsonUnmarshal(u.Permissions, &out)
	return out
}
