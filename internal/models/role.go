package models

import (
	"time"

	"gorm.io/gorm"
)

// RolePermissions is the 8-flag permission set carried by extended roles.
type RolePermissions struct {
	ManageUsers    bool `json:"manageUsers"`
	ManageRoles    bool `json:"manageRoles"`
	ManageCorpus   bool `json:"manageCorpus"`
	ManageDatabase bool `json:"manageDatabase"`
	ManageAIRules  bool `json:"manageAIRules"`
	ViewAllChats   bool `json:"viewAllChats"`
	DeleteChats    bool `json:"deleteChats"`
	ViewAnalytics  bool `json:"viewAnalytics"`
}

// Role is an extended/custom role record. The four system roles are seeded at
// startup with IsSystem set; their name and description are immutable and they
// cannot be deleted, only their permission flags may change.
type Role struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	Name        string `json:"name" gorm:"uniqueIndex;not null;size:50"`
	Description string `json:"description" gorm:"size:500"`

	Permissions RolePermissions `json:"permissions" gorm:"embedded;embeddedPrefix:perm_"`

	IsSystem  bool    `json:"is_system" gorm:"not null;default:false"`
	CreatedBy *string `json:"created_by,omitempty" gorm:"size:255"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Role) TableName() string {
	return "roles"
}
