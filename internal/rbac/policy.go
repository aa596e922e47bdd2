package rbac

import (
	"strings"

	"github.com/DPU-COL/learner-assist-service/internal/models"
)

// Permission names the flags checked before protected operations. The first
// four are the per-user override keys; the full set matches the extended role
// permission flags.
type Permission string

const (
	PermManageUsers    Permission = "manageUsers"
	PermManageRoles    Permission = "manageRoles"
	PermManageCorpus   Permission = "manageCorpus"
	PermManageDatabase Permission = "manageDatabase"
	PermManageAIRules  Permission = "manageAIRules"
	PermViewAllChats   Permission = "viewChats"
	PermDeleteChats    Permission = "deleteChats"
	PermViewAnalytics  Permission = "viewAnalytics"
)

// overrideAliases maps legacy override keys stored on user records to their
// canonical permission. The original data model used "manageDB" for the
// database flag and "viewChats" for the all-chats flag.
var overrideAliases = map[Permission][]string{
	PermManageUsers:    {"manageUsers"},
	PermManageRoles:    {"manageRoles"},
	PermManageCorpus:   {"manageCorpus"},
	PermManageDatabase: {"manageDatabase", "manageDB"},
	PermManageAIRules:  {"manageAIRules"},
	PermViewAllChats:   {"viewChats", "viewAllChats"},
	PermDeleteChats:    {"deleteChats"},
	PermViewAnalytics:  {"viewAnalytics"},
}

// DefaultPermissions is the static per-role permission table. Unknown roles
// fall back to the student set.
func DefaultPermissions(role models.UserRole) map[Permission]bool {
	switch role {
	case models.RoleAdmin:
		return map[Permission]bool{
			PermManageUsers:    true,
			PermManageRoles:    true,
			PermManageCorpus:   true,
			PermManageDatabase: true,
			PermManageAIRules:  true,
			PermViewAllChats:   true,
			PermDeleteChats:    true,
			PermViewAnalytics:  true,
		}
	case models.RoleStudent, models.RoleFaculty, models.RoleMentor:
		return map[Permission]bool{}
	default:
		return map[Permission]bool{}
	}
}

// ParseRole normalizes a role string to the closed role enum, defaulting
// unknown values to student.
func ParseRole(s string) models.UserRole {
	switch models.UserRole(strings.ToLower(strings.TrimSpace(s))) {
	case models.RoleAdmin:
		return models.RoleAdmin
	case models.RoleFaculty:
		return models.RoleFaculty
	case models.RoleMentor:
		return models.RoleMentor
	case models.RoleStudent:
		return models.RoleStudent
	default:
		return models.RoleStudent
	}
}

// RoleDisplayName returns the user-facing role name.
func RoleDisplayName(role models.UserRole) string {
	switch role {
	case models.RoleAdmin:
		return "Administrator"
	case models.RoleFaculty:
		return "Faculty"
	case models.RoleMentor:
		return "Mentor"
	default:
		return "Student"
	}
}

// RoleDescription returns the seeded description for a system role.
func RoleDescription(role models.UserRole) string {
	switch role {
	case models.RoleAdmin:
		return "Full system access with all privileges"
	case models.RoleFaculty:
		return "Academic queries and teaching support"
	case models.RoleMentor:
		return "Student guidance and advisory support"
	default:
		return "Access to learning materials and corpus"
	}
}
