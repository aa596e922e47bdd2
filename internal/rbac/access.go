package rbac

import (
	"github.com/DPU-COL/learner-assist-service/internal/models"
)

// HasPermission resolves a permission for a caller with fixed precedence:
// admin role always allows, then the caller's explicit override map, then the
// static role default.
func HasPermission(user *models.User, perm Permission) bool {
	if user == nil {
		return false
	}
	if user.Role == models.RoleAdmin {
		return true
	}

	overrides := user.Overrides()
	for _, key := range overrideAliases[perm] {
		if v, ok := overrides[key]; ok {
			return v
		}
	}

	return DefaultPermissions(user.Role)[perm]
}

// CanViewChat reports whether caller may read a chat owned by ownerID. Holders
// of the all-chats permission may read any chat; everyone else only their own.
func CanViewChat(user *models.User, ownerID string) bool {
	if user == nil {
		return false
	}
	if HasPermission(user, PermViewAllChats) {
		return true
	}
	return user.ID == ownerID
}

// CanAccessAdmin gates the admin surface as a whole.
func CanAccessAdmin(user *models.User) bool {
	return user != nil && user.Role == models.RoleAdmin
}
