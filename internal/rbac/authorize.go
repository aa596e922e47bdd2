package rbac

import (
	"errors"

	"github.com/DPU-COL/learner-assist-service/internal/models"
)

var (
	// ErrDenied is returned when the caller lacks the required permission. It
	// carries no detail about which permission was missing.
	ErrDenied = errors.New("insufficient permissions")

	// ErrInactive is returned for deactivated callers; they may authenticate
	// but every protected operation rejects them.
	ErrInactive = errors.New("account is deactivated")
)

// Authorize checks a caller against a required permission. Deactivated users
// are rejected before any permission resolution.
func Authorize(user *models.User, perm Permission) error {
	if user == nil {
		return ErrDenied
	}
	if !user.IsActive {
		return ErrInactive
	}
	if !HasPermission(user, perm) {
		return ErrDenied
	}
	return nil
}
