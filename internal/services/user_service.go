package services

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/DPU-COL/learner-assist-service/internal/events"
	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/rbac"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
	"github.com/DPU-COL/learner-assist-service/internal/utils"
	"github.com/DPU-COL/learner-assist-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	validator *validator.Validator
	events    events.EventPublisher
	logger    utils.Logger
}

func NewUserService(
	repo repositories.Repository,
	v *validator.Validator,
	publisher events.EventPublisher,
	logger utils.Logger,
) UserService {
	return &userService{
		repo:      repo,
		validator: v,
		events:    publisher,
		logger:    logger,
	}
}

// Sync upserts a user record at signup or first OAuth login. New users always
// start as active students; an existing record only refreshes name and email.
func (s *userService) Sync(ctx context.Context, req *UserSyncRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, WrapValidation(err)
	}

	existing, err := s.repo.User().GetByID(ctx, req.ID)
	if err == nil {
		existing.Name = req.Name
		existing.Email = req.Email
		if err := s.repo.User().Update(ctx, existing); err != nil {
			return nil, NewStorageError(err)
		}
		return existing, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, NewStorageError(err)
	}

	user := &models.User{
		ID:       req.ID,
		Name:     req.Name,
		Email:    req.Email,
		Role:     models.RoleStudent,
		IsActive: true,
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		return nil, NewStorageError(err)
	}
	return user, nil
}

func (s *userService) Get(ctx context.Context, caller *models.User, id string) (*models.User, error) {
	if err := rbac.Authorize(caller, rbac.PermManageUsers); err != nil {
		// Users may always read their own record.
		if caller == nil || !caller.IsActive || caller.ID != id {
			return nil, NewAuthorizationError()
		}
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("user")
		}
		return nil, NewStorageError(err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, caller *models.User, filters repositories.UserFilters) (*UserListResponse, error) {
	if err := rbac.Authorize(caller, rbac.PermManageUsers); err != nil {
		return nil, NewAuthorizationError()
	}

	users, total, err := s.repo.User().List(ctx, filters)
	if err != nil {
		return nil, NewStorageError(err)
	}
	return &UserListResponse{Users: users, Total: total}, nil
}

func (s *userService) Update(ctx context.Context, caller *models.User, id string, req *UserUpdateRequest) (*models.User, error) {
	if err := rbac.Authorize(caller, rbac.PermManageUsers); err != nil {
		return nil, NewAuthorizationError()
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, WrapValidation(err)
	}

	// Self-protection: admins cannot demote or deactivate their own account.
	if caller.ID == id {
		if req.Role != nil && models.UserRole(*req.Role) != caller.Role {
			return nil, NewValidationError("you cannot change your own role")
		}
		if req.IsActive != nil && !*req.IsActive {
			return nil, NewValidationError("you cannot deactivate your own account")
		}
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("user")
		}
		return nil, NewStorageError(err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		taken, err := s.repo.User().ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return nil, NewStorageError(err)
		}
		if taken {
			return nil, NewValidationError("email is already in use")
		}
		user.Email = *req.Email
	}

	roleChanged := false
	if req.Role != nil {
		newRole := rbac.ParseRole(*req.Role)
		roleChanged = newRole != user.Role
		user.Role = newRole
	}
	if req.Permissions != nil {
		user.Permissions = models.MustJSON(req.Permissions)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, NewStorageError(err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.User().Update(ctx, user); err != nil {
		return nil, NewStorageError(err)
	}

	s.publish(ctx, events.EventUserUpdated, caller.ID, id, "update")
	if roleChanged {
		s.publish(ctx, events.EventRoleChanged, caller.ID, id, "changeRole")
	}
	return user, nil
}

func (s *userService) Delete(ctx context.Context, caller *models.User, id string) error {
	if err := rbac.Authorize(caller, rbac.PermManageUsers); err != nil {
		return NewAuthorizationError()
	}
	if caller.ID == id {
		return NewValidationError("you cannot delete your own account")
	}

	if err := s.repo.User().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("user")
		}
		return NewStorageError(err)
	}

	s.publish(ctx, events.EventUserDeleted, caller.ID, id, "delete")
	return nil
}

// BulkAction applies one action to each target independently; one failure
// never rolls back the others. Self-targets fail for that id only.
func (s *userService) BulkAction(ctx context.Context, caller *models.User, req *BulkUserActionRequest) (*BulkActionResult, error) {
	if err := rbac.Authorize(caller, rbac.PermManageUsers); err != nil {
		return nil, NewAuthorizationError()
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, WrapValidation(err)
	}
	if req.Action == "changeRole" && req.Role == nil {
		return nil, NewValidationError("role is required for changeRole")
	}

	result := &BulkActionResult{Failed: map[string]string{}}
	for _, id := range req.UserIDs {
		if err := s.applyBulkAction(ctx, caller, id, req); err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	if len(result.Failed) == 0 {
		result.Failed = nil
	}
	return result, nil
}

func (s *userService) applyBulkAction(ctx context.Context, caller *models.User, id string, req *BulkUserActionRequest) error {
	if caller.ID == id && req.Action != "activate" {
		return NewValidationError("you cannot perform this action on your own account")
	}

	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("user")
		}
		return NewStorageError(err)
	}

	switch req.Action {
	case "activate":
		user.IsActive = true
	case "deactivate":
		user.IsActive = false
	case "changeRole":
		user.Role = rbac.ParseRole(*req.Role)
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.User().Update(ctx, user); err != nil {
		return NewStorageError(err)
	}

	s.publish(ctx, events.EventUserUpdated, caller.ID, id, req.Action)
	return nil
}

func (s *userService) publish(ctx context.Context, eventType, actorID, targetID, action string) {
	event := events.NewEvent(eventType, events.AdminMutationData{
		ActorID:  actorID,
		TargetID: targetID,
		Action:   action,
	})
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish user event", "error", err, "action", action)
	}
}
