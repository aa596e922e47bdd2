package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/DPU-COL/learner-assist-service/internal/events"
	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/rbac"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
	"github.com/DPU-COL/learner-assist-service/internal/utils"
	"github.com/DPU-COL/learner-assist-service/internal/validator"
)

type roleService struct {
	repo      repositories.Repository
	validator *validator.Validator
	events    events.EventPublisher
	logger    utils.Logger
}

func NewRoleService(
	repo repositories.Repository,
	v *validator.Validator,
	publisher events.EventPublisher,
	logger utils.Logger,
) RoleService {
	return &roleService{
		repo:      repo,
		validator: v,
		events:    publisher,
		logger:    logger,
	}
}

// SeedSystemRoles creates the four built-in roles if they are missing. It runs
// at startup and is idempotent; existing records are left untouched so admin
// permission edits survive restarts.
func (s *roleService) SeedSystemRoles(ctx context.Context) error {
	for _, role := range models.SystemRoles {
		name := string(role)
		exists, err := s.repo.Role().ExistsByName(ctx, name)
		if err != nil {
			return NewStorageError(err)
		}
		if exists {
			continue
		}

		record := &models.Role{
			ID:          uuid.New().String(),
			Name:        name,
			Description: rbac.RoleDescription(role),
			Permissions: systemRolePermissions(role),
			IsSystem:    true,
		}
		if err := s.repo.Role().Create(ctx, record); err != nil {
			return NewStorageError(err)
		}
		s.logger.Info("seeded system role", "role", name)
	}
	return nil
}

func systemRolePermissions(role models.UserRole) models.RolePermissions {
	if role == models.RoleAdmin {
		return models.RolePermissions{
			ManageUsers:    true,
			ManageRoles:    true,
			ManageCorpus:   true,
			ManageDatabase: true,
			ManageAIRules:  true,
			ViewAllChats:   true,
			DeleteChats:    true,
			ViewAnalytics:  true,
		}
	}
	return models.RolePermissions{}
}

func (s *roleService) List(ctx context.Context, caller *models.User) ([]*models.Role, error) {
	if err := rbac.Authorize(caller, rbac.PermManageRoles); err != nil {
		return nil, NewAuthorizationError()
	}

	roles, err := s.repo.Role().List(ctx)
	if err != nil {
		return nil, NewStorageError(err)
	}
	return roles, nil
}

func (s *roleService) Create(ctx context.Context, caller *models.User, req *RoleCreateRequest) (*models.Role, error) {
	if err := rbac.Authorize(caller, rbac.PermManageRoles); err != nil {
		return nil, NewAuthorizationError()
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, WrapValidation(err)
	}

	taken, err := s.repo.Role().ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, NewStorageError(err)
	}
	if taken {
		return nil, NewValidationError("role name is already in use")
	}

	role := &models.Role{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Permissions: permissionsFromMap(req.Permissions),
		CreatedBy:   &caller.ID,
	}
	if req.Description != nil {
		role.Description = *req.Description
	}

	if err := s.repo.Role().Create(ctx, role); err != nil {
		return nil, NewStorageError(err)
	}

	s.publishMutation(ctx, caller.ID, role.ID, "create")
	return role, nil
}

// Update applies role changes. System roles only accept permission edits;
// name and description changes to them are rejected.
func (s *roleService) Update(ctx context.Context, caller *models.User, id string, req *RoleUpdateRequest) (*models.Role, error) {
	if err := rbac.Authorize(caller, rbac.PermManageRoles); err != nil {
		return nil, NewAuthorizationError()
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, WrapValidation(err)
	}

	role, err := s.repo.Role().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("role")
		}
		return nil, NewStorageError(err)
	}

	if role.IsSystem && (req.Name != nil || req.Description != nil) {
		return nil, NewValidationError("system role name and description cannot be changed")
	}

	if req.Name != nil && *req.Name != role.Name {
		taken, err := s.repo.Role().ExistsByName(ctx, *req.Name)
		if err != nil {
			return nil, NewStorageError(err)
		}
		if taken {
			return nil, NewValidationError("role name is already in use")
		}
		role.Name = *req.Name
	}
	if req.Description != nil {
		role.Description = *req.Description
	}
	if req.Permissions != nil {
		role.Permissions = permissionsFromMap(req.Permissions)
	}

	if err := s.repo.Role().Update(ctx, role); err != nil {
		return nil, NewStorageError(err)
	}

	s.publishMutation(ctx, caller.ID, role.ID, "update")
	return role, nil
}

func (s *roleService) Delete(ctx context.Context, caller *models.User, id string) error {
	if err := rbac.Authorize(caller, rbac.PermManageRoles); err != nil {
		return NewAuthorizationError()
	}

	role, err := s.repo.Role().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("role")
		}
		return NewStorageError(err)
	}
	if role.IsSystem {
		return NewValidationError("system roles cannot be deleted")
	}

	if err := s.repo.Role().Delete(ctx, id); err != nil {
		return NewStorageError(err)
	}

	s.publishMutation(ctx, caller.ID, id, "delete")
	return nil
}

func permissionsFromMap(m map[string]bool) models.RolePermissions {
	return models.RolePermissions{
		ManageUsers:    m["manageUsers"],
		ManageRoles:    m["manageRoles"],
		ManageCorpus:   m["manageCorpus"],
		ManageDatabase: m["manageDatabase"] || m["manageDB"],
		ManageAIRules:  m["manageAIRules"],
		ViewAllChats:   m["viewAllChats"] || m["viewChats"],
		DeleteChats:    m["deleteChats"],
		ViewAnalytics:  m["viewAnalytics"],
	}
}

func (s *roleService) publishMutation(ctx context.Context, actorID, targetID, action string) {
	event := events.NewEvent(events.EventRoleChanged, events.AdminMutationData{
		ActorID:  actorID,
		TargetID: targetID,
		Action:   action,
	})
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish role event", "error", err, "action", action)
	}
}
