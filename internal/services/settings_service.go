package services

import (
	"context"

	"github.com/DPU-COL/learner-assist-service/internal/events"
	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
	"github.com/DPU-COL/learner-assist-service/internal/utils"
	"github.com/DPU-COL/learner-assist-service/internal/validator"
)

type settingsService struct {
	repo      repositories.Repository
	validator *validator.Validator
	events    events.EventPublisher
	logger    utils.Logger
}

func NewSettingsService(
	repo repositories.Repository,
	v *validator.Validator,
	publisher events.EventPublisher,
	logger utils.Logger,
) SettingsService {
	return &settingsService{
		repo:      repo,
		validator: v,
		events:    publisher,
		logger:    logger,
	}
}

// Get returns the settings singleton. Reads are unauthenticated: branding is
// needed before login.
func (s *settingsService) Get(ctx context.Context) (*models.Settings, error) {
	settings, err := s.repo.Settings().Get(ctx)
	if err != nil {
		return nil, NewStorageError(err)
	}
	return settings, nil
}

// Update applies a partial settings change; only admins may write.
func (s *settingsService) Update(ctx context.Context, caller *models.User, req *SettingsUpdateRequest) (*models.Settings, error) {
	if caller == nil || !caller.IsActive || caller.Role != models.RoleAdmin {
		return nil, NewAuthorizationError()
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, WrapValidation(err)
	}

	settings, err := s.repo.Settings().Get(ctx)
	if err != nil {
		return nil, NewStorageError(err)
	}

	if req.AppName != nil {
		settings.AppName = *req.AppName
	}
	if req.Logo != nil {
		settings.Logo = *req.Logo
	}
	if req.PrimaryColor != nil {
		settings.PrimaryColor = *req.PrimaryColor
	}
	if req.SecondaryColor != nil {
		settings.SecondaryColor = *req.SecondaryColor
	}
	if req.AccentColor != nil {
		settings.AccentColor = *req.AccentColor
	}
	if req.Theme != nil {
		settings.Theme = models.ThemeMode(*req.Theme)
	}
	settings.UpdatedBy = &caller.ID

	if err := s.repo.Settings().Update(ctx, settings); err != nil {
		return nil, NewStorageError(err)
	}

	event := events.NewEvent(events.EventSettingsChanged, events.AdminMutationData{
		ActorID: caller.ID,
		Action:  "update",
	})
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish settings event", "error", err)
	}
	return settings, nil
}
