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

type corpusService struct {
	repo      repositories.Repository
	validator *validator.Validator
	events    events.EventPublisher
	logger    utils.Logger
}

func NewCorpusService(
	repo repositories.Repository,
	v *validator.Validator,
	publisher events.EventPublisher,
	logger utils.Logger,
) CorpusService {
	return &corpusService{
		repo:      repo,
		validator: v,
		events:    publisher,
		logger:    logger,
	}
}

func (s *corpusService) List(ctx context.Context, caller *models.User, filters repositories.CorpusFilters) (*CorpusListResponse, error) {
	if err := rbac.Authorize(caller, rbac.PermManageCorpus); err != nil {
		return nil, NewAuthorizationError()
	}

	items, total, err := s.repo.Corpus().List(ctx, filters)
	if err != nil {
		return nil, NewStorageError(err)
	}
	return &CorpusListResponse{Items: items, Total: total}, nil
}

func (s *corpusService) Get(ctx context.Context, caller *models.User, id string) (*models.Corpus, error) {
	if err := rbac.Authorize(caller, rbac.PermManageCorpus); err != nil {
		return nil, NewAuthorizationError()
	}

	item, err := s.repo.Corpus().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("corpus item")
		}
		return nil, NewStorageError(err)
	}
	return item, nil
}

func (s *corpusService) Create(ctx context.Context, caller *models.User, req *CorpusCreateRequest) (*models.Corpus, error) {
	if err := rbac.Authorize(caller, rbac.PermManageCorpus); err != nil {
		return nil, NewAuthorizationError()
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, WrapValidation(err)
	}

	item := &models.Corpus{
		ID:         uuid.New().String(),
		Title:      req.Title,
		Type:       models.CorpusType(req.Type),
		SourceType: models.SourceTypeText,
		Content:    req.Content,
		FileURL:    req.FileURL,
		WebLink:    req.WebLink,
		FileName:   req.FileName,
		FileSize:   req.FileSize,
		UploadedBy: caller.ID,
		IsActive:   true,
	}
	if req.SourceType != "" {
		item.SourceType = models.CorpusSourceType(req.SourceType)
	}
	if req.Description != nil {
		item.Description = *req.Description
	}

	if err := s.repo.Corpus().Create(ctx, item); err != nil {
		return nil, NewStorageError(err)
	}

	s.publishMutation(ctx, caller.ID, item.ID, "create")
	return item, nil
}

func (s *corpusService) Update(ctx context.Context, caller *models.User, id string, req *CorpusUpdateRequest) (*models.Corpus, error) {
	if err := rbac.Authorize(caller, rbac.PermManageCorpus); err != nil {
		return nil, NewAuthorizationError()
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, WrapValidation(err)
	}

	item, err := s.repo.Corpus().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("corpus item")
		}
		return nil, NewStorageError(err)
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Type != nil {
		item.Type = models.CorpusType(*req.Type)
	}
	if req.SourceType != nil {
		item.SourceType = models.CorpusSourceType(*req.SourceType)
	}
	if req.Content != nil {
		item.Content = *req.Content
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := s.repo.Corpus().Update(ctx, item); err != nil {
		return nil, NewStorageError(err)
	}

	s.publishMutation(ctx, caller.ID, item.ID, "update")
	return item, nil
}

func (s *corpusService) Delete(ctx context.Context, caller *models.User, id string) error {
	if err := rbac.Authorize(caller, rbac.PermManageCorpus); err != nil {
		return NewAuthorizationError()
	}

	if err := s.repo.Corpus().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("corpus item")
		}
		return NewStorageError(err)
	}

	s.publishMutation(ctx, caller.ID, id, "delete")
	return nil
}

func (s *corpusService) publishMutation(ctx context.Context, actorID, targetID, action string) {
	event := events.NewEvent(events.EventCorpusChanged, events.AdminMutationData{
		ActorID:  actorID,
		TargetID: targetID,
		Action:   action,
	})
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish corpus event", "error", err, "action", action)
	}
}
