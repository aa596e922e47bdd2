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

type ruleService struct {
	repo      repositories.Repository
	validator *validator.Validator
	events    events.EventPublisher
	logger    utils.Logger
}

func NewRuleService(
	repo repositories.Repository,
	v *validator.Validator,
	publisher events.EventPublisher,
	logger utils.Logger,
) RuleService {
	return &ruleService{
		repo:      repo,
		validator: v,
		events:    publisher,
		logger:    logger,
	}
}

// ActiveRules returns the rule texts in injection order. A storage failure
// degrades to an empty list rather than failing the caller's turn: the
// assistant still answers, just without admin rules.
func (s *ruleService) ActiveRules(ctx context.Context) RuleFetchResult {
	rules, err := s.repo.AIRule().ListActive(ctx)
	if err != nil {
		s.logger.Warn("active-rule fetch failed, proceeding without rules", "error", err)
		return RuleFetchResult{Degraded: true, Err: err}
	}

	texts := make([]string, 0, len(rules))
	for _, r := range rules {
		texts = append(texts, r.Rule)
	}
	return RuleFetchResult{Rules: texts}
}

func (s *ruleService) List(ctx context.Context, caller *models.User, filters repositories.AIRuleFilters) (*AIRuleListResponse, error) {
	if err := rbac.Authorize(caller, rbac.PermManageAIRules); err != nil {
		return nil, NewAuthorizationError()
	}

	rules, total, err := s.repo.AIRule().List(ctx, filters)
	if err != nil {
		return nil, NewStorageError(err)
	}
	return &AIRuleListResponse{Rules: rules, Total: total}, nil
}

func (s *ruleService) Create(ctx context.Context, caller *models.User, req *AIRuleCreateRequest) (*models.AIRule, error) {
	if err := rbac.Authorize(caller, rbac.PermManageAIRules); err != nil {
		return nil, NewAuthorizationError()
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, WrapValidation(err)
	}

	rule := &models.AIRule{
		ID:        uuid.New().String(),
		Rule:      req.Rule,
		Category:  models.RuleCategoryBehavior,
		Priority:  models.PriorityMedium,
		IsActive:  true,
		CreatedBy: caller.ID,
	}
	if req.Category != "" {
		rule.Category = models.RuleCategory(req.Category)
	}
	if req.Priority != "" {
		rule.Priority = models.RulePriority(req.Priority)
	}

	if err := s.repo.AIRule().Create(ctx, rule); err != nil {
		return nil, NewStorageError(err)
	}

	s.publishMutation(ctx, caller.ID, rule.ID, "create")
	return rule, nil
}

func (s *ruleService) Update(ctx context.Context, caller *models.User, id string, req *AIRuleUpdateRequest) (*models.AIRule, error) {
	if err := rbac.Authorize(caller, rbac.PermManageAIRules); err != nil {
		return nil, NewAuthorizationError()
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, WrapValidation(err)
	}

	rule, err := s.repo.AIRule().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("rule")
		}
		return nil, NewStorageError(err)
	}

	if req.Rule != nil {
		rule.Rule = *req.Rule
	}
	if req.Category != nil {
		rule.Category = models.RuleCategory(*req.Category)
	}
	if req.Priority != nil {
		rule.Priority = models.RulePriority(*req.Priority)
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	if err := s.repo.AIRule().Update(ctx, rule); err != nil {
		return nil, NewStorageError(err)
	}

	s.publishMutation(ctx, caller.ID, rule.ID, "update")
	return rule, nil
}

func (s *ruleService) Delete(ctx context.Context, caller *models.User, id string) error {
	if err := rbac.Authorize(caller, rbac.PermManageAIRules); err != nil {
		return NewAuthorizationError()
	}

	if err := s.repo.AIRule().Delete(ctx, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("rule")
		}
		return NewStorageError(err)
	}

	s.publishMutation(ctx, caller.ID, id, "delete")
	return nil
}

func (s *ruleService) publishMutation(ctx context.Context, actorID, targetID, action string) {
	event := events.NewEvent(events.EventRuleChanged, events.AdminMutationData{
		ActorID:  actorID,
		TargetID: targetID,
		Action:   action,
	})
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish rule event", "error", err, "action", action)
	}
}
