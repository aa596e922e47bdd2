package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/DPU-COL/learner-assist-service/internal/cache"
	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
)

type aiRulePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAIRulePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.AIRuleRepository {
	return &aiRulePostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *aiRulePostgreSQL) Create(ctx context.Context, rule *models.AIRule) error {
	if err := r.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	cache.InvalidateRuleCache(ctx, r.cacheManager)
	return nil
}

func (r *aiRulePostgreSQL) GetByID(ctx context.Context, id string) (*models.AIRule, error) {
	var rule models.AIRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &rule, nil
}

func (r *aiRulePostgreSQL) List(ctx context.Context, filters repositories.AIRuleFilters) ([]*models.AIRule, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AIRule{})

	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Priority != nil {
		query = query.Where("priority = ?", *filters.Priority)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count rules: %w", err)
	}

	var rules []*models.AIRule
	if err := applyPagination(query.Order("created_at DESC"), filters.Limit, filters.Offset).Find(&rules).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list rules: %w", err)
	}
	return rules, total, nil
}

// priorityOrder expresses the injection order in SQL: highest urgency first.
const priorityOrder = `CASE priority
	WHEN 'critical' THEN 4
	WHEN 'high' THEN 3
	WHEN 'medium' THEN 2
	WHEN 'low' THEN 1
	ELSE 0
END DESC, created_at DESC`

func (r *aiRulePostgreSQL) ListActive(ctx context.Context) ([]*models.AIRule, error) {
	var rules []*models.AIRule
	err := r.cacheManager.Rule.CacheOrExecute(ctx, "active", &rules, cache.RuleCacheConfig.TTL, func() (interface{}, error) {
		var fetched []*models.AIRule
		if err := r.db.WithContext(ctx).
			Where("is_active = ?", true).
			Order(priorityOrder).
			Find(&fetched).Error; err != nil {
			return nil, fmt.Errorf("failed to list active rules: %w", err)
		}
		return fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *aiRulePostgreSQL) Update(ctx context.Context, rule *models.AIRule) error {
	result := r.db.WithContext(ctx).Model(&models.AIRule{}).Where("id = ?", rule.ID).
		Select("Rule", "Category", "Priority", "IsActive").
		Updates(rule)
	if result.Error != nil {
		return fmt.Errorf("failed to update rule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	cache.InvalidateRuleCache(ctx, r.cacheManager)
	return nil
}

func (r *aiRulePostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.AIRule{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete rule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	cache.InvalidateRuleCache(ctx, r.cacheManager)
	return nil
}
