package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/DPU-COL/learner-assist-service/internal/cache"
	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
)

type corpusPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCorpusPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.CorpusRepository {
	return &corpusPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *corpusPostgreSQL) Create(ctx context.Context, item *models.Corpus) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create corpus item: %w", err)
	}
	cache.InvalidateAvailabilityCache(ctx, r.cacheManager)
	return nil
}

func (r *corpusPostgreSQL) GetByID(ctx context.Context, id string) (*models.Corpus, error) {
	var item models.Corpus
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &item, nil
}

func (r *corpusPostgreSQL) List(ctx context.Context, filters repositories.CorpusFilters) ([]*models.Corpus, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Corpus{})

	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count corpus items: %w", err)
	}

	var items []*models.Corpus
	if err := applyPagination(query.Order("created_at DESC"), filters.Limit, filters.Offset).Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list corpus items: %w", err)
	}
	return items, total, nil
}

func (r *corpusPostgreSQL) Update(ctx context.Context, item *models.Corpus) error {
	result := r.db.WithContext(ctx).Model(&models.Corpus{}).Where("id = ?", item.ID).
		Select("Title", "Type", "SourceType", "Content", "Description", "FileURL", "WebLink", "FileName", "FileSize", "IsActive").
		Updates(item)
	if result.Error != nil {
		return fmt.Errorf("failed to update corpus item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	cache.InvalidateAvailabilityCache(ctx, r.cacheManager)
	return nil
}

func (r *corpusPostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Corpus{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete corpus item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	cache.InvalidateAvailabilityCache(ctx, r.cacheManager)
	return nil
}

func (r *corpusPostgreSQL) HasActive(ctx context.Context) (bool, error) {
	var hasActive bool
	err := r.cacheManager.Availability.CacheOrExecute(ctx, "corpus", &hasActive, cache.AvailabilityCacheConfig.TTL, func() (interface{}, error) {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Corpus{}).Where("is_active = ?", true).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count active corpus items: %w", err)
		}
		return count > 0, nil
	})
	if err != nil {
		return false, err
	}
	return hasActive, nil
}
