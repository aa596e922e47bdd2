package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/DPU-COL/learner-assist-service/internal/cache"
	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
)

type databaseEntryPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewDatabaseEntryPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.DatabaseEntryRepository {
	return &databaseEntryPostgreSQL{db: db, cacheManager: cacheManager}
}

func (r *databaseEntryPostgreSQL) Create(ctx context.Context, entry *models.DatabaseEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create database entry: %w", err)
	}
	cache.InvalidateAvailabilityCache(ctx, r.cacheManager)
	return nil
}

func (r *databaseEntryPostgreSQL) GetByID(ctx context.Context, id string) (*models.DatabaseEntry, error) {
	var entry models.DatabaseEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &entry, nil
}

func (r *databaseEntryPostgreSQL) List(ctx context.Context, filters repositories.DatabaseEntryFilters) ([]*models.DatabaseEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DatabaseEntry{})

	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count database entries: %w", err)
	}

	var entries []*models.DatabaseEntry
	if err := applyPagination(query.Order("created_at DESC"), filters.Limit, filters.Offset).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list database entries: %w", err)
	}
	return entries, total, nil
}

func (r *databaseEntryPostgreSQL) Update(ctx context.Context, entry *models.DatabaseEntry) error {
	result := r.db.WithContext(ctx).Model(&models.DatabaseEntry{}).Where("id = ?", entry.ID).
		Select("Name", "Description", "Schema", "Data", "Category", "IsActive").
		Updates(entry)
	if result.Error != nil {
		return fmt.Errorf("failed to update database entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	cache.InvalidateAvailabilityCache(ctx, r.cacheManager)
	return nil
}

func (r *databaseEntryPostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.DatabaseEntry{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete database entry: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	cache.InvalidateAvailabilityCache(ctx, r.cacheManager)
	return nil
}

func (r *databaseEntryPostgreSQL) HasActive(ctx context.Context) (bool, error) {
	var hasActive bool
	err := r.cacheManager.Availability.CacheOrExecute(ctx, "database", &hasActive, cache.AvailabilityCacheConfig.TTL, func() (interface{}, error) {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.DatabaseEntry{}).Where("is_active = ?", true).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count active database entries: %w", err)
		}
		return count > 0, nil
	})
	if err != nil {
		return false, err
	}
	return hasActive, nil
}
