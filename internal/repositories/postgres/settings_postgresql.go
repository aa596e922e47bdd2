package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/DPU-COL/learner-assist-service/internal/cache"
	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
)

type settingsPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSettingsPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SettingsRepository {
	return &settingsPostgreSQL{db: db, cacheManager: cacheManager}
}

// Get returns the settings singleton, creating it with defaults when the
// table is empty.
func (r *settingsPostgreSQL) Get(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := r.cacheManager.Settings.CacheOrExecute(ctx, "current", &settings, cache.SettingsCacheConfig.TTL, func() (interface{}, error) {
		var fetched models.Settings
		err := r.db.WithContext(ctx).First(&fetched).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			defaults := models.DefaultSettings()
			if err := r.db.WithContext(ctx).Create(defaults).Error; err != nil {
				return nil, fmt.Errorf("failed to create default settings: %w", err)
			}
			return defaults, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get settings: %w", err)
		}
		return &fetched, nil
	})
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsPostgreSQL) Update(ctx context.Context, settings *models.Settings) error {
	if err := r.db.WithContext(ctx).Save(settings).Error; err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	cache.InvalidateSettingsCache(ctx, r.cacheManager)
	return nil
}
