package cache

import (
	"context"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateRuleCache drops the cached active-rule list after rule mutations.
func InvalidateRuleCache(ctx context.Context, cm *CacheManager) {
	SafeDelete(ctx, cm.Rule, "active")
	SafeInvalidatePattern(ctx, cm.Rule, "list:*")
}

// InvalidateSettingsCache drops the cached settings singleton.
func InvalidateSettingsCache(ctx context.Context, cm *CacheManager) {
	SafeDelete(ctx, cm.Settings, "current")
}

// InvalidateAvailabilityCache drops the knowledge-base availability flags
// after corpus or database mutations.
func InvalidateAvailabilityCache(ctx context.Context, cm *CacheManager) {
	SafeDelete(ctx, cm.Availability, "corpus", "database")
}

// InvalidateUserCache drops a cached caller identity after user mutations.
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID string) {
	SafeDelete(ctx, cm.User, "id:"+userID)
}
