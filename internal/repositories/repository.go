package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates all entity repositories.
type Repository interface {
	User() UserRepository
	Role() RoleRepository
	Chat() ChatRepository
	Corpus() CorpusRepository
	DatabaseEntry() DatabaseEntryRepository
	AIRule() AIRuleRepository
	Settings() SettingsRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ErrNotFound is the sentinel for missing records across implementations.
var ErrNotFound = errors.New("record not found")

// IsNotFoundError reports whether err is a missing-record failure from any
// layer.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}
