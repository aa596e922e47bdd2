package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/DPU-COL/learner-assist-service/internal/cache"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	user          repositories.UserRepository
	role          repositories.RoleRepository
	chat          repositories.ChatRepository
	corpus        repositories.CorpusRepository
	databaseEntry repositories.DatabaseEntryRepository
	aiRule        repositories.AIRuleRepository
	settings      repositories.SettingsRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates a new repository manager with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	repo.user = NewUserPostgreSQL(config.DB, cacheManager)
	repo.role = NewRolePostgreSQL(config.DB)
	repo.chat = NewChatPostgreSQL(config.DB)
	repo.corpus = NewCorpusPostgreSQL(config.DB, cacheManager)
	repo.databaseEntry = NewDatabaseEntryPostgreSQL(config.DB, cacheManager)
	repo.aiRule = NewAIRulePostgreSQL(config.DB, cacheManager)
	repo.settings = NewSettingsPostgreSQL(config.DB, cacheManager)

	return repo
}

func (r *PostgreSQLRepository) User() repositories.UserRepository        { return r.user }
func (r *PostgreSQLRepository) Role() repositories.RoleRepository       { return r.role }
func (r *PostgreSQLRepository) Chat() repositories.ChatRepository       { return r.chat }
func (r *PostgreSQLRepository) Corpus() repositories.CorpusRepository   { return r.corpus }
func (r *PostgreSQLRepository) AIRule() repositories.AIRuleRepository   { return r.aiRule }
func (r *PostgreSQLRepository) Settings() repositories.SettingsRepository { return r.settings }

func (r *PostgreSQLRepository) DatabaseEntry() repositories.DatabaseEntryRepository {
	return r.databaseEntry
}

// WithTransaction runs fn against a Repository view bound to one transaction.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := NewPostgreSQLRepository(RepositoryConfig{
			DB:          tx,
			RedisClient: r.redisClient,
		})
		return fn(txRepo)
	})
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Manager wraps the repository with lifecycle management.
type Manager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) *Manager {
	return &Manager{config: config}
}

func (m *Manager) Initialize() error {
	if m.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}
	m.repo = NewPostgreSQLRepository(m.config)
	return nil
}

func (m *Manager) GetRepository() repositories.Repository {
	return m.repo
}

func (m *Manager) HealthCheck(ctx context.Context) error {
	if m.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return m.repo.Ping(ctx)
}

func (m *Manager) Shutdown(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	return m.repo.Close()
}
