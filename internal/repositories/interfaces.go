package repositories

import (
	"context"

	"github.com/DPU-COL/learner-assist-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Query    string // Search query for name or email
	Role     *models.UserRole
	IsActive *bool
	Limit    int
	Offset   int
}

type CorpusFilters struct {
	Type     *models.CorpusType
	IsActive *bool
	Query    string
	Limit    int
	Offset   int
}

type DatabaseEntryFilters struct {
	Category *models.DatabaseCategory
	IsActive *bool
	Limit    int
	Offset   int
}

type AIRuleFilters struct {
	Category *models.RuleCategory
	Priority *models.RulePriority
	IsActive *bool
	Limit    int
	Offset   int
}

type ChatFilters struct {
	OwnerID string // empty means all owners (admin listing)
	Limit   int
	Offset  int
}

// ===== ENTITY REPOSITORIES =====

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, id string) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context) ([]*models.Role, error)
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, id string) error
	ExistsByName(ctx context.Context, name string) (bool, error)
}

type ChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) error

	// GetOwned loads a chat with its messages only when ownerID matches; a
	// missing chat and a chat owned by someone else are indistinguishable.
	GetOwned(ctx context.Context, id, ownerID string) (*models.Chat, error)
	GetByID(ctx context.Context, id string) (*models.Chat, error)

	// List returns metadata-only summaries, most recently updated first.
	List(ctx context.Context, filters ChatFilters) ([]*models.ChatSummary, int64, error)

	// AppendTurn persists one user+assistant message pair and the optional
	// title update atomically.
	AppendTurn(ctx context.Context, chatID string, userMsg, assistantMsg *models.Message, title *string) error

	DeleteOwned(ctx context.Context, id, ownerID string) error
	Delete(ctx context.Context, id string) error
	CountMessages(ctx context.Context, chatID string) (int64, error)
}

type CorpusRepository interface {
	Create(ctx context.Context, item *models.Corpus) error
	GetByID(ctx context.Context, id string) (*models.Corpus, error)
	List(ctx context.Context, filters CorpusFilters) ([]*models.Corpus, int64, error)
	Update(ctx context.Context, item *models.Corpus) error
	Delete(ctx context.Context, id string) error

	// HasActive reports whether at least one active corpus item exists.
	HasActive(ctx context.Context) (bool, error)
}

type DatabaseEntryRepository interface {
	Create(ctx context.Context, entry *models.DatabaseEntry) error
	GetByID(ctx context.Context, id string) (*models.DatabaseEntry, error)
	List(ctx context.Context, filters DatabaseEntryFilters) ([]*models.DatabaseEntry, int64, error)
	Update(ctx context.Context, entry *models.DatabaseEntry) error
	Delete(ctx context.Context, id string) error

	// HasActive reports whether at least one active entry exists.
	HasActive(ctx context.Context) (bool, error)
}

type AIRuleRepository interface {
	Create(ctx context.Context, rule *models.AIRule) error
	GetByID(ctx context.Context, id string) (*models.AIRule, error)
	List(ctx context.Context, filters AIRuleFilters) ([]*models.AIRule, int64, error)

	// ListActive returns active rules ordered for prompt injection: priority
	// weight descending, then creation time descending.
	ListActive(ctx context.Context) ([]*models.AIRule, error)

	Update(ctx context.Context, rule *models.AIRule) error
	Delete(ctx context.Context, id string) error
}

type SettingsRepository interface {
	// Get returns the singleton, creating it with defaults on first read.
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, settings *models.Settings) error
}
