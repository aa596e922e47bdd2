package services

import (
	"context"

	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
	"github.com/DPU-COL/learner-assist-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use validator request types
type PostMessageRequest = validator.PostMessageRequest
type CorpusCreateRequest = validator.CorpusCreateRequest
type CorpusUpdateRequest = validator.CorpusUpdateRequest
type DatabaseEntryCreateRequest = validator.DatabaseEntryCreateRequest
type DatabaseEntryUpdateRequest = validator.DatabaseEntryUpdateRequest
type AIRuleCreateRequest = validator.AIRuleCreateRequest
type AIRuleUpdateRequest = validator.AIRuleUpdateRequest
type RoleCreateRequest = validator.RoleCreateRequest
type RoleUpdateRequest = validator.RoleUpdateRequest
type UserUpdateRequest = validator.UserUpdateRequest
type BulkUserActionRequest = validator.BulkUserActionRequest
type SettingsUpdateRequest = validator.SettingsUpdateRequest
type UserSyncRequest = validator.UserSyncRequest

type ChatListResponse struct {
	Chats []*models.ChatSummary `json:"chats"`
	Total int64                 `json:"total"`
}

type UserListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
}

type CorpusListResponse struct {
	Items []*models.Corpus `json:"items"`
	Total int64            `json:"total"`
}

type DatabaseEntryListResponse struct {
	Entries []*models.DatabaseEntry `json:"entries"`
	Total   int64                   `json:"total"`
}

type AIRuleListResponse struct {
	Rules []*models.AIRule `json:"rules"`
	Total int64            `json:"total"`
}

// BulkActionResult reports the per-id outcome of one bulk user operation.
type BulkActionResult struct {
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// ===== SERVICE INTERFACES =====

// ChatService is the conversation gateway: it owns authorization of the
// caller, turn assembly, backend invocation and atomic persistence.
type ChatService interface {
	Create(ctx context.Context, caller *models.User) (*models.Chat, error)
	Get(ctx context.Context, chatID string, caller *models.User) (*models.Chat, error)
	PostMessage(ctx context.Context, chatID string, caller *models.User, text string) (*models.Chat, error)
	Delete(ctx context.Context, chatID string, caller *models.User) error
	List(ctx context.Context, caller *models.User) (*ChatListResponse, error)

	// ListAll is the admin listing across owners; requires viewAllChats.
	ListAll(ctx context.Context, caller *models.User, filters repositories.ChatFilters) (*ChatListResponse, error)

	// DeleteAny is the admin delete; requires deleteChats.
	DeleteAny(ctx context.Context, chatID string, caller *models.User) error
}

// RuleFetchResult is the typed outcome of an active-rule fetch. Degraded
// carries an empty list after a storage failure: the gateway proceeds with
// only the static instruction blocks (fail open, not fail closed).
type RuleFetchResult struct {
	Rules    []string
	Degraded bool
	Err      error
}

// RuleService fetches and manages behavioral rules.
type RuleService interface {
	// ActiveRules never returns an error; failures yield a Degraded result.
	ActiveRules(ctx context.Context) RuleFetchResult

	List(ctx context.Context, caller *models.User, filters repositories.AIRuleFilters) (*AIRuleListResponse, error)
	Create(ctx context.Context, caller *models.User, req *AIRuleCreateRequest) (*models.AIRule, error)
	Update(ctx context.Context, caller *models.User, id string, req *AIRuleUpdateRequest) (*models.AIRule, error)
	Delete(ctx context.Context, caller *models.User, id string) error
}

type UserService interface {
	Sync(ctx context.Context, req *UserSyncRequest) (*models.User, error)
	Get(ctx context.Context, caller *models.User, id string) (*models.User, error)
	List(ctx context.Context, caller *models.User, filters repositories.UserFilters) (*UserListResponse, error)
	Update(ctx context.Context, caller *models.User, id string, req *UserUpdateRequest) (*models.User, error)
	Delete(ctx context.Context, caller *models.User, id string) error
	BulkAction(ctx context.Context, caller *models.User, req *BulkUserActionRequest) (*BulkActionResult, error)
}

type RoleService interface {
	// SeedSystemRoles ensures the four built-in roles exist; idempotent.
	SeedSystemRoles(ctx context.Context) error

	List(ctx context.Context, caller *models.User) ([]*models.Role, error)
	Create(ctx context.Context, caller *models.User, req *RoleCreateRequest) (*models.Role, error)
	Update(ctx context.Context, caller *models.User, id string, req *RoleUpdateRequest) (*models.Role, error)
	Delete(ctx context.Context, caller *models.User, id string) error
}

type CorpusService interface {
	List(ctx context.Context, caller *models.User, filters repositories.CorpusFilters) (*CorpusListResponse, error)
	Get(ctx context.Context, caller *models.User, id string) (*models.Corpus, error)
	Create(ctx context.Context, caller *models.User, req *CorpusCreateRequest) (*models.Corpus, error)
	Update(ctx context.Context, caller *models.User, id string, req *CorpusUpdateRequest) (*models.Corpus, error)
	Delete(ctx context.Context, caller *models.User, id string) error
}

type DatabaseService interface {
	List(ctx context.Context, caller *models.User, filters repositories.DatabaseEntryFilters) (*DatabaseEntryListResponse, error)
	Get(ctx context.Context, caller *models.User, id string) (*models.DatabaseEntry, error)
	Create(ctx context.Context, caller *models.User, req *DatabaseEntryCreateRequest) (*models.DatabaseEntry, error)
	Update(ctx context.Context, caller *models.User, id string, req *DatabaseEntryUpdateRequest) (*models.DatabaseEntry, error)
	Delete(ctx context.Context, caller *models.User, id string) error

	// ImportRecords appends rows parsed from an xlsx sheet to an entry's data
	// array; the first row is treated as the header.
	ImportRecords(ctx context.Context, caller *models.User, id string, xlsxData []byte) (*models.DatabaseEntry, error)
}

type SettingsService interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, caller *models.User, req *SettingsUpdateRequest) (*models.Settings, error)
}

// ServiceManager provides access to all services.
type ServiceManager interface {
	Chat() ChatService
	Rule() RuleService
	User() UserService
	Role() RoleService
	Corpus() CorpusService
	Database() DatabaseService
	Settings() SettingsService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
