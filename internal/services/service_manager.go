package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/DPU-COL/learner-assist-service/internal/events"
	"github.com/DPU-COL/learner-assist-service/internal/genai"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
	"github.com/DPU-COL/learner-assist-service/internal/utils"
	"github.com/DPU-COL/learner-assist-service/internal/validator"
)

// ServiceManagerConfig holds the cross-service settings resolved at startup.
type ServiceManagerConfig struct {
	// VerboseErrors appends backend error detail to generic fallback replies.
	// Keep off outside development; fallback text is shown to end users.
	VerboseErrors bool
}

// serviceManager implements ServiceManager.
type serviceManager struct {
	repo      repositories.Repository
	backend   genai.Client
	publisher events.EventPublisher
	logger    utils.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	chatService     ChatService
	ruleService     RuleService
	userService     UserService
	roleService     RoleService
	corpusService   CorpusService
	databaseService DatabaseService
	settingsService SettingsService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager wires all services over one repository, backend client and
// event publisher.
func NewServiceManager(
	repo repositories.Repository,
	backend genai.Client,
	publisher events.EventPublisher,
	logger utils.Logger,
	v *validator.Validator,
	config ServiceManagerConfig,
) ServiceManager {
	return &serviceManager{
		repo:      repo,
		backend:   backend,
		publisher: publisher,
		logger:    logger,
		validator: v,
		config:    config,
	}
}

// Initialize constructs every service and seeds startup data. It is safe to
// call more than once; repeat calls are no-ops.
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("initializing service manager")

	sm.ruleService = NewRuleService(sm.repo, sm.validator, sm.publisher, sm.logger)
	sm.chatService = NewChatService(sm.repo, sm.ruleService, sm.backend, sm.validator, sm.publisher, sm.logger, sm.config.VerboseErrors)
	sm.userService = NewUserService(sm.repo, sm.validator, sm.publisher, sm.logger)
	sm.roleService = NewRoleService(sm.repo, sm.validator, sm.publisher, sm.logger)
	sm.corpusService = NewCorpusService(sm.repo, sm.validator, sm.publisher, sm.logger)
	sm.databaseService = NewDatabaseService(sm.repo, sm.validator, sm.publisher, sm.logger)
	sm.settingsService = NewSettingsService(sm.repo, sm.validator, sm.publisher, sm.logger)

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	if err := sm.roleService.SeedSystemRoles(ctx); err != nil {
		return fmt.Errorf("failed to seed system roles: %w", err)
	}

	// Touch settings once so the singleton exists before the first request.
	if _, err := sm.settingsService.Get(ctx); err != nil {
		return fmt.Errorf("failed to initialize settings: %w", err)
	}

	if !sm.backend.Configured() {
		sm.logger.Warn("generative backend credential not configured; chat replies will use fallback text")
	}

	sm.initialized = true
	sm.logger.Info("service manager initialized")
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Warn("failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	return nil
}

func (sm *serviceManager) Chat() ChatService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.chatService
}

func (sm *serviceManager) Rule() RuleService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.ruleService
}

func (sm *serviceManager) User() UserService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.userService
}

func (sm *serviceManager) Role() RoleService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.roleService
}

func (sm *serviceManager) Corpus() CorpusService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.corpusService
}

func (sm *serviceManager) Database() DatabaseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.databaseService
}

func (sm *serviceManager) Settings() SettingsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.settingsService
}
