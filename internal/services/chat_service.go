package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DPU-COL/learner-assist-service/internal/events"
	"github.com/DPU-COL/learner-assist-service/internal/genai"
	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/prompt"
	"github.com/DPU-COL/learner-assist-service/internal/rbac"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
	"github.com/DPU-COL/learner-assist-service/internal/utils"
	"github.com/DPU-COL/learner-assist-service/internal/validator"
)

// titleLimit is the number of leading characters of the first user message
// kept as the chat title before truncation.
const titleLimit = 50

type chatService struct {
	repo      repositories.Repository
	rules     RuleService
	backend   genai.Client
	validator *validator.Validator
	events    events.EventPublisher
	logger    utils.Logger

	// verboseErrors appends backend error detail to the generic fallback
	// reply; specific fallback classes are never affected.
	verboseErrors bool

	// chatLocks serializes turns per chat so concurrent posts to the same
	// conversation cannot interleave positions. Different chats proceed in
	// parallel.
	chatLocks sync.Map // chatID -> *sync.Mutex
}

func NewChatService(
	repo repositories.Repository,
	rules RuleService,
	backend genai.Client,
	v *validator.Validator,
	publisher events.EventPublisher,
	logger utils.Logger,
	verboseErrors bool,
) ChatService {
	return &chatService{
		repo:          repo,
		rules:         rules,
		backend:       backend,
		validator:     v,
		events:        publisher,
		logger:        logger,
		verboseErrors: verboseErrors,
	}
}

func (s *chatService) lockChat(chatID string) *sync.Mutex {
	mu, _ := s.chatLocks.LoadOrStore(chatID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (s *chatService) Create(ctx context.Context, caller *models.User) (*models.Chat, error) {
	if caller == nil || !caller.IsActive {
		return nil, NewAuthorizationError()
	}

	chat := &models.Chat{
		ID:     uuid.New().String(),
		UserID: caller.ID,
		Title:  models.DefaultChatTitle,
	}
	if err := s.repo.Chat().Create(ctx, chat); err != nil {
		return nil, NewStorageError(err)
	}
	return chat, nil
}

// Get loads a chat with its full transcript. Owners always pass; callers with
// the view-all-chats permission may read any transcript. A chat that is
// missing and a chat owned by someone else produce the same not-found answer.
func (s *chatService) Get(ctx context.Context, chatID string, caller *models.User) (*models.Chat, error) {
	if caller == nil || !caller.IsActive {
		return nil, NewAuthorizationError()
	}

	if rbac.HasPermission(caller, rbac.PermViewAllChats) {
		chat, err := s.repo.Chat().GetByID(ctx, chatID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, NewNotFoundError("chat")
			}
			return nil, NewStorageError(err)
		}
		return chat, nil
	}

	chat, err := s.repo.Chat().GetOwned(ctx, chatID, caller.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("chat")
		}
		return nil, NewStorageError(err)
	}
	return chat, nil
}

// PostMessage runs one full conversation turn: load the owned chat, assemble
// the system instruction from live knowledge-base state, call the backend,
// and persist both messages atomically. A backend failure still completes the
// turn with a fallback assistant reply; the transcript never records a user
// message without its paired response.
func (s *chatService) PostMessage(ctx context.Context, chatID string, caller *models.User, text string) (*models.Chat, error) {
	if caller == nil || !caller.IsActive {
		return nil, NewAuthorizationError()
	}

	req := &PostMessageRequest{Message: text}
	if err := s.validator.Validate(req); err != nil {
		return nil, WrapValidation(err)
	}

	mu := s.lockChat(chatID)
	mu.Lock()
	defer mu.Unlock()

	chat, err := s.repo.Chat().GetOwned(ctx, chatID, caller.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("chat")
		}
		return nil, NewStorageError(err)
	}

	hasCorpus, err := s.repo.Corpus().HasActive(ctx)
	if err != nil {
		s.logger.Warn("corpus availability check failed, assuming empty", "error", err)
		hasCorpus = false
	}
	hasDatabase, err := s.repo.DatabaseEntry().HasActive(ctx)
	if err != nil {
		s.logger.Warn("database availability check failed, assuming empty", "error", err)
		hasDatabase = false
	}

	ruleFetch := s.rules.ActiveRules(ctx)
	instruction := prompt.Build(caller, hasCorpus, hasDatabase, ruleFetch.Rules)

	history := make([]genai.Turn, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		history = append(history, genai.Turn{Role: m.Role, Content: m.Content})
	}

	// Once the backend call starts, finish the turn even if the client goes
	// away; an abandoned request must not produce a half-persisted turn.
	turnCtx := context.WithoutCancel(ctx)

	reply, genErr := s.backend.Complete(turnCtx, instruction, history, text)
	degraded := genErr != nil
	if genErr != nil {
		s.logger.Warn("backend completion failed, using fallback reply",
			"chat_id", chatID, "error", genErr)
		reply = genai.Fallback(genErr, s.verboseErrors)
	}

	now := time.Now().UTC()
	position := len(chat.Messages)
	userMsg := &models.Message{
		ChatID:    chatID,
		Role:      models.MessageRoleUser,
		Content:   text,
		Position:  position,
		Timestamp: now,
	}
	assistantMsg := &models.Message{
		ChatID:    chatID,
		Role:      models.MessageRoleAssistant,
		Content:   reply,
		Position:  position + 1,
		Timestamp: now,
	}

	var title *string
	if len(chat.Messages) == 0 {
		derived := DeriveChatTitle(text)
		title = &derived
	}

	if err := s.repo.Chat().AppendTurn(turnCtx, chatID, userMsg, assistantMsg, title); err != nil {
		return nil, NewStorageError(err)
	}

	chat.Messages = append(chat.Messages, *userMsg, *assistantMsg)
	if title != nil {
		chat.Title = *title
	}
	chat.UpdatedAt = now

	s.publishTurnCompleted(turnCtx, chat, ruleFetch.Degraded, degraded)
	return chat, nil
}

func (s *chatService) List(ctx context.Context, caller *models.User) (*ChatListResponse, error) {
	if caller == nil || !caller.IsActive {
		return nil, NewAuthorizationError()
	}

	chats, total, err := s.repo.Chat().List(ctx, repositories.ChatFilters{OwnerID: caller.ID})
	if err != nil {
		return nil, NewStorageError(err)
	}
	return &ChatListResponse{Chats: chats, Total: total}, nil
}

func (s *chatService) ListAll(ctx context.Context, caller *models.User, filters repositories.ChatFilters) (*ChatListResponse, error) {
	if err := rbac.Authorize(caller, rbac.PermViewAllChats); err != nil {
		return nil, NewAuthorizationError()
	}

	filters.OwnerID = ""
	chats, total, err := s.repo.Chat().List(ctx, filters)
	if err != nil {
		return nil, NewStorageError(err)
	}
	return &ChatListResponse{Chats: chats, Total: total}, nil
}

func (s *chatService) Delete(ctx context.Context, chatID string, caller *models.User) error {
	if caller == nil || !caller.IsActive {
		return NewAuthorizationError()
	}

	if err := s.repo.Chat().DeleteOwned(ctx, chatID, caller.ID); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("chat")
		}
		return NewStorageError(err)
	}

	s.publishDeleted(ctx, chatID, caller.ID)
	return nil
}

func (s *chatService) DeleteAny(ctx context.Context, chatID string, caller *models.User) error {
	if err := rbac.Authorize(caller, rbac.PermDeleteChats); err != nil {
		return NewAuthorizationError()
	}

	if err := s.repo.Chat().Delete(ctx, chatID); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("chat")
		}
		return NewStorageError(err)
	}

	s.publishDeleted(ctx, chatID, caller.ID)
	return nil
}

// DeriveChatTitle takes the leading characters of the first user message. A
// message longer than the limit is truncated with an ellipsis marker.
func DeriveChatTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= titleLimit {
		return message
	}
	return string(runes[:titleLimit]) + "..."
}

func (s *chatService) publishTurnCompleted(ctx context.Context, chat *models.Chat, rulesDegraded, fallback bool) {
	event := events.NewEvent(events.EventChatTurnCompleted, events.ChatTurnCompletedData{
		ChatID:       chat.ID,
		UserID:       chat.UserID,
		MessageCount: len(chat.Messages),
		Degraded:     rulesDegraded,
		Fallback:     fallback,
	})
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish turn event", "chat_id", chat.ID, "error", err)
	}
}

func (s *chatService) publishDeleted(ctx context.Context, chatID, actorID string) {
	event := events.NewEvent(events.EventChatDeleted, events.AdminMutationData{
		ActorID:  actorID,
		TargetID: chatID,
		Action:   "delete",
	})
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish chat delete event", "chat_id", chatID, "error", err)
	}
}
