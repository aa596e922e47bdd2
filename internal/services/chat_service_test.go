package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/DPU-COL/learner-assist-service/internal/events"
	"github.com/DPU-COL/learner-assist-service/internal/genai"
	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
	"github.com/DPU-COL/learner-assist-service/internal/utils"
	"github.com/DPU-COL/learner-assist-service/internal/validator"
)

func testSlog() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestLogger() utils.Logger {
	return utils.NewSlogLogger(testSlog())
}

type chatFixture struct {
	repo      *mockRepository
	backend   *mockBackend
	publisher *events.MockEventPublisher
	rules     RuleService
	service   ChatService
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	repo := newMockRepository()
	backend := newMockBackend("assistant reply")
	publisher := events.NewMockEventPublisher(testSlog())
	v := validator.New()
	logger := newTestLogger()

	rules := NewRuleService(repo, v, publisher, logger)
	service := NewChatService(repo, rules, backend, v, publisher, logger, false)

	return &chatFixture{
		repo:      repo,
		backend:   backend,
		publisher: publisher,
		rules:     rules,
		service:   service,
	}
}

func seedUser(repo *mockRepository, role models.UserRole) *models.User {
	user := &models.User{
		ID:       uuid.New().String(),
		Name:     "Test User",
		Email:    uuid.New().String() + "@example.com",
		Role:     role,
		IsActive: true,
	}
	_ = repo.User().Create(context.Background(), user)
	return user
}

func seedCorpus(repo *mockRepository) {
	_ = repo.Corpus().Create(context.Background(), &models.Corpus{
		ID:         uuid.New().String(),
		Title:      "Course FAQ",
		Type:       models.CorpusTypeFAQ,
		SourceType: models.SourceTypeText,
		Content:    "Q&A content",
		UploadedBy: "admin",
		IsActive:   true,
	})
}

func TestChatService_FullTurn(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	student := seedUser(f.repo, models.RoleStudent)
	seedCorpus(f.repo)
	_ = f.repo.AIRule().Create(ctx, &models.AIRule{
		ID:        uuid.New().String(),
		Rule:      "Never discuss unrelated topics.",
		Category:  models.RuleCategoryDomainBoundary,
		Priority:  models.PriorityHigh,
		IsActive:  true,
		CreatedBy: "admin",
	})

	chat, err := f.service.Create(ctx, student)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if chat.Title != models.DefaultChatTitle {
		t.Errorf("new chat title = %q, want %q", chat.Title, models.DefaultChatTitle)
	}

	updated, err := f.service.PostMessage(ctx, chat.ID, student, "hi")
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}

	if len(updated.Messages) != 2 {
		t.Fatalf("want exactly 2 messages after one turn, got %d", len(updated.Messages))
	}
	if updated.Messages[0].Role != models.MessageRoleUser || updated.Messages[0].Content != "hi" {
		t.Errorf("first message should be the user turn, got %+v", updated.Messages[0])
	}
	if updated.Messages[1].Role != models.MessageRoleAssistant || updated.Messages[1].Content != "assistant reply" {
		t.Errorf("second message should be the assistant turn, got %+v", updated.Messages[1])
	}
	if updated.Title != "hi" {
		t.Errorf("title should derive from the first message, got %q", updated.Title)
	}

	instruction := f.backend.lastInstruction()
	if !strings.Contains(instruction, "You are assisting a Student.") {
		t.Error("instruction missing student role context")
	}
	if !strings.Contains(instruction, "You have access to the Corpus (documents, PDFs, policies, FAQs, manuals) only.") {
		t.Error("instruction missing corpus-only availability")
	}
	if !strings.Contains(instruction, "1. Never discuss unrelated topics.") {
		t.Error("instruction missing numbered admin rule")
	}

	published := f.publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.EventChatTurnCompleted {
		t.Fatalf("want one turn_completed event, got %+v", published)
	}
	data, ok := published[0].Data.(events.ChatTurnCompletedData)
	if !ok {
		t.Fatalf("unexpected event payload type %T", published[0].Data)
	}
	if data.MessageCount != 2 || data.Degraded || data.Fallback {
		t.Errorf("unexpected event data %+v", data)
	}
}

func TestChatService_TitleTruncation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	student := seedUser(f.repo, models.RoleStudent)

	chat, _ := f.service.Create(ctx, student)

	long := strings.Repeat("a", 89)
	updated, err := f.service.PostMessage(ctx, chat.ID, student, long)
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}

	want := strings.Repeat("a", 50) + "..."
	if updated.Title != want {
		t.Errorf("title = %q, want %q", updated.Title, want)
	}

	// A second turn must not change the title.
	updated, err = f.service.PostMessage(ctx, chat.ID, student, "follow up")
	if err != nil {
		t.Fatalf("second PostMessage: %v", err)
	}
	if updated.Title != want {
		t.Errorf("title changed on second turn: %q", updated.Title)
	}
	if len(updated.Messages) != 4 {
		t.Errorf("want 4 messages after two turns, got %d", len(updated.Messages))
	}
}

func TestDeriveChatTitle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "hi", "hi"},
		{"exactly at limit", strings.Repeat("x", 50), strings.Repeat("x", 50)},
		{"over limit", strings.Repeat("x", 51), strings.Repeat("x", 50) + "..."},
		{"multibyte", strings.Repeat("é", 60), strings.Repeat("é", 50) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveChatTitle(tt.in); got != tt.want {
				t.Errorf("DeriveChatTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestChatService_BackendFailureStillCompletesTurn(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	student := seedUser(f.repo, models.RoleStudent)

	f.backend.err = genai.ErrRateLimited

	chat, _ := f.service.Create(ctx, student)
	updated, err := f.service.PostMessage(ctx, chat.ID, student, "hello")
	if err != nil {
		t.Fatalf("a backend failure must not fail the turn: %v", err)
	}

	if len(updated.Messages) != 2 {
		t.Fatalf("want paired messages even on failure, got %d", len(updated.Messages))
	}
	if updated.Messages[1].Content != genai.FallbackRateLimited {
		t.Errorf("assistant message = %q, want rate-limit fallback", updated.Messages[1].Content)
	}

	published := f.publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("want one event, got %d", len(published))
	}
	if data := published[0].Data.(events.ChatTurnCompletedData); !data.Fallback {
		t.Error("event should flag the fallback reply")
	}
}

func TestChatService_NotConfiguredFallback(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	student := seedUser(f.repo, models.RoleStudent)

	f.backend.err = genai.ErrNotConfigured
	f.backend.configured = false

	chat, _ := f.service.Create(ctx, student)
	updated, err := f.service.PostMessage(ctx, chat.ID, student, "hello")
	if err != nil {
		t.Fatalf("PostMessage: %v", err)
	}
	if updated.Messages[1].Content != genai.FallbackNotConfigured {
		t.Errorf("want not-configured fallback, got %q", updated.Messages[1].Content)
	}
}

func TestChatService_RuleFetchDegradation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	student := seedUser(f.repo, models.RoleStudent)
	seedCorpus(f.repo)

	f.repo.failRules = true

	chat, _ := f.service.Create(ctx, student)
	updated, err := f.service.PostMessage(ctx, chat.ID, student, "hello")
	if err != nil {
		t.Fatalf("rule storage failure must not fail the turn: %v", err)
	}
	if len(updated.Messages) != 2 {
		t.Fatalf("want a completed turn, got %d messages", len(updated.Messages))
	}
	if strings.Contains(f.backend.lastInstruction(), "Additional Rules:") {
		t.Error("degraded fetch must omit the rule block entirely")
	}

	data := f.publisher.GetPublishedEvents()[0].Data.(events.ChatTurnCompletedData)
	if !data.Degraded {
		t.Error("event should flag rule degradation")
	}
}

func TestChatService_OwnershipIndistinguishable(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	owner := seedUser(f.repo, models.RoleStudent)
	intruder := seedUser(f.repo, models.RoleStudent)

	chat, _ := f.service.Create(ctx, owner)

	_, errMissing := f.service.Get(ctx, uuid.New().String(), intruder)
	_, errForeign := f.service.Get(ctx, chat.ID, intruder)

	if !IsNotFound(errMissing) || !IsNotFound(errForeign) {
		t.Fatalf("both must be not-found, got %v / %v", errMissing, errForeign)
	}
	if errMissing.Error() != errForeign.Error() {
		t.Errorf("missing and foreign chats must be indistinguishable: %q vs %q",
			errMissing.Error(), errForeign.Error())
	}

	if _, err := f.service.PostMessage(ctx, chat.ID, intruder, "hi"); !IsNotFound(err) {
		t.Errorf("posting to a foreign chat must read as not-found, got %v", err)
	}
	if err := f.service.Delete(ctx, chat.ID, intruder); !IsNotFound(err) {
		t.Errorf("deleting a foreign chat must read as not-found, got %v", err)
	}
}

func TestChatService_ViewAllChatsPermission(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	owner := seedUser(f.repo, models.RoleStudent)
	auditor := seedUser(f.repo, models.RoleFaculty)
	auditor.Permissions = models.MustJSON(map[string]bool{"viewChats": true})
	_ = f.repo.User().Update(ctx, auditor)

	chat, _ := f.service.Create(ctx, owner)

	got, err := f.service.Get(ctx, chat.ID, auditor)
	if err != nil {
		t.Fatalf("auditor with viewChats should read any chat: %v", err)
	}
	if got.ID != chat.ID {
		t.Errorf("got chat %s, want %s", got.ID, chat.ID)
	}

	if _, err := f.service.ListAll(ctx, auditor, repositories.ChatFilters{}); err != nil {
		t.Errorf("ListAll should pass for viewChats holder: %v", err)
	}
	if _, err := f.service.ListAll(ctx, owner, repositories.ChatFilters{}); !IsAuthorization(err) {
		t.Errorf("ListAll must deny a plain student, got %v", err)
	}
}

func TestChatService_AdminDelete(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	owner := seedUser(f.repo, models.RoleStudent)
	admin := seedUser(f.repo, models.RoleAdmin)

	chat, _ := f.service.Create(ctx, owner)

	if err := f.service.DeleteAny(ctx, chat.ID, admin); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := f.repo.Chat().GetByID(ctx, chat.ID); !errors.Is(err, repositories.ErrNotFound) {
		t.Errorf("chat should be gone after admin delete, got %v", err)
	}

	if err := f.service.DeleteAny(ctx, chat.ID, owner); !IsAuthorization(err) {
		t.Errorf("plain student must not use admin delete, got %v", err)
	}
}

func TestChatService_ValidationFailures(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	student := seedUser(f.repo, models.RoleStudent)
	chat, _ := f.service.Create(ctx, student)

	tests := []struct {
		name    string
		message string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t "},
		{"too long", strings.Repeat("x", 8001)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.PostMessage(ctx, chat.ID, student, tt.message)
			if !IsValidation(err) {
				t.Errorf("want validation error, got %v", err)
			}
		})
	}

	if f.backend.calls != 0 {
		t.Errorf("invalid messages must never reach the backend, got %d calls", f.backend.calls)
	}
}

func TestChatService_InactiveUserRejected(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	student := seedUser(f.repo, models.RoleStudent)
	student.IsActive = false

	if _, err := f.service.Create(ctx, student); !IsAuthorization(err) {
		t.Errorf("inactive create: want authorization error, got %v", err)
	}
	if _, err := f.service.List(ctx, student); !IsAuthorization(err) {
		t.Errorf("inactive list: want authorization error, got %v", err)
	}
}

func TestChatService_ConcurrentTurnsSameChat(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	student := seedUser(f.repo, models.RoleStudent)
	chat, _ := f.service.Create(ctx, student)

	const turns = 8
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.service.PostMessage(ctx, chat.ID, student, "concurrent message"); err != nil {
				t.Errorf("PostMessage: %v", err)
			}
		}()
	}
	wg.Wait()

	final, err := f.service.Get(ctx, chat.ID, student)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(final.Messages) != turns*2 {
		t.Fatalf("want %d messages, got %d", turns*2, len(final.Messages))
	}
	// Every user message must be directly followed by an assistant message.
	for i := 0; i < len(final.Messages); i += 2 {
		if final.Messages[i].Role != models.MessageRoleUser {
			t.Errorf("message %d: want user role, got %s", i, final.Messages[i].Role)
		}
		if final.Messages[i+1].Role != models.MessageRoleAssistant {
			t.Errorf("message %d: want assistant role, got %s", i+1, final.Messages[i+1].Role)
		}
	}
}

func TestChatService_ListIsMetadataOnly(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	student := seedUser(f.repo, models.RoleStudent)

	chat, _ := f.service.Create(ctx, student)
	if _, err := f.service.PostMessage(ctx, chat.ID, student, "hello there"); err != nil {
		t.Fatalf("PostMessage: %v", err)
	}

	resp, err := f.service.List(ctx, student)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(resp.Chats) != 1 {
		t.Fatalf("want one summary, got %d", len(resp.Chats))
	}
	summary := resp.Chats[0]
	if summary.MessageCount != 2 {
		t.Errorf("summary message count = %d, want 2", summary.MessageCount)
	}
	if summary.Title != "hello there" {
		t.Errorf("summary title = %q", summary.Title)
	}
}
