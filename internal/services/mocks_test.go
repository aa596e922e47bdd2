package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DPU-COL/learner-assist-service/internal/genai"
	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
)

// mockRepository is an in-memory repositories.Repository used by the service
// tests. Each entity store can be forced to fail via its fail flag.
type mockRepository struct {
	mu sync.Mutex

	users    map[string]*models.User
	roles    map[string]*models.Role
	chats    map[string]*models.Chat
	corpus   map[string]*models.Corpus
	entries  map[string]*models.DatabaseEntry
	rules    map[string]*models.AIRule
	settings *models.Settings

	failRules  bool
	failCorpus bool
	failChats  bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:   map[string]*models.User{},
		roles:   map[string]*models.Role{},
		chats:   map[string]*models.Chat{},
		corpus:  map[string]*models.Corpus{},
		entries: map[string]*models.DatabaseEntry{},
		rules:   map[string]*models.AIRule{},
	}
}

var errMockStorage = errors.New("storage unavailable")

func (m *mockRepository) User() repositories.UserRepository                   { return (*mockUserRepo)(m) }
func (m *mockRepository) Role() repositories.RoleRepository                   { return (*mockRoleRepo)(m) }
func (m *mockRepository) Chat() repositories.ChatRepository                   { return (*mockChatRepo)(m) }
func (m *mockRepository) Corpus() repositories.CorpusRepository               { return (*mockCorpusRepo)(m) }
func (m *mockRepository) DatabaseEntry() repositories.DatabaseEntryRepository { return (*mockEntryRepo)(m) }
func (m *mockRepository) AIRule() repositories.AIRuleRepository               { return (*mockRuleRepo)(m) }
func (m *mockRepository) Settings() repositories.SettingsRepository           { return (*mockSettingsRepo)(m) }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ----- users -----

type mockUserRepo mockRepository

func (r *mockUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *mockUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *mockUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockUserRepo) GetByIDs(_ context.Context, ids []string) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *mockUserRepo) List(_ context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, u := range r.users {
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		if filters.IsActive != nil && u.IsActive != *filters.IsActive {
			continue
		}
		if filters.Query != "" &&
			!strings.Contains(strings.ToLower(u.Name), strings.ToLower(filters.Query)) &&
			!strings.Contains(strings.ToLower(u.Email), strings.ToLower(filters.Query)) {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *mockUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *mockUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ----- roles -----

type mockRoleRepo mockRepository

func (r *mockRoleRepo) Create(_ context.Context, role *models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *role
	r.roles[role.ID] = &cp
	return nil
}

func (r *mockRoleRepo) GetByID(_ context.Context, id string) (*models.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *role
	return &cp, nil
}

func (r *mockRoleRepo) GetByName(_ context.Context, name string) (*models.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Name == name {
			cp := *role
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockRoleRepo) List(_ context.Context) ([]*models.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Role
	for _, role := range r.roles {
		cp := *role
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *mockRoleRepo) Update(_ context.Context, role *models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[role.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *role
	r.roles[role.ID] = &cp
	return nil
}

func (r *mockRoleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roles[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.roles, id)
	return nil
}

func (r *mockRoleRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// ----- chats -----

type mockChatRepo mockRepository

func (r *mockChatRepo) Create(_ context.Context, chat *models.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failChats {
		return errMockStorage
	}
	cp := *chat
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	r.chats[chat.ID] = &cp
	return nil
}

func (r *mockChatRepo) GetOwned(_ context.Context, id, ownerID string) (*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failChats {
		return nil, errMockStorage
	}
	chat, ok := r.chats[id]
	if !ok || chat.UserID != ownerID {
		return nil, repositories.ErrNotFound
	}
	cp := *chat
	cp.Messages = append([]models.Message(nil), chat.Messages...)
	return &cp, nil
}

func (r *mockChatRepo) GetByID(_ context.Context, id string) (*models.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *chat
	cp.Messages = append([]models.Message(nil), chat.Messages...)
	return &cp, nil
}

func (r *mockChatRepo) List(_ context.Context, filters repositories.ChatFilters) ([]*models.ChatSummary, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ChatSummary
	for _, chat := range r.chats {
		if filters.OwnerID != "" && chat.UserID != filters.OwnerID {
			continue
		}
		out = append(out, &models.ChatSummary{
			ID:           chat.ID,
			UserID:       chat.UserID,
			Title:        chat.Title,
			MessageCount: len(chat.Messages),
			CreatedAt:    chat.CreatedAt,
			UpdatedAt:    chat.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, int64(len(out)), nil
}

func (r *mockChatRepo) AppendTurn(_ context.Context, chatID string, userMsg, assistantMsg *models.Message, title *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failChats {
		return errMockStorage
	}
	chat, ok := r.chats[chatID]
	if !ok {
		return repositories.ErrNotFound
	}
	chat.Messages = append(chat.Messages, *userMsg, *assistantMsg)
	if title != nil {
		chat.Title = *title
	}
	chat.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *mockChatRepo) DeleteOwned(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[id]
	if !ok || chat.UserID != ownerID {
		return repositories.ErrNotFound
	}
	delete(r.chats, id)
	return nil
}

func (r *mockChatRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.chats[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.chats, id)
	return nil
}

func (r *mockChatRepo) CountMessages(_ context.Context, chatID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	return int64(len(chat.Messages)), nil
}

// ----- corpus -----

type mockCorpusRepo mockRepository

func (r *mockCorpusRepo) Create(_ context.Context, item *models.Corpus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *item
	r.corpus[item.ID] = &cp
	return nil
}

func (r *mockCorpusRepo) GetByID(_ context.Context, id string) (*models.Corpus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.corpus[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *mockCorpusRepo) List(_ context.Context, filters repositories.CorpusFilters) ([]*models.Corpus, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Corpus
	for _, item := range r.corpus {
		if filters.IsActive != nil && item.IsActive != *filters.IsActive {
			continue
		}
		if filters.Type != nil && item.Type != *filters.Type {
			continue
		}
		cp := *item
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockCorpusRepo) Update(_ context.Context, item *models.Corpus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.corpus[item.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *item
	r.corpus[item.ID] = &cp
	return nil
}

func (r *mockCorpusRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.corpus[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.corpus, id)
	return nil
}

func (r *mockCorpusRepo) HasActive(_ context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCorpus {
		return false, errMockStorage
	}
	for _, item := range r.corpus {
		if item.IsActive {
			return true, nil
		}
	}
	return false, nil
}

// ----- database entries -----

type mockEntryRepo mockRepository

func (r *mockEntryRepo) Create(_ context.Context, entry *models.DatabaseEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *entry
	r.entries[entry.ID] = &cp
	return nil
}

func (r *mockEntryRepo) GetByID(_ context.Context, id string) (*models.DatabaseEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *entry
	return &cp, nil
}

func (r *mockEntryRepo) List(_ context.Context, filters repositories.DatabaseEntryFilters) ([]*models.DatabaseEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.DatabaseEntry
	for _, entry := range r.entries {
		if filters.IsActive != nil && entry.IsActive != *filters.IsActive {
			continue
		}
		if filters.Category != nil && entry.Category != *filters.Category {
			continue
		}
		cp := *entry
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockEntryRepo) Update(_ context.Context, entry *models.DatabaseEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[entry.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *entry
	r.entries[entry.ID] = &cp
	return nil
}

func (r *mockEntryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *mockEntryRepo) HasActive(_ context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		if entry.IsActive {
			return true, nil
		}
	}
	return false, nil
}

// ----- ai rules -----

type mockRuleRepo mockRepository

func (r *mockRuleRepo) Create(_ context.Context, rule *models.AIRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rule
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.rules[rule.ID] = &cp
	return nil
}

func (r *mockRuleRepo) GetByID(_ context.Context, id string) (*models.AIRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.rules[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *rule
	return &cp, nil
}

func (r *mockRuleRepo) List(_ context.Context, filters repositories.AIRuleFilters) ([]*models.AIRule, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.AIRule
	for _, rule := range r.rules {
		if filters.IsActive != nil && rule.IsActive != *filters.IsActive {
			continue
		}
		if filters.Category != nil && rule.Category != *filters.Category {
			continue
		}
		if filters.Priority != nil && rule.Priority != *filters.Priority {
			continue
		}
		cp := *rule
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockRuleRepo) ListActive(_ context.Context) ([]*models.AIRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failRules {
		return nil, errMockStorage
	}
	var out []*models.AIRule
	for _, rule := range r.rules {
		if !rule.IsActive {
			continue
		}
		cp := *rule
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		wi, wj := out[i].Priority.Weight(), out[j].Priority.Weight()
		if wi != wj {
			return wi > wj
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *mockRuleRepo) Update(_ context.Context, rule *models.AIRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[rule.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *rule
	r.rules[rule.ID] = &cp
	return nil
}

func (r *mockRuleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.rules, id)
	return nil
}

// ----- settings -----

type mockSettingsRepo mockRepository

func (r *mockSettingsRepo) Get(_ context.Context) (*models.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings == nil {
		r.settings = models.DefaultSettings()
		r.settings.ID = 1
	}
	cp := *r.settings
	return &cp, nil
}

func (r *mockSettingsRepo) Update(_ context.Context, settings *models.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *settings
	r.settings = &cp
	return nil
}

// ----- genai double -----

// mockBackend is a scripted genai.Client.
type mockBackend struct {
	mu           sync.Mutex
	reply        string
	err          error
	configured   bool
	calls        int
	instructions []string
	histories    [][]genai.Turn
	messages     []string
}

func newMockBackend(reply string) *mockBackend {
	return &mockBackend{reply: reply, configured: true}
}

func (b *mockBackend) Complete(_ context.Context, instruction string, history []genai.Turn, newMessage string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.instructions = append(b.instructions, instruction)
	b.histories = append(b.histories, append([]genai.Turn(nil), history...))
	b.messages = append(b.messages, newMessage)
	if b.err != nil {
		return "", b.err
	}
	return b.reply, nil
}

func (b *mockBackend) Configured() bool { return b.configured }

func (b *mockBackend) lastInstruction() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.instructions) == 0 {
		return ""
	}
	return b.instructions[len(b.instructions)-1]
}
