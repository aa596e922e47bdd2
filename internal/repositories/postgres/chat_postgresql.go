package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/DPU-COL/learner-assist-service/internal/models"
	"github.com/DPU-COL/learner-assist-service/internal/repositories"
)

type chatPostgreSQL struct {
	db *gorm.DB
}

func NewChatPostgreSQL(db *gorm.DB) repositories.ChatRepository {
	return &chatPostgreSQL{db: db}
}

func (r *chatPostgreSQL) Create(ctx context.Context, chat *models.Chat) error {
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

func (r *chatPostgreSQL) GetOwned(ctx context.Context, id, ownerID string) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&chat, "id = ? AND user_id = ?", id, ownerID).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &chat, nil
}

func (r *chatPostgreSQL) GetByID(ctx context.Context, id string) (*models.Chat, error) {
	var chat models.Chat
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&chat, "id = ?", id).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &chat, nil
}

func (r *chatPostgreSQL) List(ctx context.Context, filters repositories.ChatFilters) ([]*models.ChatSummary, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Chat{})
	if filters.OwnerID != "" {
		query = query.Where("chats.user_id = ?", filters.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count chats: %w", err)
	}

	// Single reference expansion: owner name/email for admin listings.
	var summaries []*models.ChatSummary
	err := applyPagination(query.
		Select(`chats.id, chats.user_id, chats.title, chats.created_at, chats.updated_at,
			users.name AS owner_name, users.email AS owner_email,
			(SELECT COUNT(*) FROM chat_messages WHERE chat_messages.chat_id = chats.id) AS message_count`).
		Joins("LEFT JOIN users ON users.id = chats.user_id").
		Order("chats.updated_at DESC"), filters.Limit, filters.Offset).
		Scan(&summaries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list chats: %w", err)
	}
	return summaries, total, nil
}

func (r *chatPostgreSQL) AppendTurn(ctx context.Context, chatID string, userMsg, assistantMsg *models.Message, title *string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		userMsg.ChatID = chatID
		assistantMsg.ChatID = chatID

		if err := tx.Create(userMsg).Error; err != nil {
			return fmt.Errorf("failed to append user message: %w", err)
		}
		if err := tx.Create(assistantMsg).Error; err != nil {
			return fmt.Errorf("failed to append assistant message: %w", err)
		}

		updates := map[string]any{"updated_at": assistantMsg.Timestamp}
		if title != nil {
			updates["title"] = *title
		}
		if err := tx.Model(&models.Chat{}).Where("id = ?", chatID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update chat: %w", err)
		}
		return nil
	})
}

func (r *chatPostgreSQL) DeleteOwned(ctx context.Context, id, ownerID string) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Chat{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete chat: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return r.deleteMessages(ctx, id)
}

func (r *chatPostgreSQL) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.Chat{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete chat: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return r.deleteMessages(ctx, id)
}

func (r *chatPostgreSQL) deleteMessages(ctx context.Context, chatID string) error {
	if err := r.db.WithContext(ctx).Delete(&models.Message{}, "chat_id = ?", chatID).Error; err != nil {
		return fmt.Errorf("failed to delete chat messages: %w", err)
	}
	return nil
}

func (r *chatPostgreSQL) CountMessages(ctx context.Context, chatID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).Where("chat_id = ?", chatID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}
