package models

import (
	"time"
)

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

const DefaultChatTitle = "New Conversation"

// Message is one entry in a chat transcript. Messages are append-only and
// ordered by Position within their chat.
type Message struct {
	ID        uint        `json:"id" gorm:"primaryKey;autoIncrement"`
	ChatID    string      `json:"chat_id" gorm:"index;not null;size:36"`
	Role      MessageRole `json:"role" gorm:"not null;size:20"`
	Content   string      `json:"content" gorm:"not null;type:text"`
	Position  int         `json:"position" gorm:"not null"`
	Timestamp time.Time   `json:"timestamp" gorm:"not null"`
}

func (Message) TableName() string {
	return "chat_messages"
}

type Chat struct {
	ID     string `json:"id" gorm:"primaryKey;size:36"`
	UserID string `json:"user_id" gorm:"index;not null;size:255"`
	Title  string `json:"title" gorm:"not null;size:100;default:New Conversation"`

	Messages []Message `json:"messages,omitempty" gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Chat) TableName() string {
	return "chats"
}

// ChatSummary is the metadata-only projection used by list views; messages are
// elided and the owner may be expanded for admin listings.
type ChatSummary struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	OwnerName    string    `json:"owner_name,omitempty"`
	OwnerEmail   string    `json:"owner_email,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
