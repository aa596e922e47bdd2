// Package events publishes domain events for chat turns and admin mutations.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const Source = "learner-assist-service"

// Event types emitted by the service.
const (
	EventChatTurnCompleted = "chat.turn_completed"
	EventChatDeleted       = "chat.deleted"
	EventUserUpdated       = "admin.user_updated"
	EventUserDeleted       = "admin.user_deleted"
	EventRoleChanged       = "admin.role_changed"
	EventCorpusChanged     = "admin.corpus_changed"
	EventDatabaseChanged   = "admin.database_changed"
	EventRuleChanged       = "admin.rule_changed"
	EventSettingsChanged   = "admin.settings_changed"
)

// Event is the envelope published to the event bus.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// NewEvent builds an envelope with a fresh id and timestamp.
func NewEvent(eventType string, data any) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    Source,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// ChatTurnCompletedData is the payload for chat.turn_completed.
type ChatTurnCompletedData struct {
	ChatID       string `json:"chat_id"`
	UserID       string `json:"user_id"`
	MessageCount int    `json:"message_count"`
	Degraded     bool   `json:"degraded"`
	Fallback     bool   `json:"fallback"`
}

// AdminMutationData is the payload for admin.* audit events.
type AdminMutationData struct {
	ActorID  string `json:"actor_id"`
	TargetID string `json:"target_id,omitempty"`
	Action   string `json:"action"`
}

// EventPublisher publishes domain events. Publishing failures must never fail
// the triggering operation; callers log and continue.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
