package models

import (
	"time"

	"gorm.io/gorm"
)

type RuleCategory string

const (
	RuleCategoryBehavior       RuleCategory = "behavior"
	RuleCategorySafety         RuleCategory = "safety"
	RuleCategoryResponseStyle  RuleCategory = "response_style"
	RuleCategoryDomainBoundary RuleCategory = "domain_boundary"
)

type RulePriority string

const (
	PriorityLow      RulePriority = "low"
	PriorityMedium   RulePriority = "medium"
	PriorityHigh     RulePriority = "high"
	PriorityCritical RulePriority = "critical"
)

// Weight maps a priority to its numeric urgency. Higher weights are injected
// earlier in the system instruction.
func (p RulePriority) Weight() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// AIRule is an admin-authored behavioral constraint injected verbatim into the
// system instruction.
type AIRule struct {
	ID       string       `json:"id" gorm:"primaryKey;size:36"`
	Rule     string       `json:"rule" gorm:"not null;type:text"`
	Category RuleCategory `json:"category" gorm:"not null;size:20;default:behavior"`
	Priority RulePriority `json:"priority" gorm:"not null;size:10;default:medium"`
	IsActive bool         `json:"is_active" gorm:"not null;default:true"`

	CreatedBy string `json:"created_by" gorm:"not null;size:255"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (AIRule) TableName() string {
	return "ai_rules"
}
