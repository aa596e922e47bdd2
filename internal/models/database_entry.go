package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type DatabaseCategory string

const (
	CategoryLearnerRecords DatabaseCategory = "learner_records"
	CategoryAcademicData   DatabaseCategory = "academic_data"
	CategoryLogs           DatabaseCategory = "logs"
	CategoryOther          DatabaseCategory = "other"
)

// DatabaseEntry is an admin-curated structured dataset. Schema is a free-form
// JSON shape descriptor and is not enforced against Data.
type DatabaseEntry struct {
	ID          string           `json:"id" gorm:"primaryKey;size:36"`
	Name        string           `json:"name" gorm:"not null;size:255"`
	Description string           `json:"description" gorm:"type:text"`
	Schema      datatypes.JSON   `json:"schema" gorm:"type:jsonb;not null"`
	Data        datatypes.JSON   `json:"data" gorm:"type:jsonb"`
	Category    DatabaseCategory `json:"category" gorm:"not null;size:30;default:other"`

	UploadedBy string `json:"uploaded_by" gorm:"not null;size:255"`
	IsActive   bool   `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (DatabaseEntry) TableName() string {
	return "database_entries"
}

// Records decodes the stored data array.
func (d *DatabaseEntry) Records() []map[string]any {
	var out []map[string]any
	if len(d.Data) == 0 {
		return out
	}
	_ = jsonUnmarshal(d.Data, &out)
	return out
}
