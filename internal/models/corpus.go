package models

import (
	"time"

	"gorm.io/gorm"
)

type CorpusType string

const (
	CorpusTypeDocument CorpusType = "document"
	CorpusTypePolicy   CorpusType = "policy"
	CorpusTypeSyllabus CorpusType = "syllabus"
	CorpusTypeFAQ      CorpusType = "faq"
	CorpusTypeManual   CorpusType = "manual"
)

type CorpusSourceType string

const (
	SourceTypeText    CorpusSourceType = "text"
	SourceTypePDF     CorpusSourceType = "pdf"
	SourceTypeExcel   CorpusSourceType = "excel"
	SourceTypeCSV     CorpusSourceType = "csv"
	SourceTypeWebLink CorpusSourceType = "weblink"
)

// Corpus is one admin-curated free-text knowledge entry. Content is the
// authoritative text regardless of source type; file and weblink sources keep
// their raw reference but still require content (entered or extracted
// manually).
type Corpus struct {
	ID          string           `json:"id" gorm:"primaryKey;size:36"`
	Title       string           `json:"title" gorm:"not null;size:255"`
	Type        CorpusType       `json:"type" gorm:"not null;size:20"`
	SourceType  CorpusSourceType `json:"source_type" gorm:"not null;size:20;default:text"`
	Content     string           `json:"content" gorm:"not null;type:text"`
	Description string           `json:"description" gorm:"type:text"`

	FileURL  *string `json:"file_url,omitempty" gorm:"size:500"`
	WebLink  *string `json:"web_link,omitempty" gorm:"size:500"`
	FileName *string `json:"file_name,omitempty" gorm:"size:255"`
	FileSize *int64  `json:"file_size,omitempty"`

	UploadedBy string `json:"uploaded_by" gorm:"not null;size:255"`
	IsActive   bool   `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Corpus) TableName() string {
	return "corpus_items"
}
