package models

import (
	"time"
)

type ThemeMode string

const (
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// Settings is a singleton record; the first read creates it with defaults.
type Settings struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	AppName        string    `json:"app_name" gorm:"not null;size:100"`
	Logo           string    `json:"logo" gorm:"not null;size:500"`
	PrimaryColor   string    `json:"primary_color" gorm:"not null;size:7"`
	SecondaryColor string    `json:"secondary_color" gorm:"not null;size:7"`
	AccentColor    string    `json:"accent_color" gorm:"not null;size:7"`
	Theme          ThemeMode `json:"theme" gorm:"not null;size:10;default:light"`

	UpdatedBy *string   `json:"updated_by,omitempty" gorm:"size:255"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Settings) TableName() string {
	return "app_settings"
}

// DefaultSettings returns the singleton defaults used on first read.
func DefaultSettings() *Settings {
	return &Settings{
		AppName:        "DPU Centre for Online Learning",
		Logo:           "/dpu-logo.svg",
		PrimaryColor:   "#3b82f6",
		SecondaryColor: "#ec4899",
		AccentColor:    "#8b5cf6",
		Theme:          ThemeLight,
	}
}
