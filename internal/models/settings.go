package models

import "time"

// DefaultSystemPrompt is used until an administrator configures one.
const DefaultSystemPrompt = "Write a post for your business to be published on any social media platform, based on the provided title and user prompt."

// Settings holds the writer configuration.
type Settings struct {
	ID                          uint   `gorm:"primaryKey"` // single-row table (ID=1)
	TrackerID                   uint   `gorm:"not null;default:0"`
	PromptCustomFieldID         uint   `gorm:"not null;default:0"`
	PromptTemplateCustomFieldID uint   `gorm:"not null;default:0"`
	SystemPrompt                string `gorm:"type:text"`
	ModelKey                    string `gorm:"size:120"`
	UpdatedAt                   time.Time
}

func (Settings) TableName() string { return "ai_writer_settings" }
