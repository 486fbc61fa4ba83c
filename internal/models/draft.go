package models

import "time"

type DraftStatus int

const (
	DraftPending DraftStatus = 0
	DraftApplied DraftStatus = 1
)

func (s DraftStatus) String() string {
	if s == DraftApplied {
		return "applied"
	}
	return "pending"
}

// Draft is one generated piece of text awaiting review. Drafts that are never
// applied stay pending.
type Draft struct {
	ID               uint        `gorm:"primaryKey"`
	IssueID          uint        `gorm:"not null;index"`
	Issue            *Issue      `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID         uint        `gorm:"not null"`
	UserPrompt       string      `gorm:"type:text"`
	SystemPrompt     string      `gorm:"type:text"`
	GeneratedContent string      `gorm:"type:text"`
	Status           DraftStatus `gorm:"not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Draft) TableName() string { return "ai_writer_contents" }
