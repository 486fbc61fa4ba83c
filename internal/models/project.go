package models

import "time"

type Project struct {
	ID          uint   `gorm:"primaryKey"`
	Identifier  string `gorm:"size:100;uniqueIndex;not null"`
	Name        string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"` // may contain HTML from the rich-text editor
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Tracker classifies issues. The writer is offered on one tracker only.
type Tracker struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:60;uniqueIndex;not null"`
}

const (
	// PermissionUseAIWriter lets a project member generate, edit and apply drafts.
	PermissionUseAIWriter = "use_ai_writer"
	PermissionViewIssues  = "view_issues"
	PermissionAddIssues   = "add_issues"
	PermissionEditIssues  = "edit_issues"
)

// Membership grants a user a set of permissions on one project.
type Membership struct {
	ID          uint   `gorm:"primaryKey"`
	ProjectID   uint   `gorm:"not null;index:idx_membership_project_user,unique"`
	UserID      uint   `gorm:"not null;index:idx_membership_project_user,unique"`
	Permissions string `gorm:"type:text"` // comma separated
	CreatedAt   time.Time
}
