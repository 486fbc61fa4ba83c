package models

import "time"

type Issue struct {
	ID          uint     `gorm:"primaryKey"`
	ProjectID   uint     `gorm:"not null;index"`
	Project     *Project `gorm:"constraint:OnDelete:CASCADE"`
	TrackerID   uint     `gorm:"not null;index"`
	ParentID    *uint    `gorm:"index"`
	AuthorID    uint
	Subject     string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`

	CustomValues []CustomValue `gorm:"foreignKey:IssueID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CustomField is a named extra field attached to issues.
type CustomField struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:255;not null"`
}

// CustomValue is the value an issue holds for one custom field.
type CustomValue struct {
	ID            uint   `gorm:"primaryKey"`
	IssueID       uint   `gorm:"not null;index:idx_custom_value_issue_field,unique"`
	CustomFieldID uint   `gorm:"not null;index:idx_custom_value_issue_field,unique"`
	Value         string `gorm:"type:text"`
}

// CustomValue returns the issue's value for field, or "" when unset.
func (i *Issue) CustomValue(fieldID uint) string {
	for _, cv := range i.CustomValues {
		if cv.CustomFieldID == fieldID {
			return cv.Value
		}
	}
	return ""
}

// SetCustomValue sets or replaces the issue's value for field.
func (i *Issue) SetCustomValue(fieldID uint, value string) {
	for idx := range i.CustomValues {
		if i.CustomValues[idx].CustomFieldID == fieldID {
			i.CustomValues[idx].Value = value
			return
		}
	}
	i.CustomValues = append(i.CustomValues, CustomValue{IssueID: i.ID, CustomFieldID: fieldID, Value: value})
}
