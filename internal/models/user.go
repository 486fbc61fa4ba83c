package models

import (
	"time"
)

type User struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Login string `gorm:"size:120;uniqueIndex;not null"`
	Name  string `gorm:"size:120"`
	Admin bool   `gorm:"not null;default:false"`
}
