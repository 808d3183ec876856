package models

import (
	"time"
)

// Post represents a single feed entry. CreatorID is immutable after
// creation; Version guards read-modify-write updates so a stale observer
// gets a conflict instead of silently overwriting a concurrent edit.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ImageURL  string    `gorm:"not null" json:"image_url"`
	CreatorID uint      `gorm:"not null;index" json:"creator_id"`
	Creator   User      `gorm:"foreignKey:CreatorID" json:"creator"`
	Version   int       `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
