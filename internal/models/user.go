// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// DefaultUserStatus is assigned to newly registered users.
const DefaultUserStatus = "I am new!"

// User represents a registered account. The password hash is never
// serialized outward.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	Status    string    `gorm:"not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Posts is the derived index of posts owned by this user. Ownership is
	// authoritative on Post.CreatorID; this association is a query
	// convenience, not separately maintained state.
	Posts []Post `gorm:"foreignKey:CreatorID" json:"posts,omitempty"`
}

// CreatorSummary is the minimal public view of a post's creator that
// accompanies feed responses and broadcast events.
type CreatorSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Summary returns the public creator view for this user.
func (u *User) Summary() CreatorSummary {
	return CreatorSummary{ID: u.ID, Name: u.Name}
}
