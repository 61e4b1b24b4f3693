package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// User is a registered chat participant.
// ConversationIDs lists every conversation the user takes part in; it is appended
// to when the conversation resolver creates a new conversation.
type User struct {
	ID              string         `gorm:"primaryKey" json:"id"`
	Username        string         `gorm:"uniqueIndex;not null" json:"username"`
	FullName        string         `gorm:"not null" json:"fullName"`
	Password        string         `gorm:"not null" json:"-"`
	Gender          string         `json:"gender"`
	ProfilePic      string         `json:"profilePic"`
	ConversationIDs pq.StringArray `gorm:"type:text[]" json:"conversationIds"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// BeforeCreate is a GORM hook called before the record is inserted.
// It generates a new UUID for the user if the ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// SidebarUser is the projection of a User shown in the client's contact list.
type SidebarUser struct {
	ID         string `json:"id"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
}

// Sidebar returns the sidebar projection of the user.
func (u *User) Sidebar() SidebarUser {
	return SidebarUser{ID: u.ID, FullName: u.FullName, ProfilePic: u.ProfilePic}
}
