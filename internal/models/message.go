package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is an immutable chat message inside a Conversation.
// IDs are UUIDv7, so ordering by (CreatedAt, ID) is stable even when two
// messages share a timestamp.
type Message struct {
	// ID is the unique, time-ordered identifier of the message.
	ID string `gorm:"primaryKey" json:"id"`
	// ConversationID is the owning conversation.
	ConversationID string `gorm:"not null;index:idx_conversation_created,priority:1" json:"conversationId"`
	// SenderID is the user who sent the message.
	SenderID string `gorm:"not null" json:"senderId"`
	// Body is the text content of the message.
	Body string `gorm:"type:text;not null" json:"body"`
	// CreatedAt is assigned when the message is appended.
	CreatedAt time.Time `gorm:"index:idx_conversation_created,priority:2" json:"createdAt"`
}

// NewMessage prepares a message for appending, assigning its id and creation time.
func NewMessage(conversationID, senderID, body string) (*Message, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	return &Message{
		ID:             id.String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// BeforeCreate fills in the id for messages not built with NewMessage.
func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		m.ID = id.String()
	}
	return nil
}
