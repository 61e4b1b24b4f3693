package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is the message thread between exactly two users.
// The participant pair is stored normalized (ParticipantA < ParticipantB) so the
// composite unique index rejects a second conversation for the same pair
// regardless of who sent the first message.
type Conversation struct {
	// ID is the unique identifier of the conversation (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// ParticipantA is the lexically smaller participant id.
	ParticipantA string `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"participantA"`
	// ParticipantB is the lexically greater participant id.
	ParticipantB string `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"participantB"`
	// Messages are loaded only on demand, ordered by creation time.
	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
	// LastMessageAt is bumped on every append.
	LastMessageAt time.Time `json:"lastMessageAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NormalizePair orders two participant ids so that the pair has a single
// canonical form.
func NormalizePair(userA, userB string) (string, string) {
	if userB < userA {
		return userB, userA
	}
	return userA, userB
}

// PairKey returns the canonical key for the unordered pair {userA, userB}.
func PairKey(userA, userB string) string {
	a, b := NormalizePair(userA, userB)
	return a + ":" + b
}

// NewConversation builds an unsaved conversation for the unordered pair.
func NewConversation(userA, userB string) *Conversation {
	a, b := NormalizePair(userA, userB)
	return &Conversation{ParticipantA: a, ParticipantB: b}
}

// BeforeCreate assigns an id and keeps the participant pair normalized.
func (c *Conversation) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.ParticipantA, c.ParticipantB = NormalizePair(c.ParticipantA, c.ParticipantB)
	return
}

// ParticipantIDs returns both participants.
func (c *Conversation) ParticipantIDs() []string {
	return []string{c.ParticipantA, c.ParticipantB}
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Conversation) HasParticipant(userID string) bool {
	return userID != "" && (c.ParticipantA == userID || c.ParticipantB == userID)
}
