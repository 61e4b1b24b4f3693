// Package chat implements the conversation resolver and the message store on
// top of the storage boundary, and hands new messages to a Deliverer for
// realtime push.
package chat

import (
	"chatapp/backend/internal/models"
	"chatapp/backend/internal/storage"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

// Deliverer pushes a stored message to its recipient's live connection.
// It returns false when the recipient is not connected.
type Deliverer interface {
	DeliverMessage(msg models.Message, recipientID string) bool
}

// Service is the chat application service.
type Service struct {
	Storage   storage.Storage
	Deliverer Deliverer

	locks *pairLocks
}

// NewService creates a chat service. deliverer may be nil, in which case
// messages are only available through ListMessages.
func NewService(s storage.Storage, deliverer Deliverer) *Service {
	return &Service{
		Storage:   s,
		Deliverer: deliverer,
		locks:     newPairLocks(),
	}
}

func internalErr(op string, err error) error {
	log.Printf("ERROR: %s: %v", op, err)
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}

func validatePair(userA, userB string) error {
	if userA == "" || userB == "" {
		return fmt.Errorf("%w: both participant ids are required", ErrInvalidArgument)
	}
	if userA == userB {
		return fmt.Errorf("%w: participants must be distinct", ErrInvalidArgument)
	}
	return nil
}

// ResolveConversation finds or creates the single conversation between userA
// and userB. Creation is serialized per pair in-process; a duplicate-key error
// from the store means another instance won the race and its row is returned.
func (s *Service) ResolveConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	if err := validatePair(userA, userB); err != nil {
		return nil, err
	}

	conv, err := s.Storage.FindConversation(ctx, userA, userB)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, internalErr("find conversation", err)
	}

	unlock := s.locks.Lock(models.PairKey(userA, userB))
	defer unlock()

	// Another request may have created it while we waited for the lock.
	conv, err = s.Storage.FindConversation(ctx, userA, userB)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, internalErr("find conversation", err)
	}

	conv = models.NewConversation(userA, userB)
	err = s.Storage.CreateConversation(ctx, conv)
	switch {
	case err == nil:
		log.Printf("INFO: Created conversation %s between %s and %s", conv.ID, conv.ParticipantA, conv.ParticipantB)
		return conv, nil
	case errors.Is(err, storage.ErrDuplicate):
		existing, findErr := s.Storage.FindConversation(ctx, userA, userB)
		if findErr != nil {
			return nil, internalErr("find conversation after duplicate", findErr)
		}
		return existing, nil
	case errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("%w: participant does not exist", ErrNotFound)
	default:
		return nil, internalErr("create conversation", err)
	}
}

// FindConversation is the read-only lookup; it never creates a conversation.
func (s *Service) FindConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	if err := validatePair(userA, userB); err != nil {
		return nil, err
	}
	conv, err := s.Storage.FindConversation(ctx, userA, userB)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: no conversation between participants", ErrNotFound)
	}
	if err != nil {
		return nil, internalErr("find conversation", err)
	}
	return conv, nil
}

// AppendMessage stores a new message in the conversation. The sender must be
// one of the conversation's participants.
func (s *Service) AppendMessage(ctx context.Context, conversationID, senderID, body string) (*models.Message, error) {
	if conversationID == "" || senderID == "" {
		return nil, fmt.Errorf("%w: conversation and sender are required", ErrInvalidArgument)
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: message body is empty", ErrInvalidArgument)
	}

	msg, err := models.NewMessage(conversationID, senderID, body)
	if err != nil {
		return nil, internalErr("new message", err)
	}

	err = s.Storage.AppendMessage(ctx, msg)
	switch {
	case err == nil:
		return msg, nil
	case errors.Is(err, storage.ErrNotFound):
		return nil, fmt.Errorf("%w: conversation %s", ErrNotFound, conversationID)
	case errors.Is(err, storage.ErrNotParticipant):
		return nil, fmt.Errorf("%w: sender %s is not in conversation %s", ErrNotFound, senderID, conversationID)
	default:
		return nil, internalErr("append message", err)
	}
}

// ListMessages returns the messages exchanged between userA and userB, oldest
// first. It returns ErrNotFound together with an empty, non-nil slice when the
// two users never talked.
func (s *Service) ListMessages(ctx context.Context, userA, userB string) ([]models.Message, error) {
	conv, err := s.FindConversation(ctx, userA, userB)
	if err != nil {
		return []models.Message{}, err
	}

	msgs, err := s.Storage.ListMessages(ctx, conv.ID)
	if err != nil {
		return []models.Message{}, internalErr("list messages", err)
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

// SendMessage is the HTTP send flow: resolve the conversation between sender
// and receiver, append the message, then push it to the receiver if online.
func (s *Service) SendMessage(ctx context.Context, senderID, receiverID, body string) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: message body is empty", ErrInvalidArgument)
	}

	conv, err := s.ResolveConversation(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	msg, err := s.AppendMessage(ctx, conv.ID, senderID, body)
	if err != nil {
		return nil, err
	}

	if s.Deliverer != nil && !s.Deliverer.DeliverMessage(*msg, receiverID) {
		log.Printf("INFO: Recipient %s offline, message %s kept for next fetch", receiverID, msg.ID)
	}
	return msg, nil
}

// SidebarUsers lists every user except userID for the client's contact list.
func (s *Service) SidebarUsers(ctx context.Context, userID string) ([]models.SidebarUser, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	users, err := s.Storage.ListUsersExcept(ctx, userID)
	if err != nil {
		return nil, internalErr("list sidebar users", err)
	}

	out := make([]models.SidebarUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Sidebar())
	}
	return out, nil
}
