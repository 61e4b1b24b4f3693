package storage

import (
	"chatapp/backend/internal/models"
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is a process-local Storage and PresenceStore. It enforces the
// same constraints as the PostgreSQL schema (unique username, unique
// participant pair) and is used with STORAGE_DRIVER=memory and in tests.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]*models.User
	usernames     map[string]string
	conversations map[string]*models.Conversation
	pairs         map[string]string
	messages      map[string][]models.Message
	online        map[string]struct{}
}

var _ Storage = (*MemoryStore)(nil)
var _ PresenceStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]*models.User),
		usernames:     make(map[string]string),
		conversations: make(map[string]*models.Conversation),
		pairs:         make(map[string]string),
		messages:      make(map[string][]models.Message),
		online:        make(map[string]struct{}),
	}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.ConversationIDs = append([]string(nil), u.ConversationIDs...)
	return &c
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.usernames[user.Username]; taken {
		return ErrDuplicate
	}
	if err := user.BeforeCreate(nil); err != nil {
		return err
	}
	if _, taken := m.users[user.ID]; taken {
		return ErrDuplicate
	}

	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	m.users[user.ID] = cloneUser(user)
	m.usernames[user.Username] = user.ID
	return nil
}

func (m *MemoryStore) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.usernames[username]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(m.users[id]), nil
}

func (m *MemoryStore) ListUsersExcept(ctx context.Context, userID string) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := []models.User{}
	for id, u := range m.users {
		if id == userID {
			continue
		}
		users = append(users, *cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].FullName < users[j].FullName })
	return users, nil
}

func (m *MemoryStore) FindConversation(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.pairs[models.PairKey(userA, userB)]
	if !ok {
		return nil, ErrNotFound
	}
	conv := *m.conversations[id]
	return &conv, nil
}

func (m *MemoryStore) CreateConversation(ctx context.Context, conv *models.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := conv.BeforeCreate(nil); err != nil {
		return err
	}
	key := models.PairKey(conv.ParticipantA, conv.ParticipantB)
	if _, exists := m.pairs[key]; exists {
		return ErrDuplicate
	}
	for _, id := range conv.ParticipantIDs() {
		if _, ok := m.users[id]; !ok {
			return ErrNotFound
		}
	}

	now := time.Now().UTC()
	conv.CreatedAt, conv.UpdatedAt = now, now
	stored := *conv
	stored.Messages = nil
	m.conversations[conv.ID] = &stored
	m.pairs[key] = conv.ID
	for _, id := range conv.ParticipantIDs() {
		m.users[id].ConversationIDs = append(m.users[id].ConversationIDs, conv.ID)
	}
	return nil
}

func (m *MemoryStore) AppendMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.conversations[msg.ConversationID]
	if !ok {
		return ErrNotFound
	}
	if !conv.HasParticipant(msg.SenderID) {
		return ErrNotParticipant
	}
	if err := msg.BeforeCreate(nil); err != nil {
		return err
	}
	msg.CreatedAt = time.Now().UTC()

	m.messages[conv.ID] = append(m.messages[conv.ID], *msg)
	conv.LastMessageAt = msg.CreatedAt
	conv.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msgs := append([]models.Message{}, m.messages[conversationID]...)
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID < msgs[j].ID
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs, nil
}

func (m *MemoryStore) MarkOnline(ctx context.Context, userID string) error {
	m.mu.Lock()
	m.online[userID] = struct{}{}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) MarkOffline(ctx context.Context, userID string) error {
	m.mu.Lock()
	delete(m.online, userID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) OnlineUsers(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.online))
	for id := range m.online {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemoryStore) ResetPresence(ctx context.Context) error {
	m.mu.Lock()
	m.online = make(map[string]struct{})
	m.mu.Unlock()
	return nil
}
