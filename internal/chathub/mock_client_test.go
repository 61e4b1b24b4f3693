package chathub_test

import (
	"chatapp/backend/internal/models"
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockClient struct {
	userID string

	mu        sync.Mutex
	events    []models.SocketEvent
	closed    bool
	closeCode int
	full      bool
}

func newMockClient(userID string) *MockClient {
	return &MockClient{userID: userID}
}

func (c *MockClient) GetUserID() string {
	return c.userID
}

func (c *MockClient) Send(ev models.SocketEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.full {
		return false
	}
	c.events = append(c.events, ev)
	return true
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.closeCode = code
	}
}

func (c *MockClient) Events() []models.SocketEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.SocketEvent(nil), c.events...)
}

func (c *MockClient) EventsNamed(name string) []models.SocketEvent {
	var out []models.SocketEvent
	for _, ev := range c.Events() {
		if ev.Event == name {
			out = append(out, ev)
		}
	}
	return out
}

func (c *MockClient) Closed() (bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed, c.closeCode
}

type MockPresenceStore struct {
	mock.Mock
}

func (m *MockPresenceStore) MarkOnline(ctx context.Context, userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockPresenceStore) MarkOffline(ctx context.Context, userID string) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockPresenceStore) OnlineUsers(ctx context.Context) ([]string, error) {
	args := m.Called()
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockPresenceStore) ResetPresence(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}
