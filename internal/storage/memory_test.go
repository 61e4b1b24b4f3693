package storage_test

import (
	"chatapp/backend/internal/models"
	"chatapp/backend/internal/storage"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededStore(t *testing.T) *storage.MemoryStore {
	t.Helper()
	s := storage.NewMemoryStore()
	for _, name := range []string{"alice", "bob", "carol"} {
		u := &models.User{ID: name, Username: name, FullName: strings.ToUpper(name[:1]) + name[1:]}
		require.NoError(t, s.CreateUser(context.Background(), u))
	}
	return s
}

func TestMemoryStore_CreateUser(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()

	user := &models.User{Username: "dave", FullName: "Dave"}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.NotEmpty(t, user.ID)

	byName, err := s.GetUserByUsername(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	err = s.CreateUser(ctx, &models.User{Username: "dave"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	_, err = s.GetUserByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestMemoryStore_ListUsersExcept(t *testing.T) {
	s := newSeededStore(t)

	users, err := s.ListUsersExcept(context.Background(), "bob")
	require.NoError(t, err)

	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].FullName)
	assert.Equal(t, "Carol", users[1].FullName)
}

func TestMemoryStore_CreateConversation(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	conv := models.NewConversation("bob", "alice")
	require.NoError(t, s.CreateConversation(ctx, conv))

	found, err := s.FindConversation(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, found.ID)

	alice, _ := s.GetUserByID(ctx, "alice")
	bob, _ := s.GetUserByID(ctx, "bob")
	assert.Contains(t, alice.ConversationIDs, conv.ID)
	assert.Contains(t, bob.ConversationIDs, conv.ID)

	err = s.CreateConversation(ctx, models.NewConversation("alice", "bob"))
	assert.ErrorIs(t, err, storage.ErrDuplicate, "pair must be unique regardless of order")
}

func TestMemoryStore_CreateConversation_UnknownUser(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	err := s.CreateConversation(ctx, models.NewConversation("alice", "ghost"))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = s.FindConversation(ctx, "alice", "ghost")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	alice, _ := s.GetUserByID(ctx, "alice")
	assert.Empty(t, alice.ConversationIDs, "failed creation must not touch user lists")
}

func TestMemoryStore_AppendMessage(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)
	conv := models.NewConversation("alice", "bob")
	require.NoError(t, s.CreateConversation(ctx, conv))

	t.Run("unknown conversation", func(t *testing.T) {
		msg, _ := models.NewMessage("nope", "alice", "hi")
		assert.ErrorIs(t, s.AppendMessage(ctx, msg), storage.ErrNotFound)
	})

	t.Run("sender not a participant", func(t *testing.T) {
		msg, _ := models.NewMessage(conv.ID, "carol", "hi")
		assert.ErrorIs(t, s.AppendMessage(ctx, msg), storage.ErrNotParticipant)
	})

	t.Run("appends in order", func(t *testing.T) {
		first, _ := models.NewMessage(conv.ID, "alice", "hi")
		second, _ := models.NewMessage(conv.ID, "bob", "hey")
		require.NoError(t, s.AppendMessage(ctx, first))
		require.NoError(t, s.AppendMessage(ctx, second))

		msgs, err := s.ListMessages(ctx, conv.ID)
		require.NoError(t, err)
		require.Len(t, msgs, 2)
		assert.Equal(t, "hi", msgs[0].Body)
		assert.Equal(t, "hey", msgs[1].Body)

		stored, _ := s.FindConversation(ctx, "alice", "bob")
		assert.Equal(t, second.CreatedAt, stored.LastMessageAt)
	})
}

func TestMemoryStore_AppendMessage_StampsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)
	conv := models.NewConversation("alice", "bob")
	require.NoError(t, s.CreateConversation(ctx, conv))

	// Prepared out of order: the store, not the caller, decides the time.
	base := time.Now().UTC()
	first := &models.Message{ConversationID: conv.ID, SenderID: "alice", Body: "first", CreatedAt: base.Add(time.Hour)}
	second := &models.Message{ConversationID: conv.ID, SenderID: "bob", Body: "second", CreatedAt: base.Add(-time.Hour)}
	require.NoError(t, s.AppendMessage(ctx, first))
	require.NoError(t, s.AppendMessage(ctx, second))

	assert.False(t, second.CreatedAt.Before(first.CreatedAt))

	msgs, err := s.ListMessages(ctx, conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "first", msgs[0].Body)
	assert.Equal(t, "second", msgs[1].Body)

	empty, err := s.ListMessages(ctx, "no-such-conversation")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMemoryStore_ConcurrentCreateConversation(t *testing.T) {
	ctx := context.Background()
	s := newSeededStore(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	created, duplicates := 0, 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "alice", "bob"
			if i%2 == 1 {
				a, b = b, a
			}
			err := s.CreateConversation(ctx, models.NewConversation(a, b))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, storage.ErrDuplicate) {
				duplicates++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 19, duplicates)
}

func TestMemoryStore_Presence(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()

	require.NoError(t, s.MarkOnline(ctx, "bob"))
	require.NoError(t, s.MarkOnline(ctx, "alice"))
	require.NoError(t, s.MarkOnline(ctx, "alice"))

	online, err := s.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, online)

	require.NoError(t, s.MarkOffline(ctx, "alice"))
	online, _ = s.OnlineUsers(ctx)
	assert.Equal(t, []string{"bob"}, online)

	require.NoError(t, s.ResetPresence(ctx))
	online, _ = s.OnlineUsers(ctx)
	assert.Empty(t, online)
}

func TestService_PresenceWithoutRedis(t *testing.T) {
	s := storage.NewStorageService(nil, nil)

	assert.Error(t, s.MarkOnline(context.Background(), "alice"))
	_, err := s.OnlineUsers(context.Background())
	assert.Error(t, err)
}
