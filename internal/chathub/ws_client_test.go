package chathub_test

import (
	"chatapp/backend/internal/chathub"
	"chatapp/backend/internal/config"
	"chatapp/backend/internal/models"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSocketPair returns the server side of a live WebSocket connection and the
// peer dialed against it.
func newSocketPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()
	serverSide := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverSide <- conn
	}))
	t.Cleanup(srv.Close)

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { peer.Close() })

	select {
	case conn := <-serverSide:
		return conn, peer
	case <-time.After(2 * time.Second):
		t.Fatal("server side of the socket never arrived")
		return nil, nil
	}
}

func TestWebSocketClient_CloseReturnsImmediately(t *testing.T) {
	conn, peer := newSocketPair(t)
	client := chathub.NewWebSocketClient(chathub.NewManagerService(nil), "bob", conn)

	start := time.Now()
	client.Close(config.CloseSessionReplaced, "session replaced")
	assert.Less(t, time.Since(start), 50*time.Millisecond)

	assert.False(t, client.Send(models.UserTypingEvent("alice")), "closed client accepts nothing")
	client.Close(websocket.CloseNormalClosure, "") // second call is a no-op

	require.NoError(t, peer.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := peer.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, config.CloseSessionReplaced), "unexpected error: %v", err)
}

func TestWebSocketClient_Pumps(t *testing.T) {
	hub := chathub.NewManagerService(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	alice := newMockClient("alice")
	require.True(t, hub.RequestRegister(alice))

	conn, peer := newSocketPair(t)
	bob := chathub.NewWebSocketClient(hub, "bob", conn)
	require.True(t, hub.RequestRegister(bob))
	bob.Run()

	// write pump: the presence broadcast reaches the peer as JSON
	require.NoError(t, peer.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev struct {
		Event string   `json:"event"`
		Data  []string `json:"data"`
	}
	require.NoError(t, peer.ReadJSON(&ev))
	assert.Equal(t, models.EventGetOnlineUsers, ev.Event)
	assert.Equal(t, []string{"alice", "bob"}, ev.Data)

	// read pump: typing goes through the hub to the other user
	require.NoError(t, peer.WriteJSON(models.SocketEvent{Event: models.EventTyping}))
	assert.Eventually(t, func() bool {
		return len(alice.EventsNamed(models.EventUserTyping)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// peer hang-up unregisters the client
	require.NoError(t, peer.Close())
	assert.Eventually(t, func() bool {
		online := hub.Registry.ListOnline()
		return len(online) == 1 && online[0] == "alice"
	}, 2*time.Second, 10*time.Millisecond)
}
