package chathub

import (
	"chatapp/backend/internal/config"
	"chatapp/backend/internal/models"
	"chatapp/backend/internal/storage"
	"context"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const presenceTimeout = 2 * time.Second

// ManagerService is the realtime hub. It owns the presence registry and
// broadcasts presence snapshots, typing notifications and new messages.
// Connection lifecycle and typing events are funneled through channels and
// handled by Run; DeliverMessage is safe to call from any goroutine.
type ManagerService struct {
	Registry *Registry
	// Presence mirrors the registry into shared storage. Optional.
	Presence storage.PresenceStore

	// Channels
	RegisterCh   chan Client
	UnregisterCh chan Client
	TypingCh     chan string

	done chan struct{}
}

func NewManagerService(presence storage.PresenceStore) *ManagerService {
	return &ManagerService{
		Registry:     NewRegistry(),
		Presence:     presence,
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		TypingCh:     make(chan string, 64),
		done:         make(chan struct{}),
	}
}

// Run processes hub events until ctx is cancelled, then closes every client.
func (m *ManagerService) Run(ctx context.Context) {
	log.Println("Chat hub started.")
	defer close(m.done)

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			log.Println("Chat hub stopped.")
			return
		case client := <-m.RegisterCh:
			m.Register(client)
		case client := <-m.UnregisterCh:
			m.Unregister(client)
		case userID := <-m.TypingCh:
			m.NotifyTyping(userID)
		}
	}
}

// RequestRegister hands a new client to the Run loop. It returns false if the
// hub has stopped.
func (m *ManagerService) RequestRegister(client Client) bool {
	select {
	case m.RegisterCh <- client:
		return true
	case <-m.done:
		return false
	}
}

// RequestUnregister hands a closing client to the Run loop.
func (m *ManagerService) RequestUnregister(client Client) {
	select {
	case m.UnregisterCh <- client:
	case <-m.done:
	}
}

// RequestTyping queues a typing notification from userID.
func (m *ManagerService) RequestTyping(userID string) {
	select {
	case m.TypingCh <- userID:
	case <-m.done:
	}
}

// Register makes client the live connection of its user, closes the
// connection it replaces and broadcasts the new online set.
func (m *ManagerService) Register(client Client) {
	userID := client.GetUserID()
	previous, online := m.Registry.Register(userID, client)
	if previous != nil && previous != client {
		log.Printf("INFO: Session of %s replaced by a new connection", userID)
		previous.Close(config.CloseSessionReplaced, "session replaced")
	}

	m.mirror(userID, true)
	log.Printf("INFO: %s connected, %d online", userID, len(online))
	m.BroadcastPresence(online)
}

// Unregister removes client if it is still the live connection of its user
// and broadcasts the new online set. Stale connections are ignored.
func (m *ManagerService) Unregister(client Client) {
	userID := client.GetUserID()
	if !m.Registry.Release(userID, client) {
		return
	}

	m.mirror(userID, false)
	online := m.Registry.ListOnline()
	log.Printf("INFO: %s disconnected, %d online", userID, len(online))
	m.BroadcastPresence(online)
}

// BroadcastPresence sends the full online list to every connected client.
func (m *ManagerService) BroadcastPresence(online []string) int {
	ev := models.OnlineUsersEvent(online)
	delivered := 0
	for _, c := range m.Registry.Clients() {
		if c.Send(ev) {
			delivered++
		}
	}
	return delivered
}

// NotifyTyping relays a typing event from fromUserID to every other client.
// Peers clear the indicator on their own timer; nothing is tracked here.
func (m *ManagerService) NotifyTyping(fromUserID string) int {
	ev := models.UserTypingEvent(fromUserID)
	delivered := 0
	for _, c := range m.Registry.Clients() {
		if c.GetUserID() == fromUserID {
			continue
		}
		if c.Send(ev) {
			delivered++
		}
	}
	return delivered
}

// DeliverMessage pushes msg to recipientID's live connection. It returns false
// when the recipient is offline; the message is then only fetched over HTTP.
func (m *ManagerService) DeliverMessage(msg models.Message, recipientID string) bool {
	c, ok := m.Registry.Connection(recipientID)
	if !ok {
		return false
	}
	return c.Send(models.NewMessageEvent(msg))
}

func (m *ManagerService) mirror(userID string, online bool) {
	if m.Presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), presenceTimeout)
	defer cancel()

	var err error
	if online {
		err = m.Presence.MarkOnline(ctx, userID)
	} else {
		err = m.Presence.MarkOffline(ctx, userID)
	}
	if err != nil {
		log.Printf("WARNING: Failed to mirror presence of %s: %v", userID, err)
	}
}

func (m *ManagerService) shutdown() {
	for _, c := range m.Registry.Reset() {
		m.mirror(c.GetUserID(), false)
		c.Close(websocket.CloseGoingAway, "server shutdown")
	}
}
