package chathub

import "chatapp/backend/internal/models"

// Client is the interface for a live connection of one user.
// It abstracts the underlying transport so the hub can manage WebSocket
// clients and test doubles uniformly.
type Client interface {
	// GetUserID returns the identifier of the user that owns the connection.
	GetUserID() string
	// Send queues an event for delivery without blocking. It returns false if
	// the client is closed or could not accept the event.
	Send(ev models.SocketEvent) bool
	// Run starts the client's read and write pumps.
	Run()
	// Close shuts the connection down with the given close code. Safe to call
	// more than once.
	Close(code int, reason string)
}
