package models

// Socket event names. Sent by the server: getOnlineUsers, userTyping, newMessage.
// Sent by the client: typing.
const (
	EventGetOnlineUsers = "getOnlineUsers"
	EventUserTyping     = "userTyping"
	EventNewMessage     = "newMessage"
	EventTyping         = "typing"
)

// SocketEvent is the JSON frame exchanged over the WebSocket in both directions.
type SocketEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// OnlineUsersEvent carries the full presence snapshot.
func OnlineUsersEvent(online []string) SocketEvent {
	if online == nil {
		online = []string{}
	}
	return SocketEvent{Event: EventGetOnlineUsers, Data: online}
}

// UserTypingEvent tells peers that userID is typing.
func UserTypingEvent(userID string) SocketEvent {
	return SocketEvent{Event: EventUserTyping, Data: userID}
}

// NewMessageEvent pushes a freshly stored message to its recipient.
func NewMessageEvent(msg Message) SocketEvent {
	return SocketEvent{Event: EventNewMessage, Data: msg}
}
