/*
Package chat contains the real-time core of the messaging server: the
presence registry, the connection gateway (Hub), per-connection pumps, and
the event dispatcher that fans payloads out to live connections.

This file defines the wire-level event vocabulary shared with clients.
*/
package chat

// Server-emitted event names.
const (
	// EventUserOnline announces that a user gained their first live connection.
	EventUserOnline = "user:online"

	// EventUserOffline announces that a user lost their last live connection.
	EventUserOffline = "user:offline"

	// EventUsersOnline carries the full online snapshot, sent once to a newly admitted connection.
	EventUsersOnline = "users:online"

	// EventTypingStart and EventTypingStop relay typing indicators to the declared receiver.
	EventTypingStart = "typing:start"
	EventTypingStop  = "typing:stop"

	// EventMessageReceive delivers a freshly persisted message to the receiver.
	EventMessageReceive = "message:receive"

	// EventMessageSent confirms a freshly persisted message back to the sender.
	EventMessageSent = "message:sent"

	// EventAuthError notifies a connection that it is about to be closed for an auth failure.
	EventAuthError = "auth:error"
)

// Event is the envelope every frame on the wire uses, in both directions.
// Data is left as `any` so outbound events can embed typed payloads while
// inbound frames are decoded lazily per event name.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data,omitempty"`
}

// NewEvent builds an event envelope.
func NewEvent(name string, data any) Event {
	return Event{Name: name, Data: data}
}

// UserStatusPayload accompanies user:online and user:offline, and tags typing
// relays with the sender.
type UserStatusPayload struct {
	UserID string `json:"userId"`
}

// OnlineUsersPayload accompanies users:online.
type OnlineUsersPayload struct {
	UserIDs []string `json:"userIds"`
}

// AuthErrorPayload accompanies auth:error.
type AuthErrorPayload struct {
	Message string `json:"message"`
}

// TypingPayload is the inbound payload for typing:start and typing:stop.
type TypingPayload struct {
	ReceiverID string `json:"receiverId"`
}
