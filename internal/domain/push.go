package domain

import "encoding/json"

// Push event names as sent by the server.
const (
	PushEventsCreated      = "events:created"
	PushEventsUpdated      = "events:updated"
	PushEventsDeleted      = "events:deleted"
	PushRoleUpdated        = "participant:roleUpdated"
	PushParticipantKicked  = "participant:kicked"
	PushChatMessage        = "chat:message"
	PushChatMessageDeleted = "chat:messageDeleted"
)

// Client-emitted push events.
const (
	PushJoinEvent  = "join_event"
	PushLeaveEvent = "leave_event"
)

// PushHandler consumes the raw payload of one push notification. The
// channel treats payloads as untrusted: handlers must tolerate malformed
// input.
type PushHandler func(payload json.RawMessage)

// PushChannel is the live server-initiated notification stream. Connect is
// idempotent: calling it on an already-connected channel is a no-op.
// Implementations reconnect on their own with fixed backoff until
// Disconnect is called.
type PushChannel interface {
	Connect(token string) error
	Disconnect()
	Subscribe(event string, h PushHandler)
	Unsubscribe(event string)
	Emit(event string, payload any) error
}
