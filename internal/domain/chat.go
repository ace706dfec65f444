package domain

import "context"

// ChatSender identifies the author of a chat message.
type ChatSender struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ChatMessage is one message in an event's group chat.
type ChatMessage struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	Text      string     `json:"text"`
	Sender    ChatSender `json:"sender"`
	CreatedAt string     `json:"created_at"`
}

// ChatAPI is the remote chat surface.
type ChatAPI interface {
	ListMessages(ctx context.Context, eventID string) ([]ChatMessage, error)
	SendMessage(ctx context.Context, eventID, text string) (ChatMessage, error)
	DeleteMessage(ctx context.Context, messageID string) error
}
