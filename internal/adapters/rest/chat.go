package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"unalone/internal/domain"
)

// ChatAPI implements domain.ChatAPI against the backend /chat routes.
type ChatAPI struct {
	client *Client
}

// NewChatAPI returns the chat surface of the given client.
func NewChatAPI(client *Client) domain.ChatAPI {
	return &ChatAPI{client: client}
}

func (a *ChatAPI) ListMessages(ctx context.Context, eventID string) ([]domain.ChatMessage, error) {
	path := "/chat/events/" + url.PathEscape(eventID) + "/messages"
	raw, err := a.client.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	var wire []wireChatMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode chat messages: %w", err)
	}
	messages := make([]domain.ChatMessage, 0, len(wire))
	for _, w := range wire {
		messages = append(messages, w.toDomain(eventID))
	}
	return messages, nil
}

func (a *ChatAPI) SendMessage(ctx context.Context, eventID, text string) (domain.ChatMessage, error) {
	path := "/chat/events/" + url.PathEscape(eventID) + "/messages"
	raw, err := a.client.do(ctx, http.MethodPost, path, nil, map[string]string{"text": text})
	if err != nil {
		return domain.ChatMessage{}, fmt.Errorf("send chat message: %w", err)
	}
	var w wireChatMessage
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("decode chat message: %w", err)
	}
	return w.toDomain(eventID), nil
}

func (a *ChatAPI) DeleteMessage(ctx context.Context, messageID string) error {
	path := "/chat/messages/" + url.PathEscape(messageID)
	if _, err := a.client.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete chat message: %w", err)
	}
	return nil
}
