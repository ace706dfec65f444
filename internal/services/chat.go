package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"unalone/internal/adapters/rest"
	"unalone/internal/domain"
)

type chatService struct {
	api            domain.ChatAPI
	channel        domain.PushChannel
	notifier       domain.Notifier
	logger         *slog.Logger
	contextTimeout time.Duration

	mu       sync.Mutex
	eventID  string
	messages []domain.ChatMessage
}

// NewChatService creates a ChatService bound to the push channel's chat
// events.
func NewChatService(
	api domain.ChatAPI,
	channel domain.PushChannel,
	notifier domain.Notifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.ChatService {
	s := &chatService{
		api:            api,
		channel:        channel,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
	channel.Subscribe(domain.PushChatMessage, s.handleMessage)
	channel.Subscribe(domain.PushChatMessageDeleted, s.handleMessageDeleted)
	return s
}

func (s *chatService) Open(ctx context.Context, eventID string) ([]domain.ChatMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	messages, err := s.api.ListMessages(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("open chat: %w", err)
	}

	s.mu.Lock()
	s.eventID = eventID
	s.messages = messages
	s.mu.Unlock()

	if err := s.channel.Emit(domain.PushJoinEvent, map[string]string{"eventId": eventID}); err != nil {
		s.logger.Warn("join_event emit failed", "err", err)
	}
	return s.Messages(), nil
}

func (s *chatService) Close() {
	s.mu.Lock()
	eventID := s.eventID
	s.eventID = ""
	s.messages = nil
	s.mu.Unlock()

	if eventID == "" {
		return
	}
	if err := s.channel.Emit(domain.PushLeaveEvent, map[string]string{"eventId": eventID}); err != nil {
		s.logger.Warn("leave_event emit failed", "err", err)
	}
}

// ForceClose drops the view without a leave emit: the server already
// removed the user from the room.
func (s *chatService) ForceClose(reason string) {
	s.mu.Lock()
	s.eventID = ""
	s.messages = nil
	s.mu.Unlock()
	s.notifier.Notify(domain.NoticeError, reason)
}

func (s *chatService) OpenEventID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventID
}

func (s *chatService) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *chatService) Send(ctx context.Context, text string) (domain.ChatMessage, error) {
	s.mu.Lock()
	eventID := s.eventID
	s.mu.Unlock()
	if eventID == "" {
		return domain.ChatMessage{}, domain.ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	msg, err := s.api.SendMessage(ctx, eventID, text)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	// Optimistic append; the push echo of the same message id is ignored.
	s.append(msg)
	return msg, nil
}

func (s *chatService) Delete(ctx context.Context, messageID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	// Removal from the list happens on the chat:messageDeleted push.
	return s.api.DeleteMessage(ctx, messageID)
}

// append adds the message unless its id is already present.
func (s *chatService) append(msg domain.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.messages {
		if existing.ID == msg.ID {
			return
		}
	}
	s.messages = append(s.messages, msg)
}

func (s *chatService) handleMessage(payload json.RawMessage) {
	msg, ok := rest.DecodeChatMessagePayload(payload)
	if !ok {
		s.logger.Warn("discarding malformed chat message payload")
		return
	}
	s.mu.Lock()
	open := s.eventID
	s.mu.Unlock()
	if open == "" || msg.EventID != open {
		return
	}
	s.append(msg)
}

func (s *chatService) handleMessageDeleted(payload json.RawMessage) {
	var p struct {
		EventID   string `json:"eventId"`
		MessageID string `json:"messageId"`
	}
	if len(payload) == 0 || json.Unmarshal(payload, &p) != nil || p.MessageID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eventID == "" || p.EventID != s.eventID {
		return
	}
	kept := s.messages[:0]
	for _, msg := range s.messages {
		if msg.ID != p.MessageID {
			kept = append(kept, msg)
		}
	}
	s.messages = kept
}
