package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"unalone/internal/domain"
)

const testTimeout = 2 * time.Second

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockAuthAPI struct {
	session    domain.AuthSession
	authErr    error
	verifyUser domain.User
	verifyErr  error
	updateUser domain.User
	updateErr  error
	logoutErr  error

	verifyCalls int
	logoutCalls int
}

func (m *mockAuthAPI) Login(ctx context.Context, identifier, password string) (domain.AuthSession, error) {
	if m.authErr != nil {
		return domain.AuthSession{}, m.authErr
	}
	return m.session, nil
}

func (m *mockAuthAPI) Register(ctx context.Context, reg domain.Registration) (domain.AuthSession, error) {
	if m.authErr != nil {
		return domain.AuthSession{}, m.authErr
	}
	return m.session, nil
}

func (m *mockAuthAPI) VerifyToken(ctx context.Context) (domain.User, error) {
	m.verifyCalls++
	if m.verifyErr != nil {
		return domain.User{}, m.verifyErr
	}
	return m.verifyUser, nil
}

func (m *mockAuthAPI) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error) {
	if m.updateErr != nil {
		return domain.User{}, m.updateErr
	}
	return m.updateUser, nil
}

func (m *mockAuthAPI) Logout(ctx context.Context) error {
	m.logoutCalls++
	return m.logoutErr
}

type mockStateRepository struct {
	token      string
	tokenErr   error
	saveErr    error
	consent    *domain.ConsentPreferences
	consentErr error

	savedTokens  []string
	savedConsent []domain.ConsentPreferences
	clearCalls   int
}

func (m *mockStateRepository) SaveToken(ctx context.Context, token string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.token = token
	m.savedTokens = append(m.savedTokens, token)
	return nil
}

func (m *mockStateRepository) Token(ctx context.Context) (string, error) {
	if m.tokenErr != nil {
		return "", m.tokenErr
	}
	if m.token == "" {
		return "", domain.ErrNotFound
	}
	return m.token, nil
}

func (m *mockStateRepository) ClearToken(ctx context.Context) error {
	m.clearCalls++
	m.token = ""
	return nil
}

func (m *mockStateRepository) SaveConsent(ctx context.Context, prefs domain.ConsentPreferences) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.consent = &prefs
	m.savedConsent = append(m.savedConsent, prefs)
	return nil
}

func (m *mockStateRepository) Consent(ctx context.Context) (domain.ConsentPreferences, error) {
	if m.consentErr != nil {
		return domain.ConsentPreferences{}, m.consentErr
	}
	if m.consent == nil {
		return domain.ConsentPreferences{}, domain.ErrNotFound
	}
	return *m.consent, nil
}

func (m *mockStateRepository) AnonymousID(ctx context.Context) (string, error) {
	return "temp_test", nil
}

type emittedFrame struct {
	event   string
	payload any
}

type mockPushChannel struct {
	connectErr error
	emitErr    error

	connectTokens   []string
	disconnectCalls int
	handlers        map[string]domain.PushHandler
	emitted         []emittedFrame
}

func (m *mockPushChannel) Connect(token string) error {
	if m.connectErr != nil {
		return m.connectErr
	}
	m.connectTokens = append(m.connectTokens, token)
	return nil
}

func (m *mockPushChannel) Disconnect() {
	m.disconnectCalls++
}

func (m *mockPushChannel) Subscribe(event string, h domain.PushHandler) {
	if m.handlers == nil {
		m.handlers = map[string]domain.PushHandler{}
	}
	m.handlers[event] = h
}

func (m *mockPushChannel) Unsubscribe(event string) {
	delete(m.handlers, event)
}

func (m *mockPushChannel) Emit(event string, payload any) error {
	if m.emitErr != nil {
		return m.emitErr
	}
	m.emitted = append(m.emitted, emittedFrame{event: event, payload: payload})
	return nil
}

// deliver simulates a server push to a subscribed handler.
func (m *mockPushChannel) deliver(event string, payload string) {
	if h, ok := m.handlers[event]; ok {
		h(json.RawMessage(payload))
	}
}

type notice struct {
	level   domain.NoticeLevel
	message string
}

type mockNotifier struct {
	notices []notice
}

func (m *mockNotifier) Notify(level domain.NoticeLevel, message string) {
	m.notices = append(m.notices, notice{level: level, message: message})
}

type mockEventAPI struct {
	event   domain.Event
	events  []domain.Event
	err     error
	deleted []string
}

func (m *mockEventAPI) List(ctx context.Context) ([]domain.Event, error) {
	return m.events, m.err
}

func (m *mockEventAPI) GetByID(ctx context.Context, id string) (domain.Event, error) {
	return m.event, m.err
}

func (m *mockEventAPI) Create(ctx context.Context, draft domain.EventDraft) (domain.Event, error) {
	if m.err != nil {
		return domain.Event{}, m.err
	}
	return m.event, nil
}

func (m *mockEventAPI) Update(ctx context.Context, id string, draft domain.EventDraft) (domain.Event, error) {
	if m.err != nil {
		return domain.Event{}, m.err
	}
	return m.event, nil
}

func (m *mockEventAPI) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockEventAPI) Join(ctx context.Context, id string) (domain.Event, error) {
	if m.err != nil {
		return domain.Event{}, m.err
	}
	return m.event, nil
}

func (m *mockEventAPI) Leave(ctx context.Context, id string) (domain.Event, error) {
	if m.err != nil {
		return domain.Event{}, m.err
	}
	return m.event, nil
}

func (m *mockEventAPI) UpdateParticipantRole(ctx context.Context, eventID, userID string, role domain.AttendeeRole) (domain.Event, error) {
	if m.err != nil {
		return domain.Event{}, m.err
	}
	return m.event, nil
}

func (m *mockEventAPI) KickParticipant(ctx context.Context, eventID, userID string) (domain.Event, error) {
	if m.err != nil {
		return domain.Event{}, m.err
	}
	return m.event, nil
}

func (m *mockEventAPI) SearchByLocation(ctx context.Context, pos domain.Position, radiusKm float64) ([]domain.Event, error) {
	return m.events, m.err
}

type mockChatAPI struct {
	messages []domain.ChatMessage
	sent     domain.ChatMessage
	err      error
	deleted  []string
}

func (m *mockChatAPI) ListMessages(ctx context.Context, eventID string) ([]domain.ChatMessage, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.messages, nil
}

func (m *mockChatAPI) SendMessage(ctx context.Context, eventID, text string) (domain.ChatMessage, error) {
	if m.err != nil {
		return domain.ChatMessage{}, m.err
	}
	return m.sent, nil
}

func (m *mockChatAPI) DeleteMessage(ctx context.Context, messageID string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, messageID)
	return nil
}

type mockPrivacyAPI struct {
	consent   domain.ConsentPreferences
	blob      []byte
	err       error
	mirrorErr error

	mirrored  []domain.ConsentPreferences
	deletions []string
}

func (m *mockPrivacyAPI) SaveConsent(ctx context.Context, prefs domain.ConsentPreferences) error {
	if m.mirrorErr != nil {
		return m.mirrorErr
	}
	m.mirrored = append(m.mirrored, prefs)
	return nil
}

func (m *mockPrivacyAPI) FetchConsent(ctx context.Context) (domain.ConsentPreferences, error) {
	return m.consent, m.err
}

func (m *mockPrivacyAPI) ExportData(ctx context.Context) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.blob, nil
}

func (m *mockPrivacyAPI) DeleteAccount(ctx context.Context, password string) error {
	if m.err != nil {
		return m.err
	}
	m.deletions = append(m.deletions, password)
	return nil
}
