package domain

import "context"

// SessionService owns the authentication lifecycle: token persistence,
// verification on startup, and connecting/disconnecting the push channel as
// the auth state changes.
type SessionService interface {
	// Restore re-establishes the session from a stored token. It returns
	// (user, true) when the token is valid; an invalid or expired token is
	// cleared and reported as (zero, false, nil), not as an error.
	Restore(ctx context.Context) (User, bool, error)
	Login(ctx context.Context, identifier, password string) (User, error)
	Register(ctx context.Context, reg Registration) (User, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error)
	CurrentUser() (User, bool)
	CurrentUserID() string
}

// EventService is the user-action surface over events. Mutations apply an
// optimistic local projection immediately; the later push notification is
// authoritative and overwrites idempotently.
type EventService interface {
	Create(ctx context.Context, draft EventDraft) (Event, error)
	Update(ctx context.Context, id string, draft EventDraft) (Event, error)
	Delete(ctx context.Context, id string) error
	Join(ctx context.Context, id string) (Event, error)
	Leave(ctx context.Context, id string) (Event, error)
	ChangeParticipantRole(ctx context.Context, eventID, userID string, role AttendeeRole) (Event, error)
	RemoveParticipant(ctx context.Context, eventID, userID string) (Event, error)
}

// ChatService manages the single open chat view.
type ChatService interface {
	Open(ctx context.Context, eventID string) ([]ChatMessage, error)
	Close()
	// ForceClose closes the view without a leave emit and surfaces the
	// reason as a notice; used when the user is kicked from the event.
	ForceClose(reason string)
	OpenEventID() string
	Messages() []ChatMessage
	Send(ctx context.Context, text string) (ChatMessage, error)
	Delete(ctx context.Context, messageID string) error
}

// PrivacyService covers consent preferences and the RGPD account rights.
type PrivacyService interface {
	// Consent returns the locally recorded preferences; ok is false when
	// the user never made a choice.
	Consent(ctx context.Context) (prefs ConsentPreferences, ok bool, err error)
	SaveConsent(ctx context.Context, prefs ConsentPreferences) error
	AcceptAll(ctx context.Context) error
	DeclineOptional(ctx context.Context) error
	// ExportData downloads the user's data and writes it to a JSON file in
	// dir, returning the file path.
	ExportData(ctx context.Context, dir string) (string, error)
	DeleteAccount(ctx context.Context, password string) error
}
