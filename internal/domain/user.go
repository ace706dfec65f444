package domain

import "context"

// User represents the authenticated account holder.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Age       int    `json:"age,omitempty"`
	Interests string `json:"interests,omitempty"`
}

// AuthSession bundles a bearer token with the user it authenticates.
type AuthSession struct {
	Token string
	User  User
}

// Registration is the sign-up input.
type Registration struct {
	Username string
	Email    string
	Password string
}

// ProfileUpdate carries the optional profile fields; nil means unchanged.
type ProfileUpdate struct {
	Email     *string
	FirstName *string
	LastName  *string
	Age       *int
	Bio       *string
}

// AuthAPI is the remote authentication surface. The identifier passed to
// Login may be an email or a username.
type AuthAPI interface {
	Login(ctx context.Context, identifier, password string) (AuthSession, error)
	Register(ctx context.Context, reg Registration) (AuthSession, error)
	VerifyToken(ctx context.Context) (User, error)
	UpdateProfile(ctx context.Context, update ProfileUpdate) (User, error)
	Logout(ctx context.Context) error
}

// StateRepository is the local device storage: the auth token, consent
// preferences, and the anonymous user identifier survive restarts.
type StateRepository interface {
	SaveToken(ctx context.Context, token string) error
	// Token returns ErrNotFound when no token is stored.
	Token(ctx context.Context) (string, error)
	ClearToken(ctx context.Context) error
	SaveConsent(ctx context.Context, prefs ConsentPreferences) error
	// Consent returns ErrNotFound when the user never recorded a choice.
	Consent(ctx context.Context) (ConsentPreferences, error)
	// AnonymousID generates an identifier on first call and returns the
	// same one on every later call.
	AnonymousID(ctx context.Context) (string, error)
}

// NoticeLevel classifies a user-visible notice.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notifier surfaces transient user-visible notices.
type Notifier interface {
	Notify(level NoticeLevel, message string)
}
