package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"unalone/internal/domain"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestSessionService_RestoreNoStoredToken(t *testing.T) {
	auth := &mockAuthAPI{}
	state := &mockStateRepository{}
	channel := &mockPushChannel{}
	svc := NewSessionService(auth, state, channel, &mockNotifier{}, testLogger(), testTimeout)

	_, ok, err := svc.Restore(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no restored session")
	}
	if auth.verifyCalls != 0 {
		t.Errorf("expected no verify call, got %d", auth.verifyCalls)
	}
}

func TestSessionService_RestoreExpiredTokenClearedWithoutRoundTrip(t *testing.T) {
	auth := &mockAuthAPI{}
	state := &mockStateRepository{token: signedToken(t, time.Now().Add(-time.Hour))}
	channel := &mockPushChannel{}
	svc := NewSessionService(auth, state, channel, &mockNotifier{}, testLogger(), testTimeout)

	_, ok, err := svc.Restore(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no restored session")
	}
	if state.clearCalls != 1 {
		t.Errorf("expected expired token cleared once, got %d", state.clearCalls)
	}
	if auth.verifyCalls != 0 {
		t.Errorf("expected no verify call for an expired token, got %d", auth.verifyCalls)
	}
}

func TestSessionService_RestoreUnparseableTokenTreatedAsExpired(t *testing.T) {
	auth := &mockAuthAPI{}
	state := &mockStateRepository{token: "garbage"}
	channel := &mockPushChannel{}
	svc := NewSessionService(auth, state, channel, &mockNotifier{}, testLogger(), testTimeout)

	_, ok, err := svc.Restore(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no restored session")
	}
	if state.clearCalls != 1 {
		t.Errorf("expected token cleared once, got %d", state.clearCalls)
	}
}

func TestSessionService_RestoreValidToken(t *testing.T) {
	auth := &mockAuthAPI{verifyUser: domain.User{ID: "u1", Name: "alice"}}
	token := signedToken(t, time.Now().Add(time.Hour))
	state := &mockStateRepository{token: token}
	channel := &mockPushChannel{}
	svc := NewSessionService(auth, state, channel, &mockNotifier{}, testLogger(), testTimeout)

	user, ok, err := svc.Restore(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected a restored session")
	}
	if user.ID != "u1" {
		t.Errorf("expected user u1, got %q", user.ID)
	}
	if svc.CurrentUserID() != "u1" {
		t.Errorf("expected current user u1, got %q", svc.CurrentUserID())
	}
	if len(channel.connectTokens) != 1 || channel.connectTokens[0] != token {
		t.Errorf("expected push channel connected with stored token, got %v", channel.connectTokens)
	}
}

func TestSessionService_RestoreRejectedTokenIsNotAnError(t *testing.T) {
	auth := &mockAuthAPI{verifyErr: &domain.APIError{Status: 401, Message: "jwt expired"}}
	state := &mockStateRepository{token: signedToken(t, time.Now().Add(time.Hour))}
	channel := &mockPushChannel{}
	svc := NewSessionService(auth, state, channel, &mockNotifier{}, testLogger(), testTimeout)

	_, ok, err := svc.Restore(context.Background())

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no restored session")
	}
	if len(channel.connectTokens) != 0 {
		t.Error("expected push channel not connected")
	}
}

func TestSessionService_RestoreTransportFailureIsAnError(t *testing.T) {
	auth := &mockAuthAPI{verifyErr: errors.New("connection refused")}
	state := &mockStateRepository{token: signedToken(t, time.Now().Add(time.Hour))}
	svc := NewSessionService(auth, state, &mockPushChannel{}, &mockNotifier{}, testLogger(), testTimeout)

	_, ok, err := svc.Restore(context.Background())

	if err == nil {
		t.Fatal("expected an error")
	}
	if ok {
		t.Error("expected no restored session")
	}
}

func TestSessionService_Login(t *testing.T) {
	auth := &mockAuthAPI{session: domain.AuthSession{
		Token: "tok",
		User:  domain.User{ID: "u1", Name: "alice"},
	}}
	state := &mockStateRepository{}
	channel := &mockPushChannel{}
	notifier := &mockNotifier{}
	svc := NewSessionService(auth, state, channel, notifier, testLogger(), testTimeout)

	user, err := svc.Login(context.Background(), "alice", "secret")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "u1" {
		t.Errorf("expected user u1, got %q", user.ID)
	}
	if state.token != "tok" {
		t.Errorf("expected token persisted, got %q", state.token)
	}
	if len(channel.connectTokens) != 1 || channel.connectTokens[0] != "tok" {
		t.Errorf("expected push channel connected with session token, got %v", channel.connectTokens)
	}
	if len(notifier.notices) != 1 || notifier.notices[0].message != "Welcome alice!" {
		t.Errorf("expected welcome notice, got %v", notifier.notices)
	}
}

func TestSessionService_LoginFailureLeavesStateUntouched(t *testing.T) {
	auth := &mockAuthAPI{authErr: &domain.APIError{Status: 401, Message: "invalid credentials"}}
	state := &mockStateRepository{}
	channel := &mockPushChannel{}
	svc := NewSessionService(auth, state, channel, &mockNotifier{}, testLogger(), testTimeout)

	_, err := svc.Login(context.Background(), "alice", "wrong")

	if err == nil {
		t.Fatal("expected an error")
	}
	if len(state.savedTokens) != 0 {
		t.Error("expected no token persisted")
	}
	if len(channel.connectTokens) != 0 {
		t.Error("expected push channel not connected")
	}
	if _, ok := svc.CurrentUser(); ok {
		t.Error("expected no current user")
	}
}

func TestSessionService_LogoutClearsEverything(t *testing.T) {
	auth := &mockAuthAPI{session: domain.AuthSession{Token: "tok", User: domain.User{ID: "u1"}}}
	state := &mockStateRepository{}
	channel := &mockPushChannel{}
	notifier := &mockNotifier{}
	svc := NewSessionService(auth, state, channel, notifier, testLogger(), testTimeout)

	if _, err := svc.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if auth.logoutCalls != 1 {
		t.Errorf("expected one logout request, got %d", auth.logoutCalls)
	}
	if state.clearCalls != 1 {
		t.Errorf("expected token cleared once, got %d", state.clearCalls)
	}
	if channel.disconnectCalls != 1 {
		t.Errorf("expected push channel disconnected once, got %d", channel.disconnectCalls)
	}
	if _, ok := svc.CurrentUser(); ok {
		t.Error("expected no current user after logout")
	}
}

func TestSessionService_LogoutRequestFailureStillClearsLocally(t *testing.T) {
	auth := &mockAuthAPI{logoutErr: errors.New("backend down")}
	state := &mockStateRepository{token: "tok"}
	channel := &mockPushChannel{}
	svc := NewSessionService(auth, state, channel, &mockNotifier{}, testLogger(), testTimeout)

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.clearCalls != 1 {
		t.Errorf("expected token cleared once, got %d", state.clearCalls)
	}
	if channel.disconnectCalls != 1 {
		t.Errorf("expected push channel disconnected, got %d", channel.disconnectCalls)
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  bool
	}{
		{
			name:  "future exp",
			token: func(t *testing.T) string { return signedToken(t, now.Add(time.Hour)) },
			want:  false,
		},
		{
			name:  "past exp",
			token: func(t *testing.T) string { return signedToken(t, now.Add(-time.Minute)) },
			want:  true,
		},
		{
			name: "no exp claim",
			token: func(t *testing.T) string {
				tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"})
				signed, err := tok.SignedString([]byte("test-secret"))
				if err != nil {
					t.Fatalf("sign token: %v", err)
				}
				return signed
			},
			want: false,
		},
		{
			name:  "unparseable",
			token: func(t *testing.T) string { return "not.a.jwt" },
			want:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenExpired(tt.token(t), now); got != tt.want {
				t.Errorf("tokenExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}
