package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"unalone/internal/domain"
)

type sessionService struct {
	auth           domain.AuthAPI
	state          domain.StateRepository
	channel        domain.PushChannel
	notifier       domain.Notifier
	logger         *slog.Logger
	contextTimeout time.Duration

	mu   sync.Mutex
	user *domain.User
}

// NewSessionService creates a SessionService over the given auth API, local
// state, and push channel.
func NewSessionService(
	auth domain.AuthAPI,
	state domain.StateRepository,
	channel domain.PushChannel,
	notifier domain.Notifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.SessionService {
	return &sessionService{
		auth:           auth,
		state:          state,
		channel:        channel,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *sessionService) Restore(ctx context.Context) (domain.User, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	token, err := s.state.Token(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, fmt.Errorf("read stored token: %w", err)
	}

	// Don't bother the backend with a token whose exp claim already passed.
	if tokenExpired(token, time.Now()) {
		s.logger.Info("stored token expired, clearing")
		if err := s.state.ClearToken(ctx); err != nil {
			return domain.User{}, false, fmt.Errorf("clear expired token: %w", err)
		}
		return domain.User{}, false, nil
	}

	user, err := s.auth.VerifyToken(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			// The REST client already cleared the token on 401.
			s.logger.Info("stored token rejected by backend")
			return domain.User{}, false, nil
		}
		return domain.User{}, false, fmt.Errorf("verify token: %w", err)
	}

	s.setUser(user)
	s.connectPush(token)
	return user, true, nil
}

func (s *sessionService) Login(ctx context.Context, identifier, password string) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	session, err := s.auth.Login(ctx, identifier, password)
	if err != nil {
		return domain.User{}, err
	}
	return s.establish(ctx, session)
}

func (s *sessionService) Register(ctx context.Context, reg domain.Registration) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	session, err := s.auth.Register(ctx, reg)
	if err != nil {
		return domain.User{}, err
	}
	return s.establish(ctx, session)
}

func (s *sessionService) establish(ctx context.Context, session domain.AuthSession) (domain.User, error) {
	if err := s.state.SaveToken(ctx, session.Token); err != nil {
		return domain.User{}, fmt.Errorf("persist token: %w", err)
	}
	s.setUser(session.User)
	s.connectPush(session.Token)
	name := session.User.Name
	if name == "" {
		name = session.User.Email
	}
	s.notifier.Notify(domain.NoticeSuccess, "Welcome "+name+"!")
	return session.User, nil
}

func (s *sessionService) Logout(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	// Best-effort server-side invalidation: local state is cleared either
	// way.
	if err := s.auth.Logout(ctx); err != nil {
		s.logger.Warn("logout request failed", "err", err)
	}
	if err := s.state.ClearToken(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	s.channel.Disconnect()
	s.setUserNone()
	s.notifier.Notify(domain.NoticeSuccess, "Logged out")
	return nil
}

func (s *sessionService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.auth.UpdateProfile(ctx, update)
	if err != nil {
		return domain.User{}, err
	}
	s.setUser(user)
	return user, nil
}

func (s *sessionService) CurrentUser() (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

func (s *sessionService) CurrentUserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ""
	}
	return s.user.ID
}

func (s *sessionService) setUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
}

func (s *sessionService) setUserNone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

func (s *sessionService) connectPush(token string) {
	if err := s.channel.Connect(token); err != nil {
		// The channel reconnects on its own; a failed first dial only
		// delays live updates.
		s.logger.Warn("push channel connect failed", "err", err)
	}
}

// tokenExpired inspects the exp claim without verifying the signature; the
// backend is the authority, this only avoids a doomed round trip. A token
// that cannot be parsed at all is treated as expired.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
