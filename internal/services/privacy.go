package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"unalone/internal/domain"
)

type privacyService struct {
	api            domain.PrivacyAPI
	state          domain.StateRepository
	channel        domain.PushChannel
	notifier       domain.Notifier
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewPrivacyService creates a PrivacyService. Local storage is the source
// of truth for consent; the backend mirror is best-effort.
func NewPrivacyService(
	api domain.PrivacyAPI,
	state domain.StateRepository,
	channel domain.PushChannel,
	notifier domain.Notifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.PrivacyService {
	return &privacyService{
		api:            api,
		state:          state,
		channel:        channel,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *privacyService) Consent(ctx context.Context) (domain.ConsentPreferences, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	prefs, err := s.state.Consent(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ConsentPreferences{}, false, nil
		}
		return domain.ConsentPreferences{}, false, fmt.Errorf("read consent: %w", err)
	}
	return prefs, true, nil
}

func (s *privacyService) SaveConsent(ctx context.Context, prefs domain.ConsentPreferences) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	prefs = prefs.Normalized()
	prefs.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.state.SaveConsent(ctx, prefs); err != nil {
		return fmt.Errorf("save consent: %w", err)
	}
	// Mirror to the backend so preferences follow the account; a failure
	// here never rolls back the local save.
	if err := s.api.SaveConsent(ctx, prefs); err != nil {
		s.logger.Warn("consent mirror failed", "err", err)
	}
	return nil
}

func (s *privacyService) AcceptAll(ctx context.Context) error {
	return s.SaveConsent(ctx, domain.AcceptAllConsent())
}

func (s *privacyService) DeclineOptional(ctx context.Context) error {
	return s.SaveConsent(ctx, domain.NecessaryOnlyConsent())
}

func (s *privacyService) ExportData(ctx context.Context, dir string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	blob, err := s.api.ExportData(ctx)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("unalone-export-%s.json", time.Now().UTC().Format("2006-01-02"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	s.notifier.Notify(domain.NoticeSuccess, "Your data was exported to "+path)
	return path, nil
}

func (s *privacyService) DeleteAccount(ctx context.Context, password string) error {
	if password == "" {
		return domain.ErrInvalidInput
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.api.DeleteAccount(ctx, password); err != nil {
		return err
	}
	// Irreversible: drop every trace of the session locally.
	if err := s.state.ClearToken(ctx); err != nil {
		s.logger.Warn("clearing token after account deletion failed", "err", err)
	}
	s.channel.Disconnect()
	s.notifier.Notify(domain.NoticeSuccess, "Your account was deleted")
	return nil
}
