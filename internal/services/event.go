package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"unalone/internal/domain"
	"unalone/internal/store"
)

type eventService struct {
	api            domain.EventAPI
	store          *store.EventStore
	notifier       domain.Notifier
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService creates an EventService applying optimistic updates to
// the given store.
func NewEventService(
	api domain.EventAPI,
	st *store.EventStore,
	notifier domain.Notifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		api:            api,
		store:          st,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) Create(ctx context.Context, draft domain.EventDraft) (domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := draft.Validate(time.Now()); err != nil {
		return domain.Event{}, err
	}

	created, err := s.api.Create(ctx, draft)
	if err != nil {
		s.notifyError(err, "Could not create the event")
		return domain.Event{}, err
	}
	// Optimistic prepend; the push echo is discarded as a duplicate by the
	// id-keyed insert.
	s.store.Insert(created)
	s.notifier.Notify(domain.NoticeSuccess, "Event created!")
	return created, nil
}

func (s *eventService) Update(ctx context.Context, id string, draft domain.EventDraft) (domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := draft.Validate(time.Now()); err != nil {
		return domain.Event{}, err
	}

	updated, err := s.api.Update(ctx, id, draft)
	if err != nil {
		s.notifyError(err, "Could not update the event")
		return domain.Event{}, err
	}
	s.store.Upsert(updated)
	s.notifier.Notify(domain.NoticeSuccess, "Event updated")
	return updated, nil
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.api.Delete(ctx, id); err != nil {
		s.notifyError(err, "Could not delete the event")
		return err
	}
	s.store.Remove(id)
	s.notifier.Notify(domain.NoticeSuccess, "Event deleted")
	return nil
}

func (s *eventService) Join(ctx context.Context, id string) (domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	updated, err := s.api.Join(ctx, id)
	if err != nil {
		s.notifyError(err, "Could not join the event")
		return domain.Event{}, err
	}
	s.store.Upsert(updated)
	s.notifier.Notify(domain.NoticeSuccess, "You joined the event!")
	return updated, nil
}

func (s *eventService) Leave(ctx context.Context, id string) (domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	updated, err := s.api.Leave(ctx, id)
	if err != nil {
		s.notifyError(err, "Could not leave the event")
		return domain.Event{}, err
	}
	s.store.Upsert(updated)
	s.notifier.Notify(domain.NoticeSuccess, "You left the event")
	return updated, nil
}

func (s *eventService) ChangeParticipantRole(ctx context.Context, eventID, userID string, role domain.AttendeeRole) (domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	updated, err := s.api.UpdateParticipantRole(ctx, eventID, userID, role)
	if err != nil {
		s.notifyError(err, "Could not change the participant role")
		return domain.Event{}, err
	}
	s.store.Upsert(updated)
	return updated, nil
}

func (s *eventService) RemoveParticipant(ctx context.Context, eventID, userID string) (domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	updated, err := s.api.KickParticipant(ctx, eventID, userID)
	if err != nil {
		s.notifyError(err, "Could not remove the participant")
		return domain.Event{}, err
	}
	s.store.Upsert(updated)
	return updated, nil
}

// notifyError surfaces the backend message when there is one, falling back
// to a generic message.
func (s *eventService) notifyError(err error, fallback string) {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		s.notifier.Notify(domain.NoticeError, apiErr.Message)
		return
	}
	s.notifier.Notify(domain.NoticeError, fallback)
}
