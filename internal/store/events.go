package store

import (
	"sync"

	"unalone/internal/domain"
)

// EventStore is the single source of truth for the locally visible event
// list. Entries are keyed by event id: the store never holds two entries
// with the same id. Ordering is most-recent-first by insertion, a display
// convention only.
//
// The logical model is single-writer (snapshot loads and push callbacks),
// but the push read loop runs on its own goroutine, so access is guarded.
type EventStore struct {
	mu     sync.RWMutex
	events []domain.Event
}

// NewEventStore returns an empty store.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// List returns a copy of the current event list.
func (s *EventStore) List() []domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Get returns the event with the given id, if present.
func (s *EventStore) Get(id string) (domain.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.events {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Event{}, false
}

// Len returns the number of stored events.
func (s *EventStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// Replace swaps the whole list for the given snapshot.
func (s *EventStore) Replace(events []domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make([]domain.Event, len(events))
	copy(s.events, events)
}

// Insert prepends the event when its id is not yet present. It reports
// whether the event was added; a duplicate id leaves the store unchanged.
func (s *EventStore) Insert(e domain.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.events {
		if existing.ID == e.ID {
			return false
		}
	}
	s.events = append([]domain.Event{e}, s.events...)
	return true
}

// Upsert replaces the entry with the same id in place, preserving its
// position, or prepends when absent.
func (s *EventStore) Upsert(e domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.events {
		if existing.ID == e.ID {
			s.events[i] = e
			return
		}
	}
	s.events = append([]domain.Event{e}, s.events...)
}

// Remove deletes the entry with the given id. It reports whether an entry
// was removed; an absent id is a no-op.
func (s *EventStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.events {
		if existing.ID == id {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return true
		}
	}
	return false
}
