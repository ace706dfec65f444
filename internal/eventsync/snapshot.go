package eventsync

import (
	"context"
	"fmt"
	"log/slog"

	"unalone/internal/domain"
	"unalone/internal/metrics"
	"unalone/internal/store"
)

// SnapshotLoader fetches the authoritative full event list and replaces the
// store wholesale. The replace is all-or-nothing: on transport or decode
// failure the store is left unchanged.
type SnapshotLoader struct {
	api    domain.EventAPI
	store  *store.EventStore
	met    *metrics.Metrics
	logger *slog.Logger
}

// NewSnapshotLoader returns a loader targeting the given store.
func NewSnapshotLoader(api domain.EventAPI, st *store.EventStore, met *metrics.Metrics, logger *slog.Logger) *SnapshotLoader {
	return &SnapshotLoader{api: api, store: st, met: met, logger: logger}
}

// Refresh replaces the store with a fresh snapshot.
func (l *SnapshotLoader) Refresh(ctx context.Context) error {
	events, err := l.api.List(ctx)
	if err != nil {
		l.met.SnapshotFailures.Inc()
		return fmt.Errorf("load event snapshot: %w", err)
	}
	l.store.Replace(events)
	l.met.SnapshotRefreshes.Inc()
	l.logger.Debug("event snapshot replaced", "count", len(events))
	return nil
}
