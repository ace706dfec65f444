package eventsync

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"unalone/internal/adapters/rest"
	"unalone/internal/domain"
	"unalone/internal/metrics"
	"unalone/internal/store"
)

// UserSource tells the reconciler who the current user is, so a kick
// notification can be recognized as affecting this client.
type UserSource interface {
	CurrentUserID() string
}

// ChatView is the currently open chat, if any. The reconciler force-closes
// it when the user is kicked from that event.
type ChatView interface {
	OpenEventID() string
	ForceClose(reason string)
}

// Reconciler applies the live, unordered, at-least-once notification stream
// onto the event store. Every application is idempotent and keyed by event
// id, which also resolves races between push delivery and the bulk snapshot
// fetch.
type Reconciler struct {
	snapshot *SnapshotLoader
	store    *store.EventStore
	users    UserSource
	chat     ChatView
	notifier domain.Notifier
	met      *metrics.Metrics
	logger   *slog.Logger
	timeout  time.Duration
}

// NewReconciler wires a reconciler over the given store and snapshot loader.
func NewReconciler(
	snapshot *SnapshotLoader,
	st *store.EventStore,
	users UserSource,
	chat ChatView,
	notifier domain.Notifier,
	met *metrics.Metrics,
	logger *slog.Logger,
	timeout time.Duration,
) *Reconciler {
	return &Reconciler{
		snapshot: snapshot,
		store:    st,
		users:    users,
		chat:     chat,
		notifier: notifier,
		met:      met,
		logger:   logger,
		timeout:  timeout,
	}
}

// Bind subscribes the reconciler's handlers on the push channel.
func (r *Reconciler) Bind(ch domain.PushChannel) {
	ch.Subscribe(domain.PushEventsCreated, r.HandleCreated)
	ch.Subscribe(domain.PushEventsUpdated, r.HandleUpdated)
	ch.Subscribe(domain.PushEventsDeleted, r.HandleDeleted)
	ch.Subscribe(domain.PushRoleUpdated, r.HandleRoleUpdated)
	ch.Subscribe(domain.PushParticipantKicked, r.HandleKicked)
}

// HandleCreated inserts a newly announced event. A duplicate id is
// discarded: the stream is at-least-once and a create can race the bulk
// snapshot that already contains the event.
func (r *Reconciler) HandleCreated(payload json.RawMessage) {
	e := rest.DecodeEventPayload(payload)
	if e.ID == "" {
		r.met.MalformedPayloads.Inc()
		r.logger.Warn("discarding created notification without id")
		return
	}
	if !r.store.Insert(e) {
		r.met.DuplicatesDiscarded.Inc()
		return
	}
	r.met.NotificationsTotal.WithLabelValues("created").Inc()
}

// HandleUpdated replaces the entry in place, or treats the update as a
// create when the id was never materialized locally: the stream does not
// guarantee the prior created notification was observed.
func (r *Reconciler) HandleUpdated(payload json.RawMessage) {
	e := rest.DecodeEventPayload(payload)
	if e.ID == "" {
		r.met.MalformedPayloads.Inc()
		r.logger.Warn("discarding updated notification without id")
		return
	}
	r.store.Upsert(e)
	r.met.NotificationsTotal.WithLabelValues("updated").Inc()
}

// HandleDeleted removes the entry; re-delivery or deletion of an event
// never seen locally is a no-op.
func (r *Reconciler) HandleDeleted(payload json.RawMessage) {
	var p struct {
		ID string `json:"id"`
	}
	if len(payload) == 0 || json.Unmarshal(payload, &p) != nil || p.ID == "" {
		r.met.MalformedPayloads.Inc()
		return
	}
	if !r.store.Remove(p.ID) {
		r.met.DuplicatesDiscarded.Inc()
		return
	}
	r.met.NotificationsTotal.WithLabelValues("deleted").Inc()
}

// HandleRoleUpdated refetches the full list. Role notifications carry only
// the event id; merging a partial attendee patch against concurrent edits
// is error-prone, so consistency is bought with one extra round trip.
func (r *Reconciler) HandleRoleUpdated(payload json.RawMessage) {
	var p struct {
		EventID string `json:"eventId"`
	}
	if len(payload) == 0 || json.Unmarshal(payload, &p) != nil {
		r.met.MalformedPayloads.Inc()
		return
	}
	r.met.NotificationsTotal.WithLabelValues("role_updated").Inc()
	r.refresh()
}

// HandleKicked refetches like HandleRoleUpdated; when the kicked user is
// this client and the affected event's chat is open, the chat view is
// force-closed with a notice before the refetch.
func (r *Reconciler) HandleKicked(payload json.RawMessage) {
	var p struct {
		EventID string `json:"eventId"`
		UserID  string `json:"userId"`
	}
	if len(payload) == 0 || json.Unmarshal(payload, &p) != nil {
		r.met.MalformedPayloads.Inc()
		return
	}
	if p.UserID != "" && p.UserID == r.users.CurrentUserID() {
		if r.chat != nil && r.chat.OpenEventID() == p.EventID {
			r.chat.ForceClose("you were removed from this event")
		} else {
			r.notifier.Notify(domain.NoticeError, "you were removed from an event")
		}
	}
	r.met.NotificationsTotal.WithLabelValues("kicked").Inc()
	r.refresh()
}

func (r *Reconciler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.snapshot.Refresh(ctx); err != nil {
		r.logger.Warn("snapshot refresh after participant change failed", "err", err)
	}
}
