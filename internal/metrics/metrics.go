package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the client-side instrumentation: how the push stream is
// being reconciled and how often the channel drops.
type Metrics struct {
	NotificationsTotal  *prometheus.CounterVec
	DuplicatesDiscarded prometheus.Counter
	MalformedPayloads   prometheus.Counter
	PushReconnects      prometheus.Counter
	SnapshotRefreshes   prometheus.Counter
	SnapshotFailures    prometheus.Counter
}

// New registers and returns the client metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NotificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unalone_push_notifications_total",
			Help: "Push notifications applied to the event store, by kind.",
		}, []string{"kind"}),
		DuplicatesDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unalone_push_duplicates_discarded_total",
			Help: "Notifications discarded because the store already held the entry.",
		}),
		MalformedPayloads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unalone_push_malformed_payloads_total",
			Help: "Push payloads that failed to decode and degraded to zero values.",
		}),
		PushReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unalone_push_reconnects_total",
			Help: "Successful reconnects of the push channel.",
		}),
		SnapshotRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unalone_snapshot_refreshes_total",
			Help: "Full event-list refetches that replaced the store.",
		}),
		SnapshotFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "unalone_snapshot_failures_total",
			Help: "Full event-list refetches that failed and left the store unchanged.",
		}),
	}
	reg.MustRegister(
		m.NotificationsTotal,
		m.DuplicatesDiscarded,
		m.MalformedPayloads,
		m.PushReconnects,
		m.SnapshotRefreshes,
		m.SnapshotFailures,
	)
	return m
}
