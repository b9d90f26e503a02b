package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsDelivered counts change-feed events applied to the local stores.
	EventsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gigspace_feed_events_delivered_total",
		Help: "Change feed events delivered to the realtime stores.",
	}, []string{"kind"})

	// EventsDropped counts malformed or undecodable feed payloads.
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gigspace_feed_events_dropped_total",
		Help: "Change feed events dropped because the payload was malformed.",
	})

	// Resyncs counts reconnect-triggered backfill passes.
	Resyncs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gigspace_feed_resyncs_total",
		Help: "Resync signals emitted after a change feed reconnect.",
	})

	// DegradedTransitions counts subscriptions giving up after repeated failures.
	DegradedTransitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gigspace_feed_degraded_total",
		Help: "Subscriptions that entered the degraded state.",
	})

	// BackfillRecords counts records recovered by backfill fetches.
	BackfillRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gigspace_feed_backfill_records_total",
		Help: "Records appended by post-reconnect backfill fetches.",
	})

	// NotificationsCreated counts notification rows created by the notifier.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gigspace_notifications_created_total",
		Help: "Notification rows created from domain events.",
	}, []string{"type"})
)
