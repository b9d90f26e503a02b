package realtime

import (
	"context"
	"log"
	"sync"
	"time"

	"gigspace/internal/infrastructure/changefeed"
	"gigspace/internal/infrastructure/metrics"
)

// FeedSource is the slice of the change feed the manager consumes.
type FeedSource interface {
	Subscribe(ctx context.Context, topic string, handler changefeed.Handler, onResync func()) (changefeed.Subscription, error)
	Status() changefeed.Status
}

// Backfiller fetches the records a topic may have missed while its feed
// subscription was down.
type Backfiller interface {
	Backfill(ctx context.Context, topic Topic, since time.Time) ([]Record, error)
}

// Observer receives topic updates. Implementations must not call back
// into the manager from these methods.
type Observer interface {
	OnRecord(rec Record, unread int)
	OnUnread(topic Topic, unread int)
}

type topicState struct {
	sub       changefeed.Subscription
	observers []Observer
	lastSeen  time.Time
	cancel    context.CancelFunc
	ctx       context.Context

	// ready closes once the initial subscribe settles; subErr holds its
	// outcome so observers that joined mid-flight see the same result.
	ready  chan struct{}
	subErr error
}

// Manager owns one feed subscription per active topic and fans records
// out to however many observers asked for that topic. Subscriptions are
// reference counted: the first Ensure opens the stream, the last
// Teardown closes it and drops the local log.
type Manager struct {
	feed       FeedSource
	backfiller Backfiller
	backend    ReadBackend
	store      *Store

	mu     sync.Mutex
	topics map[Topic]*topicState
}

func NewManager(feed FeedSource, backfiller Backfiller, backend ReadBackend) *Manager {
	return &Manager{
		feed:       feed,
		backfiller: backfiller,
		backend:    backend,
		store:      NewStore(),
		topics:     make(map[Topic]*topicState),
	}
}

// Ensure registers obs on topic, opening the feed subscription if this is
// the first observer. Registering the same observer twice is the caller's
// bug; the manager does not dedupe.
func (m *Manager) Ensure(ctx context.Context, topic Topic, obs Observer) error {
	m.mu.Lock()

	if st, ok := m.topics[topic]; ok {
		st.observers = append(st.observers, obs)
		m.mu.Unlock()

		// The first observer's subscribe may still be in flight; share
		// its outcome instead of reporting success for a dead topic.
		<-st.ready
		m.mu.Lock()
		err := st.subErr
		m.mu.Unlock()
		return err
	}

	topicCtx, cancel := context.WithCancel(context.Background())
	// lastSeen stays zero until the first record lands so a resync before
	// then replays the full history; the store dedupes the overlap.
	st := &topicState{
		observers: []Observer{obs},
		cancel:    cancel,
		ctx:       topicCtx,
		ready:     make(chan struct{}),
	}
	m.topics[topic] = st
	m.mu.Unlock()

	sub, err := m.feed.Subscribe(ctx, string(topic), func(ev changefeed.Event) {
		m.handleEvent(topic, ev)
	}, func() {
		m.handleResync(topic)
	})
	if err != nil {
		m.mu.Lock()
		st.subErr = err
		delete(m.topics, topic)
		m.mu.Unlock()
		close(st.ready)
		cancel()
		return err
	}

	m.mu.Lock()
	if cur, ok := m.topics[topic]; ok && cur == st {
		st.sub = sub
		m.mu.Unlock()
		close(st.ready)
	} else {
		// Torn down while we were subscribing.
		m.mu.Unlock()
		close(st.ready)
		sub.Close()
		return nil
	}

	// Seed the log so the first snapshot is not empty.
	m.runBackfill(topicCtx, topic, time.Time{})
	return nil
}

// Teardown removes obs from topic. When the last observer leaves, the
// feed subscription closes, any in-flight backfill is cancelled, and the
// local log is discarded.
func (m *Manager) Teardown(topic Topic, obs Observer) {
	m.mu.Lock()

	st, ok := m.topics[topic]
	if !ok {
		m.mu.Unlock()
		return
	}

	for i, o := range st.observers {
		if o == obs {
			st.observers = append(st.observers[:i], st.observers[i+1:]...)
			break
		}
	}

	if len(st.observers) > 0 {
		m.mu.Unlock()
		return
	}

	delete(m.topics, topic)
	m.mu.Unlock()

	st.cancel()
	if st.sub != nil {
		st.sub.Close()
	}
	m.store.Drop(topic)
}

// Active reports whether topic currently has a live subscription.
func (m *Manager) Active(topic Topic) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.topics[topic]
	return ok
}

// Refs returns the observer count for topic.
func (m *Manager) Refs(topic Topic) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.topics[topic]; ok {
		return len(st.observers)
	}
	return 0
}

func (m *Manager) Snapshot(topic Topic) *Snapshot {
	return m.store.Snapshot(topic)
}

func (m *Manager) Records(topic Topic) []Record {
	return m.store.Records(topic)
}

func (m *Manager) UnreadCount(topic Topic) int {
	return m.store.UnreadCount(topic)
}

func (m *Manager) Status() changefeed.Status {
	return m.feed.Status()
}

// Reconcile re-fetches every active topic from storage and merges the
// result. The store dedupes, so records already delivered are no-ops;
// anything the feed silently lost gets filled in.
func (m *Manager) Reconcile() {
	m.mu.Lock()
	type pending struct {
		topic Topic
		since time.Time
		ctx   context.Context
	}
	work := make([]pending, 0, len(m.topics))
	for topic, st := range m.topics {
		work = append(work, pending{topic: topic, since: st.lastSeen, ctx: st.ctx})
	}
	m.mu.Unlock()

	for _, p := range work {
		m.runBackfill(p.ctx, p.topic, p.since)
	}
}

// StartReconciler reconciles all active topics on a fixed interval until
// ctx is cancelled. This is the safety net behind resync: it also catches
// events the feed dropped without ever losing its connection.
func (m *Manager) StartReconciler(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Reconcile()
			}
		}
	}()
}

func (m *Manager) handleEvent(topic Topic, ev changefeed.Event) {
	rec, err := RecordFromEvent(topic, ev)
	if err != nil {
		metrics.EventsDropped.Inc()
		log.Printf("Realtime: dropping event on %s: %v", topic, err)
		return
	}
	m.apply(topic, rec)
}

// apply merges one record and fans it out. The merge and the unread
// recount happen before any observer sees the record, so observers never
// see a count that disagrees with the log.
func (m *Manager) apply(topic Topic, rec Record) {
	m.mu.Lock()
	st, ok := m.topics[topic]
	if !ok {
		// Torn down while the event was in flight.
		m.mu.Unlock()
		return
	}

	inserted, changed := m.store.Apply(rec)
	if !changed {
		m.mu.Unlock()
		return
	}
	if rec.CreatedAt.After(st.lastSeen) {
		st.lastSeen = rec.CreatedAt
	}

	observers := make([]Observer, len(st.observers))
	copy(observers, st.observers)
	unread := m.store.UnreadCount(topic)
	m.mu.Unlock()

	if inserted {
		metrics.EventsDelivered.WithLabelValues(string(rec.Kind)).Inc()
		for _, obs := range observers {
			obs.OnRecord(rec, unread)
		}
		return
	}
	for _, obs := range observers {
		obs.OnUnread(topic, unread)
	}
}

// notify pushes the current unread count to every observer of topic.
func (m *Manager) notify(topic Topic) {
	m.mu.Lock()
	st, ok := m.topics[topic]
	if !ok {
		m.mu.Unlock()
		return
	}
	observers := make([]Observer, len(st.observers))
	copy(observers, st.observers)
	m.mu.Unlock()

	unread := m.store.UnreadCount(topic)
	for _, obs := range observers {
		obs.OnUnread(topic, unread)
	}
}

// handleResync runs after the feed reconnected. Events published during
// the gap are unrecoverable from the feed, so fetch everything at or
// after the last applied timestamp and merge; the store dedupes the
// overlap.
func (m *Manager) handleResync(topic Topic) {
	m.mu.Lock()
	st, ok := m.topics[topic]
	if !ok {
		m.mu.Unlock()
		return
	}
	since := st.lastSeen
	ctx := st.ctx
	m.mu.Unlock()

	go m.runBackfill(ctx, topic, since)
}

func (m *Manager) runBackfill(ctx context.Context, topic Topic, since time.Time) {
	recs, err := m.backfiller.Backfill(ctx, topic, since)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("Backfill Error: topic %s: %v", topic, err)
		}
		return
	}

	for _, rec := range recs {
		if ctx.Err() != nil {
			return
		}
		m.apply(topic, rec)
	}
	if len(recs) > 0 {
		metrics.BackfillRecords.Add(float64(len(recs)))
	}
}
