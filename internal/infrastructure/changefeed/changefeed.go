// Package changefeed delivers row-change events over Redis pub/sub.
// Every write that realtime consumers care about is published here as a
// compact insert/update envelope keyed by topic.
package changefeed

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"gigspace/internal/infrastructure/metrics"
	"gigspace/pkg/logger"
)

const (
	OpInsert = "insert"
	OpUpdate = "update"

	TableMessages      = "messages"
	TableNotifications = "notifications"
	TableBids          = "bids"
)

// Event is the wire envelope for a single row change.
type Event struct {
	Op    string          `json:"op"`
	Table string          `json:"table"`
	Row   json.RawMessage `json:"row"`
}

// Handler receives decoded events in publish order for one topic.
type Handler func(ev Event)

// Status reports the health of the feed as a whole.
type Status int32

const (
	StatusOK Status = iota
	StatusDegraded
)

func (s Status) String() string {
	if s == StatusDegraded {
		return "degraded"
	}
	return "ok"
}

// Subscription is a live per-topic stream. Close stops delivery and
// releases the underlying pub/sub connection.
type Subscription interface {
	Close()
	Degraded() bool
}

// Feed publishes and subscribes to change events on Redis.
type Feed struct {
	rdb        *redis.Client
	maxRetries int

	mu       sync.Mutex
	degraded int32
	onStatus func(Status)
}

func NewFeed(rdb *redis.Client, maxRetries int) *Feed {
	if maxRetries <= 0 {
		maxRetries = 5
	}
	return &Feed{
		rdb:        rdb,
		maxRetries: maxRetries,
	}
}

// OnStatusChange registers a single listener invoked whenever the feed
// flips between ok and degraded.
func (f *Feed) OnStatusChange(fn func(Status)) {
	f.mu.Lock()
	f.onStatus = fn
	f.mu.Unlock()
}

func (f *Feed) Status() Status {
	if atomic.LoadInt32(&f.degraded) > 0 {
		return StatusDegraded
	}
	return StatusOK
}

// Publish marshals the event and sends it to every subscriber of topic.
func (f *Feed) Publish(ctx context.Context, topic string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, topic, data).Err()
}

// Subscribe opens a pub/sub stream for topic and feeds decoded events to
// handler from a dedicated goroutine. After a dropped connection the feed
// resubscribes with backoff and then calls onResync exactly once, since
// events published during the gap are gone; callers are expected to
// backfill from storage. If resubscribing keeps failing the subscription
// goes degraded and stops.
func (f *Feed) Subscribe(ctx context.Context, topic string, handler Handler, onResync func()) (Subscription, error) {
	pubsub := f.rdb.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	sub := &subscription{
		feed:    f,
		topic:   topic,
		pubsub:  pubsub,
		cancel:  cancel,
		handler: handler,
	}

	go sub.run(ctx, onResync)
	return sub, nil
}

func (f *Feed) markDegraded(topic string) {
	if atomic.AddInt32(&f.degraded, 1) == 1 {
		f.notifyStatus(StatusDegraded)
	}
	metrics.DegradedTransitions.Inc()
	logger.Error("Changefeed: subscription %s is degraded", topic)
}

func (f *Feed) clearDegraded() {
	if atomic.AddInt32(&f.degraded, -1) == 0 {
		f.notifyStatus(StatusOK)
	}
}

func (f *Feed) notifyStatus(s Status) {
	f.mu.Lock()
	fn := f.onStatus
	f.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

type subscription struct {
	feed    *Feed
	topic   string
	pubsub  *redis.PubSub
	cancel  context.CancelFunc
	handler Handler

	closed   int32
	degraded int32
}

func (s *subscription) Close() {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return
	}
	s.cancel()
	s.pubsub.Close()
}

func (s *subscription) Degraded() bool {
	return atomic.LoadInt32(&s.degraded) == 1
}

func (s *subscription) run(ctx context.Context, onResync func()) {
	for {
		msg, err := s.pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || atomic.LoadInt32(&s.closed) == 1 {
				return
			}
			if !s.reconnect(ctx) {
				return
			}
			// Anything published while we were away is lost; let the
			// consumer close the gap from storage.
			metrics.Resyncs.Inc()
			if onResync != nil {
				onResync()
			}
			continue
		}

		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			metrics.EventsDropped.Inc()
			logger.Warn("Changefeed: dropping malformed payload on %s: %v", s.topic, err)
			continue
		}
		if ev.Op != OpInsert && ev.Op != OpUpdate {
			metrics.EventsDropped.Inc()
			logger.Warn("Changefeed: dropping event with unknown op %q on %s", ev.Op, s.topic)
			continue
		}
		s.handler(ev)
	}
}

// reconnect tears down the broken pub/sub and opens a fresh one, backing
// off between attempts. Returns false once the retry budget is spent.
func (s *subscription) reconnect(ctx context.Context) bool {
	s.pubsub.Close()

	backoff := 500 * time.Millisecond
	for attempt := 1; attempt <= s.feed.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(backoff):
		}

		pubsub := s.feed.rdb.Subscribe(ctx, s.topic)
		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			logger.Warn("Changefeed: resubscribe %s attempt %d/%d failed: %v", s.topic, attempt, s.feed.maxRetries, err)
			backoff *= 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
			continue
		}

		s.pubsub = pubsub
		if atomic.CompareAndSwapInt32(&s.degraded, 1, 0) {
			s.feed.clearDegraded()
		}
		return true
	}

	if atomic.CompareAndSwapInt32(&s.degraded, 0, 1) {
		s.feed.markDegraded(s.topic)
	}
	return false
}
