package realtime_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gigspace/internal/domain/entity"
	"gigspace/internal/infrastructure/changefeed"
	"gigspace/internal/realtime"
	"gigspace/pkg/errors"
)

type fakeSub struct {
	mu     sync.Mutex
	closed bool
}

func (s *fakeSub) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *fakeSub) Degraded() bool { return false }

func (s *fakeSub) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeFeed struct {
	mu       sync.Mutex
	handlers map[string]changefeed.Handler
	resyncs  map[string]func()
	subs     map[string]*fakeSub
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{
		handlers: make(map[string]changefeed.Handler),
		resyncs:  make(map[string]func()),
		subs:     make(map[string]*fakeSub),
	}
}

func (f *fakeFeed) Subscribe(ctx context.Context, topic string, handler changefeed.Handler, onResync func()) (changefeed.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub := &fakeSub{}
	f.handlers[topic] = handler
	f.resyncs[topic] = onResync
	f.subs[topic] = sub
	return sub, nil
}

func (f *fakeFeed) Status() changefeed.Status { return changefeed.StatusOK }

func (f *fakeFeed) emit(topic string, ev changefeed.Event) {
	f.mu.Lock()
	handler := f.handlers[topic]
	f.mu.Unlock()
	handler(ev)
}

func (f *fakeFeed) triggerResync(topic string) {
	f.mu.Lock()
	resync := f.resyncs[topic]
	f.mu.Unlock()
	resync()
}

type fakeBackfiller struct {
	mu      sync.Mutex
	records map[realtime.Topic][]realtime.Record
}

func newFakeBackfiller() *fakeBackfiller {
	return &fakeBackfiller{records: make(map[realtime.Topic][]realtime.Record)}
}

func (b *fakeBackfiller) seed(topic realtime.Topic, records ...realtime.Record) {
	b.mu.Lock()
	b.records[topic] = records
	b.mu.Unlock()
}

func (b *fakeBackfiller) Backfill(ctx context.Context, topic realtime.Topic, since time.Time) ([]realtime.Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []realtime.Record
	for _, rec := range b.records[topic] {
		if rec.CreatedAt.Before(since) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

type fakeBackend struct {
	mu     sync.Mutex
	fail   bool
	marked []string
}

func (b *fakeBackend) MarkRead(ctx context.Context, rec realtime.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return errors.Internal("store down", nil)
	}
	b.marked = append(b.marked, rec.ID)
	return nil
}

type collector struct {
	mu      sync.Mutex
	records []realtime.Record
	unreads []int
}

func (c *collector) OnRecord(rec realtime.Record, unread int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
	c.unreads = append(c.unreads, unread)
}

func (c *collector) OnUnread(topic realtime.Topic, unread int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.unreads = append(c.unreads, unread)
}

func (c *collector) ids() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.records))
	for _, r := range c.records {
		out = append(out, r.ID)
	}
	return out
}

func (c *collector) lastUnread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.unreads) == 0 {
		return -1
	}
	return c.unreads[len(c.unreads)-1]
}

func messageEvent(conversationID, id string, at time.Time) changefeed.Event {
	row, _ := json.Marshal(&entity.Message{
		ID:             id,
		ConversationID: conversationID,
		SenderID:       "u2",
		SenderRole:     "freelancer",
		Content:        "hello",
		Type:           "text",
		CreatedAt:      at,
	})
	return changefeed.Event{Op: changefeed.OpInsert, Table: changefeed.TableMessages, Row: row}
}

func newTestManager() (*realtime.Manager, *fakeFeed, *fakeBackfiller, *fakeBackend) {
	feed := newFakeFeed()
	backfiller := newFakeBackfiller()
	backend := &fakeBackend{}
	return realtime.NewManager(feed, backfiller, backend), feed, backfiller, backend
}

func TestManagerDeliversRecordsInOrder(t *testing.T) {
	mgr, feed, _, _ := newTestManager()
	topic := realtime.ConversationTopic("c1")
	obs := &collector{}
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, mgr.Ensure(context.Background(), topic, obs))

	feed.emit(string(topic), messageEvent("c1", "m1", base))
	feed.emit(string(topic), messageEvent("c1", "m2", base.Add(time.Second)))
	feed.emit(string(topic), messageEvent("c1", "m3", base.Add(2*time.Second)))

	assert.Equal(t, []string{"m1", "m2", "m3"}, obs.ids())
	assert.Equal(t, 3, mgr.UnreadCount(topic))
}

func TestManagerIgnoresDuplicateEvents(t *testing.T) {
	mgr, feed, _, backend := newTestManager()
	topic := realtime.ConversationTopic("c1")
	obs := &collector{}
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, mgr.Ensure(context.Background(), topic, obs))

	feed.emit(string(topic), messageEvent("c1", "m1", base))
	feed.emit(string(topic), messageEvent("c1", "m2", base.Add(time.Second)))
	feed.emit(string(topic), messageEvent("c1", "m3", base.Add(2*time.Second)))

	require.NoError(t, mgr.MarkRead(context.Background(), topic, "m2"))
	assert.Equal(t, []string{"m2"}, backend.marked)
	assert.Equal(t, 2, mgr.UnreadCount(topic))

	// A replayed copy of m2 must not reappear or resurrect its unread state.
	feed.emit(string(topic), messageEvent("c1", "m2", base.Add(time.Second)))

	assert.Equal(t, []string{"m1", "m2", "m3"}, obs.ids())
	assert.Equal(t, 3, mgr.Snapshot(topic).Len())
	assert.Equal(t, 2, mgr.UnreadCount(topic))

	assert.True(t, mgr.Records(topic)[1].Read)
}

func TestManagerResyncClosesTheGap(t *testing.T) {
	mgr, feed, backfiller, _ := newTestManager()
	topic := realtime.ConversationTopic("c1")
	obs := &collector{}
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, mgr.Ensure(context.Background(), topic, obs))

	for i, id := range []string{"m1", "m2", "m3", "m4", "m5"} {
		feed.emit(string(topic), messageEvent("c1", id, base.Add(time.Duration(i)*time.Second)))
	}

	// m6 and m7 were published while the feed was down; the backfill
	// window overlaps m5 on purpose.
	backfiller.seed(topic,
		rec(topic, "m5", base.Add(4*time.Second), false),
		rec(topic, "m6", base.Add(5*time.Second), false),
		rec(topic, "m7", base.Add(6*time.Second), false),
	)
	feed.triggerResync(string(topic))

	require.Eventually(t, func() bool {
		return mgr.Snapshot(topic).Len() == 7
	}, time.Second, 5*time.Millisecond)

	snap := mgr.Snapshot(topic)
	var got []string
	for {
		r, ok := snap.Next()
		if !ok {
			break
		}
		got = append(got, r.ID)
	}
	assert.Equal(t, []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7"}, got)
	assert.Equal(t, []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7"}, obs.ids())
}

func TestManagerReferenceCountsSubscriptions(t *testing.T) {
	mgr, feed, _, _ := newTestManager()
	topic := realtime.ConversationTopic("c1")
	first := &collector{}
	second := &collector{}

	require.NoError(t, mgr.Ensure(context.Background(), topic, first))
	require.NoError(t, mgr.Ensure(context.Background(), topic, second))
	assert.Equal(t, 2, mgr.Refs(topic))

	feed.emit(string(topic), messageEvent("c1", "m1", time.Now()))
	assert.Equal(t, []string{"m1"}, first.ids())
	assert.Equal(t, []string{"m1"}, second.ids())

	mgr.Teardown(topic, first)
	assert.True(t, mgr.Active(topic))
	assert.False(t, feed.subs[string(topic)].isClosed())

	mgr.Teardown(topic, second)
	assert.False(t, mgr.Active(topic))
	assert.True(t, feed.subs[string(topic)].isClosed())
	assert.Equal(t, 0, mgr.Snapshot(topic).Len())
}

func TestManagerDropsEventsAfterTeardown(t *testing.T) {
	mgr, feed, _, _ := newTestManager()
	topic := realtime.ConversationTopic("c1")
	obs := &collector{}

	require.NoError(t, mgr.Ensure(context.Background(), topic, obs))
	mgr.Teardown(topic, obs)

	// The feed goroutine may still hold an event it received before the
	// subscription closed; applying it must be a no-op.
	feed.emit(string(topic), messageEvent("c1", "m1", time.Now()))

	assert.Empty(t, obs.ids())
	assert.Equal(t, 0, mgr.Snapshot(topic).Len())
}

func TestMarkReadIsOptimisticWithRollback(t *testing.T) {
	mgr, feed, _, backend := newTestManager()
	topic := realtime.ConversationTopic("c1")
	obs := &collector{}

	require.NoError(t, mgr.Ensure(context.Background(), topic, obs))
	feed.emit(string(topic), messageEvent("c1", "m1", time.Now()))
	require.Equal(t, 1, mgr.UnreadCount(topic))

	backend.fail = true
	err := mgr.MarkRead(context.Background(), topic, "m1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "UNAVAILABLE"))

	// The optimistic flip must have been rolled back.
	got := mgr.Records(topic)[0]
	assert.False(t, got.Read)
	assert.Equal(t, 1, mgr.UnreadCount(topic))

	backend.fail = false
	require.NoError(t, mgr.MarkRead(context.Background(), topic, "m1"))
	assert.Equal(t, 0, mgr.UnreadCount(topic))
	assert.Equal(t, 0, obs.lastUnread())
}

func TestMarkReadIsIdempotent(t *testing.T) {
	mgr, feed, _, backend := newTestManager()
	topic := realtime.NotificationTopic("u1")
	obs := &collector{}

	require.NoError(t, mgr.Ensure(context.Background(), topic, obs))

	row, _ := json.Marshal(&entity.Notification{
		ID:        "n1",
		UserID:    "u1",
		Type:      entity.NotificationNewBid,
		Payload:   entity.NotificationPayload{JobID: "j1", BidID: "b1", FreelancerID: "f1"},
		CreatedAt: time.Now(),
	})
	feed.emit(string(topic), changefeed.Event{Op: changefeed.OpInsert, Table: changefeed.TableNotifications, Row: row})

	require.NoError(t, mgr.MarkRead(context.Background(), topic, "n1"))
	require.NoError(t, mgr.MarkRead(context.Background(), topic, "n1"))

	// The second call must not hit the backend again.
	assert.Equal(t, []string{"n1"}, backend.marked)
	assert.Equal(t, 0, mgr.UnreadCount(topic))
}

func TestMarkReadUnknownRecord(t *testing.T) {
	mgr, _, _, _ := newTestManager()
	topic := realtime.ConversationTopic("c1")

	err := mgr.MarkRead(context.Background(), topic, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestManagerDropsMalformedEvents(t *testing.T) {
	mgr, feed, _, _ := newTestManager()
	topic := realtime.ConversationTopic("c1")
	obs := &collector{}

	require.NoError(t, mgr.Ensure(context.Background(), topic, obs))

	feed.emit(string(topic), changefeed.Event{Op: changefeed.OpInsert, Table: changefeed.TableMessages, Row: json.RawMessage(`{broken`)})
	feed.emit(string(topic), changefeed.Event{Op: changefeed.OpInsert, Table: "payments", Row: json.RawMessage(`{}`)})
	feed.emit(string(topic), messageEvent("c1", "m1", time.Now()))

	assert.Equal(t, []string{"m1"}, obs.ids())
	assert.Equal(t, 1, mgr.Snapshot(topic).Len())
}

func TestManagerSeedsLogOnEnsure(t *testing.T) {
	mgr, _, backfiller, _ := newTestManager()
	topic := realtime.ConversationTopic("c1")
	base := time.Now()

	backfiller.seed(topic,
		rec(topic, "m1", base, true),
		rec(topic, "m2", base.Add(time.Second), false),
	)

	require.NoError(t, mgr.Ensure(context.Background(), topic, &collector{}))

	assert.Equal(t, []string{"m1", "m2"}, ids(mgr.Records(topic)))
	assert.Equal(t, 1, mgr.UnreadCount(topic))
}

// stallingFeed blocks Subscribe until released, then fails. It models a
// slow broker so a second observer can join while the first subscribe is
// still in flight.
type stallingFeed struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newStallingFeed() *stallingFeed {
	return &stallingFeed{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (f *stallingFeed) Subscribe(ctx context.Context, topic string, handler changefeed.Handler, onResync func()) (changefeed.Subscription, error) {
	f.once.Do(func() { close(f.started) })
	<-f.release
	return nil, errors.Unavailable("Feed is unavailable", nil)
}

func (f *stallingFeed) Status() changefeed.Status { return changefeed.StatusOK }

func TestManagerConcurrentEnsureSharesSubscribeFailure(t *testing.T) {
	feed := newStallingFeed()
	mgr := realtime.NewManager(feed, newFakeBackfiller(), &fakeBackend{})
	topic := realtime.ConversationTopic("c1")

	errs := make(chan error, 2)
	go func() { errs <- mgr.Ensure(context.Background(), topic, &collector{}) }()
	<-feed.started

	go func() { errs <- mgr.Ensure(context.Background(), topic, &collector{}) }()
	require.Eventually(t, func() bool {
		return mgr.Refs(topic) == 2
	}, time.Second, time.Millisecond)

	close(feed.release)

	for i := 0; i < 2; i++ {
		err := <-errs
		require.Error(t, err)
		assert.True(t, errors.Is(err, "UNAVAILABLE"))
	}
	assert.False(t, mgr.Active(topic))
	assert.Zero(t, mgr.Refs(topic))
}

func TestManagerReconcileFillsSilentGaps(t *testing.T) {
	mgr, feed, backfiller, _ := newTestManager()
	topic := realtime.ConversationTopic("c1")
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, mgr.Ensure(context.Background(), topic, &collector{}))
	feed.emit(string(topic), messageEvent("c1", "m1", base))

	// m2 never arrived on the feed and no resync fired.
	backfiller.seed(topic,
		rec(topic, "m1", base, false),
		rec(topic, "m2", base.Add(time.Second), false),
	)
	mgr.Reconcile()

	assert.Equal(t, []string{"m1", "m2"}, ids(mgr.Records(topic)))
	assert.Equal(t, 2, mgr.UnreadCount(topic))
}
