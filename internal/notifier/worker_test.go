package notifier_test

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
	"gigspace/internal/infrastructure/queue"
	"gigspace/internal/notifier"
)

type memNotificationRepo struct {
	mu      sync.Mutex
	created []*entity.Notification
}

func (r *memNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == "" {
		n.ID = "n1"
	}
	r.created = append(r.created, n)
	return nil
}

func (r *memNotificationRepo) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	return nil, nil
}

func (r *memNotificationRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error) {
	return nil, 0, nil
}

func (r *memNotificationRepo) ListSince(ctx context.Context, userID string, since time.Time) ([]*entity.Notification, error) {
	return nil, nil
}

func (r *memNotificationRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	return 0, nil
}

func (r *memNotificationRepo) MarkRead(ctx context.Context, id string) error { return nil }

func (r *memNotificationRepo) MarkAllRead(ctx context.Context, userID string) error { return nil }

type memUserRepo struct {
	users map[string]*entity.User
}

func (r *memUserRepo) Create(ctx context.Context, u *entity.User) error { return nil }

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, assert.AnError
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, assert.AnError
}

func (r *memUserRepo) Update(ctx context.Context, u *entity.User) error { return nil }

func (r *memUserRepo) Delete(ctx context.Context, id string) error { return nil }

func (r *memUserRepo) List(ctx context.Context, role string, limit, offset int) ([]*entity.User, int64, error) {
	return nil, 0, nil
}

type memFeed struct {
	mu     sync.Mutex
	topics []string
	events []changefeed.Event
}

func (f *memFeed) Publish(ctx context.Context, topic string, ev changefeed.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.events = append(f.events, ev)
	return nil
}

type memSMS struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (s *memSMS) Send(to, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return assert.AnError
	}
	s.sent = append(s.sent, to)
	return nil
}

func TestBuildNotificationMapping(t *testing.T) {
	base := queue.DomainEvent{
		ActorID:     "freelancer-1",
		RecipientID: "client-1",
		JobID:       "job-1",
		BidID:       "bid-1",
		OccurredAt:  time.Now(),
	}

	tests := []struct {
		eventType string
		wantType  string
	}{
		{queue.EventBidPlaced, entity.NotificationNewBid},
		{queue.EventBidAccepted, entity.NotificationBidAccepted},
		{queue.EventBidRejected, entity.NotificationBidRejected},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			event := base
			event.Type = tt.eventType

			notification, err := notifier.BuildNotification(event)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, notification.Type)
			assert.Equal(t, "client-1", notification.UserID)
			assert.True(t, notification.PayloadComplete())
		})
	}
}

func TestBuildNotificationChatEvents(t *testing.T) {
	event := queue.DomainEvent{
		Type:           queue.EventMessageSent,
		ActorID:        "u1",
		RecipientID:    "u2",
		ConversationID: "c1",
		MessageID:      "m1",
		OccurredAt:     time.Now(),
	}

	notification, err := notifier.BuildNotification(event)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationNewMessage, notification.Type)
	assert.Equal(t, "c1", notification.Payload.ConversationID)
	assert.Equal(t, "m1", notification.Payload.MessageID)

	event.Type = queue.EventOfferMade
	notification, err = notifier.BuildNotification(event)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificationNewOffer, notification.Type)
}

func TestBuildNotificationRejectsUnknownAndIncomplete(t *testing.T) {
	_, err := notifier.BuildNotification(queue.DomainEvent{
		Type:        "user.poked",
		RecipientID: "u1",
	})
	assert.Error(t, err)

	// bid.placed without a bid id cannot produce a routable notification.
	_, err = notifier.BuildNotification(queue.DomainEvent{
		Type:        queue.EventBidPlaced,
		ActorID:     "f1",
		RecipientID: "c1",
		JobID:       "j1",
	})
	assert.Error(t, err)

	_, err = notifier.BuildNotification(queue.DomainEvent{Type: queue.EventBidPlaced})
	assert.Error(t, err)
}

func TestProcessStoresAndPublishes(t *testing.T) {
	repo := &memNotificationRepo{}
	users := &memUserRepo{users: map[string]*entity.User{}}
	feed := &memFeed{}
	worker := notifier.NewWorker(repo, users, feed, &memSMS{})

	err := worker.Process(context.Background(), queue.DomainEvent{
		Type:        queue.EventBidPlaced,
		ActorID:     "f1",
		RecipientID: "c1",
		JobID:       "j1",
		BidID:       "b1",
		OccurredAt:  time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	require.Len(t, feed.topics, 1)
	assert.Equal(t, "notifications:c1", feed.topics[0])

	var published entity.Notification
	require.NoError(t, json.Unmarshal(feed.events[0].Row, &published))
	assert.Equal(t, entity.NotificationNewBid, published.Type)
	assert.Equal(t, changefeed.OpInsert, feed.events[0].Op)
	assert.Equal(t, changefeed.TableNotifications, feed.events[0].Table)
}

func TestProcessSendsPaymentSMS(t *testing.T) {
	repo := &memNotificationRepo{}
	users := &memUserRepo{users: map[string]*entity.User{
		"f1": {ID: "f1", Phone: "+15550100"},
	}}
	smsSender := &memSMS{}
	worker := notifier.NewWorker(repo, users, &memFeed{}, smsSender)

	err := worker.Process(context.Background(), queue.DomainEvent{
		Type:        queue.EventPaymentSent,
		ActorID:     "c1",
		RecipientID: "f1",
		JobID:       "j1",
		Amount:      250,
		OccurredAt:  time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"+15550100"}, smsSender.sent)
	// First write stores the row, second records delivery status.
	require.Len(t, repo.created, 2)
	assert.Equal(t, "delivered", repo.created[1].Status)
}

func TestProcessMarksFailedSMS(t *testing.T) {
	repo := &memNotificationRepo{}
	users := &memUserRepo{users: map[string]*entity.User{
		"f1": {ID: "f1", Phone: "+15550100"},
	}}
	worker := notifier.NewWorker(repo, users, &memFeed{}, &memSMS{fail: true})

	err := worker.Process(context.Background(), queue.DomainEvent{
		Type:        queue.EventPaymentSent,
		ActorID:     "c1",
		RecipientID: "f1",
		JobID:       "j1",
		Amount:      250,
		OccurredAt:  time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, repo.created, 2)
	assert.Equal(t, "failed", repo.created[1].Status)
}

func TestProcessSkipsUnroutableEvents(t *testing.T) {
	repo := &memNotificationRepo{}
	worker := notifier.NewWorker(repo, &memUserRepo{}, &memFeed{}, &memSMS{})

	// Unknown events are dropped, not retried forever.
	err := worker.Process(context.Background(), queue.DomainEvent{
		Type:        "user.poked",
		RecipientID: "u1",
	})
	require.NoError(t, err)
	assert.Empty(t, repo.created)
}
