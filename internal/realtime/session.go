package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"gigspace/internal/domain/entity"
	"gigspace/internal/infrastructure/changefeed"
	"gigspace/pkg/errors"
)

// SendFunc pushes one encoded frame to the session's client. It must be
// safe for concurrent use; the websocket client's buffered send channel
// satisfies that.
type SendFunc func(frame []byte)

// Session binds one connected client to the topics it is watching. The
// user's notification topic is attached for the whole session; chat and
// bid topics come and go as the client navigates.
type Session struct {
	userID string
	mgr    *Manager
	send   SendFunc

	mu     sync.Mutex
	topics map[Topic]struct{}
	closed bool
}

func NewSession(userID string, mgr *Manager, send SendFunc) *Session {
	return &Session{
		userID: userID,
		mgr:    mgr,
		send:   send,
		topics: make(map[Topic]struct{}),
	}
}

// Start attaches the user's notification stream and replays the current
// log so the client starts from a consistent view.
func (s *Session) Start(ctx context.Context) error {
	return s.attach(ctx, NotificationTopic(s.userID))
}

func (s *Session) JoinConversation(ctx context.Context, conversationID string) error {
	return s.attach(ctx, ConversationTopic(conversationID))
}

func (s *Session) LeaveConversation(conversationID string) {
	s.detach(ConversationTopic(conversationID))
}

func (s *Session) WatchJobBids(ctx context.Context, jobID string) error {
	return s.attach(ctx, JobBidsTopic(jobID))
}

func (s *Session) UnwatchJobBids(jobID string) {
	s.detach(JobBidsTopic(jobID))
}

// MarkRead flips one record to read through the manager's optimistic
// path. The session must be attached to the topic.
func (s *Session) MarkRead(ctx context.Context, topic Topic, id string) error {
	s.mu.Lock()
	_, attached := s.topics[topic]
	s.mu.Unlock()
	if !attached {
		return errors.BadRequest("Not subscribed to topic", nil)
	}
	return s.mgr.MarkRead(ctx, topic, id)
}

// Close detaches every topic. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	topics := make([]Topic, 0, len(s.topics))
	for t := range s.topics {
		topics = append(topics, t)
	}
	s.topics = make(map[Topic]struct{})
	s.mu.Unlock()

	for _, t := range topics {
		s.mgr.Teardown(t, s)
	}
}

func (s *Session) attach(ctx context.Context, topic Topic) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.BadRequest("Session is closed", nil)
	}
	if _, ok := s.topics[topic]; ok {
		s.mu.Unlock()
		return nil
	}
	s.topics[topic] = struct{}{}
	s.mu.Unlock()

	if err := s.mgr.Ensure(ctx, topic, s); err != nil {
		s.mu.Lock()
		delete(s.topics, topic)
		s.mu.Unlock()
		return err
	}

	s.replay(topic)
	return nil
}

func (s *Session) detach(topic Topic) {
	s.mu.Lock()
	if _, ok := s.topics[topic]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.topics, topic)
	s.mu.Unlock()

	s.mgr.Teardown(topic, s)
}

// replay sends the topic's current log as one sync frame.
func (s *Session) replay(topic Topic) {
	records := s.mgr.Records(topic)
	items := make([]json.RawMessage, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.Payload)
	}

	s.push(syncFrame{
		Type:        "sync",
		Topic:       string(topic),
		Records:     items,
		UnreadCount: s.mgr.UnreadCount(topic),
	})
}

// OnRecord implements Observer.
func (s *Session) OnRecord(rec Record, unread int) {
	frame := eventFrame{
		Type:        "event",
		Topic:       string(rec.Topic),
		Kind:        string(rec.Kind),
		Record:      rec.Payload,
		UnreadCount: unread,
	}

	// Notifications ship their resolved route so the client never has to
	// guess where a tap should land.
	if rec.Kind == KindNotification {
		var n entity.Notification
		if err := json.Unmarshal(rec.Payload, &n); err == nil {
			route := Dispatch(&n)
			frame.Route = &route
		}
	}

	s.push(frame)
}

// OnUnread implements Observer.
func (s *Session) OnUnread(topic Topic, unread int) {
	s.push(unreadFrame{
		Type:        "unread",
		Topic:       string(topic),
		UnreadCount: unread,
	})
}

// OnStatus forwards feed health changes so clients can show a stale-data
// banner while the feed is degraded.
func (s *Session) OnStatus(status changefeed.Status) {
	s.push(statusFrame{
		Type:   "status",
		Status: status.String(),
	})
}

func (s *Session) push(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Session Error: failed to encode frame for user %s: %v", s.userID, err)
		return
	}
	s.send(data)
}

type eventFrame struct {
	Type        string          `json:"type"`
	Topic       string          `json:"topic"`
	Kind        string          `json:"kind"`
	Record      json.RawMessage `json:"record"`
	UnreadCount int             `json:"unread_count"`
	Route       *Route          `json:"route,omitempty"`
}

type syncFrame struct {
	Type        string            `json:"type"`
	Topic       string            `json:"topic"`
	Records     []json.RawMessage `json:"records"`
	UnreadCount int               `json:"unread_count"`
}

type unreadFrame struct {
	Type        string `json:"type"`
	Topic       string `json:"topic"`
	UnreadCount int    `json:"unread_count"`
}

type statusFrame struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}
