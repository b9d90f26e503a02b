// Package realtime keeps per-topic local views of messages, notifications
// and bids in sync with the change feed, tracks read state, and routes
// notification taps to their target screens.
package realtime

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gigspace/internal/domain/entity"
	"gigspace/internal/infrastructure/changefeed"
)

// Topic identifies one ordered stream of records. The string form doubles
// as the Redis pub/sub channel name.
type Topic string

func ConversationTopic(conversationID string) Topic {
	return Topic("conversation:" + conversationID)
}

func NotificationTopic(userID string) Topic {
	return Topic("notifications:" + userID)
}

func JobBidsTopic(jobID string) Topic {
	return Topic("job-bids:" + jobID)
}

func (t Topic) ConversationID() (string, bool) {
	return strings.CutPrefix(string(t), "conversation:")
}

func (t Topic) NotificationUserID() (string, bool) {
	return strings.CutPrefix(string(t), "notifications:")
}

func (t Topic) JobID() (string, bool) {
	return strings.CutPrefix(string(t), "job-bids:")
}

type RecordKind string

const (
	KindMessage      RecordKind = "message"
	KindNotification RecordKind = "notification"
	KindBid          RecordKind = "bid"
)

// Record is one row in a topic's local log. Payload holds the entity as
// it arrived on the wire so sessions can forward it without re-encoding.
type Record struct {
	Kind      RecordKind
	ID        string
	Topic     Topic
	Read      bool
	CreatedAt time.Time
	Payload   json.RawMessage
}

// Before orders records by (CreatedAt, ID); the id tie-break keeps the
// order total so replays and backfills land deterministically.
func (r Record) Before(other Record) bool {
	if r.CreatedAt.Equal(other.CreatedAt) {
		return r.ID < other.ID
	}
	return r.CreatedAt.Before(other.CreatedAt)
}

// RecordFromEvent decodes a feed envelope into a Record. Unknown tables
// and rows missing an id are rejected so one bad publisher cannot poison
// a topic log.
func RecordFromEvent(topic Topic, ev changefeed.Event) (Record, error) {
	switch ev.Table {
	case changefeed.TableMessages:
		var m entity.Message
		if err := json.Unmarshal(ev.Row, &m); err != nil {
			return Record{}, fmt.Errorf("decode message row: %w", err)
		}
		if m.ID == "" {
			return Record{}, fmt.Errorf("message row missing id")
		}
		return MessageRecord(topic, &m), nil
	case changefeed.TableNotifications:
		var n entity.Notification
		if err := json.Unmarshal(ev.Row, &n); err != nil {
			return Record{}, fmt.Errorf("decode notification row: %w", err)
		}
		if n.ID == "" {
			return Record{}, fmt.Errorf("notification row missing id")
		}
		return NotificationRecord(topic, &n), nil
	case changefeed.TableBids:
		var b entity.Bid
		if err := json.Unmarshal(ev.Row, &b); err != nil {
			return Record{}, fmt.Errorf("decode bid row: %w", err)
		}
		if b.ID == "" {
			return Record{}, fmt.Errorf("bid row missing id")
		}
		return BidRecord(topic, &b), nil
	default:
		return Record{}, fmt.Errorf("unknown table %q", ev.Table)
	}
}

func MessageRecord(topic Topic, m *entity.Message) Record {
	payload, _ := json.Marshal(m)
	return Record{
		Kind:      KindMessage,
		ID:        m.ID,
		Topic:     topic,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
		Payload:   payload,
	}
}

func NotificationRecord(topic Topic, n *entity.Notification) Record {
	payload, _ := json.Marshal(n)
	return Record{
		Kind:      KindNotification,
		ID:        n.ID,
		Topic:     topic,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
		Payload:   payload,
	}
}

// BidRecord marks bids as read; they feed list views, not unread badges.
func BidRecord(topic Topic, b *entity.Bid) Record {
	payload, _ := json.Marshal(b)
	return Record{
		Kind:      KindBid,
		ID:        b.ID,
		Topic:     topic,
		Read:      true,
		CreatedAt: b.CreatedAt,
		Payload:   payload,
	}
}
