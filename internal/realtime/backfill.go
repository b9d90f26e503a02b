package realtime

import (
	"context"
	"fmt"
	"time"

	"gigspace/internal/domain/repository"
)

// RepoBackfiller serves gap-closing fetches straight from the durable
// stores, which are the source of truth the feed is merely a tail of.
type RepoBackfiller struct {
	chatRepo  repository.ChatRepository
	notifRepo repository.NotificationRepository
	bidRepo   repository.BidRepository
}

func NewRepoBackfiller(
	chatRepo repository.ChatRepository,
	notifRepo repository.NotificationRepository,
	bidRepo repository.BidRepository,
) *RepoBackfiller {
	return &RepoBackfiller{
		chatRepo:  chatRepo,
		notifRepo: notifRepo,
		bidRepo:   bidRepo,
	}
}

func (b *RepoBackfiller) Backfill(ctx context.Context, topic Topic, since time.Time) ([]Record, error) {
	if conversationID, ok := topic.ConversationID(); ok {
		messages, err := b.chatRepo.GetMessagesSince(ctx, conversationID, since)
		if err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(messages))
		for _, msg := range messages {
			records = append(records, MessageRecord(topic, msg))
		}
		return records, nil
	}

	if userID, ok := topic.NotificationUserID(); ok {
		notifications, err := b.notifRepo.ListSince(ctx, userID, since)
		if err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(notifications))
		for _, n := range notifications {
			records = append(records, NotificationRecord(topic, n))
		}
		return records, nil
	}

	if jobID, ok := topic.JobID(); ok {
		// Bids have no since-query; fetch the job's bids and filter.
		bids, _, err := b.bidRepo.ListByJobID(ctx, jobID, 0, 0)
		if err != nil {
			return nil, err
		}
		records := make([]Record, 0, len(bids))
		for _, bid := range bids {
			if bid.CreatedAt.Before(since) {
				continue
			}
			records = append(records, BidRecord(topic, bid))
		}
		return records, nil
	}

	return nil, fmt.Errorf("unknown topic %q", topic)
}

// RepoReadBackend persists read flips to the store that owns the record.
type RepoReadBackend struct {
	chatRepo  repository.ChatRepository
	notifRepo repository.NotificationRepository
}

func NewRepoReadBackend(
	chatRepo repository.ChatRepository,
	notifRepo repository.NotificationRepository,
) *RepoReadBackend {
	return &RepoReadBackend{
		chatRepo:  chatRepo,
		notifRepo: notifRepo,
	}
}

func (b *RepoReadBackend) MarkRead(ctx context.Context, rec Record) error {
	switch rec.Kind {
	case KindMessage:
		conversationID, ok := rec.Topic.ConversationID()
		if !ok {
			return fmt.Errorf("message record on non-conversation topic %q", rec.Topic)
		}
		return b.chatRepo.MarkMessageRead(ctx, conversationID, rec.ID)
	case KindNotification:
		return b.notifRepo.MarkRead(ctx, rec.ID)
	default:
		// Bids carry no read state.
		return nil
	}
}
