package repository

import (
	"context"
	"time"

	"gigspace/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error)
	// ListSince returns a user's notifications created at or after the given
	// time, ordered by (createdAt, id). Used for backfill after a reconnect.
	ListSince(ctx context.Context, userID string, since time.Time) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}
