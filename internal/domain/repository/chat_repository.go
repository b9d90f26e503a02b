package repository

import (
	"context"
	"time"

	"gigspace/internal/domain/entity"
)

type ChatRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	Update(ctx context.Context, conversation *entity.Conversation) error
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*entity.Conversation, int64, error)
	GetDirectConversation(ctx context.Context, jobID string, participants []string) (*entity.Conversation, error)

	CreateMessage(ctx context.Context, message *entity.Message) error
	GetMessageByID(ctx context.Context, conversationID, messageID string) (*entity.Message, error)
	GetMessagesByConversation(ctx context.Context, conversationID string, limit, offset int) ([]*entity.Message, int64, error)
	// GetMessagesSince returns messages created at or after the given time,
	// ordered by (createdAt, id). Used for backfill after a feed reconnect.
	GetMessagesSince(ctx context.Context, conversationID string, since time.Time) ([]*entity.Message, error)
	MarkMessageRead(ctx context.Context, conversationID, messageID string) error
}
