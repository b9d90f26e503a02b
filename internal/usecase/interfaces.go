package usecase

import (
	"context"

	"gigspace/internal/infrastructure/changefeed"
	"gigspace/internal/infrastructure/queue"
)

type FirebaseAuthClient interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	VerifyToken(ctx context.Context, token string) (string, error)
	GenerateToken(ctx context.Context, uid string) (string, error)
	UpdateUserPassword(ctx context.Context, uid, newPassword string) error
	SetRole(ctx context.Context, uid, role string) error
	DisableUser(ctx context.Context, uid string, disabled bool) error
	DeleteUser(ctx context.Context, uid string) error
}

type IdentityClient interface {
	SignInWithEmailPassword(email, password string) (string, string, error)
	RefreshIDToken(refreshToken string) (string, string, error)
}

// EventPublisher hands domain events to the notifier queue.
type EventPublisher interface {
	Publish(ctx context.Context, event queue.DomainEvent) error
}

// FeedPublisher pushes row changes onto the change feed.
type FeedPublisher interface {
	Publish(ctx context.Context, topic string, ev changefeed.Event) error
}
