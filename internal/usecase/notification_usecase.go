package usecase

import (
	"context"
	"log"

	"gigspace/internal/domain/entity"
	"gigspace/internal/domain/repository"
	"gigspace/internal/realtime"
	"gigspace/pkg/errors"
)

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationUseCase(notificationRepo repository.NotificationRepository) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
	}
}

func (uc *NotificationUseCase) List(ctx context.Context, userID string, limit, offset int) ([]*entity.Notification, int64, error) {
	return uc.notificationRepo.ListByUserID(ctx, userID, limit, offset)
}

func (uc *NotificationUseCase) CountUnread(ctx context.Context, userID string) (int64, error) {
	return uc.notificationRepo.CountUnread(ctx, userID)
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, userID, notificationID string) error {
	notification, err := uc.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if notification.UserID != userID {
		return errors.Forbidden("You can only mark your own notifications", nil)
	}
	return uc.notificationRepo.MarkRead(ctx, notificationID)
}

func (uc *NotificationUseCase) MarkAllRead(ctx context.Context, userID string) error {
	if err := uc.notificationRepo.MarkAllRead(ctx, userID); err != nil {
		log.Printf("MarkAllRead Error: user %s: %v", userID, err)
		return err
	}
	return nil
}

// ResolveDispatch returns the route a tap on the notification should
// follow. Unknown or incomplete notifications resolve to the fallback
// list rather than an error.
func (uc *NotificationUseCase) ResolveDispatch(ctx context.Context, userID, notificationID string) (*entity.Notification, realtime.Route, error) {
	notification, err := uc.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, realtime.Route{}, err
	}
	if notification.UserID != userID {
		return nil, realtime.Route{}, errors.Forbidden("You can only open your own notifications", nil)
	}
	return notification, realtime.Dispatch(notification), nil
}
