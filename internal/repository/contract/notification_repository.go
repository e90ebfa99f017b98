package contract

import (
	"context"

	"ai-traininglab-be/internal/entity"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	FindByUserId(ctx context.Context, userId uuid.UUID, limit, offset int) ([]*entity.Notification, int64, error)
	UnreadCount(ctx context.Context, userId uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, notificationId uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userId uuid.UUID) error
}
