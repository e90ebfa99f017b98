package service

import (
	"context"
	"fmt"
	"time"

	"ai-traininglab-be/internal/dto"
	"ai-traininglab-be/internal/entity"
	"ai-traininglab-be/internal/pkg/logger"
	"ai-traininglab-be/internal/repository/unitofwork"
	"ai-traininglab-be/pkg/events"
	pktNats "ai-traininglab-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery pushes real-time updates, implemented by the
// websocket hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, notification entity.Notification)
	Broadcast(notification entity.Notification)
}

type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("chat.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to chat.>", nil)
}

// notificationText maps event types to user-facing copy. Events without an
// entry stay on the bus for other consumers but produce no notification.
func notificationText(event events.Event) (title, message string, ok bool) {
	payload := event.Payload()
	switch event.EventType() {
	case events.TypeDispatchFailed:
		kind, _ := payload["error_kind"].(string)
		modelId, _ := payload["model_id"].(string)
		return "Model call failed",
			fmt.Sprintf("The reply from %s could not be produced (%s). The failure is shown in the conversation.", modelId, kind),
			true
	case events.TypeLateReplyArrived:
		modelId, _ := payload["model_id"].(string)
		return "Reply arrived",
			fmt.Sprintf("A reply from %s arrived in a conversation you navigated away from.", modelId),
			true
	case events.TypePersistenceFailed:
		return "Sync delayed",
			"Recent changes could not be written to storage yet. They are safe in your session and will retry.",
			true
	case events.TypeUploadCompleted:
		uploaded := payloadInt(payload["uploaded"])
		failed := payloadInt(payload["failed"])
		if failed > 0 {
			return "Upload finished with errors",
				fmt.Sprintf("%d file(s) uploaded, %d failed.", uploaded, failed),
				true
		}
		return "Upload finished", fmt.Sprintf("%d file(s) uploaded and processed.", uploaded), true
	default:
		return "", "", false
	}
}

// payloadInt reads a numeric payload field; JSON decoding yields float64,
// locally constructed events carry int.
func payloadInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	title, message, relevant := notificationText(event)
	if !relevant {
		return nil
	}

	payload := event.Payload()
	uidStr, _ := payload["user_id"].(string)
	userId, err := uuid.Parse(uidStr)
	if err != nil {
		s.logger.Warn("NotificationService", "Event without valid user_id", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	notif := entity.Notification{
		Id:        uuid.New(),
		UserId:    userId,
		TypeCode:  event.EventType(),
		Title:     title,
		Message:   message,
		Metadata:  payload,
		CreatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.NotificationRepository().Create(ctx, &notif); err != nil {
		s.logger.Error("NotificationService", "Error saving notification", map[string]interface{}{"error": err, "user_id": userId})
		return err // NATS will retry
	}

	if s.delivery != nil {
		s.delivery.Send(userId, notif)
	}
	return nil
}

// GetNotifications fetches a user's notification inbox.
func (s *NotificationService) GetNotifications(ctx context.Context, userId uuid.UUID, limit, offset int) (*dto.ListNotificationsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	notifs, total, err := uow.NotificationRepository().FindByUserId(ctx, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	unread, err := uow.NotificationRepository().UnreadCount(ctx, userId)
	if err != nil {
		return nil, err
	}

	res := &dto.ListNotificationsResponse{
		Notifications: make([]dto.NotificationResponse, 0, len(notifs)),
		Total:         total,
		UnreadCount:   unread,
	}
	for _, n := range notifs {
		res.Notifications = append(res.Notifications, dto.NotificationResponse{
			Id:        n.Id,
			TypeCode:  n.TypeCode,
			Title:     n.Title,
			Message:   n.Message,
			Metadata:  n.Metadata,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return res, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().MarkAsRead(ctx, id)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NotificationRepository().MarkAllAsRead(ctx, userId)
}
