package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/socialblast/backend/internal/goroutine"
	"github.com/socialblast/backend/internal/logger"
	"github.com/socialblast/backend/internal/models"
)

// Broadcaster доставляет событие подключённым клиентам (WebSocket).
type Broadcaster interface {
	Send(userID uuid.UUID, event string, payload interface{})
}

// NotificationRepository описывает зависимости от слоя хранилища.
type NotificationRepository interface {
	Create(ctx context.Context, userID uuid.UUID, event string, payload json.RawMessage) (*models.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
}

// События уведомлений
const (
	EventOrderCompleted  = "order.completed"
	EventOrderFailed     = "order.failed"
	EventCardReserved    = "card.reserved"
	EventCardSold        = "card.sold"
	EventCardDisputed    = "card.disputed"
	EventDisputeResolved = "dispute.resolved"
	EventTicketReply     = "ticket.reply"
)

// NotificationService сохраняет уведомления и рассылает их по WebSocket.
type NotificationService struct {
	repo        NotificationRepository
	broadcaster Broadcaster
}

// NewNotificationService создаёт сервис уведомлений.
// broadcaster может быть nil, тогда уведомления только сохраняются.
func NewNotificationService(repo NotificationRepository, broadcaster Broadcaster) *NotificationService {
	return &NotificationService{
		repo:        repo,
		broadcaster: broadcaster,
	}
}

// Notify сохраняет уведомление и асинхронно доставляет его получателю.
// Ошибка доставки не влияет на бизнес-операцию, вызвавшую событие.
func (s *NotificationService) Notify(userID uuid.UUID, event string, payload interface{}) {
	goroutine.SafeGo(func() {
		data, err := json.Marshal(payload)
		if err != nil {
			logger.WithComponent("notifications").WithError(err).Error("не удалось сериализовать payload")
			return
		}

		if _, err := s.repo.Create(context.Background(), userID, event, data); err != nil {
			logger.WithComponent("notifications").WithError(err).Error("не удалось сохранить уведомление")
		}

		if s.broadcaster != nil {
			s.broadcaster.Send(userID, event, payload)
		}
	})
}

// List возвращает уведомления пользователя.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// MarkRead помечает уведомление прочитанным.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead помечает все уведомления прочитанными.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// CountUnread возвращает число непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}
