package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/pkg/apperror"
	"github.com/socialblast/backend/internal/repository"
)

// OrderRepository описывает чтение журнала заказов.
type OrderRepository interface {
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error)
}

// OrderService — просмотр истории заказов пользователя.
type OrderService struct {
	repo OrderRepository
}

// NewOrderService создаёт сервис заказов.
func NewOrderService(repo OrderRepository) *OrderService {
	return &OrderService{repo: repo}
}

// Get возвращает заказ пользователя.
func (s *OrderService) Get(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetForUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

// List возвращает историю заказов пользователя.
func (s *OrderService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}
