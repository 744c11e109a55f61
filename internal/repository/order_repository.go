package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/repository/common"
)

var (
	// ErrOrderNotFound возвращается, когда заказ не найден.
	ErrOrderNotFound = errors.New("order not found")
	// ErrAlreadyFinalized возвращается при повторной попытке завершить заказ.
	// Заказ переходит из pending в терминальный статус ровно один раз.
	ErrAlreadyFinalized = errors.New("order already finalized")
)

// OrderRepository — журнал заказов. Записи создаются в статусе pending
// (или сразу completed для мгновенных покупок) и финализируются однократно.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository создаёт экземпляр репозитория.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// GetByID возвращает заказ по идентификатору.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return common.GetByID[models.Order](ctx, r.db, "orders", id, ErrOrderNotFound)
}

// GetForUser возвращает заказ, если он принадлежит пользователю.
func (r *OrderRepository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error) {
	order, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListByUser возвращает заказы пользователя, новые первыми.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var orders []models.Order
	err := r.db.SelectContext(ctx, &orders, `
		SELECT id, user_id, kind, item_id, amount, status, details, created_at, completed_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("order repository: list by user %w", err)
	}
	return orders, nil
}

// Finalize переводит pending заказ в терминальный статус (completed или failed).
// Условие status = 'pending' в UPDATE гарантирует однократность: второй
// вызов не находит строку и получает ErrAlreadyFinalized.
func (r *OrderRepository) Finalize(ctx context.Context, id uuid.UUID, status string) (*models.Order, error) {
	if status != models.OrderStatusCompleted && status != models.OrderStatusFailed {
		return nil, common.ErrInvalidInput
	}

	var order models.Order
	err := r.db.GetContext(ctx, &order, `
		UPDATE orders SET status = $2, completed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, user_id, kind, item_id, amount, status, details, created_at, completed_at
	`, id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Либо заказа нет, либо он уже финализирован — различаем.
			if _, getErr := r.GetByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			return nil, ErrAlreadyFinalized
		}
		return nil, fmt.Errorf("order repository: finalize %w", err)
	}
	return &order, nil
}

// insertOrder создаёт запись заказа внутри транзакции вызывающего кода.
func insertOrder(ctx context.Context, tx *sqlx.Tx, order *models.Order) error {
	query := `
		INSERT INTO orders (user_id, kind, item_id, amount, status, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	if err := tx.QueryRowxContext(
		ctx, query,
		order.UserID, order.Kind, order.ItemID, order.Amount, order.Status, order.Details,
	).Scan(&order.ID, &order.CreatedAt); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}
