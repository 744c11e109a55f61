package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/repository/common"
)

// PurchaseRepository выполняет мгновенные покупки из каталога: списание
// с доступного баланса, создание заказа и запись в журнал — одной транзакцией.
type PurchaseRepository struct {
	db *sqlx.DB
}

// NewPurchaseRepository создаёт экземпляр репозитория.
func NewPurchaseRepository(db *sqlx.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// PurchaseParams — параметры мгновенной покупки.
type PurchaseParams struct {
	UserID      uuid.UUID
	Kind        string
	ItemID      *uuid.UUID
	Amount      float64
	Status      string // статус создаваемого заказа: completed или pending
	Details     interface{}
	Description string
}

// PurchaseESim продаёт план eSIM. План блокируется FOR UPDATE, поэтому из
// двух конкурирующих покупателей выигрывает один, второй получает
// ErrItemNotAvailable. Заказ создаётся сразу в статусе completed.
func (r *PurchaseRepository) PurchaseESim(ctx context.Context, esimID, userID uuid.UUID) (*models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	esim, err := common.GetByIDForUpdate[models.ESim](ctx, tx, "esims", esimID, ErrServiceNotFound)
	if err != nil {
		return nil, err
	}
	if esim.Status != models.ESimStatusAvailable {
		return nil, ErrItemNotAvailable
	}

	if _, err := tx.ExecContext(ctx, `UPDATE esims SET status = 'sold' WHERE id = $1`, esim.ID); err != nil {
		return nil, fmt.Errorf("purchase repository: esim mark sold %w", err)
	}

	order, err := purchaseInTx(ctx, tx, PurchaseParams{
		UserID: userID,
		Kind:   models.OrderKindESim,
		ItemID: &esim.ID,
		Amount: esim.Price,
		Status: models.OrderStatusCompleted,
		Details: map[string]interface{}{
			"country":       esim.Country,
			"provider":      esim.Provider,
			"data_amount":   esim.DataAmount,
			"validity_days": esim.ValidityDays,
		},
		Description: fmt.Sprintf("Покупка eSIM %s %s", esim.Country, esim.DataAmount),
	})
	if err != nil {
		return nil, err
	}

	return order, tx.Commit()
}

// Purchase выполняет мгновенную покупку без резервирования товара
// (SMM заказы, номера телефонов).
func (r *PurchaseRepository) Purchase(ctx context.Context, params PurchaseParams) (*models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, err := purchaseInTx(ctx, tx, params)
	if err != nil {
		return nil, err
	}

	return order, tx.Commit()
}

// purchaseInTx списывает средства, создаёт заказ и запись журнала.
func purchaseInTx(ctx context.Context, tx *sqlx.Tx, params PurchaseParams) (*models.Order, error) {
	balance, err := lockBalance(ctx, tx, params.UserID)
	if err != nil {
		return nil, err
	}
	if balance.Available < params.Amount {
		return nil, ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE user_balances SET available = available - $2, updated_at = NOW()
		WHERE user_id = $1
	`, params.UserID, params.Amount)
	if err != nil {
		return nil, fmt.Errorf("purchase repository: debit balance %w", err)
	}

	details, err := json.Marshal(params.Details)
	if err != nil {
		return nil, fmt.Errorf("purchase repository: marshal details %w", err)
	}

	order := &models.Order{
		UserID:  params.UserID,
		Kind:    params.Kind,
		ItemID:  params.ItemID,
		Amount:  params.Amount,
		Status:  params.Status,
		Details: details,
	}
	if err := insertOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("purchase repository: %w", err)
	}
	if order.Status == models.OrderStatusCompleted {
		if _, err := tx.ExecContext(ctx, `UPDATE orders SET completed_at = NOW() WHERE id = $1`, order.ID); err != nil {
			return nil, fmt.Errorf("purchase repository: stamp completion %w", err)
		}
	}

	if _, err := insertTransaction(
		ctx, tx, params.UserID, &order.ID,
		models.TransactionTypePurchase, params.Amount, params.Description,
	); err != nil {
		return nil, fmt.Errorf("purchase repository: journal %w", err)
	}

	return order, nil
}
