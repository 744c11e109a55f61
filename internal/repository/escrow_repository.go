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

// EscrowRepository — координатор сделок по подарочным картам.
// Каждая операция выполняется в одной транзакции БД: либо меняются
// все затронутые сущности (балансы, лот, заказ, журнал), либо ни одна.
// Порядок блокировок фиксированный — заказ, лот, баланс покупателя —
// чтобы конкурирующие операции не взаимоблокировались.
type EscrowRepository struct {
	db *sqlx.DB
}

// NewEscrowRepository создаёт экземпляр репозитория.
func NewEscrowRepository(db *sqlx.DB) *EscrowRepository {
	return &EscrowRepository{db: db}
}

// reserveDetails попадает в поле details заказа при резервировании.
type reserveDetails struct {
	CardType  string    `json:"card_type"`
	FaceValue float64   `json:"face_value"`
	SellerID  uuid.UUID `json:"seller_id"`
}

// Reserve резервирует лот за покупателем: средства переходят из available
// в escrow, лот — в pending, создаётся pending заказ и запись escrow_hold.
// Проигравший гонку за лот получает ErrItemNotAvailable; при нехватке
// средств не меняется ничего, включая статус лота.
func (r *EscrowRepository) Reserve(ctx context.Context, cardID, buyerID uuid.UUID) (*models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	card, err := common.GetByIDForUpdate[models.GiftCard](ctx, tx, "gift_cards", cardID, ErrCardNotFound)
	if err != nil {
		return nil, err
	}
	if card.SellerID == buyerID {
		return nil, ErrOwnListing
	}
	if card.Status != models.GiftCardStatusAvailable {
		return nil, ErrItemNotAvailable
	}

	balance, err := lockBalance(ctx, tx, buyerID)
	if err != nil {
		return nil, err
	}
	if balance.Available < card.Price {
		return nil, ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE user_balances
		SET available = available - $2, escrow = escrow + $2, updated_at = NOW()
		WHERE user_id = $1
	`, buyerID, card.Price)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: reserve move funds %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE gift_cards SET status = 'pending', buyer_id = $2 WHERE id = $1
	`, card.ID, buyerID)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: reserve update card %w", err)
	}

	details, err := json.Marshal(reserveDetails{
		CardType:  card.CardType,
		FaceValue: card.FaceValue,
		SellerID:  card.SellerID,
	})
	if err != nil {
		return nil, fmt.Errorf("escrow repository: reserve marshal details %w", err)
	}

	order := &models.Order{
		UserID:  buyerID,
		Kind:    models.OrderKindGiftCard,
		ItemID:  &card.ID,
		Amount:  card.Price,
		Status:  models.OrderStatusPending,
		Details: details,
	}
	if err := insertOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("escrow repository: reserve %w", err)
	}

	if _, err := insertTransaction(
		ctx, tx, buyerID, &order.ID,
		models.TransactionTypeEscrowHold, card.Price,
		fmt.Sprintf("Резерв карты %s", card.CardType),
	); err != nil {
		return nil, fmt.Errorf("escrow repository: reserve journal %w", err)
	}

	return order, tx.Commit()
}

// Settle завершает сделку: средства из escrow покупателя перечисляются
// продавцу, лот переходит в sold, заказ — в completed. Если sellerID задан
// (не uuid.Nil), дополнительно проверяется, что вызывающий — продавец лота.
func (r *EscrowRepository) Settle(ctx context.Context, orderID, sellerID uuid.UUID) (*models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, card, err := lockDeal(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if sellerID != uuid.Nil && card.SellerID != sellerID {
		return nil, ErrOrderNotFound
	}
	if card.Status != models.GiftCardStatusPending {
		return nil, ErrInvalidTransition
	}

	if err := releaseEscrow(ctx, tx, order, card); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE gift_cards SET status = 'sold', sold_at = NOW() WHERE id = $1
	`, card.ID)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: settle update card %w", err)
	}

	finalized, err := finalizeInTx(ctx, tx, order.ID, models.OrderStatusCompleted)
	if err != nil {
		return nil, err
	}

	return finalized, tx.Commit()
}

// Dispute замораживает сделку: лот переходит в disputed, заказ остаётся
// pending, средства остаются в escrow до решения администратора.
func (r *EscrowRepository) Dispute(ctx context.Context, orderID, callerID uuid.UUID) (*models.Order, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, card, err := lockDeal(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if callerID != uuid.Nil && order.UserID != callerID && card.SellerID != callerID {
		return nil, ErrOrderNotFound
	}
	if card.Status != models.GiftCardStatusPending {
		return nil, ErrInvalidTransition
	}

	_, err = tx.ExecContext(ctx, `UPDATE gift_cards SET status = 'disputed' WHERE id = $1`, card.ID)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: dispute update card %w", err)
	}

	return order, tx.Commit()
}

// Resolve закрывает спорную сделку по решению администратора.
// outcome release — средства продавцу, лот sold, заказ completed;
// outcome refund — средства обратно покупателю, лот снова available,
// заказ failed.
func (r *EscrowRepository) Resolve(ctx context.Context, orderID uuid.UUID, outcome string) (*models.Order, error) {
	if outcome != models.DisputeOutcomeRelease && outcome != models.DisputeOutcomeRefund {
		return nil, common.ErrInvalidInput
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, card, err := lockDeal(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if card.Status != models.GiftCardStatusDisputed {
		return nil, ErrInvalidTransition
	}

	if outcome == models.DisputeOutcomeRelease {
		if err := releaseEscrow(ctx, tx, order, card); err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE gift_cards SET status = 'sold', sold_at = NOW() WHERE id = $1
		`, card.ID)
		if err != nil {
			return nil, fmt.Errorf("escrow repository: resolve update card %w", err)
		}
		finalized, err := finalizeInTx(ctx, tx, order.ID, models.OrderStatusCompleted)
		if err != nil {
			return nil, err
		}
		return finalized, tx.Commit()
	}

	// refund: escrow покупателя возвращается в available
	balance, err := lockBalance(ctx, tx, order.UserID)
	if err != nil {
		return nil, err
	}
	if balance.Escrow < order.Amount {
		return nil, ErrEscrowUnderflow
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE user_balances
		SET escrow = escrow - $2, available = available + $2, updated_at = NOW()
		WHERE user_id = $1
	`, order.UserID, order.Amount)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: refund move funds %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE gift_cards SET status = 'available', buyer_id = NULL WHERE id = $1
	`, card.ID)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: refund update card %w", err)
	}

	if _, err := insertTransaction(
		ctx, tx, order.UserID, &order.ID,
		models.TransactionTypeEscrowRefund, order.Amount,
		fmt.Sprintf("Возврат по спору: карта %s", card.CardType),
	); err != nil {
		return nil, fmt.Errorf("escrow repository: refund journal %w", err)
	}

	finalized, err := finalizeInTx(ctx, tx, order.ID, models.OrderStatusFailed)
	if err != nil {
		return nil, err
	}

	return finalized, tx.Commit()
}

// lockDeal блокирует заказ и связанный лот в фиксированном порядке.
func lockDeal(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID) (*models.Order, *models.GiftCard, error) {
	order, err := common.GetByIDForUpdate[models.Order](ctx, tx, "orders", orderID, ErrOrderNotFound)
	if err != nil {
		return nil, nil, err
	}
	if order.Kind != models.OrderKindGiftCard || order.ItemID == nil {
		return nil, nil, ErrInvalidTransition
	}
	if order.Status != models.OrderStatusPending {
		return nil, nil, ErrAlreadyFinalized
	}

	card, err := common.GetByIDForUpdate[models.GiftCard](ctx, tx, "gift_cards", *order.ItemID, ErrCardNotFound)
	if err != nil {
		return nil, nil, err
	}
	return order, card, nil
}

// releaseEscrow перечисляет средства сделки из escrow покупателя продавцу
// и делает запись escrow_release. Вызывается внутри транзакции.
func releaseEscrow(ctx context.Context, tx *sqlx.Tx, order *models.Order, card *models.GiftCard) error {
	balance, err := lockBalance(ctx, tx, order.UserID)
	if err != nil {
		return err
	}
	if balance.Escrow < order.Amount {
		return ErrEscrowUnderflow
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE user_balances SET escrow = escrow - $2, updated_at = NOW() WHERE user_id = $1
	`, order.UserID, order.Amount)
	if err != nil {
		return fmt.Errorf("escrow repository: release debit escrow %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_balances (user_id, available, escrow)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO UPDATE SET available = user_balances.available + $2, updated_at = NOW()
	`, card.SellerID, order.Amount)
	if err != nil {
		return fmt.Errorf("escrow repository: release credit seller %w", err)
	}

	if _, err := insertTransaction(
		ctx, tx, card.SellerID, &order.ID,
		models.TransactionTypeEscrowRelease, order.Amount,
		fmt.Sprintf("Продажа карты %s", card.CardType),
	); err != nil {
		return fmt.Errorf("escrow repository: release journal %w", err)
	}
	return nil
}

// finalizeInTx переводит pending заказ в терминальный статус внутри транзакции.
func finalizeInTx(ctx context.Context, tx *sqlx.Tx, orderID uuid.UUID, status string) (*models.Order, error) {
	var order models.Order
	err := tx.GetContext(ctx, &order, `
		UPDATE orders SET status = $2, completed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING id, user_id, kind, item_id, amount, status, details, created_at, completed_at
	`, orderID, status)
	if err != nil {
		return nil, fmt.Errorf("escrow repository: finalize order %w", err)
	}
	return &order, nil
}
