package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/socialblast/backend/internal/models"
)

var (
	// ErrInsufficientFunds возвращается, когда доступного баланса не хватает на операцию.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrEscrowUnderflow сигнализирует о нарушении инварианта: в escrow меньше средств,
	// чем требуется вернуть или перечислить. До корректного вызывающего кода не доходит.
	ErrEscrowUnderflow = errors.New("escrow underflow")
)

// WalletRepository — единственный источник истины по балансам пользователей.
// Каждое изменение баланса сопровождается записью в transactions в той же транзакции.
type WalletRepository struct {
	db *sqlx.DB
}

// NewWalletRepository создаёт экземпляр репозитория.
func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// GetBalance возвращает баланс пользователя, создаёт запись если не существует.
func (r *WalletRepository) GetBalance(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error) {
	var balance models.UserBalance
	query := `
		INSERT INTO user_balances (user_id, available, escrow)
		VALUES ($1, 0, 0)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = NOW()
		RETURNING user_id, available, escrow, updated_at
	`
	if err := r.db.GetContext(ctx, &balance, query, userID); err != nil {
		return nil, fmt.Errorf("wallet repository: get balance %w", err)
	}
	return &balance, nil
}

// Deposit пополняет доступный баланс пользователя.
func (r *WalletRepository) Deposit(ctx context.Context, userID uuid.UUID, amount float64, description string) (*models.Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Обновляем баланс
	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_balances (user_id, available, escrow)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id) DO UPDATE SET available = user_balances.available + $2, updated_at = NOW()
	`, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: deposit update balance %w", err)
	}

	// Запись в журнал
	transaction, err := insertTransaction(ctx, tx, userID, nil, models.TransactionTypeDeposit, amount, description)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: deposit create transaction %w", err)
	}

	return transaction, tx.Commit()
}

// Withdraw списывает средства с доступного баланса.
func (r *WalletRepository) Withdraw(ctx context.Context, userID uuid.UUID, amount float64, description string) (*models.Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	balance, err := lockBalance(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if balance.Available < amount {
		return nil, ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE user_balances SET available = available - $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: withdraw update balance %w", err)
	}

	transaction, err := insertTransaction(ctx, tx, userID, nil, models.TransactionTypeWithdrawal, amount, description)
	if err != nil {
		return nil, fmt.Errorf("wallet repository: withdraw create transaction %w", err)
	}

	return transaction, tx.Commit()
}

// ListTransactions возвращает историю операций пользователя.
func (r *WalletRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := r.db.SelectContext(ctx, &transactions, `
		SELECT id, user_id, order_id, type, amount, status, description, created_at, completed_at
		FROM transactions WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return transactions, err
}

// lockBalance выбирает баланс пользователя с блокировкой строки.
// Отсутствие записи трактуется как нулевой баланс.
func lockBalance(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID) (*models.UserBalance, error) {
	var balance models.UserBalance
	err := tx.GetContext(ctx, &balance, `
		SELECT user_id, available, escrow, updated_at FROM user_balances WHERE user_id = $1 FOR UPDATE
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInsufficientFunds
		}
		return nil, fmt.Errorf("wallet repository: lock balance %w", err)
	}
	return &balance, nil
}

// insertTransaction добавляет завершённую запись в журнал операций.
func insertTransaction(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, orderID *uuid.UUID, txType string, amount float64, description string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := tx.GetContext(ctx, &transaction, `
		INSERT INTO transactions (user_id, order_id, type, amount, status, description, completed_at)
		VALUES ($1, $2, $3, $4, 'completed', $5, NOW())
		RETURNING id, user_id, order_id, type, amount, status, description, created_at, completed_at
	`, userID, orderID, txType, amount, description)
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}
