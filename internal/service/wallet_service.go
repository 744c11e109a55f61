package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/repository"
	"github.com/socialblast/backend/internal/validation"
)

// WalletRepository описывает зависимости WalletService от слоя хранилища.
type WalletRepository interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error)
	Deposit(ctx context.Context, userID uuid.UUID, amount float64, description string) (*models.Transaction, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount float64, description string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error)
}

// WalletService — операции с кошельком пользователя.
type WalletService struct {
	repo WalletRepository
}

// NewWalletService создаёт сервис кошелька.
func NewWalletService(repo WalletRepository) *WalletService {
	return &WalletService{repo: repo}
}

// GetBalance возвращает баланс пользователя.
func (s *WalletService) GetBalance(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error) {
	return s.repo.GetBalance(ctx, userID)
}

// Deposit пополняет баланс.
func (s *WalletService) Deposit(ctx context.Context, userID uuid.UUID, amount float64) (*models.Transaction, error) {
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("wallet service: %w", err)
	}
	return s.repo.Deposit(ctx, userID, amount, "Пополнение баланса")
}

// Withdraw выводит средства с доступного баланса.
func (s *WalletService) Withdraw(ctx context.Context, userID uuid.UUID, amount float64) (*models.Transaction, error) {
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("wallet service: %w", err)
	}
	transaction, err := s.repo.Withdraw(ctx, userID, amount, "Вывод средств")
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientFunds) {
			// Сентинел сохраняем: middleware переводит его в 402
			return nil, fmt.Errorf("wallet service: %w", err)
		}
		return nil, err
	}
	return transaction, nil
}

// ListTransactions возвращает историю операций.
func (s *WalletService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListTransactions(ctx, userID, limit, offset)
}
