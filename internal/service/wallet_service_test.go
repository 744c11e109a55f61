package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/repository"
)

type mockWalletRepo struct {
	mock.Mock
}

func (m *mockWalletRepo) GetBalance(ctx context.Context, userID uuid.UUID) (*models.UserBalance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserBalance), args.Error(1)
}

func (m *mockWalletRepo) Deposit(ctx context.Context, userID uuid.UUID, amount float64, description string) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockWalletRepo) Withdraw(ctx context.Context, userID uuid.UUID, amount float64, description string) (*models.Transaction, error) {
	args := m.Called(ctx, userID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *mockWalletRepo) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func TestWalletService_GetBalance(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := NewWalletService(repo)
	ctx := context.Background()
	userID := uuid.New()

	expected := &models.UserBalance{UserID: userID, Available: 150, Escrow: 25}
	repo.On("GetBalance", ctx, userID).Return(expected, nil)

	balance, err := svc.GetBalance(ctx, userID)
	assert.NoError(t, err)
	assert.Equal(t, expected, balance)
	repo.AssertExpectations(t)
}

func TestWalletService_Deposit_Success(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := NewWalletService(repo)
	ctx := context.Background()
	userID := uuid.New()

	expected := &models.Transaction{ID: uuid.New(), Amount: 100, Type: models.TransactionTypeDeposit}
	repo.On("Deposit", ctx, userID, float64(100), "Пополнение баланса").Return(expected, nil)

	tx, err := svc.Deposit(ctx, userID, 100)
	assert.NoError(t, err)
	assert.Equal(t, expected, tx)
}

func TestWalletService_Deposit_InvalidAmount(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := NewWalletService(repo)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Deposit(ctx, userID, 0)
	assert.Error(t, err)

	_, err = svc.Deposit(ctx, userID, -50)
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Deposit")
}

func TestWalletService_Withdraw_Success(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := NewWalletService(repo)
	ctx := context.Background()
	userID := uuid.New()

	expected := &models.Transaction{ID: uuid.New(), Amount: 40, Type: models.TransactionTypeWithdrawal}
	repo.On("Withdraw", ctx, userID, float64(40), "Вывод средств").Return(expected, nil)

	tx, err := svc.Withdraw(ctx, userID, 40)
	assert.NoError(t, err)
	assert.Equal(t, expected, tx)
}

func TestWalletService_Withdraw_InsufficientFunds(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := NewWalletService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("Withdraw", ctx, userID, float64(500), "Вывод средств").Return(nil, repository.ErrInsufficientFunds)

	_, err := svc.Withdraw(ctx, userID, 500)
	assert.Error(t, err)
	// Сентинел не теряется при оборачивании, иначе клиент получит 400 вместо 402
	assert.ErrorIs(t, err, repository.ErrInsufficientFunds)
}

func TestWalletService_ListTransactions_DefaultLimit(t *testing.T) {
	repo := new(mockWalletRepo)
	svc := NewWalletService(repo)
	ctx := context.Background()
	userID := uuid.New()

	repo.On("ListTransactions", ctx, userID, 20, 0).Return([]models.Transaction{}, nil)

	_, err := svc.ListTransactions(ctx, userID, 0, 0)
	assert.NoError(t, err)

	repo.On("ListTransactions", ctx, userID, 20, 10).Return([]models.Transaction{}, nil)

	_, err = svc.ListTransactions(ctx, userID, 500, 10)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
