package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/pkg/apperror"
	"github.com/socialblast/backend/internal/repository"
)

type mockEscrowRepo struct {
	mock.Mock
}

func (m *mockEscrowRepo) Reserve(ctx context.Context, cardID, buyerID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, cardID, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockEscrowRepo) Settle(ctx context.Context, orderID, sellerID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, orderID, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockEscrowRepo) Dispute(ctx context.Context, orderID, callerID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, orderID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockEscrowRepo) Resolve(ctx context.Context, orderID uuid.UUID, outcome string) (*models.Order, error) {
	args := m.Called(ctx, orderID, outcome)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type mockCardReader struct {
	mock.Mock
}

func (m *mockCardReader) GetByID(ctx context.Context, id uuid.UUID) (*models.GiftCard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GiftCard), args.Error(1)
}

func TestEscrowService_BuyCard_Success(t *testing.T) {
	repo := new(mockEscrowRepo)
	cards := new(mockCardReader)
	svc := NewEscrowService(repo, cards, nil)
	ctx := context.Background()

	cardID := uuid.New()
	buyerID := uuid.New()

	expected := &models.Order{ID: uuid.New(), UserID: buyerID, Kind: models.OrderKindGiftCard, Amount: 45, Status: models.OrderStatusPending}
	repo.On("Reserve", ctx, cardID, buyerID).Return(expected, nil)

	order, err := svc.BuyCard(ctx, cardID, buyerID)
	assert.NoError(t, err)
	assert.Equal(t, expected, order)
	repo.AssertExpectations(t)
}

func TestEscrowService_BuyCard_InsufficientFunds(t *testing.T) {
	repo := new(mockEscrowRepo)
	cards := new(mockCardReader)
	svc := NewEscrowService(repo, cards, nil)
	ctx := context.Background()

	cardID := uuid.New()
	buyerID := uuid.New()

	repo.On("Reserve", ctx, cardID, buyerID).Return(nil, repository.ErrInsufficientFunds)

	_, err := svc.BuyCard(ctx, cardID, buyerID)
	assert.Error(t, err)

	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.ErrCodePaymentNeeded, appErr.Code)
}

func TestEscrowService_BuyCard_AlreadyReserved(t *testing.T) {
	repo := new(mockEscrowRepo)
	cards := new(mockCardReader)
	svc := NewEscrowService(repo, cards, nil)
	ctx := context.Background()

	repo.On("Reserve", ctx, mock.Anything, mock.Anything).Return(nil, repository.ErrItemNotAvailable)

	_, err := svc.BuyCard(ctx, uuid.New(), uuid.New())
	assert.True(t, apperror.IsConflict(err))
}

func TestEscrowService_BuyCard_OwnListing(t *testing.T) {
	repo := new(mockEscrowRepo)
	cards := new(mockCardReader)
	svc := NewEscrowService(repo, cards, nil)
	ctx := context.Background()

	repo.On("Reserve", ctx, mock.Anything, mock.Anything).Return(nil, repository.ErrOwnListing)

	_, err := svc.BuyCard(ctx, uuid.New(), uuid.New())
	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.ErrCodeBadRequest, appErr.Code)
}

func TestEscrowService_BuyCard_NotFound(t *testing.T) {
	repo := new(mockEscrowRepo)
	cards := new(mockCardReader)
	svc := NewEscrowService(repo, cards, nil)
	ctx := context.Background()

	repo.On("Reserve", ctx, mock.Anything, mock.Anything).Return(nil, repository.ErrCardNotFound)

	_, err := svc.BuyCard(ctx, uuid.New(), uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestEscrowService_ConfirmSale_Success(t *testing.T) {
	repo := new(mockEscrowRepo)
	cards := new(mockCardReader)
	svc := NewEscrowService(repo, cards, nil)
	ctx := context.Background()

	orderID := uuid.New()
	sellerID := uuid.New()

	expected := &models.Order{ID: orderID, Status: models.OrderStatusCompleted}
	repo.On("Settle", ctx, orderID, sellerID).Return(expected, nil)

	order, err := svc.ConfirmSale(ctx, orderID, sellerID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
}

func TestEscrowService_ConfirmSale_AlreadyFinalized(t *testing.T) {
	repo := new(mockEscrowRepo)
	cards := new(mockCardReader)
	svc := NewEscrowService(repo, cards, nil)
	ctx := context.Background()

	repo.On("Settle", ctx, mock.Anything, mock.Anything).Return(nil, repository.ErrAlreadyFinalized)

	_, err := svc.ConfirmSale(ctx, uuid.New(), uuid.New())
	assert.True(t, apperror.IsConflict(err))
	assert.Contains(t, err.Error(), "уже завершён")
}

func TestEscrowService_OpenDispute_InvalidTransition(t *testing.T) {
	repo := new(mockEscrowRepo)
	cards := new(mockCardReader)
	svc := NewEscrowService(repo, cards, nil)
	ctx := context.Background()

	repo.On("Dispute", ctx, mock.Anything, mock.Anything).Return(nil, repository.ErrInvalidTransition)

	_, err := svc.OpenDispute(ctx, uuid.New(), uuid.New())
	assert.True(t, apperror.IsConflict(err))
}

func TestEscrowService_ResolveDispute_Refund(t *testing.T) {
	repo := new(mockEscrowRepo)
	cards := new(mockCardReader)
	svc := NewEscrowService(repo, cards, nil)
	ctx := context.Background()

	orderID := uuid.New()
	expected := &models.Order{ID: orderID, Status: models.OrderStatusFailed}
	repo.On("Resolve", ctx, orderID, models.DisputeOutcomeRefund).Return(expected, nil)

	order, err := svc.ResolveDispute(ctx, orderID, models.DisputeOutcomeRefund)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusFailed, order.Status)
}

func TestEscrowService_ResolveDispute_EscrowUnderflow(t *testing.T) {
	repo := new(mockEscrowRepo)
	cards := new(mockCardReader)
	svc := NewEscrowService(repo, cards, nil)
	ctx := context.Background()

	repo.On("Resolve", ctx, mock.Anything, models.DisputeOutcomeRelease).Return(nil, repository.ErrEscrowUnderflow)

	_, err := svc.ResolveDispute(ctx, uuid.New(), models.DisputeOutcomeRelease)
	assert.Error(t, err)

	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.ErrCodeInternal, appErr.Code)
	assert.True(t, errors.Is(err, repository.ErrEscrowUnderflow))
}
