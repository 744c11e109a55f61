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

type mockGiftCardRepo struct {
	mock.Mock
}

func (m *mockGiftCardRepo) List(ctx context.Context, filter models.GiftCardFilter) ([]models.GiftCard, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.GiftCard), args.Error(1)
}

func (m *mockGiftCardRepo) Create(ctx context.Context, card *models.GiftCard) error {
	args := m.Called(ctx, card)
	card.ID = uuid.New()
	return args.Error(0)
}

func (m *mockGiftCardRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.GiftCard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GiftCard), args.Error(1)
}

func (m *mockGiftCardRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.GiftCard, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).([]models.GiftCard), args.Error(1)
}

func (m *mockGiftCardRepo) RevealCode(ctx context.Context, cardID, buyerID uuid.UUID) (string, error) {
	args := m.Called(ctx, cardID, buyerID)
	return args.String(0), args.Error(1)
}

func TestGiftCardService_List_HidesInternalStatuses(t *testing.T) {
	repo := new(mockGiftCardRepo)
	svc := NewGiftCardService(repo)
	ctx := context.Background()

	// Запрос disputed лотов подменяется на available
	repo.On("List", ctx, mock.MatchedBy(func(f models.GiftCardFilter) bool {
		return f.Status == models.GiftCardStatusAvailable
	})).Return([]models.GiftCard{}, nil)

	_, err := svc.List(ctx, models.GiftCardFilter{Status: models.GiftCardStatusDisputed})
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGiftCardService_CreateListing_Success(t *testing.T) {
	repo := new(mockGiftCardRepo)
	svc := NewGiftCardService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.Anything).Return(nil)

	card, err := svc.CreateListing(ctx, CreateListingInput{
		SellerID:  uuid.New(),
		CardType:  "Steam",
		FaceValue: 50,
		Price:     42,
		Code:      "XXXX-YYYY-ZZZZ",
	})
	assert.NoError(t, err)
	assert.Equal(t, "USD", card.Currency)
	assert.Equal(t, "Steam", card.CardType)
	assert.NotEqual(t, uuid.Nil, card.ID)
}

func TestGiftCardService_CreateListing_Validation(t *testing.T) {
	repo := new(mockGiftCardRepo)
	svc := NewGiftCardService(repo)
	ctx := context.Background()

	_, err := svc.CreateListing(ctx, CreateListingInput{CardType: "S", FaceValue: 50, Price: 42, Code: "XXXX"})
	assert.Error(t, err)

	_, err = svc.CreateListing(ctx, CreateListingInput{CardType: "Steam", FaceValue: 50, Price: 0, Code: "XXXX"})
	assert.Error(t, err)

	_, err = svc.CreateListing(ctx, CreateListingInput{CardType: "Steam", FaceValue: -1, Price: 42, Code: "XXXX"})
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Create")
}

func TestGiftCardService_Get_StripsCode(t *testing.T) {
	repo := new(mockGiftCardRepo)
	svc := NewGiftCardService(repo)
	ctx := context.Background()

	cardID := uuid.New()
	repo.On("GetByID", ctx, cardID).Return(&models.GiftCard{ID: cardID, Code: "SECRET"}, nil)

	card, err := svc.Get(ctx, cardID)
	assert.NoError(t, err)
	assert.Empty(t, card.Code)
}

func TestGiftCardService_RevealCode_ForBuyerOnly(t *testing.T) {
	repo := new(mockGiftCardRepo)
	svc := NewGiftCardService(repo)
	ctx := context.Background()

	cardID := uuid.New()
	buyerID := uuid.New()

	repo.On("RevealCode", ctx, cardID, buyerID).Return("XXXX-YYYY", nil)

	code, err := svc.RevealCode(ctx, cardID, buyerID)
	assert.NoError(t, err)
	assert.Equal(t, "XXXX-YYYY", code)
}

func TestGiftCardService_RevealCode_Forbidden(t *testing.T) {
	repo := new(mockGiftCardRepo)
	svc := NewGiftCardService(repo)
	ctx := context.Background()

	repo.On("RevealCode", ctx, mock.Anything, mock.Anything).Return("", repository.ErrCodeNotRevealed)

	_, err := svc.RevealCode(ctx, uuid.New(), uuid.New())
	assert.Error(t, err)

	var appErr *apperror.AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.ErrCodeForbidden, appErr.Code)
}
