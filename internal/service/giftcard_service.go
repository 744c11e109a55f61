package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/pkg/apperror"
	"github.com/socialblast/backend/internal/repository"
	"github.com/socialblast/backend/internal/validation"
)

// GiftCardRepository описывает зависимости от слоя хранилища.
type GiftCardRepository interface {
	List(ctx context.Context, filter models.GiftCardFilter) ([]models.GiftCard, error)
	Create(ctx context.Context, card *models.GiftCard) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GiftCard, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.GiftCard, error)
	RevealCode(ctx context.Context, cardID, buyerID uuid.UUID) (string, error)
}

// GiftCardService — каталог подарочных карт и публикация лотов.
type GiftCardService struct {
	repo GiftCardRepository
}

// CreateListingInput — данные нового лота.
type CreateListingInput struct {
	SellerID   uuid.UUID
	SellerName string
	CardType   string
	FaceValue  float64
	Price      float64
	Currency   string
	Code       string
}

// NewGiftCardService создаёт сервис карт.
func NewGiftCardService(repo GiftCardRepository) *GiftCardService {
	return &GiftCardService{repo: repo}
}

// List возвращает витрину лотов.
func (s *GiftCardService) List(ctx context.Context, filter models.GiftCardFilter) ([]models.GiftCard, error) {
	// Наружу показываем только активные статусы
	if filter.Status != "" &&
		filter.Status != models.GiftCardStatusAvailable &&
		filter.Status != models.GiftCardStatusSold {
		filter.Status = models.GiftCardStatusAvailable
	}
	return s.repo.List(ctx, filter)
}

// CreateListing публикует новый лот.
func (s *GiftCardService) CreateListing(ctx context.Context, in CreateListingInput) (*models.GiftCard, error) {
	if err := validation.ValidateLength("тип карты", in.CardType, 2, validation.MaxCardTypeLength); err != nil {
		return nil, fmt.Errorf("giftcard service: %w", err)
	}
	if err := validation.ValidateLength("код карты", in.Code, 4, validation.MaxCodeLength); err != nil {
		return nil, fmt.Errorf("giftcard service: %w", err)
	}
	if err := validation.ValidateAmount(in.Price); err != nil {
		return nil, fmt.Errorf("giftcard service: %w", err)
	}
	if in.FaceValue <= 0 {
		return nil, fmt.Errorf("giftcard service: номинал должен быть положительным")
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = "USD"
	}

	card := &models.GiftCard{
		SellerID:   in.SellerID,
		SellerName: in.SellerName,
		CardType:   strings.TrimSpace(in.CardType),
		FaceValue:  in.FaceValue,
		Price:      in.Price,
		Currency:   currency,
		Code:       in.Code,
	}

	if err := s.repo.Create(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// Get возвращает лот без секретного кода.
func (s *GiftCardService) Get(ctx context.Context, id uuid.UUID) (*models.GiftCard, error) {
	card, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			return nil, apperror.ErrCardNotFound
		}
		return nil, err
	}
	card.Code = ""
	return card, nil
}

// MyListings возвращает лоты продавца.
func (s *GiftCardService) MyListings(ctx context.Context, sellerID uuid.UUID) ([]models.GiftCard, error) {
	return s.repo.ListBySeller(ctx, sellerID)
}

// RevealCode выдаёт код покупателю завершённой сделки.
func (s *GiftCardService) RevealCode(ctx context.Context, cardID, buyerID uuid.UUID) (string, error) {
	code, err := s.repo.RevealCode(ctx, cardID, buyerID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCardNotFound):
			return "", apperror.ErrCardNotFound
		case errors.Is(err, repository.ErrCodeNotRevealed):
			return "", apperror.New(apperror.ErrCodeForbidden, "код доступен покупателю после завершения сделки")
		}
		return "", err
	}
	return code, nil
}
