package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/pkg/apperror"
	"github.com/socialblast/backend/internal/repository"
)

// EscrowRepository описывает операции координатора сделок.
type EscrowRepository interface {
	Reserve(ctx context.Context, cardID, buyerID uuid.UUID) (*models.Order, error)
	Settle(ctx context.Context, orderID, sellerID uuid.UUID) (*models.Order, error)
	Dispute(ctx context.Context, orderID, callerID uuid.UUID) (*models.Order, error)
	Resolve(ctx context.Context, orderID uuid.UUID, outcome string) (*models.Order, error)
}

// EscrowCardReader читает лоты для уведомлений участников сделки.
type EscrowCardReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.GiftCard, error)
}

// EscrowService — сценарии покупки подарочных карт через защищённую сделку.
// Денежная механика целиком в репозитории, сервис отвечает за перевод
// ошибок хранилища в ошибки API и за уведомления участников.
type EscrowService struct {
	repo          EscrowRepository
	cards         EscrowCardReader
	notifications *NotificationService
}

// NewEscrowService создаёт сервис сделок.
func NewEscrowService(repo EscrowRepository, cards EscrowCardReader, notifications *NotificationService) *EscrowService {
	return &EscrowService{
		repo:          repo,
		cards:         cards,
		notifications: notifications,
	}
}

// BuyCard резервирует лот за покупателем с переводом средств в escrow.
func (s *EscrowService) BuyCard(ctx context.Context, cardID, buyerID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.Reserve(ctx, cardID, buyerID)
	if err != nil {
		return nil, translateEscrowError(err)
	}

	if s.notifications != nil {
		if card, cardErr := s.cards.GetByID(ctx, cardID); cardErr == nil {
			s.notifications.Notify(card.SellerID, EventCardReserved, map[string]interface{}{
				"order_id":  order.ID,
				"card_id":   cardID,
				"card_type": card.CardType,
				"amount":    order.Amount,
			})
		}
	}

	return order, nil
}

// ConfirmSale подтверждает передачу карты: средства уходят продавцу.
func (s *EscrowService) ConfirmSale(ctx context.Context, orderID, sellerID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.Settle(ctx, orderID, sellerID)
	if err != nil {
		return nil, translateEscrowError(err)
	}

	if s.notifications != nil {
		s.notifications.Notify(order.UserID, EventCardSold, map[string]interface{}{
			"order_id": order.ID,
			"amount":   order.Amount,
		})
	}

	return order, nil
}

// OpenDispute открывает спор по сделке, средства замораживаются в escrow.
func (s *EscrowService) OpenDispute(ctx context.Context, orderID, callerID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.Dispute(ctx, orderID, callerID)
	if err != nil {
		return nil, translateEscrowError(err)
	}

	if s.notifications != nil && order.ItemID != nil {
		if card, cardErr := s.cards.GetByID(ctx, *order.ItemID); cardErr == nil {
			// Уведомляем вторую сторону сделки
			recipient := card.SellerID
			if callerID == card.SellerID {
				recipient = order.UserID
			}
			s.notifications.Notify(recipient, EventCardDisputed, map[string]interface{}{
				"order_id": order.ID,
				"card_id":  card.ID,
			})
		}
	}

	return order, nil
}

// ResolveDispute закрывает спор решением администратора.
func (s *EscrowService) ResolveDispute(ctx context.Context, orderID uuid.UUID, outcome string) (*models.Order, error) {
	order, err := s.repo.Resolve(ctx, orderID, outcome)
	if err != nil {
		return nil, translateEscrowError(err)
	}

	if s.notifications != nil {
		payload := map[string]interface{}{
			"order_id": order.ID,
			"outcome":  outcome,
		}
		s.notifications.Notify(order.UserID, EventDisputeResolved, payload)
		if order.ItemID != nil {
			if card, cardErr := s.cards.GetByID(ctx, *order.ItemID); cardErr == nil {
				s.notifications.Notify(card.SellerID, EventDisputeResolved, payload)
			}
		}
	}

	return order, nil
}

// translateEscrowError переводит ошибки хранилища в ошибки API.
func translateEscrowError(err error) error {
	switch {
	case errors.Is(err, repository.ErrCardNotFound):
		return apperror.ErrCardNotFound
	case errors.Is(err, repository.ErrOrderNotFound):
		return apperror.ErrOrderNotFound
	case errors.Is(err, repository.ErrInsufficientFunds):
		return apperror.New(apperror.ErrCodePaymentNeeded, "недостаточно средств на балансе")
	case errors.Is(err, repository.ErrItemNotAvailable):
		return apperror.New(apperror.ErrCodeConflict, "карта уже продана или зарезервирована")
	case errors.Is(err, repository.ErrOwnListing):
		return apperror.New(apperror.ErrCodeBadRequest, "нельзя купить собственную карту")
	case errors.Is(err, repository.ErrAlreadyFinalized):
		return apperror.New(apperror.ErrCodeConflict, "заказ уже завершён")
	case errors.Is(err, repository.ErrInvalidTransition):
		return apperror.New(apperror.ErrCodeConflict, "недопустимый переход статуса сделки")
	case errors.Is(err, repository.ErrEscrowUnderflow):
		return apperror.Wrap(err, apperror.ErrCodeInternal, "нарушена целостность escrow")
	default:
		return err
	}
}
