package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/pkg/apperror"
	"github.com/socialblast/backend/internal/repository"
	"github.com/socialblast/backend/internal/validation"
)

// PurchaseRepository описывает мгновенные покупки из каталога.
type PurchaseRepository interface {
	PurchaseESim(ctx context.Context, esimID, userID uuid.UUID) (*models.Order, error)
	Purchase(ctx context.Context, params repository.PurchaseParams) (*models.Order, error)
}

// CatalogRepository описывает чтение каталога.
type CatalogRepository interface {
	ListESims(ctx context.Context, country string) ([]models.ESim, error)
	GetESim(ctx context.Context, id uuid.UUID) (*models.ESim, error)
	ListSMMServices(ctx context.Context, platform string) ([]models.SMMService, error)
	GetSMMService(ctx context.Context, id uuid.UUID) (*models.SMMService, error)
}

// OrderFinalizer завершает pending заказы.
type OrderFinalizer interface {
	Finalize(ctx context.Context, id uuid.UUID, status string) (*models.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// Refunder возвращает средства за невыполненный заказ.
type Refunder interface {
	Deposit(ctx context.Context, userID uuid.UUID, amount float64, description string) (*models.Transaction, error)
}

// PurchaseService — покупка eSIM планов и SMM услуг с баланса кошелька.
type PurchaseService struct {
	purchases     PurchaseRepository
	catalog       CatalogRepository
	orders        OrderFinalizer
	wallet        Refunder
	notifications *NotificationService
}

// NewPurchaseService создаёт сервис покупок.
func NewPurchaseService(
	purchases PurchaseRepository,
	catalog CatalogRepository,
	orders OrderFinalizer,
	wallet Refunder,
	notifications *NotificationService,
) *PurchaseService {
	return &PurchaseService{
		purchases:     purchases,
		catalog:       catalog,
		orders:        orders,
		wallet:        wallet,
		notifications: notifications,
	}
}

// ListESims возвращает каталог планов eSIM.
func (s *PurchaseService) ListESims(ctx context.Context, country string) ([]models.ESim, error) {
	return s.catalog.ListESims(ctx, country)
}

// ListSMMServices возвращает каталог SMM услуг.
func (s *PurchaseService) ListSMMServices(ctx context.Context, platform string) ([]models.SMMService, error) {
	return s.catalog.ListSMMServices(ctx, platform)
}

// BuyESim покупает план eSIM. Заказ завершается мгновенно.
func (s *PurchaseService) BuyESim(ctx context.Context, esimID, userID uuid.UUID) (*models.Order, error) {
	order, err := s.purchases.PurchaseESim(ctx, esimID, userID)
	if err != nil {
		return nil, translatePurchaseError(err)
	}

	if s.notifications != nil {
		s.notifications.Notify(userID, EventOrderCompleted, map[string]interface{}{
			"order_id": order.ID,
			"kind":     order.Kind,
			"amount":   order.Amount,
		})
	}

	return order, nil
}

// OrderSMM создаёт заказ на продвижение. Заказ остаётся pending до
// выполнения, средства списываются сразу.
func (s *PurchaseService) OrderSMM(ctx context.Context, userID, serviceID uuid.UUID, quantity int, link string) (*models.Order, error) {
	if err := validation.ValidateLink(link); err != nil {
		return nil, fmt.Errorf("purchase service: %w", err)
	}

	svc, err := s.catalog.GetSMMService(ctx, serviceID)
	if err != nil {
		return nil, translatePurchaseError(err)
	}
	if quantity < svc.MinQuantity || quantity > svc.MaxQuantity {
		return nil, fmt.Errorf("purchase service: количество должно быть от %d до %d", svc.MinQuantity, svc.MaxQuantity)
	}

	amount := svc.PricePer1000 * float64(quantity) / 1000
	amount = math.Round(amount*100) / 100
	if err := validation.ValidateAmount(amount); err != nil {
		return nil, fmt.Errorf("purchase service: %w", err)
	}

	order, err := s.purchases.Purchase(ctx, repository.PurchaseParams{
		UserID: userID,
		Kind:   models.OrderKindSMM,
		ItemID: &svc.ID,
		Amount: amount,
		Status: models.OrderStatusPending,
		Details: map[string]interface{}{
			"platform":     svc.Platform,
			"service_type": svc.ServiceType,
			"name":         svc.Name,
			"link":         link,
			"quantity":     quantity,
		},
		Description: fmt.Sprintf("Заказ SMM: %s, %d шт.", svc.Name, quantity),
	})
	if err != nil {
		return nil, translatePurchaseError(err)
	}

	return order, nil
}

// FinalizeSMM завершает SMM заказ (админ). При статусе failed средства
// возвращаются на баланс заказчика.
func (s *PurchaseService) FinalizeSMM(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, error) {
	current, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, translatePurchaseError(err)
	}
	if current.Kind != models.OrderKindSMM {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "заказ не является SMM заказом")
	}

	order, err := s.orders.Finalize(ctx, orderID, status)
	if err != nil {
		return nil, translatePurchaseError(err)
	}

	if status == models.OrderStatusFailed {
		if _, err := s.wallet.Deposit(ctx, order.UserID, order.Amount, "Возврат за невыполненный SMM заказ"); err != nil {
			return nil, err
		}
	}

	if s.notifications != nil {
		event := EventOrderCompleted
		if status == models.OrderStatusFailed {
			event = EventOrderFailed
		}
		s.notifications.Notify(order.UserID, event, map[string]interface{}{
			"order_id": order.ID,
			"kind":     order.Kind,
		})
	}

	return order, nil
}

// translatePurchaseError переводит ошибки хранилища в ошибки API.
func translatePurchaseError(err error) error {
	switch {
	case errors.Is(err, repository.ErrServiceNotFound):
		return apperror.New(apperror.ErrCodeNotFound, "позиция каталога не найдена")
	case errors.Is(err, repository.ErrOrderNotFound):
		return apperror.ErrOrderNotFound
	case errors.Is(err, repository.ErrItemNotAvailable):
		return apperror.New(apperror.ErrCodeConflict, "позиция уже продана")
	case errors.Is(err, repository.ErrInsufficientFunds):
		return apperror.New(apperror.ErrCodePaymentNeeded, "недостаточно средств на балансе")
	case errors.Is(err, repository.ErrAlreadyFinalized):
		return apperror.New(apperror.ErrCodeConflict, "заказ уже завершён")
	default:
		return err
	}
}
