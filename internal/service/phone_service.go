package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/socialblast/backend/internal/fivesim"
	"github.com/socialblast/backend/internal/goroutine"
	"github.com/socialblast/backend/internal/logger"
	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/pkg/apperror"
	"github.com/socialblast/backend/internal/repository"
)

// Наценка платформы на аренду номера у провайдера.
const phoneMarkup = 1.2

// FiveSimClient описывает операции реселлерского API 5sim.
type FiveSimClient interface {
	Prices(ctx context.Context, country, product string) (json.RawMessage, error)
	BuyActivation(ctx context.Context, country, operator, product string) (*fivesim.Activation, error)
	Check(ctx context.Context, id int64) (*fivesim.Activation, error)
	Finish(ctx context.Context, id int64) (*fivesim.Activation, error)
	Cancel(ctx context.Context, id int64) (*fivesim.Activation, error)
	ListActivations(ctx context.Context) ([]fivesim.Activation, error)
	GetProfile(ctx context.Context) (*fivesim.Profile, error)
}

// phoneDetails хранится в поле details заказа на номер.
type phoneDetails struct {
	ActivationID int64  `json:"activation_id"`
	Phone        string `json:"phone"`
	Country      string `json:"country"`
	Operator     string `json:"operator"`
	Product      string `json:"product"`
}

// PhoneNumber — арендованный номер с заказом платформы.
type PhoneNumber struct {
	Order      *models.Order       `json:"order"`
	Activation *fivesim.Activation `json:"activation"`
}

// PhoneService — аренда временных номеров через 5sim с оплатой из кошелька.
type PhoneService struct {
	client        FiveSimClient
	purchases     PurchaseRepository
	orders        OrderFinalizer
	wallet        Refunder
	notifications *NotificationService
}

// NewPhoneService создаёт сервис временных номеров.
func NewPhoneService(
	client FiveSimClient,
	purchases PurchaseRepository,
	orders OrderFinalizer,
	wallet Refunder,
	notifications *NotificationService,
) *PhoneService {
	return &PhoneService{
		client:        client,
		purchases:     purchases,
		orders:        orders,
		wallet:        wallet,
		notifications: notifications,
	}
}

// Prices возвращает прайс провайдера как есть.
func (s *PhoneService) Prices(ctx context.Context, country, product string) (json.RawMessage, error) {
	return s.client.Prices(ctx, country, product)
}

// Activations возвращает историю активаций на аккаунте провайдера.
func (s *PhoneService) Activations(ctx context.Context) ([]fivesim.Activation, error) {
	activations, err := s.client.ListActivations(ctx)
	if err != nil {
		return nil, fmt.Errorf("phone service: история активаций: %w", err)
	}
	return activations, nil
}

// ProviderProfile возвращает баланс реселлерского аккаунта у провайдера.
func (s *PhoneService) ProviderProfile(ctx context.Context) (*fivesim.Profile, error) {
	profile, err := s.client.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("phone service: профиль провайдера: %w", err)
	}
	return profile, nil
}

// Rent арендует номер: покупка у провайдера, затем списание с кошелька
// с наценкой платформы. Если списание не прошло, активация отменяется
// у провайдера, чтобы не платить за неиспользованный номер.
func (s *PhoneService) Rent(ctx context.Context, userID uuid.UUID, country, operator, product string) (*PhoneNumber, error) {
	if country == "" || product == "" {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "страна и сервис обязательны")
	}

	activation, err := s.client.BuyActivation(ctx, country, operator, product)
	if err != nil {
		if errors.Is(err, fivesim.ErrNoFreePhones) {
			return nil, apperror.New(apperror.ErrCodeConflict, "нет свободных номеров для выбранного сервиса")
		}
		return nil, fmt.Errorf("phone service: покупка активации: %w", err)
	}

	price := math.Round(activation.Price*phoneMarkup*100) / 100

	order, err := s.purchases.Purchase(ctx, repository.PurchaseParams{
		UserID: userID,
		Kind:   models.OrderKindPhoneNumber,
		Amount: price,
		Status: models.OrderStatusPending,
		Details: phoneDetails{
			ActivationID: activation.ID,
			Phone:        activation.Phone,
			Country:      country,
			Operator:     activation.Operator,
			Product:      product,
		},
		Description: fmt.Sprintf("Аренда номера %s (%s)", activation.Phone, product),
	})
	if err != nil {
		// Возвращаем номер провайдеру, деньги пользователя не тронуты
		s.cancelActivation(activation.ID)
		return nil, translatePurchaseError(err)
	}

	return &PhoneNumber{Order: order, Activation: activation}, nil
}

// Check возвращает состояние активации и полученные SMS.
func (s *PhoneService) Check(ctx context.Context, userID, orderID uuid.UUID) (*PhoneNumber, error) {
	order, details, err := s.phoneOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	activation, err := s.client.Check(ctx, details.ActivationID)
	if err != nil {
		return nil, fmt.Errorf("phone service: проверка активации: %w", err)
	}

	return &PhoneNumber{Order: order, Activation: activation}, nil
}

// Finish подтверждает успешное использование номера, заказ завершается.
func (s *PhoneService) Finish(ctx context.Context, userID, orderID uuid.UUID) (*PhoneNumber, error) {
	order, details, err := s.phoneOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, apperror.New(apperror.ErrCodeConflict, "заказ уже завершён")
	}

	activation, err := s.client.Finish(ctx, details.ActivationID)
	if err != nil {
		return nil, fmt.Errorf("phone service: завершение активации: %w", err)
	}

	finalized, err := s.orders.Finalize(ctx, order.ID, models.OrderStatusCompleted)
	if err != nil {
		return nil, translatePurchaseError(err)
	}

	return &PhoneNumber{Order: finalized, Activation: activation}, nil
}

// Cancel отменяет аренду. При успешной отмене у провайдера средства
// возвращаются на баланс пользователя.
func (s *PhoneService) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*PhoneNumber, error) {
	order, details, err := s.phoneOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusPending {
		return nil, apperror.New(apperror.ErrCodeConflict, "заказ уже завершён")
	}

	activation, err := s.client.Cancel(ctx, details.ActivationID)
	if err != nil {
		return nil, fmt.Errorf("phone service: отмена активации: %w", err)
	}

	finalized, err := s.orders.Finalize(ctx, order.ID, models.OrderStatusFailed)
	if err != nil {
		return nil, translatePurchaseError(err)
	}

	if _, err := s.wallet.Deposit(ctx, userID, order.Amount, "Возврат за отменённый номер"); err != nil {
		return nil, err
	}

	return &PhoneNumber{Order: finalized, Activation: activation}, nil
}

// phoneOrder загружает заказ на номер и его детали.
func (s *PhoneService) phoneOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, *phoneDetails, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, translatePurchaseError(err)
	}
	if order.UserID != userID || order.Kind != models.OrderKindPhoneNumber {
		return nil, nil, apperror.ErrOrderNotFound
	}

	var details phoneDetails
	if err := json.Unmarshal(order.Details, &details); err != nil {
		return nil, nil, fmt.Errorf("phone service: детали заказа повреждены: %w", err)
	}
	return order, &details, nil
}

// cancelActivation отменяет активацию у провайдера в фоне.
func (s *PhoneService) cancelActivation(id int64) {
	goroutine.SafeGo(func() {
		if _, err := s.client.Cancel(context.Background(), id); err != nil {
			logger.WithComponent("phone").WithError(err).WithField("activation_id", id).
				Error("не удалось отменить активацию у провайдера")
		}
	})
}
