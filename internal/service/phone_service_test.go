package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/socialblast/backend/internal/fivesim"
	"github.com/socialblast/backend/internal/models"
	"github.com/socialblast/backend/internal/pkg/apperror"
	"github.com/socialblast/backend/internal/repository"
)

type mockFiveSim struct {
	mock.Mock
}

func (m *mockFiveSim) Prices(ctx context.Context, country, product string) (json.RawMessage, error) {
	args := m.Called(ctx, country, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *mockFiveSim) BuyActivation(ctx context.Context, country, operator, product string) (*fivesim.Activation, error) {
	args := m.Called(ctx, country, operator, product)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fivesim.Activation), args.Error(1)
}

func (m *mockFiveSim) Check(ctx context.Context, id int64) (*fivesim.Activation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fivesim.Activation), args.Error(1)
}

func (m *mockFiveSim) Finish(ctx context.Context, id int64) (*fivesim.Activation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fivesim.Activation), args.Error(1)
}

func (m *mockFiveSim) Cancel(ctx context.Context, id int64) (*fivesim.Activation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fivesim.Activation), args.Error(1)
}

func (m *mockFiveSim) ListActivations(ctx context.Context) ([]fivesim.Activation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fivesim.Activation), args.Error(1)
}

func (m *mockFiveSim) GetProfile(ctx context.Context) (*fivesim.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fivesim.Profile), args.Error(1)
}

func phoneOrderDetails(t *testing.T, activationID int64) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(phoneDetails{
		ActivationID: activationID,
		Phone:        "+79000381454",
		Country:      "russia",
		Product:      "telegram",
	})
	assert.NoError(t, err)
	return raw
}

func TestPhoneService_Rent_AppliesMarkup(t *testing.T) {
	client := new(mockFiveSim)
	purchases := new(mockPurchaseRepo)
	svc := NewPhoneService(client, purchases, new(mockOrderFinalizer), new(mockRefunder), nil)
	ctx := context.Background()
	userID := uuid.New()

	activation := &fivesim.Activation{ID: 635486001, Phone: "+79000381454", Price: 15.5, Status: "PENDING"}
	client.On("BuyActivation", ctx, "russia", "any", "telegram").Return(activation, nil)

	// 15.50 у провайдера * 1.2 = 18.60 для пользователя
	purchases.On("Purchase", ctx, mock.MatchedBy(func(p repository.PurchaseParams) bool {
		return p.UserID == userID &&
			p.Kind == models.OrderKindPhoneNumber &&
			p.Amount == 18.60 &&
			p.Status == models.OrderStatusPending
	})).Return(&models.Order{ID: uuid.New(), Amount: 18.60, Status: models.OrderStatusPending}, nil)

	number, err := svc.Rent(ctx, userID, "russia", "any", "telegram")
	assert.NoError(t, err)
	assert.Equal(t, 18.60, number.Order.Amount)
	assert.Equal(t, activation, number.Activation)
	purchases.AssertExpectations(t)
}

func TestPhoneService_Rent_NoFreePhones(t *testing.T) {
	client := new(mockFiveSim)
	purchases := new(mockPurchaseRepo)
	svc := NewPhoneService(client, purchases, new(mockOrderFinalizer), new(mockRefunder), nil)
	ctx := context.Background()

	client.On("BuyActivation", ctx, "russia", "any", "telegram").Return(nil, fivesim.ErrNoFreePhones)

	_, err := svc.Rent(ctx, uuid.New(), "russia", "any", "telegram")
	assert.True(t, apperror.IsConflict(err))
	purchases.AssertNotCalled(t, "Purchase")
}

func TestPhoneService_Rent_InsufficientFundsCancelsActivation(t *testing.T) {
	client := new(mockFiveSim)
	purchases := new(mockPurchaseRepo)
	svc := NewPhoneService(client, purchases, new(mockOrderFinalizer), new(mockRefunder), nil)
	ctx := context.Background()

	activation := &fivesim.Activation{ID: 777, Price: 10}
	client.On("BuyActivation", ctx, "russia", "any", "telegram").Return(activation, nil)
	purchases.On("Purchase", ctx, mock.Anything).Return(nil, repository.ErrInsufficientFunds)
	client.On("Cancel", mock.Anything, int64(777)).Return(activation, nil).Maybe()

	_, err := svc.Rent(ctx, uuid.New(), "russia", "any", "telegram")
	assert.Error(t, err)

	var appErr *apperror.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.ErrCodePaymentNeeded, appErr.Code)

	// Отмена активации идёт в фоне
	time.Sleep(50 * time.Millisecond)
}

func TestPhoneService_Activations(t *testing.T) {
	client := new(mockFiveSim)
	svc := NewPhoneService(client, new(mockPurchaseRepo), new(mockOrderFinalizer), new(mockRefunder), nil)
	ctx := context.Background()

	expected := []fivesim.Activation{
		{ID: 635486001, Phone: "+79000381454", Status: "FINISHED"},
		{ID: 635486002, Phone: "+79000381455", Status: "CANCELED"},
	}
	client.On("ListActivations", ctx).Return(expected, nil)

	activations, err := svc.Activations(ctx)
	assert.NoError(t, err)
	assert.Equal(t, expected, activations)
}

func TestPhoneService_ProviderProfile(t *testing.T) {
	client := new(mockFiveSim)
	svc := NewPhoneService(client, new(mockPurchaseRepo), new(mockOrderFinalizer), new(mockRefunder), nil)
	ctx := context.Background()

	client.On("GetProfile", ctx).Return(&fivesim.Profile{ID: 1, Email: "reseller@example.com", Balance: 312.44}, nil)

	profile, err := svc.ProviderProfile(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 312.44, profile.Balance)
}

func TestPhoneService_Check_WrongOwner(t *testing.T) {
	client := new(mockFiveSim)
	orders := new(mockOrderFinalizer)
	svc := NewPhoneService(client, new(mockPurchaseRepo), orders, new(mockRefunder), nil)
	ctx := context.Background()

	orderID := uuid.New()
	orders.On("GetByID", ctx, orderID).Return(&models.Order{
		ID:      orderID,
		UserID:  uuid.New(),
		Kind:    models.OrderKindPhoneNumber,
		Details: phoneOrderDetails(t, 1),
	}, nil)

	_, err := svc.Check(ctx, uuid.New(), orderID)
	assert.True(t, apperror.IsNotFound(err))
	client.AssertNotCalled(t, "Check")
}

func TestPhoneService_Finish_Success(t *testing.T) {
	client := new(mockFiveSim)
	orders := new(mockOrderFinalizer)
	svc := NewPhoneService(client, new(mockPurchaseRepo), orders, new(mockRefunder), nil)
	ctx := context.Background()

	userID := uuid.New()
	orderID := uuid.New()

	orders.On("GetByID", ctx, orderID).Return(&models.Order{
		ID:      orderID,
		UserID:  userID,
		Kind:    models.OrderKindPhoneNumber,
		Status:  models.OrderStatusPending,
		Details: phoneOrderDetails(t, 635486001),
	}, nil)
	client.On("Finish", ctx, int64(635486001)).Return(&fivesim.Activation{ID: 635486001, Status: "FINISHED"}, nil)
	orders.On("Finalize", ctx, orderID, models.OrderStatusCompleted).
		Return(&models.Order{ID: orderID, Status: models.OrderStatusCompleted}, nil)

	number, err := svc.Finish(ctx, userID, orderID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, number.Order.Status)
}

func TestPhoneService_Finish_AlreadyFinalized(t *testing.T) {
	client := new(mockFiveSim)
	orders := new(mockOrderFinalizer)
	svc := NewPhoneService(client, new(mockPurchaseRepo), orders, new(mockRefunder), nil)
	ctx := context.Background()

	userID := uuid.New()
	orderID := uuid.New()
	orders.On("GetByID", ctx, orderID).Return(&models.Order{
		ID:      orderID,
		UserID:  userID,
		Kind:    models.OrderKindPhoneNumber,
		Status:  models.OrderStatusCompleted,
		Details: phoneOrderDetails(t, 1),
	}, nil)

	_, err := svc.Finish(ctx, userID, orderID)
	assert.True(t, apperror.IsConflict(err))
	client.AssertNotCalled(t, "Finish")
}

func TestPhoneService_Cancel_Refunds(t *testing.T) {
	client := new(mockFiveSim)
	orders := new(mockOrderFinalizer)
	wallet := new(mockRefunder)
	svc := NewPhoneService(client, new(mockPurchaseRepo), orders, wallet, nil)
	ctx := context.Background()

	userID := uuid.New()
	orderID := uuid.New()

	orders.On("GetByID", ctx, orderID).Return(&models.Order{
		ID:      orderID,
		UserID:  userID,
		Kind:    models.OrderKindPhoneNumber,
		Status:  models.OrderStatusPending,
		Amount:  18.60,
		Details: phoneOrderDetails(t, 635486001),
	}, nil)
	client.On("Cancel", ctx, int64(635486001)).Return(&fivesim.Activation{ID: 635486001, Status: "CANCELED"}, nil)
	orders.On("Finalize", ctx, orderID, models.OrderStatusFailed).
		Return(&models.Order{ID: orderID, Status: models.OrderStatusFailed}, nil)
	wallet.On("Deposit", ctx, userID, 18.60, "Возврат за отменённый номер").
		Return(&models.Transaction{ID: uuid.New(), Amount: 18.60}, nil)

	number, err := svc.Cancel(ctx, userID, orderID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusFailed, number.Order.Status)
	wallet.AssertExpectations(t)
}
