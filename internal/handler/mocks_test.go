package handler

import (
	"context"

	"calikart/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockBasketService is a mock implementation of service.BasketService.
type MockBasketService struct {
	mock.Mock
}

func (m *MockBasketService) CreateBasket(ctx context.Context, kind model.BasketKind) (*model.Basket, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Basket), args.Error(1)
}

func (m *MockBasketService) GetBasket(ctx context.Context, token string) (*model.Basket, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Basket), args.Error(1)
}

func (m *MockBasketService) AddItem(ctx context.Context, token, productID string, quantity int) (*model.Basket, error) {
	args := m.Called(ctx, token, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Basket), args.Error(1)
}

func (m *MockBasketService) UpdateItemQuantity(ctx context.Context, token string, itemID uuid.UUID, quantity int) (*model.Basket, error) {
	args := m.Called(ctx, token, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Basket), args.Error(1)
}

func (m *MockBasketService) RemoveItem(ctx context.Context, token string, itemID uuid.UUID) (*model.Basket, error) {
	args := m.Called(ctx, token, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Basket), args.Error(1)
}

func (m *MockBasketService) SubmitQuote(ctx context.Context, token string, contact model.QuoteContact) (*model.Basket, error) {
	args := m.Called(ctx, token, contact)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Basket), args.Error(1)
}

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) RequestCode(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) VerifyCode(ctx context.Context, email, code string, basketTokens []string) (string, *model.User, error) {
	args := m.Called(ctx, email, code, basketTokens)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, status *model.OrderStatus) ([]model.Order, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) Transition(ctx context.Context, orderID uuid.UUID, newStatus model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, orderID, newStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Notify(ctx context.Context, orderID uuid.UUID, message string) (*model.NotifyResponse, error) {
	args := m.Called(ctx, orderID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.NotifyResponse), args.Error(1)
}

func (m *MockOrderService) ListNotifications(ctx context.Context, orderID uuid.UUID) ([]model.NotificationEvent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NotificationEvent), args.Error(1)
}

// MockProductService is a mock implementation of service.ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}
