package service

import (
	"context"

	"calikart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// MockBasketRepository is a mock implementation of BasketRepository.
type MockBasketRepository struct {
	mock.Mock
}

func (m *MockBasketRepository) Create(ctx context.Context, basket *model.Basket) error {
	args := m.Called(ctx, basket)
	return args.Error(0)
}

func (m *MockBasketRepository) GetByToken(ctx context.Context, token string) (*model.Basket, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Basket), args.Error(1)
}

func (m *MockBasketRepository) GetByTokenForUpdate(ctx context.Context, tx pgx.Tx, token string) (*model.Basket, error) {
	args := m.Called(ctx, tx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Basket), args.Error(1)
}

func (m *MockBasketRepository) AddOrIncrementItem(ctx context.Context, item *model.BasketItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockBasketRepository) SetItemQuantity(ctx context.Context, basketID, itemID uuid.UUID, quantity int) (int64, error) {
	args := m.Called(ctx, basketID, itemID, quantity)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBasketRepository) RemoveItem(ctx context.Context, basketID, itemID uuid.UUID) error {
	args := m.Called(ctx, basketID, itemID)
	return args.Error(0)
}

func (m *MockBasketRepository) Claim(ctx context.Context, tx pgx.Tx, token string, userID uuid.UUID) error {
	args := m.Called(ctx, tx, token, userID)
	return args.Error(0)
}

func (m *MockBasketRepository) SubmitQuote(ctx context.Context, basketID uuid.UUID, contact model.QuoteContact) (bool, error) {
	args := m.Called(ctx, basketID, contact)
	return args.Bool(0), args.Error(1)
}

func (m *MockBasketRepository) DeleteTx(ctx context.Context, tx pgx.Tx, basketID uuid.UUID) error {
	args := m.Called(ctx, tx, basketID)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmailTx(ctx context.Context, tx pgx.Tx, email string) (*model.User, error) {
	args := m.Called(ctx, tx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) CreateTx(ctx context.Context, tx pgx.Tx, user *model.User) error {
	args := m.Called(ctx, tx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockCodeRepository is a mock implementation of CodeRepository.
type MockCodeRepository struct {
	mock.Mock
}

func (m *MockCodeRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCodeRepository) InvalidateTx(ctx context.Context, tx pgx.Tx, email string) error {
	args := m.Called(ctx, tx, email)
	return args.Error(0)
}

func (m *MockCodeRepository) CreateTx(ctx context.Context, tx pgx.Tx, code *model.OneTimeCode) error {
	args := m.Called(ctx, tx, code)
	return args.Error(0)
}

func (m *MockCodeRepository) GetActiveForUpdate(ctx context.Context, tx pgx.Tx, email, code string) (*model.OneTimeCode, error) {
	args := m.Called(ctx, tx, email, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OneTimeCode), args.Error(1)
}

func (m *MockCodeRepository) ConsumeTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateTx(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateItemsTx(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var items []model.OrderItem
	if args.Get(1) != nil {
		items = args.Get(1).([]model.OrderItem)
	}
	return args.Get(0).(*model.Order), items, args.Error(2)
}

func (m *MockOrderRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error {
	args := m.Called(ctx, tx, id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, status *model.OrderStatus) ([]model.Order, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockNotificationRepository is a mock implementation of NotificationRepository.
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Append(ctx context.Context, event *model.NotificationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockNotificationRepository) AppendTx(ctx context.Context, tx pgx.Tx, event *model.NotificationEvent) error {
	args := m.Called(ctx, tx, event)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.NotificationEvent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.NotificationEvent), args.Error(1)
}

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

// MockProductService is a mock implementation of ProductService.
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

// MockSender is a mock implementation of mail.Sender.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }
