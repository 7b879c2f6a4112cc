package repository

import (
	"context"

	"calikart/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BasketRepository defines the interface for basket data access operations.
// Baskets are indexed by their opaque client-held token.
type BasketRepository interface {
	// Create inserts a new empty basket. A token collision surfaces as a
	// unique-violation error the caller retries with a fresh token.
	Create(ctx context.Context, basket *model.Basket) error

	// GetByToken retrieves a basket and its items by token.
	// Returns (nil, nil) when the token is unknown.
	GetByToken(ctx context.Context, token string) (*model.Basket, error)

	// GetByTokenForUpdate retrieves a basket by token within the provided
	// transaction, locking the basket row until the transaction ends.
	GetByTokenForUpdate(ctx context.Context, tx pgx.Tx, token string) (*model.Basket, error)

	// AddOrIncrementItem inserts an item row, or adds the quantity onto the
	// existing row for the same product, as one atomic statement.
	AddOrIncrementItem(ctx context.Context, item *model.BasketItem) error

	// SetItemQuantity sets the quantity of an item scoped to its basket.
	// Returns the number of rows affected (zero when the item does not
	// belong to the basket).
	SetItemQuantity(ctx context.Context, basketID, itemID uuid.UUID, quantity int) (int64, error)

	// RemoveItem deletes an item scoped to its basket. Deleting an absent
	// item is not an error.
	RemoveItem(ctx context.Context, basketID, itemID uuid.UUID) error

	// Claim sets the basket's owner within the provided transaction, only
	// when the basket is currently unowned. Zero rows affected (already
	// owned, or unknown token) is a silent no-op.
	Claim(ctx context.Context, tx pgx.Tx, token string, userID uuid.UUID) error

	// SubmitQuote captures contact fields and moves a draft quote to
	// submitted. Returns false when the basket is not a draft quote.
	SubmitQuote(ctx context.Context, basketID uuid.UUID, contact model.QuoteContact) (bool, error)

	// DeleteTx removes the basket and all its items within the provided
	// transaction.
	DeleteTx(ctx context.Context, tx pgx.Tx, basketID uuid.UUID) error
}

// UserRepository defines the interface for user data access operations.
type UserRepository interface {
	// FindByEmailTx retrieves a user by email within the provided
	// transaction. Returns (nil, nil) when no user exists.
	FindByEmailTx(ctx context.Context, tx pgx.Tx, email string) (*model.User, error)

	// CreateTx inserts a new user within the provided transaction.
	CreateTx(ctx context.Context, tx pgx.Tx, user *model.User) error

	// GetByID retrieves a user by id. Returns (nil, nil) when absent.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// CodeRepository defines the interface for one-time code operations.
type CodeRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// InvalidateTx marks all unconsumed codes for the email as consumed.
	InvalidateTx(ctx context.Context, tx pgx.Tx, email string) error

	// CreateTx inserts a fresh code within the provided transaction.
	CreateTx(ctx context.Context, tx pgx.Tx, code *model.OneTimeCode) error

	// GetActiveForUpdate retrieves the unconsumed code matching email and
	// code within the provided transaction, locking the row. Returns
	// (nil, nil) when no match exists.
	GetActiveForUpdate(ctx context.Context, tx pgx.Tx, email, code string) (*model.OneTimeCode, error)

	// ConsumeTx marks a code as consumed within the provided transaction.
	ConsumeTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateTx inserts a new order within the provided transaction.
	CreateTx(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateItemsTx inserts the order's item snapshots within the provided
	// transaction.
	CreateItemsTx(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order and its items. Returns (nil, nil, nil)
	// when the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// GetByIDForUpdate retrieves an order within the provided transaction,
	// locking the order row. Items are not loaded.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Order, error)

	// UpdateStatusTx writes the order's status and updated_at within the
	// provided transaction.
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status model.OrderStatus) error

	// ListByUser retrieves a user's orders, newest first. Items are not
	// loaded.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// List retrieves orders, newest first, optionally filtered by status.
	List(ctx context.Context, status *model.OrderStatus) ([]model.Order, error)

	// Exists reports whether an order with the id exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// NotificationRepository defines the interface for the append-only
// notification ledger. There is deliberately no update or delete operation.
type NotificationRepository interface {
	// Append inserts an event.
	Append(ctx context.Context, event *model.NotificationEvent) error

	// AppendTx inserts an event within the provided transaction.
	AppendTx(ctx context.Context, tx pgx.Tx, event *model.NotificationEvent) error

	// ListByOrder retrieves all events for an order in chronological order.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.NotificationEvent, error)
}

// ProductRepository defines the interface for catalogue reads.
type ProductRepository interface {
	// GetAll retrieves products with pagination support.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by its ID. Returns (nil, nil)
	// when absent.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}
