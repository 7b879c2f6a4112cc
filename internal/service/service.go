package service

import (
	"context"

	"calikart/internal/model"

	"github.com/google/uuid"
)

// BasketService defines operations for cart and quote-request baskets.
type BasketService interface {
	// CreateBasket creates an empty basket of the given kind and returns it
	// with its freshly minted token.
	CreateBasket(ctx context.Context, kind model.BasketKind) (*model.Basket, error)

	// GetBasket retrieves a basket by its token.
	GetBasket(ctx context.Context, token string) (*model.Basket, error)

	// AddItem snapshots the product from the catalogue and adds it to the
	// basket, merging with an existing line for the same product.
	AddItem(ctx context.Context, token, productID string, quantity int) (*model.Basket, error)

	// UpdateItemQuantity sets a line's quantity. Quantities below 1 are
	// rejected; removal is the explicit RemoveItem operation.
	UpdateItemQuantity(ctx context.Context, token string, itemID uuid.UUID, quantity int) (*model.Basket, error)

	// RemoveItem deletes a line. Removing an absent line is not an error.
	RemoveItem(ctx context.Context, token string, itemID uuid.UUID) (*model.Basket, error)

	// SubmitQuote captures contact details and finalises a draft quote.
	SubmitQuote(ctx context.Context, token string, contact model.QuoteContact) (*model.Basket, error)
}

// AuthService defines passwordless authentication operations.
type AuthService interface {
	// RequestCode invalidates any prior code for the email, issues a fresh
	// one and hands it to the message channel.
	RequestCode(ctx context.Context, email string) error

	// VerifyCode redeems a code. On success it finds or creates the user,
	// claims the supplied basket tokens into the identity in the same
	// transaction, and returns a session token plus the user record.
	VerifyCode(ctx context.Context, email, code string, basketTokens []string) (string, *model.User, error)

	// GetUser retrieves a user by id.
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// OrderService defines order creation, fulfillment tracking and the
// notification ledger.
type OrderService interface {
	// CreateOrder converts a cart into an immutable order, emptying the
	// cart in the same transaction.
	CreateOrder(ctx context.Context, userID uuid.UUID, req *model.CreateOrderRequest) (*model.Order, error)

	// GetOrder retrieves an order with its items.
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// ListOrdersForUser retrieves a user's orders, newest first.
	ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// ListOrders retrieves all orders, optionally filtered by status.
	ListOrders(ctx context.Context, status *model.OrderStatus) ([]model.Order, error)

	// Transition applies a status change, recording it in the ledger.
	// This is the only mutation path for an order's status.
	Transition(ctx context.Context, orderID uuid.UUID, newStatus model.OrderStatus) (*model.Order, error)

	// Notify records a free-form admin message in the ledger and attempts
	// best-effort delivery to the customer.
	Notify(ctx context.Context, orderID uuid.UUID, message string) (*model.NotifyResponse, error)

	// ListNotifications returns an order's ledger in chronological order.
	ListNotifications(ctx context.Context, orderID uuid.UUID) ([]model.NotificationEvent, error)
}

// ProductService defines catalogue reads. The basket layer consumes it to
// snapshot product data at add time.
type ProductService interface {
	// GetAll retrieves products with pagination.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}
