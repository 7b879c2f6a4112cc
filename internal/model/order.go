package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s names a known order status.
func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// allowedTransitions is the directed edge set of the status machine.
// delivered and cancelled are terminal.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// CanTransition reports whether from→to is an allowed status edge.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no edges leave the status.
func (s OrderStatus) Terminal() bool {
	return len(allowedTransitions[s]) == 0
}

// Order is immutable once created, except for order_status and updated_at.
type Order struct {
	ID             uuid.UUID   `json:"id" db:"id"`
	OrderNumber    string      `json:"orderNumber" db:"order_number"`
	UserID         uuid.UUID   `json:"userId" db:"user_id"`
	SourceBasketID *uuid.UUID  `json:"-" db:"source_basket_id"`
	Customer       Customer    `json:"customer"`
	Items          []OrderItem `json:"items"`
	Subtotal       float64     `json:"subtotal" db:"subtotal"`
	Tax            float64     `json:"tax" db:"tax"`
	ShippingCost   float64     `json:"shippingCost" db:"shipping_cost"`
	TotalAmount    float64     `json:"totalAmount" db:"total_amount"`
	Status         OrderStatus `json:"orderStatus" db:"order_status"`
	CreatedAt      time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time   `json:"updatedAt" db:"updated_at"`
}

// Customer holds contact and shipping fields copied from the checkout form.
type Customer struct {
	Name       string `json:"name" db:"customer_name"`
	Email      string `json:"email" db:"customer_email"`
	Phone      string `json:"phone" db:"customer_phone"`
	Address    string `json:"address" db:"shipping_address"`
	City       string `json:"city" db:"shipping_city"`
	PostalCode string `json:"postalCode" db:"shipping_postal_code"`
}

// OrderItem is a frozen snapshot of a cart line at conversion time. Later
// catalogue price changes never alter it.
type OrderItem struct {
	ID          uuid.UUID `json:"-" db:"id"`
	OrderID     uuid.UUID `json:"-" db:"order_id"`
	ProductID   string    `json:"productId" db:"product_id"`
	ProductName string    `json:"productName" db:"product_name"`
	UnitPrice   float64   `json:"unitPrice" db:"unit_price"`
	Quantity    int       `json:"quantity" db:"quantity"`
	LineTotal   float64   `json:"lineTotal" db:"line_total"`
}

// CreateOrderRequest is the payload for converting a cart into an order.
type CreateOrderRequest struct {
	CartToken       string   `json:"cart_token"`
	ShippingDetails Customer `json:"shipping_details"`
}

// UpdateStatusRequest is the payload for an admin status transition.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
