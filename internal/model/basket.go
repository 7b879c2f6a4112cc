package model

import (
	"time"

	"github.com/google/uuid"
)

// BasketKind distinguishes a priced cart from an unpriced quote request.
type BasketKind string

const (
	BasketKindCart  BasketKind = "cart"
	BasketKindQuote BasketKind = "quote"
)

// ValidBasketKind reports whether s names a known basket kind.
func ValidBasketKind(s string) bool {
	return s == string(BasketKindCart) || s == string(BasketKindQuote)
}

// QuoteStatus is the lifecycle of a quote request. Carts carry no status.
type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusSubmitted QuoteStatus = "submitted"
)

// Basket is an anonymous or claimed collection of product lines, identified
// to the client only by its opaque token.
type Basket struct {
	ID          uuid.UUID    `json:"-" db:"id"`
	Token       string       `json:"token" db:"token"`
	Kind        BasketKind   `json:"kind" db:"kind"`
	OwnerUserID *uuid.UUID   `json:"-" db:"owner_user_id"`
	Status      *QuoteStatus `json:"status,omitempty" db:"status"`
	Contact     QuoteContact `json:"contact,omitzero"`
	Items       []BasketItem `json:"items"`
	CreatedAt   time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time    `json:"updatedAt" db:"updated_at"`
}

// BasketItem is one product line. UnitPrice is nil for quote baskets; cart
// items always snapshot the catalogue price at add time.
type BasketItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	BasketID    uuid.UUID `json:"-" db:"basket_id"`
	ProductID   string    `json:"productId" db:"product_id"`
	ProductName string    `json:"productName" db:"product_name"`
	UnitPrice   *float64  `json:"unitPrice,omitempty" db:"unit_price"`
	Quantity    int       `json:"quantity" db:"quantity"`
	CreatedAt   time.Time `json:"-" db:"created_at"`
}

// QuoteContact holds the contact fields captured when a quote is submitted.
type QuoteContact struct {
	Name  string `json:"name,omitempty" db:"contact_name"`
	Email string `json:"email,omitempty" db:"contact_email"`
	Phone string `json:"phone,omitempty" db:"contact_phone"`
	Note  string `json:"note,omitempty" db:"contact_note"`
}

// AddItemRequest is the payload for adding a product to a basket.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateItemRequest is the payload for changing a line's quantity.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

// SubmitQuoteRequest is the payload for finalising a quote request.
type SubmitQuoteRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Note  string `json:"note"`
}
