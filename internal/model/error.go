package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeBasketNotFound    = "BASKET_NOT_FOUND"
	ErrCodeItemNotFound      = "ITEM_NOT_FOUND"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeCartNotFound      = "CART_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeOTPInvalid        = "CODE_INVALID"
	ErrCodeOTPExpired        = "CODE_EXPIRED"
	ErrCodeDeliveryFailed    = "CODE_DELIVERY_FAILED"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeInvalidState      = "INVALID_STATE"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError carries a stable machine-readable code alongside the message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrBasketNotFound    = NewDomainError(ErrCodeBasketNotFound, "Basket not found")
	ErrItemNotFound      = NewDomainError(ErrCodeItemNotFound, "Item not found in basket")
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrCartNotFound      = NewDomainError(ErrCodeCartNotFound, "Cart not found")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be at least 1")
	ErrEmptyCart         = NewDomainError(ErrCodeEmptyCart, "Cart contains no items")
	ErrOTPInvalid        = NewDomainError(ErrCodeOTPInvalid, "Verification code is invalid")
	ErrOTPExpired        = NewDomainError(ErrCodeOTPExpired, "Verification code has expired")
	ErrDeliveryFailed    = NewDomainError(ErrCodeDeliveryFailed, "Could not deliver verification code")
	ErrInvalidTransition = NewDomainError(ErrCodeInvalidTransition, "Order status transition not allowed")
	ErrInvalidState      = NewDomainError(ErrCodeInvalidState, "Operation not allowed in current state")
)
