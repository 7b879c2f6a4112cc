package model

import (
	"time"

	"github.com/google/uuid"
)

// User is created implicitly on the first successful code verification for a
// previously-unseen email. Profile fields fill in lazily from checkout forms.
type User struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	Name       string    `json:"name,omitempty" db:"name"`
	Phone      string    `json:"phone,omitempty" db:"phone"`
	Address    string    `json:"address,omitempty" db:"address"`
	City       string    `json:"city,omitempty" db:"city"`
	PostalCode string    `json:"postalCode,omitempty" db:"postal_code"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// OneTimeCode is a short-lived single-use numeric credential bound to an
// email address. At most one unconsumed, unexpired code exists per email.
type OneTimeCode struct {
	ID        uuid.UUID `json:"-" db:"id"`
	Email     string    `json:"email" db:"email"`
	Code      string    `json:"-" db:"code"`
	ExpiresAt time.Time `json:"expiresAt" db:"expires_at"`
	Consumed  bool      `json:"-" db:"consumed"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// Expired reports whether the code is past its expiry at the given instant.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// RequestCodeRequest is the payload for requesting a login code.
type RequestCodeRequest struct {
	Email string `json:"email"`
}

// VerifyCodeRequest is the payload for redeeming a login code. BasketTokens
// lists anonymous baskets the client wants attached to the account.
type VerifyCodeRequest struct {
	Email        string   `json:"email"`
	Code         string   `json:"code"`
	BasketTokens []string `json:"basket_tokens"`
}

// VerifyCodeResponse returns the minted session credential and user record.
type VerifyCodeResponse struct {
	SessionToken string `json:"session_token"`
	User         *User  `json:"user"`
}
