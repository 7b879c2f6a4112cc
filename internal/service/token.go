package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"time"
)

// newBasketToken mints an unguessable opaque basket token. The token is the
// only credential an anonymous client holds for its basket.
func newBasketToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate basket token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// newNumericCode generates a random numeric code of the given length.
func newNumericCode(length int) (string, error) {
	const digits = "0123456789"
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		out[i] = digits[n.Int64()]
	}
	return string(out), nil
}

// newOrderNumber generates a human-readable order number. Uniqueness is
// enforced by the database; callers retry with a fresh number on collision.
func newOrderNumber(now time.Time) (string, error) {
	suffix, err := newNumericCode(6)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CAL-%s-%s", now.Format("20060102"), suffix), nil
}
