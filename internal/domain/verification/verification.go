package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Entry is the short-lived state of one email verification.
type Entry struct {
	Code     string `json:"code"`
	Verified bool   `json:"verified"`
}

type Store interface {
	Save(ctx context.Context, email string, e Entry, ttl time.Duration) error
	// Get returns NotFound when no code was sent or it expired.
	Get(ctx context.Context, email string) (*Entry, error)
	// MarkVerified keeps the remaining expiry of the entry.
	MarkVerified(ctx context.Context, email string) error
	Delete(ctx context.Context, email string) error
}

// NewCode returns a random six digit code.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
