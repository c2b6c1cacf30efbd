package user

import (
	"context"
	"time"
)

type User struct {
	ID          int64     `json:"idx"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	PhoneNumber *string   `json:"phone_number"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

type Credential struct {
	UserID       int64
	LoginID      string
	PasswordHash string
}

// Account is the user as seen right after login.
type Account struct {
	User
	LoginID  string `json:"id"`
	Nickname string `json:"nickname"`
}

type NewAccount struct {
	Name         string
	Email        string
	PhoneNumber  *string
	LoginID      string
	PasswordHash string
	Role         string
}

type Repository interface {
	LoginIDExists(ctx context.Context, loginID string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FindCredentialByLoginID(ctx context.Context, loginID string) (*Credential, error)
	FindAccountByID(ctx context.Context, userID int64) (*Account, error)
	// CreateAccount inserts the user, its profile and its credential atomically.
	CreateAccount(ctx context.Context, a NewAccount) (int64, error)
}
