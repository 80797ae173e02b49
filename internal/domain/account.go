package domain

import (
	"context"
	"time"
)

// Account is the upstream view of a customer account. It is never persisted
// locally; every lookup goes to the remote API and the response is rendered
// as-is.
type Account struct {
	ID        string       `json:"id"`
	Username  string       `json:"username"`
	Level     string       `json:"level"`
	Status    string       `json:"status"`
	Title     string       `json:"title,omitempty"`
	Owner     AccountOwner `json:"owner"`
	Wallets   []Wallet     `json:"wallets"`
	CreatedAt time.Time    `json:"created_at"`
}

// AccountOwner holds the owning user's contact details.
type AccountOwner struct {
	ID            string    `json:"id"`
	Phone         string    `json:"phone"`
	Language      string    `json:"language,omitempty"`
	Email         string    `json:"email,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// Wallet is one currency balance attached to an account.
type Wallet struct {
	ID                     string  `json:"id"`
	Currency               string  `json:"currency"`
	Balance                float64 `json:"balance"`
	PendingIncomingBalance float64 `json:"pending_incoming_balance"`
}

// AccountService defines account lookup and level management. Both operations
// are thin delegations to the upstream API; not-found is reported as
// ErrNotFound and any transport or upstream failure as ErrUnavailable.
type AccountService interface {
	GetByPhone(ctx context.Context, phone string) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	UpdateLevel(ctx context.Context, id, level string) (*Account, error)
}
