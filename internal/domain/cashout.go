package domain

import (
	"context"
	"strconv"
	"time"
)

// Cashout request statuses. Transitions are Pending → Completed | Expired.
const (
	CashoutStatusPending   = "Pending"
	CashoutStatusCompleted = "Completed"
	CashoutStatusExpired   = "Expired"
)

// Payout currencies accepted by the cashout desk.
const (
	CurrencyUSD = "USD"
	CurrencyJMD = "JMD"
)

// CashoutRequest is one cashout review item: a user wants SendAmount of
// SendCurrency paid out as ReceiveAmount of Currency to the listed bank
// account. ConfirmationCode is the code the payer reads back when the bank
// transfer is done; confirming payment requires the matching code.
type CashoutRequest struct {
	BaseModel
	OrderID          string     `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	OfferID          string     `gorm:"size:64" json:"offer_id"`
	AccountID        string     `gorm:"size:64;index" json:"account_id"`
	Username         string     `gorm:"size:100;index" json:"username"`
	PhoneNumber      string     `gorm:"size:32" json:"phone_number"`
	FullName         string     `gorm:"size:200" json:"full_name"`
	Email            string     `gorm:"size:255" json:"email"`
	SendAmount       float64    `json:"send_amount"`
	SendCurrency     string     `gorm:"size:8" json:"send_currency"`
	ReceiveAmount    float64    `json:"receive_amount"`
	Currency         string     `gorm:"size:8;index" json:"currency"`
	ExchangeRate     float64    `json:"exchange_rate"`
	Fee              float64    `json:"fee"`
	BankName         string     `gorm:"size:100" json:"bank_name"`
	BankBranch       string     `gorm:"size:100" json:"bank_branch"`
	AccountNumber    string     `gorm:"size:64" json:"account_number"`
	AccountType      string     `gorm:"size:32" json:"account_type"`
	BusinessName     string     `gorm:"size:200" json:"business_name,omitempty"`
	BusinessAddress  string     `gorm:"size:500" json:"business_address,omitempty"`
	DocumentKey      string     `gorm:"size:200" json:"document_key,omitempty"`
	ConfirmationCode string     `gorm:"size:32" json:"-"`
	ExpiresAt        time.Time  `json:"expires_at"`
	Status           string     `gorm:"size:16;not null;default:Pending;index" json:"status"`
	ConfirmedBy      string     `gorm:"size:100" json:"confirmed_by,omitempty"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
}

// RecordID returns the stable identifier used by list controllers.
func (r CashoutRequest) RecordID() string { return strconv.FormatUint(uint64(r.ID), 10) }

// RecordStatus returns the review status used for action preconditions.
func (r CashoutRequest) RecordStatus() string { return r.Status }

// HasBusinessInfo reports whether the optional business block should render.
func (r CashoutRequest) HasBusinessInfo() bool { return r.BusinessName != "" }

// EffectiveStatus returns the status with expiry applied: a Pending request
// past ExpiresAt reads as Expired even before the sweeper has persisted it.
func (r CashoutRequest) EffectiveStatus(now time.Time) string {
	if r.Status == CashoutStatusPending && !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt) {
		return CashoutStatusExpired
	}
	return r.Status
}

// CashoutRepository defines the data access interface for cashout requests.
type CashoutRepository interface {
	Create(ctx context.Context, req *CashoutRequest) error
	GetByID(ctx context.Context, id uint) (*CashoutRequest, error)
	List(ctx context.Context, req PageRequest) (*PageResult[CashoutRequest], error)
	Search(ctx context.Context, query string) ([]CashoutRequest, error)
	Update(ctx context.Context, req *CashoutRequest) error
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}

// CashoutService defines the review workflow for cashout requests.
type CashoutService interface {
	ListRequests(ctx context.Context, req PageRequest) (*PageResult[CashoutRequest], error)
	SearchRequests(ctx context.Context, query string) ([]CashoutRequest, error)
	GetRequest(ctx context.Context, id uint) (*CashoutRequest, error)
	ConfirmPayment(ctx context.Context, id uint, code, reviewer string) (*CashoutRequest, error)
	DocumentURL(ctx context.Context, id uint) (string, error)
}
