package domain

import (
	"context"
	"strconv"
	"time"
)

// Upgrade request statuses. Transitions are Pending → Approved | Rejected and
// are only ever written by the review services; clients re-read truth after
// requesting a transition.
const (
	UpgradeStatusPending  = "Pending"
	UpgradeStatusApproved = "Approved"
	UpgradeStatusRejected = "Rejected"
)

// Account levels as understood by the upstream API.
const (
	LevelZero = "ZERO"
	LevelOne  = "ONE"
	LevelTwo  = "TWO"
)

// UpgradeRequest is one account-upgrade review item. AccountID refers to the
// upstream account whose level changes on approval. BusinessName and
// BusinessAddress are set only for merchant upgrades; the detail views show
// the business block only when BusinessName is non-empty.
type UpgradeRequest struct {
	BaseModel
	AccountID       string     `gorm:"size:64;not null;index" json:"account_id"`
	PhoneNumber     string     `gorm:"size:32;index" json:"phone_number"`
	Username        string     `gorm:"size:100;index" json:"username"`
	FullName        string     `gorm:"size:200" json:"full_name"`
	CurrentLevel    string     `gorm:"size:16" json:"current_level"`
	RequestedLevel  string     `gorm:"size:16;index" json:"requested_level"`
	BusinessName    string     `gorm:"size:200" json:"business_name,omitempty"`
	BusinessAddress string     `gorm:"size:500" json:"business_address,omitempty"`
	DocumentKey     string     `gorm:"size:200" json:"document_key,omitempty"`
	Status          string     `gorm:"size:16;not null;default:Pending;index" json:"status"`
	RejectionReason string     `gorm:"size:500" json:"rejection_reason,omitempty"`
	ReviewedBy      string     `gorm:"size:100" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

// RecordID returns the stable identifier used by list controllers.
func (r UpgradeRequest) RecordID() string { return strconv.FormatUint(uint64(r.ID), 10) }

// RecordStatus returns the review status used for action preconditions.
func (r UpgradeRequest) RecordStatus() string { return r.Status }

// HasBusinessInfo reports whether the optional business block should render.
func (r UpgradeRequest) HasBusinessInfo() bool { return r.BusinessName != "" }

// UpgradeRepository defines the data access interface for upgrade requests.
type UpgradeRepository interface {
	Create(ctx context.Context, req *UpgradeRequest) error
	GetByID(ctx context.Context, id uint) (*UpgradeRequest, error)
	List(ctx context.Context, req PageRequest) (*PageResult[UpgradeRequest], error)
	SearchByPhone(ctx context.Context, digits string) ([]UpgradeRequest, error)
	SearchByUsername(ctx context.Context, name string) ([]UpgradeRequest, error)
	Update(ctx context.Context, req *UpgradeRequest) error
}

// UpgradeService defines the review workflow for upgrade requests.
type UpgradeService interface {
	ListRequests(ctx context.Context, req PageRequest) (*PageResult[UpgradeRequest], error)
	SearchRequests(ctx context.Context, query string) ([]UpgradeRequest, error)
	GetRequest(ctx context.Context, id uint) (*UpgradeRequest, error)
	Approve(ctx context.Context, id uint, reviewer string) (*UpgradeRequest, error)
	Reject(ctx context.Context, id uint, reason, reviewer string) (*UpgradeRequest, error)
}
