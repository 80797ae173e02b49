package domain

import "context"

// Broadcast alert severities.
const (
	AlertSeverityEmergency = "EMERGENCY"
	AlertSeverityWarning   = "WARNING"
	AlertSeverityInfo      = "INFO"
)

// Alert limits enforced before any upstream call.
const (
	AlertTitleMaxLen   = 100
	AlertMessageMaxLen = 500
)

// ValidAlertSeverity reports whether s is one of the accepted severities.
func ValidAlertSeverity(s string) bool {
	switch s {
	case AlertSeverityEmergency, AlertSeverityWarning, AlertSeverityInfo:
		return true
	}
	return false
}

// Alert is the audit record of one broadcast sent to all users. The send
// itself happens upstream; a row is written here only after the upstream
// reports success.
type Alert struct {
	BaseModel
	Title    string `gorm:"size:100;not null" json:"title"`
	Message  string `gorm:"size:500;not null" json:"message"`
	Severity string `gorm:"size:16;not null" json:"severity"`
	SentBy   string `gorm:"size:100" json:"sent_by"`
}

// AlertRepository defines the data access interface for the alert audit log.
type AlertRepository interface {
	Create(ctx context.Context, alert *Alert) error
	ListRecent(ctx context.Context, limit int) ([]Alert, error)
}

// AlertService defines the broadcast composer operations.
type AlertService interface {
	Send(ctx context.Context, title, message, severity, sender string) (*Alert, error)
	ListRecent(ctx context.Context, limit int) ([]Alert, error)
}
