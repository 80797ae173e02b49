package alert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/lnflash/flash-admin-console/internal/domain"
)

// Broadcaster sends a broadcast alert through the upstream API.
// *upstream.Client satisfies it.
type Broadcaster interface {
	BroadcastAlert(ctx context.Context, title, body, tag string) error
}

// alertService implements domain.AlertService.
type alertService struct {
	repo   domain.AlertRepository
	sender Broadcaster
	log    *slog.Logger
}

// NewService creates an AlertService with the given repository, upstream
// broadcaster, and logger.
func NewService(repo domain.AlertRepository, sender Broadcaster, log *slog.Logger) domain.AlertService {
	if log == nil {
		log = slog.Default()
	}
	return &alertService{repo: repo, sender: sender, log: log}
}

// Send validates the alert locally, broadcasts it upstream, and writes an
// audit row. The audit row is written only after the upstream reports
// success, so the log never claims a send that did not happen.
func (s *alertService) Send(ctx context.Context, title, message, severity, sender string) (*domain.Alert, error) {
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)

	if title == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "title is required", nil)
	}
	if utf8.RuneCountInString(title) > domain.AlertTitleMaxLen {
		return nil, domain.NewAppError(domain.CodeValidation,
			fmt.Sprintf("title must be at most %d characters", domain.AlertTitleMaxLen), nil)
	}
	if message == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "message is required", nil)
	}
	if utf8.RuneCountInString(message) > domain.AlertMessageMaxLen {
		return nil, domain.NewAppError(domain.CodeValidation,
			fmt.Sprintf("message must be at most %d characters", domain.AlertMessageMaxLen), nil)
	}
	if !domain.ValidAlertSeverity(severity) {
		return nil, domain.NewAppError(domain.CodeValidation, "severity must be EMERGENCY, WARNING, or INFO", nil)
	}

	if err := s.sender.BroadcastAlert(ctx, title, message, severity); err != nil {
		return nil, err
	}

	alert := &domain.Alert{
		Title:    title,
		Message:  message,
		Severity: severity,
		SentBy:   sender,
	}
	if err := s.repo.Create(ctx, alert); err != nil {
		// The broadcast went out; losing the audit row must not surface as a
		// failed send.
		s.log.ErrorContext(ctx, "alert sent but audit write failed", "error", err, "title", title)
		return alert, nil
	}
	return alert, nil
}

func (s *alertService) ListRecent(ctx context.Context, limit int) ([]domain.Alert, error) {
	return s.repo.ListRecent(ctx, limit)
}
