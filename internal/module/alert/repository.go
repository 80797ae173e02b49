package alert

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/lnflash/flash-admin-console/internal/domain"
)

// defaultRecentLimit bounds ListRecent when the caller passes no limit.
const defaultRecentLimit = 20

// alertRepository implements domain.AlertRepository using GORM.
type alertRepository struct {
	db *gorm.DB
}

// NewRepository creates an AlertRepository backed by the given database.
func NewRepository(db *gorm.DB) domain.AlertRepository {
	return &alertRepository{db: db}
}

func (r *alertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// ListRecent returns the newest alerts first, at most limit rows.
func (r *alertRepository) ListRecent(ctx context.Context, limit int) ([]domain.Alert, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	var alerts []domain.Alert
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&alerts).Error; err != nil {
		return nil, mapError(err)
	}
	return alerts, nil
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique constraint") {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}
