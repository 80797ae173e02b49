package upgrade

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/lnflash/flash-admin-console/internal/domain"
	"github.com/lnflash/flash-admin-console/internal/pkg"
)

// searchLimit bounds how many rows a free-text search returns.
const searchLimit = 50

// Allowed fields for sorting and filtering in List queries.
var (
	allowedSortFields   = []string{"id", "username", "requested_level", "status", "created_at", "updated_at"}
	allowedFilterFields = []string{"status", "requested_level", "username", "phone_number"}
)

// upgradeRepository implements domain.UpgradeRepository using GORM.
type upgradeRepository struct {
	db *gorm.DB
}

// NewRepository creates an UpgradeRepository backed by the given database.
func NewRepository(db *gorm.DB) domain.UpgradeRepository {
	return &upgradeRepository{db: db}
}

func (r *upgradeRepository) Create(ctx context.Context, req *domain.UpgradeRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (r *upgradeRepository) GetByID(ctx context.Context, id uint) (*domain.UpgradeRequest, error) {
	var req domain.UpgradeRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &req, nil
}

// List returns a paginated, sorted, filtered batch of upgrade requests.
// An out-of-range page is clamped to the nearest valid page; the result's
// Page field reports the page actually served.
func (r *upgradeRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.UpgradeRequest], error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&domain.UpgradeRequest{}).
		Scopes(pkg.Filter(req, allowedFilterFields))

	if err := base.Count(&total).Error; err != nil {
		return nil, mapError(err)
	}

	totalPages := 0
	if req.PageSize > 0 {
		totalPages = int((total + int64(req.PageSize) - 1) / int64(req.PageSize))
	}
	req.Page = domain.ClampPage(req.Page, totalPages)

	var items []domain.UpgradeRequest
	if err := base.Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, allowedSortFields),
	).Find(&items).Error; err != nil {
		return nil, mapError(err)
	}

	return domain.NewPageResult(items, total, req), nil
}

func (r *upgradeRepository) SearchByPhone(ctx context.Context, digits string) ([]domain.UpgradeRequest, error) {
	var items []domain.UpgradeRequest
	if err := r.db.WithContext(ctx).
		Where("phone_number LIKE ?", "%"+digits+"%").
		Order("created_at DESC").
		Limit(searchLimit).
		Find(&items).Error; err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

func (r *upgradeRepository) SearchByUsername(ctx context.Context, name string) ([]domain.UpgradeRequest, error) {
	var items []domain.UpgradeRequest
	if err := r.db.WithContext(ctx).
		Where("username LIKE ?", "%"+name+"%").
		Order("created_at DESC").
		Limit(searchLimit).
		Find(&items).Error; err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

// Update persists a review transition. The stored status is re-checked
// inside the transaction so two racing reviewers cannot both move the same
// request out of Pending.
func (r *upgradeRepository) Update(ctx context.Context, req *domain.UpgradeRequest) error {
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		var current domain.UpgradeRequest
		if err := tx.Select("status").First(&current, req.ID).Error; err != nil {
			return err
		}
		if current.Status != domain.UpgradeStatusPending && current.Status != req.Status {
			return domain.NewAppError(domain.CodeConflict, "request already reviewed", nil)
		}
		return tx.Save(req).Error
	})
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return appErr
		}
		return mapError(err)
	}
	return nil
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by message because
// the pure-Go SQLite driver does not translate them to gorm.ErrDuplicatedKey.
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
