package cashout

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"gorm.io/gorm"

	"github.com/lnflash/flash-admin-console/internal/domain"
	"github.com/lnflash/flash-admin-console/internal/pkg"
)

// searchLimit bounds how many rows a free-text search returns.
const searchLimit = 50

// phoneDigitThreshold decides whether a search query is treated as a phone
// number rather than a username or order ID.
const phoneDigitThreshold = 10

// Allowed fields for sorting and filtering in List queries.
var (
	allowedSortFields   = []string{"id", "username", "order_id", "receive_amount", "currency", "status", "expires_at", "created_at", "updated_at"}
	allowedFilterFields = []string{"status", "currency", "username", "order_id"}
)

// cashoutRepository implements domain.CashoutRepository using GORM.
type cashoutRepository struct {
	db *gorm.DB
}

// NewRepository creates a CashoutRepository backed by the given database.
func NewRepository(db *gorm.DB) domain.CashoutRepository {
	return &cashoutRepository{db: db}
}

func (r *cashoutRepository) Create(ctx context.Context, req *domain.CashoutRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return mapError(err)
	}
	return nil
}

func (r *cashoutRepository) GetByID(ctx context.Context, id uint) (*domain.CashoutRequest, error) {
	var req domain.CashoutRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, mapError(err)
	}
	req.Status = req.EffectiveStatus(time.Now().UTC())
	return &req, nil
}

// List returns a paginated, sorted, filtered batch of cashout requests.
// An out-of-range page is clamped to the nearest valid page; the result's
// Page field reports the page actually served. Statuses are reported with
// expiry applied, and a status filter matches the reported status, so a
// lapsed Pending request lists under Expired even before the sweeper runs.
func (r *cashoutRepository) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.CashoutRequest], error) {
	now := time.Now().UTC()

	status, filtered := req.Filter["status"]
	if filtered {
		rest := make(map[string]string, len(req.Filter))
		for k, v := range req.Filter {
			if k != "status" {
				rest[k] = v
			}
		}
		req.Filter = rest
	}

	var total int64
	base := r.db.WithContext(ctx).Model(&domain.CashoutRequest{}).
		Scopes(pkg.Filter(req, allowedFilterFields))
	if filtered {
		base = base.Scopes(effectiveStatusFilter(status, now))
	}

	if err := base.Count(&total).Error; err != nil {
		return nil, mapError(err)
	}

	totalPages := 0
	if req.PageSize > 0 {
		totalPages = int((total + int64(req.PageSize) - 1) / int64(req.PageSize))
	}
	req.Page = domain.ClampPage(req.Page, totalPages)

	var items []domain.CashoutRequest
	if err := base.Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, allowedSortFields),
	).Find(&items).Error; err != nil {
		return nil, mapError(err)
	}
	applyEffectiveStatus(items, now)

	return domain.NewPageResult(items, total, req), nil
}

// Search matches cashout requests by phone number when the query carries
// enough digits, otherwise by username or order ID.
func (r *cashoutRepository) Search(ctx context.Context, query string) ([]domain.CashoutRequest, error) {
	digits := extractDigits(query)

	q := r.db.WithContext(ctx)
	if len(digits) >= phoneDigitThreshold {
		q = q.Where("phone_number LIKE ?", "%"+digits+"%")
	} else {
		pattern := "%" + query + "%"
		q = q.Where("username LIKE ? OR order_id LIKE ?", pattern, pattern)
	}

	var items []domain.CashoutRequest
	if err := q.Order("created_at DESC").Limit(searchLimit).Find(&items).Error; err != nil {
		return nil, mapError(err)
	}
	applyEffectiveStatus(items, time.Now().UTC())
	return items, nil
}

// Update persists a review transition. The stored status is re-checked
// inside the transaction so a confirmation cannot race the expiry sweeper
// (or another operator) out of Pending twice.
func (r *cashoutRepository) Update(ctx context.Context, req *domain.CashoutRequest) error {
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		var current domain.CashoutRequest
		if err := tx.Select("status").First(&current, req.ID).Error; err != nil {
			return err
		}
		if current.Status != domain.CashoutStatusPending && current.Status != req.Status {
			return domain.NewAppError(domain.CodeConflict, "request already resolved", nil)
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

// ExpirePending flips every pending request whose deadline passed before
// cutoff to Expired and reports how many rows changed. Requests without a
// deadline never expire.
func (r *cashoutRepository) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.CashoutRequest{}).
		Where("status = ? AND expires_at > ? AND expires_at < ?", domain.CashoutStatusPending, time.Time{}, cutoff).
		Update("status", domain.CashoutStatusExpired)
	if result.Error != nil {
		return 0, mapError(result.Error)
	}
	return result.RowsAffected, nil
}

// applyEffectiveStatus rewrites each row's status with expiry applied, so
// read paths report the same status the confirm path enforces.
func applyEffectiveStatus(items []domain.CashoutRequest, now time.Time) {
	for i := range items {
		items[i].Status = items[i].EffectiveStatus(now)
	}
}

// effectiveStatusFilter matches rows by their reported status rather than the
// stored one: a Pending row past its deadline counts as Expired, and only
// Pending rows with no deadline or a future one count as Pending.
func effectiveStatusFilter(status string, now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch status {
		case domain.CashoutStatusPending:
			return db.Where("status = ? AND (expires_at <= ? OR expires_at >= ?)",
				domain.CashoutStatusPending, time.Time{}, now)
		case domain.CashoutStatusExpired:
			return db.Where("status = ? OR (status = ? AND expires_at > ? AND expires_at < ?)",
				domain.CashoutStatusExpired, domain.CashoutStatusPending, time.Time{}, now)
		default:
			return db.Where("status = ?", status)
		}
	}
}

// extractDigits strips everything but decimal digits from s.
func extractDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
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
