package upgrade

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/lnflash/flash-admin-console/internal/domain"
)

// phoneDigitThreshold decides whether a search query is treated as a phone
// number. Queries whose digit count reaches this are matched against phone
// numbers; anything shorter is matched against usernames.
const phoneDigitThreshold = 10

// LevelUpdater applies an account level change on the upstream API.
// *upstream.Client satisfies it.
type LevelUpdater interface {
	UpdateAccountLevel(ctx context.Context, accountID, level string) (*domain.Account, error)
}

// upgradeService implements domain.UpgradeService.
type upgradeService struct {
	repo   domain.UpgradeRepository
	levels LevelUpdater
}

// NewService creates an UpgradeService with the given repository and
// upstream level updater.
func NewService(repo domain.UpgradeRepository, levels LevelUpdater) domain.UpgradeService {
	return &upgradeService{repo: repo, levels: levels}
}

func (s *upgradeService) ListRequests(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.UpgradeRequest], error) {
	return s.repo.List(ctx, req)
}

// SearchRequests routes a free-text query to a phone or username search.
// A query with ten or more digits searches phone numbers by its digits;
// anything else searches usernames.
func (s *upgradeService) SearchRequests(ctx context.Context, query string) ([]domain.UpgradeRequest, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "search query is required", nil)
	}

	digits := extractDigits(query)

	var (
		items []domain.UpgradeRequest
		err   error
	)
	if len(digits) >= phoneDigitThreshold {
		items, err = s.repo.SearchByPhone(ctx, digits)
	} else {
		items, err = s.repo.SearchByUsername(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.NewAppError(domain.CodeNotFound, "no upgrade requests match the search", nil)
	}
	return items, nil
}

func (s *upgradeService) GetRequest(ctx context.Context, id uint) (*domain.UpgradeRequest, error) {
	return s.repo.GetByID(ctx, id)
}

// Approve applies the requested level on the upstream account, then records
// the approval locally. The upstream call happens first so a failed level
// change never leaves behind an approved request.
func (s *upgradeService) Approve(ctx context.Context, id uint, reviewer string) (*domain.UpgradeRequest, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.UpgradeStatusPending {
		return nil, domain.NewAppError(domain.CodeConflict, "request already reviewed", nil)
	}

	if _, err := s.levels.UpdateAccountLevel(ctx, req.AccountID, req.RequestedLevel); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	req.Status = domain.UpgradeStatusApproved
	req.ReviewedBy = reviewer
	req.ReviewedAt = &now
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Reject records a rejection with the given reason. No upstream call is made.
func (s *upgradeService) Reject(ctx context.Context, id uint, reason, reviewer string) (*domain.UpgradeRequest, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "rejection reason is required", nil)
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.UpgradeStatusPending {
		return nil, domain.NewAppError(domain.CodeConflict, "request already reviewed", nil)
	}

	now := time.Now().UTC()
	req.Status = domain.UpgradeStatusRejected
	req.RejectionReason = reason
	req.ReviewedBy = reviewer
	req.ReviewedAt = &now
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
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
