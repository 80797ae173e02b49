package cashout

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/lnflash/flash-admin-console/internal/domain"
)

// DocumentResolver resolves an uploaded document key to a short-lived URL
// on the upstream API. *upstream.Client satisfies it.
type DocumentResolver interface {
	DocumentURL(ctx context.Context, key string) (string, error)
}

// cashoutService implements domain.CashoutService.
type cashoutService struct {
	repo domain.CashoutRepository
	docs DocumentResolver
	now  func() time.Time
}

// NewService creates a CashoutService with the given repository and
// upstream document resolver.
func NewService(repo domain.CashoutRepository, docs DocumentResolver) domain.CashoutService {
	return &cashoutService{repo: repo, docs: docs, now: time.Now}
}

func (s *cashoutService) ListRequests(ctx context.Context, req domain.PageRequest) (*domain.PageResult[domain.CashoutRequest], error) {
	return s.repo.List(ctx, req)
}

func (s *cashoutService) SearchRequests(ctx context.Context, query string) ([]domain.CashoutRequest, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "search query is required", nil)
	}

	items, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.NewAppError(domain.CodeNotFound, "no cashout requests match the search", nil)
	}
	return items, nil
}

func (s *cashoutService) GetRequest(ctx context.Context, id uint) (*domain.CashoutRequest, error) {
	return s.repo.GetByID(ctx, id)
}

// ConfirmPayment marks a pending request as paid out. The caller supplies the
// confirmation code read back by the payer; a mismatch, an expired deadline,
// or a request that is no longer pending all refuse the transition.
func (s *cashoutService) ConfirmPayment(ctx context.Context, id uint, code, reviewer string) (*domain.CashoutRequest, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "confirmation code is required", nil)
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	switch req.EffectiveStatus(now) {
	case domain.CashoutStatusPending:
	case domain.CashoutStatusExpired:
		return nil, domain.NewAppError(domain.CodeConflict, "request has expired", nil)
	default:
		return nil, domain.NewAppError(domain.CodeConflict, "request already processed", nil)
	}

	if !codesMatch(req.ConfirmationCode, code) {
		return nil, domain.NewAppError(domain.CodeConflict, "confirmation code does not match", nil)
	}

	req.Status = domain.CashoutStatusCompleted
	req.ConfirmedBy = reviewer
	req.ConfirmedAt = &now
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// DocumentURL resolves the verification document attached to a request.
func (s *cashoutService) DocumentURL(ctx context.Context, id uint) (string, error) {
	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if req.DocumentKey == "" {
		return "", domain.NewAppError(domain.CodeNotFound, "no document on file", nil)
	}
	return s.docs.DocumentURL(ctx, req.DocumentKey)
}

// codesMatch compares confirmation codes in constant time, ignoring case.
func codesMatch(want, got string) bool {
	w := strings.ToUpper(want)
	g := strings.ToUpper(got)
	return subtle.ConstantTimeCompare([]byte(w), []byte(g)) == 1
}
