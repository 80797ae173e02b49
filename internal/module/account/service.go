package account

import (
	"context"
	"strings"

	"github.com/lnflash/flash-admin-console/internal/domain"
)

// Gateway is the slice of the upstream API the account module uses.
// *upstream.Client satisfies it.
type Gateway interface {
	AccountByPhone(ctx context.Context, phone string) (*domain.Account, error)
	AccountByID(ctx context.Context, id string) (*domain.Account, error)
	UpdateAccountLevel(ctx context.Context, id, level string) (*domain.Account, error)
}

// accountService implements domain.AccountService. Accounts are never stored
// locally; every call goes straight to the upstream API.
type accountService struct {
	gw Gateway
}

// NewService creates an AccountService backed by the given upstream gateway.
func NewService(gw Gateway) domain.AccountService {
	return &accountService{gw: gw}
}

func (s *accountService) GetByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	phone = normalizePhone(phone)
	if phone == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "phone number is required", nil)
	}
	return s.gw.AccountByPhone(ctx, phone)
}

func (s *accountService) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "account id is required", nil)
	}
	return s.gw.AccountByID(ctx, id)
}

func (s *accountService) UpdateLevel(ctx context.Context, id, level string) (*domain.Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "account id is required", nil)
	}
	if level != domain.LevelZero && level != domain.LevelOne && level != domain.LevelTwo {
		return nil, domain.NewAppError(domain.CodeValidation, "level must be ZERO, ONE, or TWO", nil)
	}
	return s.gw.UpdateAccountLevel(ctx, id, level)
}

// normalizePhone strips spaces, dashes, and parentheses so formatted numbers
// match the E.164 form the upstream expects. A leading + is preserved.
func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
