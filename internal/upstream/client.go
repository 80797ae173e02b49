// Package upstream implements the GraphQL client for the platform's admin
// API. Every request is authenticated with a short-lived HS256 bearer token
// minted from the shared signing key, carrying the acting administrator's
// identity so upstream audit logs line up with ours.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/lnflash/flash-admin-console/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Config holds the settings for the upstream admin API client.
type Config struct {
	URL        string
	SigningKey string
	Issuer     string
	Timeout    time.Duration
	Debug      bool
}

// Client talks GraphQL to the admin API.
type Client struct {
	http       *resty.Client
	signingKey []byte
	issuer     string
}

// New creates a Client from the given configuration.
//
// No automatic retries: broadcast sends and level updates are not idempotent,
// so transient failures surface to the operator instead of being replayed.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	if cfg.Debug {
		httpClient.SetDebug(true)
	}

	return &Client{
		http:       httpClient,
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
	}
}

// bearerToken mints a one-hour HS256 token carrying the actor's identity.
func (c *Client) bearerToken(actor string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId": actor,
		"roles":  []string{"admin"},
		"iat":    now.Unix(),
		"exp":    now.Add(time.Hour).Unix(),
		"iss":    c.issuer,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLErr struct {
	Message    string `json:"message"`
	Code       string `json:"code,omitempty"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

func (e graphQLErr) errCode() string {
	if e.Code != "" {
		return e.Code
	}
	return e.Extensions.Code
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLErr    `json:"errors"`
}

// execute runs one GraphQL operation and unmarshals the data payload into out.
// A NOT_FOUND error code maps to ErrNotFound; transport failures and other
// GraphQL errors map to CodeUnavailable.
func (c *Client) execute(ctx context.Context, query string, variables map[string]any, out any) error {
	token, err := c.bearerToken(domain.ActorFromContext(ctx))
	if err != nil {
		return domain.NewAppError(domain.CodeInternal, "failed to sign upstream token", err)
	}

	var gqlResp graphQLResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetBody(graphQLRequest{Query: query, Variables: variables}).
		SetResult(&gqlResp).
		Post("")
	if err != nil {
		return domain.NewAppError(domain.CodeUnavailable, "upstream request failed", err)
	}
	if resp.IsError() {
		return domain.NewAppError(domain.CodeUnavailable,
			fmt.Sprintf("upstream returned status %d", resp.StatusCode()), nil)
	}

	if len(gqlResp.Errors) > 0 {
		for _, e := range gqlResp.Errors {
			if e.errCode() == "NOT_FOUND" {
				return domain.NewAppError(domain.CodeNotFound, "not found upstream", nil)
			}
		}
		msgs := make([]string, 0, len(gqlResp.Errors))
		for _, e := range gqlResp.Errors {
			msgs = append(msgs, e.Message)
		}
		return domain.NewAppError(domain.CodeUnavailable,
			"upstream errors: "+strings.Join(msgs, "; "), nil)
	}

	if out != nil {
		if err := json.Unmarshal(gqlResp.Data, out); err != nil {
			return domain.NewAppError(domain.CodeUnavailable, "malformed upstream response", err)
		}
	}
	return nil
}

const accountSelection = `
		id
		username
		level
		status
		title
		owner {
			id
			language
			phone
			email {
				address
				verified
			}
			createdAt
		}
		wallets {
			id
			walletCurrency
			balance
			pendingIncomingBalance
		}
		createdAt`

type accountPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Level    string `json:"level"`
	Status   string `json:"status"`
	Title    string `json:"title"`
	Owner    struct {
		ID       string `json:"id"`
		Language string `json:"language"`
		Phone    string `json:"phone"`
		Email    struct {
			Address  string `json:"address"`
			Verified bool   `json:"verified"`
		} `json:"email"`
		CreatedAt int64 `json:"createdAt"`
	} `json:"owner"`
	Wallets []struct {
		ID                     string  `json:"id"`
		WalletCurrency         string  `json:"walletCurrency"`
		Balance                float64 `json:"balance"`
		PendingIncomingBalance float64 `json:"pendingIncomingBalance"`
	} `json:"wallets"`
	CreatedAt int64 `json:"createdAt"`
}

func (p *accountPayload) toAccount() *domain.Account {
	acct := &domain.Account{
		ID:       p.ID,
		Username: p.Username,
		Level:    p.Level,
		Status:   p.Status,
		Title:    p.Title,
		Owner: domain.AccountOwner{
			ID:            p.Owner.ID,
			Phone:         p.Owner.Phone,
			Language:      p.Owner.Language,
			Email:         p.Owner.Email.Address,
			EmailVerified: p.Owner.Email.Verified,
			CreatedAt:     time.Unix(p.Owner.CreatedAt, 0).UTC(),
		},
		CreatedAt: time.Unix(p.CreatedAt, 0).UTC(),
	}
	for _, w := range p.Wallets {
		acct.Wallets = append(acct.Wallets, domain.Wallet{
			ID:                     w.ID,
			Currency:               w.WalletCurrency,
			Balance:                w.Balance,
			PendingIncomingBalance: w.PendingIncomingBalance,
		})
	}
	return acct
}

// AccountByPhone looks up the account attached to a phone number.
func (c *Client) AccountByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	query := `
	query accountDetailsByUserPhone($phone: Phone!) {
		accountDetailsByUserPhone(phone: $phone) {` + accountSelection + `
		}
	}`

	var data struct {
		Account *accountPayload `json:"accountDetailsByUserPhone"`
	}
	if err := c.execute(ctx, query, map[string]any{"phone": phone}, &data); err != nil {
		return nil, err
	}
	if data.Account == nil {
		return nil, domain.NewAppError(domain.CodeNotFound, "account not found", nil)
	}
	return data.Account.toAccount(), nil
}

// AccountByID looks up an account by its upstream identifier.
func (c *Client) AccountByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `
	query accountDetailsByAccountId($accountId: ID!) {
		accountDetailsByAccountId(accountId: $accountId) {` + accountSelection + `
		}
	}`

	var data struct {
		Account *accountPayload `json:"accountDetailsByAccountId"`
	}
	if err := c.execute(ctx, query, map[string]any{"accountId": id}, &data); err != nil {
		return nil, err
	}
	if data.Account == nil {
		return nil, domain.NewAppError(domain.CodeNotFound, "account not found", nil)
	}
	return data.Account.toAccount(), nil
}

// UpdateAccountLevel changes an account's verification level upstream.
// Mutation-level errors are reported as conflicts since they represent
// business rules (already at level, account locked) rather than outages.
func (c *Client) UpdateAccountLevel(ctx context.Context, id, level string) (*domain.Account, error) {
	mutation := `
	mutation accountUpdateLevel($input: AccountUpdateLevelInput!) {
		accountUpdateLevel(input: $input) {
			errors {
				message
			}
			accountDetails {
				id
				username
				level
			}
		}
	}`

	var data struct {
		Result struct {
			Errors []struct {
				Message string `json:"message"`
			} `json:"errors"`
			AccountDetails *struct {
				ID       string `json:"id"`
				Username string `json:"username"`
				Level    string `json:"level"`
			} `json:"accountDetails"`
		} `json:"accountUpdateLevel"`
	}

	vars := map[string]any{"input": map[string]any{"uid": id, "level": level}}
	if err := c.execute(ctx, mutation, vars, &data); err != nil {
		return nil, err
	}
	if len(data.Result.Errors) > 0 {
		return nil, domain.NewAppError(domain.CodeConflict, data.Result.Errors[0].Message, nil)
	}
	if data.Result.AccountDetails == nil {
		return nil, domain.NewAppError(domain.CodeUnavailable, "upstream returned no account details", nil)
	}
	return &domain.Account{
		ID:       data.Result.AccountDetails.ID,
		Username: data.Result.AccountDetails.Username,
		Level:    data.Result.AccountDetails.Level,
	}, nil
}

// BroadcastAlert pushes a notification to every user of the platform.
func (c *Client) BroadcastAlert(ctx context.Context, title, body, tag string) error {
	mutation := `
	mutation adminBroadcastSend($input: AdminBroadcastSendInput!) {
		adminBroadcastSend(input: $input) {
			success
			errors {
				message
			}
		}
	}`

	var data struct {
		Result struct {
			Success bool `json:"success"`
			Errors  []struct {
				Message string `json:"message"`
			} `json:"errors"`
		} `json:"adminBroadcastSend"`
	}

	vars := map[string]any{"input": map[string]any{"title": title, "body": body, "tag": tag}}
	if err := c.execute(ctx, mutation, vars, &data); err != nil {
		return err
	}
	if !data.Result.Success {
		msg := "broadcast rejected upstream"
		if len(data.Result.Errors) > 0 {
			msg = data.Result.Errors[0].Message
		}
		return domain.NewAppError(domain.CodeConflict, msg, nil)
	}
	return nil
}

// DocumentURL resolves a stored document key to a short-lived download URL.
func (c *Client) DocumentURL(ctx context.Context, key string) (string, error) {
	query := `
	query uploadedDocumentUrl($key: String!) {
		uploadedDocumentUrl(key: $key) {
			url
		}
	}`

	var data struct {
		Result *struct {
			URL string `json:"url"`
		} `json:"uploadedDocumentUrl"`
	}
	if err := c.execute(ctx, query, map[string]any{"key": key}, &data); err != nil {
		return "", err
	}
	if data.Result == nil || data.Result.URL == "" {
		return "", domain.NewAppError(domain.CodeNotFound, "document not found", nil)
	}
	return data.Result.URL, nil
}
