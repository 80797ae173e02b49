// Package client implements the typed HTTP client the review console uses to
// talk to the admin backend's JSON API. Responses arrive in the backend's
// response envelope; error statuses are mapped back onto the domain error
// taxonomy so callers can distinguish not-found, validation failures,
// business-rule conflicts, and outages.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lnflash/flash-admin-console/internal/domain"
)

const defaultTimeout = 15 * time.Second

// Config holds the settings for the admin API client.
type Config struct {
	BaseURL string
	Actor   string // administrator identity sent as X-Admin-User
	Timeout time.Duration
	Debug   bool
}

// Client talks to the admin backend API.
type Client struct {
	http *resty.Client
}

// New creates a Client from the given configuration.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	if cfg.Actor != "" {
		httpClient.SetHeader("X-Admin-User", cfg.Actor)
	}
	if cfg.Debug {
		httpClient.SetDebug(true)
	}

	return &Client{http: httpClient}
}

// envelope is the backend's uniform response shape.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do runs one API call and unmarshals the envelope's data payload into out.
func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return domain.NewAppError(domain.CodeUnavailable, "admin api request failed", err)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return domain.NewAppError(domain.CodeUnavailable,
			fmt.Sprintf("malformed admin api response (status %d)", resp.StatusCode()), err)
	}

	if resp.IsError() {
		return statusError(resp.StatusCode(), env.Message)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return domain.NewAppError(domain.CodeUnavailable, "malformed admin api payload", err)
		}
	}
	return nil
}

// statusError maps an API error status back onto the domain taxonomy.
func statusError(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	switch status {
	case http.StatusNotFound:
		return domain.NewAppError(domain.CodeNotFound, message, nil)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.NewAppError(domain.CodeValidation, message, nil)
	case http.StatusConflict:
		return domain.NewAppError(domain.CodeConflict, message, nil)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return domain.NewAppError(domain.CodeUnavailable, message, nil)
	default:
		return domain.NewAppError(domain.CodeInternal, message, nil)
	}
}

// pageParams builds the list query parameters the backend expects.
func pageParams(page, pageSize int, filters map[string]string) map[string]string {
	params := make(map[string]string, len(filters)+2)
	for k, v := range filters {
		if v != "" {
			params[k] = v
		}
	}
	params["page"] = strconv.Itoa(page)
	params["page_size"] = strconv.Itoa(pageSize)
	return params
}

// --- upgrade requests ---

// ListUpgradeRequests fetches one page of upgrade requests.
func (c *Client) ListUpgradeRequests(ctx context.Context, page, pageSize int, filters map[string]string) (*domain.PageResult[domain.UpgradeRequest], error) {
	var result domain.PageResult[domain.UpgradeRequest]
	if err := c.do(ctx, http.MethodGet, "/api/v1/upgrade-requests", pageParams(page, pageSize, filters), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchUpgradeRequests runs a free-text search over upgrade requests.
func (c *Client) SearchUpgradeRequests(ctx context.Context, query string) ([]domain.UpgradeRequest, error) {
	var result []domain.UpgradeRequest
	if err := c.do(ctx, http.MethodGet, "/api/v1/upgrade-requests/search", map[string]string{"q": query}, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetUpgradeRequest fetches a single upgrade request by id.
func (c *Client) GetUpgradeRequest(ctx context.Context, id string) (*domain.UpgradeRequest, error) {
	var result domain.UpgradeRequest
	if err := c.do(ctx, http.MethodGet, "/api/v1/upgrade-requests/"+id, nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ApproveUpgradeRequest approves a pending upgrade request.
func (c *Client) ApproveUpgradeRequest(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/upgrade-requests/"+id+"/approve", nil, nil, nil)
}

// RejectUpgradeRequest rejects a pending upgrade request with a reason.
func (c *Client) RejectUpgradeRequest(ctx context.Context, id, reason string) error {
	body := map[string]string{"reason": reason}
	return c.do(ctx, http.MethodPost, "/api/v1/upgrade-requests/"+id+"/reject", nil, body, nil)
}

// --- cashout requests ---

// ListCashoutRequests fetches one page of cashout requests.
func (c *Client) ListCashoutRequests(ctx context.Context, page, pageSize int, filters map[string]string) (*domain.PageResult[domain.CashoutRequest], error) {
	var result domain.PageResult[domain.CashoutRequest]
	if err := c.do(ctx, http.MethodGet, "/api/v1/cashout-requests", pageParams(page, pageSize, filters), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchCashoutRequests runs a free-text search over cashout requests.
func (c *Client) SearchCashoutRequests(ctx context.Context, query string) ([]domain.CashoutRequest, error) {
	var result []domain.CashoutRequest
	if err := c.do(ctx, http.MethodGet, "/api/v1/cashout-requests/search", map[string]string{"q": query}, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetCashoutRequest fetches a single cashout request by id.
func (c *Client) GetCashoutRequest(ctx context.Context, id string) (*domain.CashoutRequest, error) {
	var result domain.CashoutRequest
	if err := c.do(ctx, http.MethodGet, "/api/v1/cashout-requests/"+id, nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ConfirmCashoutPayment confirms payment of a pending cashout request.
func (c *Client) ConfirmCashoutPayment(ctx context.Context, id, code string) error {
	body := map[string]string{"code": code}
	return c.do(ctx, http.MethodPost, "/api/v1/cashout-requests/"+id+"/confirm", nil, body, nil)
}

// CashoutDocumentURL resolves the signed download URL for a request's document.
func (c *Client) CashoutDocumentURL(ctx context.Context, id string) (string, error) {
	var result struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/cashout-requests/"+id+"/document", nil, nil, &result); err != nil {
		return "", err
	}
	return result.URL, nil
}

// --- accounts ---

// AccountByPhone looks up an account by phone number.
func (c *Client) AccountByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	var result domain.Account
	if err := c.do(ctx, http.MethodGet, "/api/v1/accounts/lookup", map[string]string{"phone": phone}, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AccountByID looks up an account by its identifier.
func (c *Client) AccountByID(ctx context.Context, id string) (*domain.Account, error) {
	var result domain.Account
	if err := c.do(ctx, http.MethodGet, "/api/v1/accounts/"+id, nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateAccountLevel changes an account's verification level.
func (c *Client) UpdateAccountLevel(ctx context.Context, id, level string) (*domain.Account, error) {
	var result domain.Account
	body := map[string]string{"level": level}
	if err := c.do(ctx, http.MethodPut, "/api/v1/accounts/"+id+"/level", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// --- alerts ---

// SendAlert broadcasts an alert to all platform users.
func (c *Client) SendAlert(ctx context.Context, title, message, severity string) (*domain.Alert, error) {
	var result domain.Alert
	body := map[string]string{"title": title, "message": message, "severity": severity}
	if err := c.do(ctx, http.MethodPost, "/api/v1/alerts", nil, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RecentAlerts lists the most recently sent alerts, newest first.
func (c *Client) RecentAlerts(ctx context.Context, limit int) ([]domain.Alert, error) {
	var result []domain.Alert
	params := map[string]string{}
	if limit > 0 {
		params["limit"] = strconv.Itoa(limit)
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/alerts", params, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}
