package bankfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 60 * time.Second

	exchangePath = "/item/public_token/exchange"
	syncPath     = "/transactions/sync"
	accountsPath = "/accounts/get"
	removePath   = "/item/remove"
)

// Config holds the feed credentials supplied at startup.
type Config struct {
	BaseURL  string
	ClientID string
	Secret   string
	Timeout  time.Duration
}

// Client talks to the remote aggregator feed over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

var _ ClientInterface = (*Client)(nil)

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		clientID:   cfg.ClientID,
		secret:     cfg.Secret,
	}
}

// ExchangeResult is the outcome of trading a public token for a
// long-lived access credential.
type ExchangeResult struct {
	AccessToken  string `json:"access_token"`
	RemoteItemID string `json:"item_id"`
}

// SyncPage is one page of the cursor-paginated transaction feed.
type SyncPage struct {
	Added      []Delta        `json:"added"`
	Modified   []Delta        `json:"modified"`
	Removed    []RemovedDelta `json:"removed"`
	NextCursor string         `json:"next_cursor"`
	HasMore    bool           `json:"has_more"`
}

// Delta is one added or modified transaction record from the feed.
// Amounts follow the feed's debit-positive sign convention and arrive as
// decimal strings.
type Delta struct {
	TransactionID    string              `json:"transaction_id"`
	Amount           string              `json:"amount"`
	Category         *StructuredCategory `json:"personal_finance_category,omitempty"`
	LegacyCategories []string            `json:"category,omitempty"`
	Name             string              `json:"name"`
	Date             string              `json:"date"` // "2006-01-02"
}

// StructuredCategory is the feed's newer category taxonomy.
type StructuredCategory struct {
	Primary  string `json:"primary"`
	Detailed string `json:"detailed,omitempty"`
}

// RemovedDelta identifies a transaction the feed has withdrawn.
type RemovedDelta struct {
	TransactionID string `json:"transaction_id"`
}

// Account is a current account/balance snapshot for one linked item.
type Account struct {
	AccountID        string  `json:"account_id"`
	Name             string  `json:"name"`
	OfficialName     string  `json:"official_name,omitempty"`
	Type             string  `json:"type"`
	Subtype          string  `json:"subtype,omitempty"`
	Mask             string  `json:"mask,omitempty"`
	CurrentBalance   string  `json:"current_balance"`
	AvailableBalance *string `json:"available_balance,omitempty"`
	Currency         string  `json:"iso_currency_code"`
}

// APIError is a structured failure reported by the feed.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error_code"`
	Message string `json:"error_message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("feed error (status %d, code %s): %s", e.Status, e.Code, e.Message)
}

func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error) {
	body := map[string]string{"public_token": publicToken}

	var result ExchangeResult
	if err := c.post(ctx, exchangePath, body, &result); err != nil {
		return nil, err
	}
	if result.AccessToken == "" || result.RemoteItemID == "" {
		return nil, fmt.Errorf("feed returned incomplete exchange response")
	}
	return &result, nil
}

func (c *Client) SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncPage, error) {
	body := map[string]string{
		"access_token": accessToken,
		"cursor":       cursor,
	}

	var page SyncPage
	if err := c.post(ctx, syncPath, body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetAccounts(ctx context.Context, accessToken string) ([]Account, error) {
	body := map[string]string{"access_token": accessToken}

	var result struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.post(ctx, accountsPath, body, &result); err != nil {
		return nil, err
	}
	return result.Accounts, nil
}

func (c *Client) RemoveItem(ctx context.Context, accessToken string) error {
	body := map[string]string{"access_token": accessToken}
	return c.post(ctx, removePath, body, &struct{}{})
}

// post sends a JSON request with client credentials and decodes the
// response, converting non-200 responses into *APIError.
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Feed-Client-Id", c.clientID)
	req.Header.Set("Feed-Secret", c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = string(raw)
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
