package bankfeed

import "context"

// ClientInterface defines the operations domain services need from the
// remote aggregator feed. Satisfied by *Client; mocked in tests.
type ClientInterface interface {
	ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error)
	SyncTransactions(ctx context.Context, accessToken, cursor string) (*SyncPage, error)
	GetAccounts(ctx context.Context, accessToken string) ([]Account, error)
	RemoveItem(ctx context.Context, accessToken string) error
}
