package sync

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"finlink/internal/infrastructure/bankfeed"
)

// ItemAccounts is the balance view of one linked item. When fetching
// fails, Accounts is empty and Error carries a short description; other
// items in the same response are unaffected.
type ItemAccounts struct {
	RemoteItemID    string             `json:"itemId"`
	InstitutionName string             `json:"institutionName"`
	Accounts        []bankfeed.Account `json:"accounts"`
	Error           string             `json:"error,omitempty"`
}

// Aggregator collects account balances across a user's linked items.
type Aggregator struct {
	items ItemRegistry
	feed  bankfeed.ClientInterface
	log   zerolog.Logger
}

func NewAggregator(items ItemRegistry, feed bankfeed.ClientInterface, log zerolog.Logger) *Aggregator {
	return &Aggregator{
		items: items,
		feed:  feed,
		log:   log,
	}
}

// ListAccounts fetches live balances for each of the user's linked
// items. A failing item produces an entry with its error instead of
// failing the whole listing.
func (a *Aggregator) ListAccounts(ctx context.Context, userID int64) ([]ItemAccounts, error) {
	items, err := a.items.ListItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked items: %w", err)
	}

	results := make([]ItemAccounts, 0, len(items))
	for _, item := range items {
		entry := ItemAccounts{
			RemoteItemID:    item.RemoteItemID,
			InstitutionName: item.InstitutionName,
		}

		token, err := a.items.Credential(item)
		if err == nil {
			entry.Accounts, err = a.feed.GetAccounts(ctx, token)
		}
		if err != nil {
			a.log.Warn().
				Err(err).
				Int64("user_id", userID).
				Str("remote_item_id", item.RemoteItemID).
				Msg("failed to fetch accounts for item")
			entry.Accounts = nil
			entry.Error = err.Error()
		}

		results = append(results, entry)
	}

	return results, nil
}
