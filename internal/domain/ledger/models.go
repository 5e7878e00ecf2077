package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"finlink/internal/infrastructure/bankfeed"
)

// Source marks where a transaction came from. Manual transactions are
// never touched by reconciliation.
type Source string

const (
	SourceManual Source = "manual"
	SourceRemote Source = "remote"
)

// Uncategorized is the fallback label when the feed supplies no category.
const Uncategorized = "Uncategorized"

const dateLayout = "2006-01-02"

// Transaction is a ledger entry, either manually entered or synced from
// the remote feed.
type Transaction struct {
	ID           int64           `json:"id"`
	UserID       int64           `json:"userId"`
	LinkedItemID *int64          `json:"linkedItemId,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category"`
	Description  string          `json:"description"`
	Date         time.Time       `json:"date"`
	RemoteID     *string         `json:"remoteTransactionId,omitempty"`
	Source       Source          `json:"source"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// RemoteUpsert carries one added or modified delta translated to local
// conventions, ready for storage.
type RemoteUpsert struct {
	RemoteID     string
	UserID       int64
	LinkedItemID int64
	Amount       decimal.Decimal
	Category     string
	Description  string
	Date         time.Time
}

// RemoteDelete identifies a remote transaction to remove for one user.
type RemoteDelete struct {
	RemoteID string
	UserID   int64
}

// Page is one feed page translated to local terms. It is applied to
// storage as a single atomic unit, adds before modifies before removes.
type Page struct {
	Added    []RemoteUpsert
	Modified []RemoteUpsert
	Removed  []RemoteDelete
}

// FromDelta translates a feed delta into local conventions. The feed is
// debit-positive; locally expenses are negative. The sign flip happens
// here and nowhere else, so added and modified deltas both pass through
// this function exactly once.
func FromDelta(d bankfeed.Delta, userID, linkedItemID int64) (RemoteUpsert, error) {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		return RemoteUpsert{}, fmt.Errorf("failed to parse amount %q for delta %s: %w", d.Amount, d.TransactionID, err)
	}

	date, err := time.Parse(dateLayout, d.Date)
	if err != nil {
		return RemoteUpsert{}, fmt.Errorf("failed to parse date %q for delta %s: %w", d.Date, d.TransactionID, err)
	}

	return RemoteUpsert{
		RemoteID:     d.TransactionID,
		UserID:       userID,
		LinkedItemID: linkedItemID,
		Amount:       amount.Neg(),
		Category:     resolveCategory(d),
		Description:  d.Name,
		Date:         date,
	}, nil
}

// resolveCategory picks the structured primary category when present,
// falls back to the first legacy entry, then to Uncategorized.
func resolveCategory(d bankfeed.Delta) string {
	if d.Category != nil && d.Category.Primary != "" {
		return d.Category.Primary
	}
	if len(d.LegacyCategories) > 0 && d.LegacyCategories[0] != "" {
		return d.LegacyCategories[0]
	}
	return Uncategorized
}
