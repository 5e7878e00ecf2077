package ledger

import "context"

// Store persists ledger transactions. ApplyPage must apply the whole
// page as one storage transaction: a crash mid-page leaves nothing
// half-applied, so the page can be fetched and re-applied from the old
// cursor without creating duplicates (adds are idempotent on remote id,
// modifies and removes of absent rows are no-ops).
type Store interface {
	ApplyPage(ctx context.Context, page Page) error

	// DeleteRemoteForUser removes every remote-sourced transaction the
	// user has, regardless of which linked item produced it.
	DeleteRemoteForUser(ctx context.Context, userID int64) (int64, error)

	// DeleteRemoteForItem removes only remote-sourced transactions
	// recorded against one linked item.
	DeleteRemoteForItem(ctx context.Context, userID, linkedItemID int64) (int64, error)
}
