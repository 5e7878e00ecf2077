package link

import "context"

// ItemRepository persists linked items. Upsert must be keyed on the
// remote item id so re-linking the same institution refreshes the row
// instead of duplicating it.
type ItemRepository interface {
	Upsert(ctx context.Context, params UpsertItemParams) (*LinkedItem, error)
	ListByUserID(ctx context.Context, userID int64) ([]*LinkedItem, error)
	GetByRemoteID(ctx context.Context, userID int64, remoteItemID string) (*LinkedItem, error)

	// AdvanceCursor persists a new sync cursor and bumps updated_at. It
	// must only be called after every page behind that cursor has been
	// durably committed.
	AdvanceCursor(ctx context.Context, itemID int64, cursor string) error

	Delete(ctx context.Context, itemID int64) error

	// ListUserIDsWithItems returns the users that have at least one
	// linked item, for scheduled background syncs.
	ListUserIDsWithItems(ctx context.Context) ([]int64, error)
}

// Encryptor is the credential vault surface the registry needs.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
