package link

import (
	"errors"
	"time"
)

// ErrItemNotFound is returned when a user has no linked item matching a
// lookup, or no linked items at all.
var ErrItemNotFound = errors.New("linked item not found")

// LinkedItem is one user's connection to one financial institution via
// the remote feed. The credential is stored encrypted; the cursor is the
// feed's opaque pagination token, nil meaning "sync from the beginning".
type LinkedItem struct {
	ID                  int64     `json:"id"`
	UserID              int64     `json:"userId"`
	EncryptedCredential string    `json:"-"`
	RemoteItemID        string    `json:"remoteItemId"`
	InstitutionID       string    `json:"institutionId"`
	InstitutionName     string    `json:"institutionName"`
	Cursor              *string   `json:"-"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// UpsertItemParams creates or refreshes a linked item, keyed on the
// globally unique remote item id.
type UpsertItemParams struct {
	UserID              int64
	EncryptedCredential string
	RemoteItemID        string
	InstitutionID       string
	InstitutionName     string
}

// LinkResult is returned to the caller after a successful credential
// exchange.
type LinkResult struct {
	RemoteItemID    string `json:"itemId"`
	InstitutionName string `json:"institutionName"`
}

// DisconnectResult reports the local cleanup performed on disconnect.
type DisconnectResult struct {
	TransactionsRemoved int64 `json:"transactionsRemoved"`
}

// CleanupScope selects how much transaction history a disconnect erases.
type CleanupScope string

const (
	// CleanupScopeUser deletes every remote-sourced transaction the user
	// has. This preserves the historically observed behavior, even though
	// it erases transactions from institutions that remain linked.
	CleanupScopeUser CleanupScope = "user"

	// CleanupScopeItem deletes only transactions recorded against the
	// disconnected item.
	CleanupScopeItem CleanupScope = "item"
)
