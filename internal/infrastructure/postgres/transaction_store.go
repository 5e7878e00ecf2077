package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"finlink/internal/domain/ledger"
)

// TransactionStore persists ledger transactions synced from the remote
// feed. It implements ledger.Store.
type TransactionStore struct {
	db *DB
}

func NewTransactionStore(db *DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// ApplyPage applies one translated feed page inside a single storage
// transaction. Adds rely on the remote_transaction_id unique constraint
// for dedup: a re-applied page inserts nothing new. Modifies and removes
// match on remote id and owner, so deltas for rows the user does not own
// are silent no-ops.
func (s *TransactionStore) ApplyPage(ctx context.Context, page ledger.Page) error {
	tx, span, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer span.End()
	defer tx.Rollback()

	insertQuery := `
		INSERT INTO transactions (user_id, linked_item_id, amount, category, description, date, remote_transaction_id, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'remote')
		ON CONFLICT (remote_transaction_id) DO NOTHING
	`
	for _, up := range page.Added {
		if _, err := tx.ExecContext(ctx, insertQuery,
			up.UserID, up.LinkedItemID, up.Amount, up.Category, up.Description, up.Date, up.RemoteID,
		); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("linked item %d no longer exists: %w", up.LinkedItemID, err)
			}
			return fmt.Errorf("failed to insert transaction %s: %w", up.RemoteID, err)
		}
	}

	updateQuery := `
		UPDATE transactions
		SET amount = $1, category = $2, description = $3, date = $4
		WHERE remote_transaction_id = $5 AND user_id = $6
	`
	for _, up := range page.Modified {
		if _, err := tx.ExecContext(ctx, updateQuery,
			up.Amount, up.Category, up.Description, up.Date, up.RemoteID, up.UserID,
		); err != nil {
			return fmt.Errorf("failed to update transaction %s: %w", up.RemoteID, err)
		}
	}

	deleteQuery := `
		DELETE FROM transactions
		WHERE remote_transaction_id = $1 AND user_id = $2
	`
	for _, del := range page.Removed {
		if _, err := tx.ExecContext(ctx, deleteQuery, del.RemoteID, del.UserID); err != nil {
			return fmt.Errorf("failed to delete transaction %s: %w", del.RemoteID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit page: %w", err)
	}

	return nil
}

func (s *TransactionStore) DeleteRemoteForUser(ctx context.Context, userID int64) (int64, error) {
	query := `
		DELETE FROM transactions
		WHERE user_id = $1 AND source = 'remote' AND remote_transaction_id IS NOT NULL
	`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete synced transactions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

func (s *TransactionStore) DeleteRemoteForItem(ctx context.Context, userID, linkedItemID int64) (int64, error) {
	query := `
		DELETE FROM transactions
		WHERE user_id = $1 AND linked_item_id = $2 AND source = 'remote' AND remote_transaction_id IS NOT NULL
	`

	result, err := s.db.ExecContext(ctx, query, userID, linkedItemID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete synced transactions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows, nil
}

// isForeignKeyViolation reports whether the error is Postgres error
// 23503, raised when an insert references a linked item deleted by a
// concurrent disconnect.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
