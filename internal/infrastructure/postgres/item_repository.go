package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finlink/internal/domain/link"
)

type ItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `id, user_id, credential, remote_item_id, institution_id, institution_name, cursor, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*link.LinkedItem, error) {
	var item link.LinkedItem
	var cursor sql.NullString

	err := row.Scan(
		&item.ID, &item.UserID, &item.EncryptedCredential,
		&item.RemoteItemID, &item.InstitutionID, &item.InstitutionName,
		&cursor, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if cursor.Valid {
		item.Cursor = &cursor.String
	}
	return &item, nil
}

// Upsert creates a linked item or, when the remote item id is already
// registered, refreshes its credential and institution details. The
// existing cursor is preserved so re-linking does not force a full resync.
func (r *ItemRepository) Upsert(ctx context.Context, params link.UpsertItemParams) (*link.LinkedItem, error) {
	query := `
		INSERT INTO linked_items (user_id, credential, remote_item_id, institution_id, institution_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (remote_item_id) DO UPDATE SET
		    credential = EXCLUDED.credential,
		    institution_id = EXCLUDED.institution_id,
		    institution_name = EXCLUDED.institution_name,
		    updated_at = CURRENT_TIMESTAMP
		RETURNING ` + itemColumns

	item, err := scanItem(r.db.QueryRowContext(
		ctx, query,
		params.UserID, params.EncryptedCredential, params.RemoteItemID,
		params.InstitutionID, params.InstitutionName,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert linked item: %w", err)
	}

	return item, nil
}

func (r *ItemRepository) ListByUserID(ctx context.Context, userID int64) ([]*link.LinkedItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM linked_items
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list linked items: %w", err)
	}
	defer rows.Close()

	var items []*link.LinkedItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan linked item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating linked items: %w", err)
	}

	return items, nil
}

func (r *ItemRepository) GetByRemoteID(ctx context.Context, userID int64, remoteItemID string) (*link.LinkedItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM linked_items
		WHERE user_id = $1 AND remote_item_id = $2
	`

	item, err := scanItem(r.db.QueryRowContext(ctx, query, userID, remoteItemID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, link.ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get linked item: %w", err)
	}

	return item, nil
}

func (r *ItemRepository) AdvanceCursor(ctx context.Context, itemID int64, cursor string) error {
	query := `
		UPDATE linked_items
		SET cursor = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`

	result, err := r.db.ExecContext(ctx, query, cursor, itemID)
	if err != nil {
		return fmt.Errorf("failed to advance cursor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return link.ErrItemNotFound
	}

	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, itemID int64) error {
	query := `DELETE FROM linked_items WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete linked item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return link.ErrItemNotFound
	}

	return nil
}

func (r *ItemRepository) ListUserIDsWithItems(ctx context.Context) ([]int64, error) {
	query := `SELECT DISTINCT user_id FROM linked_items ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with linked items: %w", err)
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return userIDs, nil
}
