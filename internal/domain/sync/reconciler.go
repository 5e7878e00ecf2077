package sync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"finlink/internal/domain/ledger"
	"finlink/internal/domain/link"
	"finlink/internal/infrastructure/bankfeed"
)

var syncTracer = otel.Tracer("finlink.sync")

// ItemRegistry is the slice of the linked-item registry the reconciler
// and the balance aggregator depend on.
type ItemRegistry interface {
	ListItems(ctx context.Context, userID int64) ([]*link.LinkedItem, error)
	Credential(item *link.LinkedItem) (string, error)
	AdvanceCursor(ctx context.Context, itemID int64, cursor string) error
}

// SyncResult counts the deltas applied across all of a user's items in
// one run. Counts are page-applied: an add that deduplicated against an
// existing row still counts, since the feed sent it and the page
// processed it.
type SyncResult struct {
	Added    int `json:"added"`
	Modified int `json:"modified"`
	Removed  int `json:"removed"`
}

// Reconciler pulls transaction deltas from the remote feed and applies
// them to the ledger, one linked item at a time.
type Reconciler struct {
	items ItemRegistry
	feed  bankfeed.ClientInterface
	store ledger.Store
	log   zerolog.Logger
}

func NewReconciler(items ItemRegistry, feed bankfeed.ClientInterface, store ledger.Store, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		items: items,
		feed:  feed,
		store: store,
		log:   log,
	}
}

// SyncAll reconciles every linked item the user has, sequentially in
// creation order. Items already reconciled stay committed when a later
// item fails; the error then reports the item that stopped the run.
func (r *Reconciler) SyncAll(ctx context.Context, userID int64) (*SyncResult, error) {
	ctx, span := syncTracer.Start(ctx, "sync.SyncAll", trace.WithAttributes(
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	syncID := uuid.New().String()
	log := r.log.With().Str("sync_id", syncID).Int64("user_id", userID).Logger()

	items, err := r.items.ListItems(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list linked items: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("user %d has no linked items: %w", userID, link.ErrItemNotFound)
	}

	result := &SyncResult{}
	for _, item := range items {
		if err := r.syncItem(ctx, log, item, result); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to sync item %s: %w", item.RemoteItemID, err)
		}
	}

	span.SetAttributes(
		attribute.Int("sync.added", result.Added),
		attribute.Int("sync.modified", result.Modified),
		attribute.Int("sync.removed", result.Removed),
	)
	log.Info().
		Int("added", result.Added).
		Int("modified", result.Modified).
		Int("removed", result.Removed).
		Msg("sync complete")

	return result, nil
}

// syncItem drains the feed's pagination for one item. The cursor
// advances in memory between pages and is persisted only once the feed
// reports no more pages: a crash mid-item resumes from the previous
// durable cursor and re-fetches pages whose application is idempotent.
func (r *Reconciler) syncItem(ctx context.Context, log zerolog.Logger, item *link.LinkedItem, result *SyncResult) error {
	token, err := r.items.Credential(item)
	if err != nil {
		return err
	}

	cursor := ""
	if item.Cursor != nil {
		cursor = *item.Cursor
	}

	pages := 0
	for {
		page, err := r.feed.SyncTransactions(ctx, token, cursor)
		if err != nil {
			return err
		}
		pages++

		applied, err := r.translatePage(page, item)
		if err != nil {
			return err
		}
		if err := r.store.ApplyPage(ctx, applied); err != nil {
			return err
		}

		result.Added += len(page.Added)
		result.Modified += len(page.Modified)
		result.Removed += len(page.Removed)

		cursor = page.NextCursor
		if !page.HasMore {
			break
		}
	}

	if err := r.items.AdvanceCursor(ctx, item.ID, cursor); err != nil {
		return fmt.Errorf("failed to persist cursor: %w", err)
	}

	log.Debug().
		Str("remote_item_id", item.RemoteItemID).
		Int("pages", pages).
		Msg("item reconciled")

	return nil
}

func (r *Reconciler) translatePage(page *bankfeed.SyncPage, item *link.LinkedItem) (ledger.Page, error) {
	var out ledger.Page

	for _, d := range page.Added {
		up, err := ledger.FromDelta(d, item.UserID, item.ID)
		if err != nil {
			return ledger.Page{}, err
		}
		out.Added = append(out.Added, up)
	}
	for _, d := range page.Modified {
		up, err := ledger.FromDelta(d, item.UserID, item.ID)
		if err != nil {
			return ledger.Page{}, err
		}
		out.Modified = append(out.Modified, up)
	}
	for _, d := range page.Removed {
		out.Removed = append(out.Removed, ledger.RemoteDelete{
			RemoteID: d.TransactionID,
			UserID:   item.UserID,
		})
	}

	return out, nil
}
