package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"finlink/internal/domain/link"
	"finlink/internal/domain/sync"
)

// LedgerSyncJob reconciles one user's linked items in the background.
type LedgerSyncJob struct {
	userID     int64
	reconciler *sync.Reconciler
}

func NewLedgerSyncJob(userID int64, reconciler *sync.Reconciler) *LedgerSyncJob {
	return &LedgerSyncJob{userID: userID, reconciler: reconciler}
}

// Execute runs the reconciliation. A user whose items were all
// disconnected between scheduling and execution is not an error.
func (j *LedgerSyncJob) Execute(ctx context.Context) error {
	_, err := j.reconciler.SyncAll(ctx, j.userID)
	if errors.Is(err, link.ErrItemNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

func (j *LedgerSyncJob) UserID() string {
	return strconv.FormatInt(j.userID, 10)
}

func (j *LedgerSyncJob) Description() string {
	return fmt.Sprintf("ledger sync for user %d", j.userID)
}
