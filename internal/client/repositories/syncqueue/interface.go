// Package syncqueue is the scanner's local log of attendance mutations that
// still have to reach the remote store.
package syncqueue

import (
	"context"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/client/models"
)

type Repository interface {
	Insert(ctx context.Context, e *models.SyncQueueEntry) error
	// ListPending returns pending entries, oldest mark first.
	ListPending(ctx context.Context) ([]*models.SyncQueueEntry, error)
	// GetPending returns the pending entry of a registration, or
	// common.ErrNotFound.
	GetPending(ctx context.Context, registrationID string) (*models.SyncQueueEntry, error)
	MarkSynced(ctx context.Context, id string, at time.Time) error
	RecordFailure(ctx context.Context, id string, reason string) error
	DeleteSyncedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	// CountPending counts pending entries of one event, or of all events when
	// eventID is empty.
	CountPending(ctx context.Context, eventID string) (int, error)
}
