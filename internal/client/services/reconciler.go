package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/client/client"
	"github.com/dmitrijs2005/orbitcheck/internal/client/models"
	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/syncqueue"
	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/logging"
)

const defaultKickTimeout = 30 * time.Second

// Reconciler pushes pending queue entries to the remote store. One drain runs
// at a time per device.
type Reconciler struct {
	queue  syncqueue.Repository
	meta   metadata.Repository
	remote client.RemoteStore
	log    logging.Logger
	now    func() time.Time

	kickTimeout time.Duration

	mu sync.Mutex
	wg sync.WaitGroup
}

func NewReconciler(db *sql.DB, remote client.RemoteStore, kickTimeout time.Duration, log logging.Logger) *Reconciler {
	if kickTimeout <= 0 {
		kickTimeout = defaultKickTimeout
	}
	return &Reconciler{
		queue:       syncqueue.NewSQLiteRepository(db),
		meta:        metadata.NewSQLiteRepository(db),
		remote:      remote,
		log:         log,
		now:         time.Now,
		kickTimeout: kickTimeout,
	}
}

// SyncPending tries every pending entry once, oldest first. A failed remote
// write leaves its entry pending with one more attempt recorded. Only a
// failure to read the queue is returned as an error.
func (r *Reconciler) SyncPending(ctx context.Context) (models.SyncReport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.drain(ctx)
}

func (r *Reconciler) drain(ctx context.Context) (models.SyncReport, error) {
	var report models.SyncReport

	entries, err := r.queue.ListPending(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: read queue: %v", common.ErrSyncFailure, err)
	}

	// Local bookkeeping must land even when ctx expired during the remote call.
	local := context.WithoutCancel(ctx)

	for i, e := range entries {
		if ctx.Err() != nil {
			report.Failed += len(entries) - i
			r.log.Warn(local, "sync interrupted", "remaining", len(entries)-i, "error", ctx.Err())
			break
		}

		update := models.AttendanceUpdate{
			EventID:        e.EventID,
			RegistrationID: e.RegistrationID,
			Attended:       true,
			CheckInTime:    e.MarkedAt,
			CheckedInBy:    e.MarkedBy,
		}

		if err := r.remote.UpdateByKey(ctx, update); err != nil {
			report.Failed++
			r.log.Warn(ctx, "sync entry failed", "entry_id", e.ID, "registration_id", e.RegistrationID, "error", err)
			if rerr := r.queue.RecordFailure(local, e.ID, err.Error()); rerr != nil {
				r.log.Error(ctx, "record sync failure", "entry_id", e.ID, "error", rerr)
			}
			continue
		}

		if err := r.queue.MarkSynced(local, e.ID, r.now().UTC()); err != nil {
			// The remote write is idempotent, so the entry is simply pushed again next time.
			report.Failed++
			r.log.Error(ctx, "mark entry synced", "entry_id", e.ID, "error", err)
			continue
		}
		report.Synced++
	}

	if report.Synced > 0 {
		stamp := r.now().UTC().Format(time.RFC3339)
		if err := r.meta.Set(local, metadata.KeyLastSyncAt, []byte(stamp)); err != nil {
			r.log.Warn(ctx, "save last sync time", "error", err)
		}
	}

	if len(entries) > 0 {
		r.log.Info(local, "sync finished", "synced", report.Synced, "failed", report.Failed)
	}
	return report, nil
}

// Kick starts a drain in the background unless one is already running. The
// outcome is only logged.
func (r *Reconciler) Kick() {
	if !r.mu.TryLock() {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), r.kickTimeout)
		defer cancel()

		if _, err := r.drain(ctx); err != nil {
			r.log.Warn(ctx, "background sync failed", "error", err)
		}
	}()
}

// Wait blocks until background drains started by Kick have returned.
func (r *Reconciler) Wait() {
	r.wg.Wait()
}
