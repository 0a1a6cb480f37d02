package syncqueue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/client/models"
	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/dbx"
	"github.com/dmitrijs2005/orbitcheck/internal/timex"
)

// maxReasonLen caps last_error so a chatty transport error cannot bloat the log.
const maxReasonLen = 512

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.SyncQueueEntry) error {
	status := e.Status
	if status == "" {
		status = models.SyncStatusPending
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_queue (id, registration_id, event_id, marked_at, marked_by, sync_status, attempts)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.RegistrationID, e.EventID, timex.ToMillis(e.MarkedAt), e.MarkedBy, string(status), e.Attempts)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", e.RegistrationID, err)
	}
	return nil
}

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]*models.SyncQueueEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, registration_id, event_id, marked_at, marked_by, sync_status, attempts, last_error, synced_at
		FROM sync_queue WHERE sync_status = ? ORDER BY marked_at, id`, string(models.SyncStatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to select pending entries: %w", err)
	}
	defer rows.Close()

	var pending []*models.SyncQueueEntry
	for rows.Next() {
		var (
			e        models.SyncQueueEntry
			markedAt int64
			status   string
			syncedAt sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.RegistrationID, &e.EventID, &markedAt, &e.MarkedBy,
			&status, &e.Attempts, &e.LastError, &syncedAt); err != nil {
			return nil, err
		}
		e.MarkedAt = timex.FromMillis(markedAt)
		e.Status = models.SyncStatus(status)
		if syncedAt.Valid {
			t := timex.FromMillis(syncedAt.Int64)
			e.SyncedAt = &t
		}
		pending = append(pending, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return pending, nil
}

func (r *SQLiteRepository) GetPending(ctx context.Context, registrationID string) (*models.SyncQueueEntry, error) {
	var (
		e        models.SyncQueueEntry
		markedAt int64
		status   string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, registration_id, event_id, marked_at, marked_by, sync_status, attempts, last_error
		FROM sync_queue WHERE registration_id = ? AND sync_status = ?`,
		registrationID, string(models.SyncStatusPending)).
		Scan(&e.ID, &e.RegistrationID, &e.EventID, &markedAt, &e.MarkedBy, &status, &e.Attempts, &e.LastError)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select pending entry: %w", err)
	}
	e.MarkedAt = timex.FromMillis(markedAt)
	e.Status = models.SyncStatus(status)
	return &e, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sync_queue SET sync_status = ?, synced_at = ?, last_error = ''
		WHERE id = ? AND sync_status = ?`,
		string(models.SyncStatusSynced), timex.ToMillis(at), id, string(models.SyncStatusPending))
	if err != nil {
		return fmt.Errorf("failed to mark entry synced: %w", err)
	}
	return dbx.RowsAffectedOne(res, common.ErrNotFound)
}

func (r *SQLiteRepository) RecordFailure(ctx context.Context, id string, reason string) error {
	if len(reason) > maxReasonLen {
		reason = reason[:maxReasonLen]
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE sync_queue SET attempts = attempts + 1, last_error = ?
		WHERE id = ? AND sync_status = ?`,
		reason, id, string(models.SyncStatusPending))
	if err != nil {
		return fmt.Errorf("failed to record sync failure: %w", err)
	}
	return dbx.RowsAffectedOne(res, common.ErrNotFound)
}

func (r *SQLiteRepository) DeleteSyncedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM sync_queue WHERE sync_status = ? AND synced_at < ?`,
		string(models.SyncStatusSynced), timex.ToMillis(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to prune synced entries: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CountPending(ctx context.Context, eventID string) (int, error) {
	query := `SELECT COUNT(*) FROM sync_queue WHERE sync_status = ?`
	args := []any{string(models.SyncStatusPending)}
	if eventID != "" {
		query += ` AND event_id = ?`
		args = append(args, eventID)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending entries: %w", err)
	}
	return n, nil
}
