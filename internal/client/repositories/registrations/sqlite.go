package registrations

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

const selectColumns = `qr_signature, registration_id, orbit_id, event_id, name, email, college,
	attendance_marked, marked_at, marked_by`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(s rowScanner) (*models.CachedRegistration, error) {
	var (
		r        models.CachedRegistration
		markedAt sql.NullInt64
		markedBy sql.NullString
	)
	if err := s.Scan(&r.QRSignature, &r.RegistrationID, &r.OrbitID, &r.EventID,
		&r.Name, &r.Email, &r.College, &r.AttendanceMarked, &markedAt, &markedBy); err != nil {
		return nil, err
	}
	if markedAt.Valid {
		t := timex.FromMillis(markedAt.Int64)
		r.MarkedAt = &t
	}
	r.MarkedBy = markedBy.String
	return &r, nil
}

type carriedMark struct {
	at int64
	by string
}

// ReplaceForEvent must run inside a transaction to be all-or-nothing; the
// roster service takes care of that.
func (r *SQLiteRepository) ReplaceForEvent(ctx context.Context, eventID string, regs []models.CachedRegistration) error {
	marks, err := r.markedForEvent(ctx, eventID)
	if err != nil {
		return err
	}
	queued, err := r.pendingForEvent(ctx, eventID)
	if err != nil {
		return err
	}

	if _, err := r.DeleteByEvent(ctx, eventID); err != nil {
		return err
	}

	query := `INSERT INTO registrations (qr_signature, registration_id, orbit_id, event_id, name, email,
			college, attendance_marked, marked_at, marked_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, reg := range regs {
		var (
			marked   bool
			markedAt sql.NullInt64
			markedBy sql.NullString
		)
		m, ok := marks[reg.QRSignature]
		if !ok {
			m, ok = queued[reg.RegistrationID]
		}
		if ok {
			marked = true
			markedAt = sql.NullInt64{Int64: m.at, Valid: true}
			markedBy = sql.NullString{String: m.by, Valid: true}
		}
		if _, err := r.db.ExecContext(ctx, query, reg.QRSignature, reg.RegistrationID, reg.OrbitID, eventID,
			reg.Name, reg.Email, reg.College, marked, markedAt, markedBy); err != nil {
			return fmt.Errorf("failed to insert registration %s: %w", reg.RegistrationID, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) markedForEvent(ctx context.Context, eventID string) (map[string]carriedMark, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT qr_signature, marked_at, marked_by FROM registrations WHERE event_id = ? AND attendance_marked = 1`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to select marked registrations: %w", err)
	}
	defer rows.Close()

	marks := make(map[string]carriedMark)
	for rows.Next() {
		var (
			sig string
			at  sql.NullInt64
			by  sql.NullString
		)
		if err := rows.Scan(&sig, &at, &by); err != nil {
			return nil, err
		}
		marks[sig] = carriedMark{at: at.Int64, by: by.String}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return marks, nil
}

// pendingForEvent returns the unsynced marks of an event keyed by registration
// id. They outlive the cached rows when an expired roster is cleared.
func (r *SQLiteRepository) pendingForEvent(ctx context.Context, eventID string) (map[string]carriedMark, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT registration_id, marked_at, marked_by FROM sync_queue
		 WHERE event_id = ? AND sync_status = 'pending'`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending marks: %w", err)
	}
	defer rows.Close()

	marks := make(map[string]carriedMark)
	for rows.Next() {
		var (
			id string
			m  carriedMark
		)
		if err := rows.Scan(&id, &m.at, &m.by); err != nil {
			return nil, err
		}
		marks[id] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return marks, nil
}

func (r *SQLiteRepository) GetBySignature(ctx context.Context, qrSignature string) (*models.CachedRegistration, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM registrations WHERE qr_signature = ?`, qrSignature)

	reg, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return reg, nil
}

func (r *SQLiteRepository) MarkAttended(ctx context.Context, qrSignature string, at time.Time, by string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET attendance_marked = 1, marked_at = ?, marked_by = ?
		 WHERE qr_signature = ? AND attendance_marked = 0`,
		timex.ToMillis(at), by, qrSignature)
	if err != nil {
		return fmt.Errorf("failed to mark registration: %w", err)
	}
	return dbx.RowsAffectedOne(res, common.ErrNotFound)
}

func (r *SQLiteRepository) ListByEvent(ctx context.Context, eventID string) ([]models.CachedRegistration, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM registrations WHERE event_id = ? ORDER BY name, registration_id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to select registrations: %w", err)
	}
	defer rows.Close()

	result := make([]models.CachedRegistration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM registrations WHERE event_id = ?`, eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete registrations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) CountByEvent(ctx context.Context, eventID string) (int, int, error) {
	var total, marked int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(attendance_marked), 0) FROM registrations WHERE event_id = ?`, eventID).
		Scan(&total, &marked)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return total, marked, nil
}
