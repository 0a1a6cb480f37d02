package registrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/dbx"
	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	"github.com/dmitrijs2005/orbitcheck/internal/server/repositories/pgerr"
)

const signatureConstraint = "registrations_qr_signature_uq"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts reg with attendance unset. A duplicate signature yields
// ErrSignatureCollision; any other unique violation (same orbit id twice for
// one event) yields common.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, reg *models.Registration) (*models.Registration, error) {
	query :=
		`INSERT INTO registrations (id, event_id, orbit_id, name, email, college, qr_signature)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		reg.ID, reg.EventID, reg.OrbitID, reg.Name, reg.Email, reg.College, reg.QRSignature).Scan(&reg.CreatedAt)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			if pgerr.ConstraintName(err) == signatureConstraint {
				return nil, ErrSignatureCollision
			}
			return nil, fmt.Errorf("orbit id %s: %w", reg.OrbitID, common.ErrConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return reg, nil
}

// ListByEvent returns every registration of eventID in registration order.
func (r *PostgresRepository) ListByEvent(ctx context.Context, eventID string) ([]models.Registration, error) {
	query :=
		`SELECT id, event_id, orbit_id, name, email, college, qr_signature,
		        attendance_status, check_in_time, checked_in_by, created_at
		 FROM registrations
		 WHERE event_id = $1
		 ORDER BY created_at, id
		 `

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Registration
	for rows.Next() {
		var (
			reg         models.Registration
			checkInTime sql.NullTime
			checkedInBy sql.NullString
		)
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.OrbitID, &reg.Name, &reg.Email, &reg.College,
			&reg.QRSignature, &reg.AttendanceStatus, &checkInTime, &checkedInBy, &reg.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if checkInTime.Valid {
			t := checkInTime.Time.UTC()
			reg.CheckInTime = &t
		}
		reg.CheckedInBy = checkedInBy.String
		result = append(result, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// UpdateAttendance overwrites the attendance fields of one registration. The
// last write wins. An unknown (event, registration) pair yields
// common.ErrNotFound.
func (r *PostgresRepository) UpdateAttendance(ctx context.Context, in models.CheckIn) error {
	query :=
		`UPDATE registrations
		 SET attendance_status = TRUE, check_in_time = $3, checked_in_by = $4
		 WHERE event_id = $1 AND id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, in.EventID, in.RegistrationID, in.CheckInTime.UTC(), in.CheckedInBy)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return dbx.RowsAffectedOne(res, common.ErrNotFound)
}

// Stats counts registrations of eventID, total and checked in.
func (r *PostgresRepository) Stats(ctx context.Context, eventID string) (models.EventStats, error) {
	query :=
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE attendance_status)
		 FROM registrations
		 WHERE event_id = $1
		 `

	stats := models.EventStats{EventID: eventID}
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&stats.Total, &stats.CheckedIn); err != nil {
		return models.EventStats{}, fmt.Errorf("db error: %w", err)
	}

	return stats, nil
}
