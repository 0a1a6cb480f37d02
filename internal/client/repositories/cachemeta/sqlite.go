package cachemeta

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

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, m *models.CacheMetadata) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cache_metadata (event_id, event_name, fetched_at, record_count, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO UPDATE SET
			event_name = excluded.event_name,
			fetched_at = excluded.fetched_at,
			record_count = excluded.record_count,
			expires_at = excluded.expires_at
	`, m.EventID, m.EventName, timex.ToMillis(m.FetchedAt), m.RecordCount, timex.ToMillis(m.ExpiresAt))
	if err != nil {
		return fmt.Errorf("failed to upsert cache metadata[%s]: %w", m.EventID, err)
	}
	return nil
}

func scanMetadata(s interface{ Scan(...any) error }) (*models.CacheMetadata, error) {
	var (
		m                  models.CacheMetadata
		fetched, expiresAt int64
	)
	if err := s.Scan(&m.EventID, &m.EventName, &fetched, &m.RecordCount, &expiresAt); err != nil {
		return nil, err
	}
	m.FetchedAt = timex.FromMillis(fetched)
	m.ExpiresAt = timex.FromMillis(expiresAt)
	return &m, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, eventID string) (*models.CacheMetadata, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT event_id, event_name, fetched_at, record_count, expires_at
		FROM cache_metadata WHERE event_id = ?`, eventID)

	m, err := scanMetadata(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache metadata[%s]: %w", eventID, err)
	}
	return m, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.CacheMetadata, error) {
	return r.query(ctx, `
		SELECT event_id, event_name, fetched_at, record_count, expires_at
		FROM cache_metadata ORDER BY fetched_at DESC`)
}

func (r *SQLiteRepository) ListExpired(ctx context.Context, now time.Time) ([]models.CacheMetadata, error) {
	return r.query(ctx, `
		SELECT event_id, event_name, fetched_at, record_count, expires_at
		FROM cache_metadata WHERE expires_at <= ? ORDER BY expires_at`, timex.ToMillis(now))
}

func (r *SQLiteRepository) query(ctx context.Context, query string, args ...any) ([]models.CacheMetadata, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache metadata: %w", err)
	}
	defer rows.Close()

	var result []models.CacheMetadata
	for rows.Next() {
		m, err := scanMetadata(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cache metadata: %w", err)
		}
		result = append(result, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, eventID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cache_metadata WHERE event_id = ?`, eventID); err != nil {
		return fmt.Errorf("failed to delete cache metadata[%s]: %w", eventID, err)
	}
	return nil
}
