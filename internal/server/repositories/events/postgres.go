package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/dbx"
	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	"github.com/dmitrijs2005/orbitcheck/internal/server/repositories/pgerr"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts event. A duplicate id yields common.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	query :=
		`INSERT INTO events (id, name)
		 VALUES ($1, $2)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query, event.ID, event.Name).Scan(&event.CreatedAt)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return nil, fmt.Errorf("event %s: %w", event.ID, common.ErrConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return event, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	query :=
		`SELECT id, name, created_at FROM events
		 WHERE id = $1
		 `

	event := &models.Event{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&event.ID, &event.Name, &event.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return event, nil
}
