package operators

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

func (r *PostgresRepository) Create(ctx context.Context, op *models.Operator) (*models.Operator, error) {
	query :=
		`INSERT INTO operators (id, username, salt, verifier)
		 VALUES ($1, $2, $3, $4)
		 `

	_, err := r.db.ExecContext(ctx, query, op.ID, op.Username, op.Salt, op.Verifier)
	if err != nil {
		if pgerr.IsUniqueViolation(err) {
			return nil, fmt.Errorf("operator %s: %w", op.Username, common.ErrConflict)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return op, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Operator, error) {
	query :=
		`SELECT id, username, salt, verifier FROM operators
		 WHERE username = $1
		 `

	op := &models.Operator{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(&op.ID, &op.Username, &op.Salt, &op.Verifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return op, nil
}
