// Package operators stores door operator accounts.
package operators

import (
	"context"

	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, op *models.Operator) (*models.Operator, error)
	GetByUsername(ctx context.Context, username string) (*models.Operator, error)
}
