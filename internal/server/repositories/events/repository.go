// Package events stores the events attendees register for.
package events

import (
	"context"

	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
}
