// Package registrations is the authoritative store of attendee passes and
// their attendance state.
package registrations

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
)

// ErrSignatureCollision is returned by Create when the generated signature
// already exists. Callers may retry with a fresh token.
var ErrSignatureCollision = fmt.Errorf("qr signature collision: %w", common.ErrConflict)

type Repository interface {
	Create(ctx context.Context, reg *models.Registration) (*models.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.Registration, error)
	UpdateAttendance(ctx context.Context, in models.CheckIn) error
	Stats(ctx context.Context, eventID string) (models.EventStats, error)
}
