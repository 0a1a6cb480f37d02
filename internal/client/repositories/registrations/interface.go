// Package registrations persists the downloaded event rosters on the scanner.
//
// Rows are keyed by QR signature so that verification is a single primary key
// lookup. Implementations bind to a dbx.DBTX and can therefore run inside a
// caller-owned transaction.
package registrations

import (
	"context"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/client/models"
)

// Repository is the storage contract for CachedRegistration rows.
type Repository interface {
	// ReplaceForEvent swaps the event's rows for regs. Local attendance marks
	// of signatures present in both the old and new set are carried over, as
	// are marks still waiting in the sync queue.
	ReplaceForEvent(ctx context.Context, eventID string, regs []models.CachedRegistration) error
	// GetBySignature returns common.ErrNotFound when the signature is unknown.
	GetBySignature(ctx context.Context, qrSignature string) (*models.CachedRegistration, error)
	// MarkAttended flips an unmarked row; returns common.ErrNotFound if no
	// unmarked row with that signature exists.
	MarkAttended(ctx context.Context, qrSignature string, at time.Time, by string) error
	ListByEvent(ctx context.Context, eventID string) ([]models.CachedRegistration, error)
	DeleteByEvent(ctx context.Context, eventID string) (int64, error)
	CountByEvent(ctx context.Context, eventID string) (total int, marked int, err error)
}
