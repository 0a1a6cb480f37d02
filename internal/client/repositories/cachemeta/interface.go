// Package cachemeta stores one freshness record per downloaded event roster.
package cachemeta

import (
	"context"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/client/models"
)

type Repository interface {
	Upsert(ctx context.Context, m *models.CacheMetadata) error
	// Get returns common.ErrNotFound when the event was never downloaded.
	Get(ctx context.Context, eventID string) (*models.CacheMetadata, error)
	List(ctx context.Context) ([]models.CacheMetadata, error)
	// ListExpired returns metadata whose expiry is at or before now.
	ListExpired(ctx context.Context, now time.Time) ([]models.CacheMetadata, error)
	Delete(ctx context.Context, eventID string) error
}
