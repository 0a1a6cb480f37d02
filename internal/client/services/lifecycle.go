package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/cachemeta"
	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/registrations"
	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/syncqueue"
	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/dbx"
	"github.com/dmitrijs2005/orbitcheck/internal/logging"
)

type LifecycleManager struct {
	db        *sql.DB
	retention time.Duration
	log       logging.Logger
	now       func() time.Time
}

func NewLifecycleManager(db *sql.DB, retention time.Duration, log logging.Logger) *LifecycleManager {
	if retention <= 0 {
		retention = common.DefaultSyncedRetention
	}
	return &LifecycleManager{db: db, retention: retention, log: log, now: time.Now}
}

// Initialize runs both sweeps. Called once when the scanner starts.
func (m *LifecycleManager) Initialize(ctx context.Context) error {
	if _, err := m.ClearExpiredCaches(ctx); err != nil {
		return err
	}
	if _, err := m.ClearOldSyncedEntries(ctx); err != nil {
		return err
	}
	return nil
}

// ClearExpiredCaches removes the rosters whose TTL has passed and returns how
// many events were cleared. Pending queue entries are left alone so no mark
// is lost.
func (m *LifecycleManager) ClearExpiredCaches(ctx context.Context) (int, error) {
	expired, err := cachemeta.NewSQLiteRepository(m.db).ListExpired(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("list expired caches: %w", err)
	}

	cleared := 0
	for _, meta := range expired {
		var removed int64
		err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			n, err := registrations.NewSQLiteRepository(tx).DeleteByEvent(ctx, meta.EventID)
			if err != nil {
				return err
			}
			removed = n
			return cachemeta.NewSQLiteRepository(tx).Delete(ctx, meta.EventID)
		})
		if err != nil {
			return cleared, fmt.Errorf("clear cache of event %s: %w", meta.EventID, err)
		}
		cleared++
		m.log.Info(ctx, "expired roster cleared", "event_id", meta.EventID, "registrations", removed)
	}
	return cleared, nil
}

// ClearOldSyncedEntries deletes synced queue entries older than the
// retention window.
func (m *LifecycleManager) ClearOldSyncedEntries(ctx context.Context) (int64, error) {
	cutoff := m.now().Add(-m.retention)
	n, err := syncqueue.NewSQLiteRepository(m.db).DeleteSyncedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("clear synced entries: %w", err)
	}
	if n > 0 {
		m.log.Info(ctx, "old synced entries removed", "count", n)
	}
	return n, nil
}
