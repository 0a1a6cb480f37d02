package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/client/client"
	"github.com/dmitrijs2005/orbitcheck/internal/client/models"
	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/cachemeta"
	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/registrations"
	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/syncqueue"
	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/dbx"
	"github.com/dmitrijs2005/orbitcheck/internal/logging"
)

// RosterError reports a failed download. Nothing was written to the cache.
// It matches both common.ErrDownloadFailed and the underlying cause.
type RosterError struct {
	EventID string
	Err     error
}

func (e *RosterError) Error() string {
	return fmt.Sprintf("download roster for event %s: %v", e.EventID, e.Err)
}

func (e *RosterError) Unwrap() []error {
	return []error{common.ErrDownloadFailed, e.Err}
}

type RosterService struct {
	db     *sql.DB
	remote client.RemoteStore
	ttl    time.Duration
	log    logging.Logger
	now    func() time.Time
}

func NewRosterService(db *sql.DB, remote client.RemoteStore, ttl time.Duration, log logging.Logger) *RosterService {
	if ttl <= 0 {
		ttl = common.DefaultCacheTTL
	}
	return &RosterService{db: db, remote: remote, ttl: ttl, log: log, now: time.Now}
}

// Download fetches the full roster of eventID and replaces the local snapshot
// in a single transaction. An empty eventName falls back to the name the
// server returns.
func (s *RosterService) Download(ctx context.Context, eventID string, eventName string) (int, error) {
	roster, err := s.remote.FetchByEvent(ctx, eventID)
	if err != nil {
		return 0, &RosterError{EventID: eventID, Err: err}
	}

	regs := make([]models.CachedRegistration, 0, len(roster.Registrations))
	for _, r := range roster.Registrations {
		if r.QRSignature == "" || r.RegistrationID == "" {
			return 0, &RosterError{EventID: eventID, Err: fmt.Errorf("registration %q without key fields", r.RegistrationID)}
		}
		if r.EventID != "" && r.EventID != eventID {
			return 0, &RosterError{EventID: eventID, Err: fmt.Errorf("registration %s belongs to event %s", r.RegistrationID, r.EventID)}
		}
		regs = append(regs, models.CachedRegistration{
			QRSignature:    r.QRSignature,
			RegistrationID: r.RegistrationID,
			OrbitID:        r.OrbitID,
			EventID:        eventID,
			Name:           r.Name,
			Email:          r.Email,
			College:        r.College,
		})
	}

	if eventName == "" {
		eventName = roster.EventName
	}

	fetchedAt := s.now().UTC()
	meta := &models.CacheMetadata{
		EventID:     eventID,
		EventName:   eventName,
		FetchedAt:   fetchedAt,
		RecordCount: len(regs),
		ExpiresAt:   fetchedAt.Add(s.ttl),
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := registrations.NewSQLiteRepository(tx).ReplaceForEvent(ctx, eventID, regs); err != nil {
			return err
		}
		return cachemeta.NewSQLiteRepository(tx).Upsert(ctx, meta)
	})
	if err != nil {
		return 0, &RosterError{EventID: eventID, Err: err}
	}

	s.log.Info(ctx, "roster downloaded", "event_id", eventID, "count", len(regs))
	return len(regs), nil
}

// IsValid reports whether the event has a snapshot that has not expired yet.
func (s *RosterService) IsValid(ctx context.Context, eventID string) (bool, error) {
	meta, err := cachemeta.NewSQLiteRepository(s.db).Get(ctx, eventID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return meta.IsValidAt(s.now()), nil
}

func (s *RosterService) ListForEvent(ctx context.Context, eventID string) ([]models.CachedRegistration, error) {
	return registrations.NewSQLiteRepository(s.db).ListByEvent(ctx, eventID)
}

// Events lists the metadata of every cached roster, newest first.
func (s *RosterService) Events(ctx context.Context) ([]models.CacheMetadata, error) {
	return cachemeta.NewSQLiteRepository(s.db).List(ctx)
}

// Stats counts cached and marked registrations of an event together with
// its marks still waiting for sync.
func (s *RosterService) Stats(ctx context.Context, eventID string) (models.EventStats, error) {
	total, marked, err := registrations.NewSQLiteRepository(s.db).CountByEvent(ctx, eventID)
	if err != nil {
		return models.EventStats{}, err
	}
	pending, err := syncqueue.NewSQLiteRepository(s.db).CountPending(ctx, eventID)
	if err != nil {
		return models.EventStats{}, err
	}
	return models.EventStats{EventID: eventID, Total: total, Marked: marked, PendingQueue: pending}, nil
}
