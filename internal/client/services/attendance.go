package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/client/models"
	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/registrations"
	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/syncqueue"
	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/dbx"
	"github.com/dmitrijs2005/orbitcheck/internal/logging"
	"github.com/google/uuid"
)

// Kicker starts a background queue drain.
type Kicker interface {
	Kick()
}

type AttendanceService struct {
	db    *sql.DB
	log   logging.Logger
	now   func() time.Time
	newID func() string

	online func() bool
	kicker Kicker
}

func NewAttendanceService(db *sql.DB, log logging.Logger) *AttendanceService {
	return &AttendanceService{db: db, log: log, now: time.Now, newID: uuid.NewString}
}

// SetAutoSync makes every first mark kick k while online reports true.
func (s *AttendanceService) SetAutoSync(online func() bool, k Kicker) {
	s.online = online
	s.kicker = k
}

// MarkLocal records the check-in of qrSignature by operatorID. The row update
// and the queue insert commit together. Marking an already marked pass
// returns it unchanged and queues nothing.
func (s *AttendanceService) MarkLocal(ctx context.Context, qrSignature string, operatorID string) (*models.CachedRegistration, error) {
	var (
		result  *models.CachedRegistration
		created bool
	)

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		regs := registrations.NewSQLiteRepository(tx)
		queue := syncqueue.NewSQLiteRepository(tx)

		reg, err := regs.GetBySignature(ctx, qrSignature)
		if err != nil {
			return err
		}
		if reg.AttendanceMarked {
			result = reg
			return nil
		}

		// A pending entry without a marked row means the roster was cleared
		// and downloaded again before the mark was pushed. Restore the row.
		pending, err := queue.GetPending(ctx, reg.RegistrationID)
		switch {
		case err == nil:
			if err := regs.MarkAttended(ctx, qrSignature, pending.MarkedAt, pending.MarkedBy); err != nil {
				return err
			}
			reg.AttendanceMarked = true
			reg.MarkedAt = &pending.MarkedAt
			reg.MarkedBy = pending.MarkedBy
			result = reg
			return nil
		case !errors.Is(err, common.ErrNotFound):
			return err
		}

		at := s.now().UTC()
		if err := regs.MarkAttended(ctx, qrSignature, at, operatorID); err != nil {
			return err
		}

		entry := &models.SyncQueueEntry{
			ID:             s.newID(),
			RegistrationID: reg.RegistrationID,
			EventID:        reg.EventID,
			MarkedAt:       at,
			MarkedBy:       operatorID,
			Status:         models.SyncStatusPending,
		}
		if err := queue.Insert(ctx, entry); err != nil {
			return fmt.Errorf("enqueue: %w", err)
		}

		reg.AttendanceMarked = true
		reg.MarkedAt = &at
		reg.MarkedBy = operatorID
		result = reg
		created = true
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("mark attendance: %w", err)
	}

	if created {
		s.log.Info(ctx, "attendance marked", "registration_id", result.RegistrationID, "event_id", result.EventID, "by", operatorID)
		if s.kicker != nil && s.online != nil && s.online() {
			s.kicker.Kick()
		}
	}
	return result, nil
}
