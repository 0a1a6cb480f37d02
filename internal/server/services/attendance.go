package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/logging"
	"github.com/dmitrijs2005/orbitcheck/internal/server/cache"
	"github.com/dmitrijs2005/orbitcheck/internal/server/eventbus"
	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	"github.com/dmitrijs2005/orbitcheck/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// AttendanceService serves the scanner-facing side of the roster: roster
// download and attendance writes.
type AttendanceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	publisher   eventbus.Publisher
	stats       cache.StatsCache
	log         logging.Logger
}

func NewAttendanceService(db *sql.DB, m repomanager.RepositoryManager, p eventbus.Publisher, c cache.StatsCache, log logging.Logger) *AttendanceService {
	return &AttendanceService{
		db:          db,
		repomanager: m,
		publisher:   p,
		stats:       c,
		log:         log.With("module", "attendance"),
	}
}

// FetchByEvent returns the event and its full roster.
func (s *AttendanceService) FetchByEvent(ctx context.Context, eventID string) (*models.Event, []models.Registration, error) {
	event, err := s.repomanager.Events(s.db).GetByID(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	regs, err := s.repomanager.Registrations(s.db).ListByEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}

	return event, regs, nil
}

// UpdateAttendance overwrites the attendance of one registration. Repeating
// the same write is harmless and the last writer wins. An unknown key yields
// common.ErrNotFound. Publishing and cache invalidation happen after the
// write and only log on failure.
func (s *AttendanceService) UpdateAttendance(ctx context.Context, in models.CheckIn) error {
	if in.EventID == "" || in.CheckInTime.IsZero() || in.CheckedInBy == "" {
		return fmt.Errorf("%w: event id, check-in time and operator are required", common.ErrValidation)
	}
	if _, err := uuid.Parse(in.RegistrationID); err != nil {
		return fmt.Errorf("registration %q: %w", in.RegistrationID, common.ErrNotFound)
	}

	if err := s.repomanager.Registrations(s.db).UpdateAttendance(ctx, in); err != nil {
		return err
	}

	if err := s.stats.Invalidate(ctx, in.EventID); err != nil {
		s.log.Warn(ctx, "stats cache invalidation failed", "event_id", in.EventID, "error", err)
	}
	if err := s.publisher.PublishCheckIn(ctx, in); err != nil {
		s.log.Warn(ctx, "check-in publish failed", "event_id", in.EventID, "registration_id", in.RegistrationID, "error", err)
	}

	s.log.Info(ctx, "attendance updated", "event_id", in.EventID, "registration_id", in.RegistrationID, "operator_id", in.CheckedInBy)
	return nil
}
