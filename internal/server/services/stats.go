package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/logging"
	"github.com/dmitrijs2005/orbitcheck/internal/server/cache"
	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	"github.com/dmitrijs2005/orbitcheck/internal/server/repositories/repomanager"
)

// StatsService answers dashboard queries, read-through cached. Cache errors
// fall back to the database.
type StatsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.StatsCache
	ttl         time.Duration
	log         logging.Logger
}

func NewStatsService(db *sql.DB, m repomanager.RepositoryManager, c cache.StatsCache, ttl time.Duration, log logging.Logger) *StatsService {
	return &StatsService{db: db, repomanager: m, cache: c, ttl: ttl, log: log.With("module", "stats")}
}

func (s *StatsService) Get(ctx context.Context, eventID string) (models.EventStats, error) {
	cached, ok, err := s.cache.Get(ctx, eventID)
	if err != nil {
		s.log.Warn(ctx, "stats cache read failed", "event_id", eventID, "error", err)
	}
	if ok {
		return cached, nil
	}

	if _, err := s.repomanager.Events(s.db).GetByID(ctx, eventID); err != nil {
		return models.EventStats{}, err
	}

	stats, err := s.repomanager.Registrations(s.db).Stats(ctx, eventID)
	if err != nil {
		return models.EventStats{}, err
	}

	if err := s.cache.Set(ctx, stats, s.ttl); err != nil {
		s.log.Warn(ctx, "stats cache write failed", "event_id", eventID, "error", err)
	}
	return stats, nil
}
