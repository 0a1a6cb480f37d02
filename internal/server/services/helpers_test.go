package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/common"
	"github.com/dmitrijs2005/orbitcheck/internal/dbx"
	"github.com/dmitrijs2005/orbitcheck/internal/logging"
	"github.com/dmitrijs2005/orbitcheck/internal/server/models"
	eventsrepo "github.com/dmitrijs2005/orbitcheck/internal/server/repositories/events"
	operatorsrepo "github.com/dmitrijs2005/orbitcheck/internal/server/repositories/operators"
	regsrepo "github.com/dmitrijs2005/orbitcheck/internal/server/repositories/registrations"
)

// --- in-memory repositories ---

type fakeEvents struct {
	byID   map[string]*models.Event
	getErr error
}

func (f *fakeEvents) Create(_ context.Context, e *models.Event) (*models.Event, error) {
	if _, ok := f.byID[e.ID]; ok {
		return nil, common.ErrConflict
	}
	e.CreatedAt = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	f.byID[e.ID] = e
	return e, nil
}

func (f *fakeEvents) GetByID(_ context.Context, id string) (*models.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return e, nil
}

type fakeRegs struct {
	mu         sync.Mutex
	rows       []models.Registration
	createErrs []error
	listErr    error
	statsCalls int
}

func (f *fakeRegs) Create(_ context.Context, r *models.Registration) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	f.rows = append(f.rows, *r)
	return r, nil
}

func (f *fakeRegs) ListByEvent(_ context.Context, eventID string) ([]models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.Registration
	for _, r := range f.rows {
		if r.EventID == eventID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrbitID < out[j].OrbitID })
	return out, nil
}

func (f *fakeRegs) UpdateAttendance(_ context.Context, in models.CheckIn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].EventID == in.EventID && f.rows[i].ID == in.RegistrationID {
			t := in.CheckInTime
			f.rows[i].AttendanceStatus = true
			f.rows[i].CheckInTime = &t
			f.rows[i].CheckedInBy = in.CheckedInBy
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeRegs) Stats(_ context.Context, eventID string) (models.EventStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	s := models.EventStats{EventID: eventID}
	for _, r := range f.rows {
		if r.EventID != eventID {
			continue
		}
		s.Total++
		if r.AttendanceStatus {
			s.CheckedIn++
		}
	}
	return s, nil
}

type fakeOperators struct {
	byName map[string]*models.Operator
	getErr error
}

func (f *fakeOperators) Create(_ context.Context, op *models.Operator) (*models.Operator, error) {
	if _, ok := f.byName[op.Username]; ok {
		return nil, common.ErrConflict
	}
	f.byName[op.Username] = op
	return op, nil
}

func (f *fakeOperators) GetByUsername(_ context.Context, username string) (*models.Operator, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	op, ok := f.byName[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	return op, nil
}

type fakeRepoManager struct {
	events    *fakeEvents
	regs      *fakeRegs
	operators *fakeOperators
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		events:    &fakeEvents{byID: map[string]*models.Event{}},
		regs:      &fakeRegs{},
		operators: &fakeOperators{byName: map[string]*models.Operator{}},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Events(dbx.DBTX) eventsrepo.Repository        { return m.events }
func (m *fakeRepoManager) Registrations(dbx.DBTX) regsrepo.Repository   { return m.regs }
func (m *fakeRepoManager) Operators(dbx.DBTX) operatorsrepo.Repository  { return m.operators }

func (m *fakeRepoManager) seedEvent(id, name string) {
	m.events.byID[id] = &models.Event{ID: id, Name: name}
}

// --- collaborators ---

type fakePublisher struct {
	mu   sync.Mutex
	sent []models.CheckIn
	err  error
}

func (p *fakePublisher) PublishCheckIn(_ context.Context, in models.CheckIn) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, in)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeStatsCache struct {
	mu          sync.Mutex
	entries     map[string]models.EventStats
	invalidated []string
	lastTTL     time.Duration
	err         error
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{entries: map[string]models.EventStats{}}
}

func (c *fakeStatsCache) Get(_ context.Context, eventID string) (models.EventStats, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return models.EventStats{}, false, c.err
	}
	s, ok := c.entries[eventID]
	return s, ok, nil
}

func (c *fakeStatsCache) Set(_ context.Context, s models.EventStats, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.entries[s.EventID] = s
	c.lastTTL = ttl
	return nil
}

func (c *fakeStatsCache) Invalidate(_ context.Context, eventID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, eventID)
	if c.err != nil {
		return c.err
	}
	delete(c.entries, eventID)
	return nil
}

var errBoom = errors.New("boom")

func discard() logging.Logger { return logging.Discard() }
