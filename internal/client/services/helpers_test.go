package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/client/localdb"
	"github.com/dmitrijs2005/orbitcheck/internal/client/models"
	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/cachemeta"
	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/registrations"
	"github.com/dmitrijs2005/orbitcheck/internal/logging"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := localdb.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func discard() logging.Logger { return logging.Discard() }

// seedRoster writes registrations and a metadata row directly, bypassing the
// remote store.
func seedRoster(t *testing.T, db *sql.DB, eventID string, expiresAt time.Time, regs ...models.CachedRegistration) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, registrations.NewSQLiteRepository(db).ReplaceForEvent(ctx, eventID, regs))
	require.NoError(t, cachemeta.NewSQLiteRepository(db).Upsert(ctx, &models.CacheMetadata{
		EventID:     eventID,
		EventName:   "Event " + eventID,
		FetchedAt:   expiresAt.Add(-36 * time.Hour),
		RecordCount: len(regs),
		ExpiresAt:   expiresAt,
	}))
}

func cached(sig, regID, eventID string) models.CachedRegistration {
	return models.CachedRegistration{
		QRSignature: sig, RegistrationID: regID, OrbitID: "ORB-" + regID, EventID: eventID,
		Name: "Guest " + regID, Email: regID + "@example.org", College: "CMU-Q",
	}
}

type queueRow struct {
	RegistrationID string
	Status         string
	Attempts       int
	LastError      string
}

func queueRows(t *testing.T, db *sql.DB) []queueRow {
	t.Helper()
	rows, err := db.Query(`SELECT registration_id, sync_status, attempts, last_error FROM sync_queue ORDER BY marked_at, id`)
	require.NoError(t, err)
	defer rows.Close()

	var out []queueRow
	for rows.Next() {
		var r queueRow
		require.NoError(t, rows.Scan(&r.RegistrationID, &r.Status, &r.Attempts, &r.LastError))
		out = append(out, r)
	}
	require.NoError(t, rows.Err())
	return out
}

// fakeRemote is an in-memory client.RemoteStore.
type fakeRemote struct {
	mu sync.Mutex

	roster   *models.Roster
	fetchErr error

	updateErr map[string]error
	updates   []models.AttendanceUpdate
	fetches   int
}

func (f *fakeRemote) FetchByEvent(ctx context.Context, eventID string) (*models.Roster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if f.roster == nil {
		return &models.Roster{EventID: eventID}, nil
	}
	return f.roster, nil
}

func (f *fakeRemote) UpdateByKey(ctx context.Context, u models.AttendanceUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.updateErr[u.RegistrationID]; err != nil {
		return err
	}
	f.updates = append(f.updates, u)
	return nil
}

func (f *fakeRemote) Updates() []models.AttendanceUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.AttendanceUpdate(nil), f.updates...)
}

func remoteRoster(eventID, name string, n int) *models.Roster {
	r := &models.Roster{EventID: eventID, EventName: name}
	for i := 0; i < n; i++ {
		id := string(rune('A'+i)) + "-" + eventID
		r.Registrations = append(r.Registrations, models.RemoteRegistration{
			RegistrationID: id,
			QRSignature:    "sig-" + id,
			OrbitID:        "ORB-" + id,
			EventID:        eventID,
			Name:           "Guest " + id,
		})
	}
	return r
}
