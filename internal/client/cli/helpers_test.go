package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/client/localdb"
	"github.com/dmitrijs2005/orbitcheck/internal/client/models"
	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/orbitcheck/internal/client/services"
	"github.com/dmitrijs2005/orbitcheck/internal/logging"
	"github.com/stretchr/testify/require"
)

type output struct {
	mu    sync.Mutex
	lines []string
}

func (o *output) String() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return strings.Join(o.lines, "\n")
}

func captureOutput(t *testing.T) *output {
	t.Helper()
	o := &output{}
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.lines = append(o.lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return o
}

func stubInputs(t *testing.T, username string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return username, nil }
	getPassword = func(_ io.Writer) ([]byte, error) { return append([]byte(nil), password...), nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

type fakeAuth struct {
	mu sync.Mutex

	onlineUser string
	onlinePass []byte
	onlineID   string
	onlineErr  error

	offlineUser string
	offlineID   string
	offlineErr  error

	logoutCalled bool
	logoutErr    error

	pingErr error
	pings   int
}

func (f *fakeAuth) OnlineLogin(_ context.Context, user string, pass []byte) (string, error) {
	f.onlineUser, f.onlinePass = user, append([]byte(nil), pass...)
	return f.onlineID, f.onlineErr
}

func (f *fakeAuth) OfflineLogin(_ context.Context, user string, pass []byte) (string, error) {
	f.offlineUser = user
	return f.offlineID, f.offlineErr
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalled = true
	return f.logoutErr
}

func (f *fakeAuth) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings++
	return f.pingErr
}

func (f *fakeAuth) setPingErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pingErr = err
}

func (f *fakeAuth) Close(context.Context) error { return nil }

type fakeRemote struct {
	mu      sync.Mutex
	roster  *models.Roster
	err     error
	updates []models.AttendanceUpdate
}

func (f *fakeRemote) FetchByEvent(_ context.Context, eventID string) (*models.Roster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.roster, nil
}

func (f *fakeRemote) UpdateByKey(_ context.Context, u models.AttendanceUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, u)
	return nil
}

func (f *fakeRemote) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

type testEnv struct {
	app    *App
	auth   *fakeAuth
	remote *fakeRemote
	rec    *services.Reconciler
}

// newTestEnv builds an App over an in-memory store with real services and
// fake server-facing parts.
func newTestEnv(t *testing.T, roster *models.Roster) *testEnv {
	t.Helper()
	ctx := context.Background()
	db, err := localdb.Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.Discard()
	remote := &fakeRemote{roster: roster}
	auth := &fakeAuth{onlineID: "op-1"}
	rec := services.NewReconciler(db, remote, time.Second, log)
	att := services.NewAttendanceService(db, log)

	a := &App{
		log:         log,
		authService: auth,
		roster:      services.NewRosterService(db, remote, time.Hour, log),
		verifier:    services.NewVerifier(db, log),
		attendance:  att,
		reconciler:  rec,
		lifecycle:   services.NewLifecycleManager(db, time.Hour, log),
		meta:        metadata.NewSQLiteRepository(db),
		reader:      bufio.NewReader(strings.NewReader("")),
	}
	att.SetAutoSync(a.isOnline, rec)
	t.Cleanup(rec.Wait)

	return &testEnv{app: a, auth: auth, remote: remote, rec: rec}
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	stubInputs(t, "door1", []byte("pw"))
	require.NoError(t, e.app.Login(context.Background()))
	require.True(t, e.app.isLoggedIn())
}
