package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/orbitcheck/internal/client/client"
	"github.com/dmitrijs2005/orbitcheck/internal/client/config"
	"github.com/dmitrijs2005/orbitcheck/internal/client/localdb"
	"github.com/dmitrijs2005/orbitcheck/internal/client/models"
	"github.com/dmitrijs2005/orbitcheck/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/orbitcheck/internal/client/services"
	"github.com/dmitrijs2005/orbitcheck/internal/logging"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

const pingTimeout = 3 * time.Second

type rosterService interface {
	Download(ctx context.Context, eventID string, eventName string) (int, error)
	IsValid(ctx context.Context, eventID string) (bool, error)
	ListForEvent(ctx context.Context, eventID string) ([]models.CachedRegistration, error)
	Events(ctx context.Context) ([]models.CacheMetadata, error)
	Stats(ctx context.Context, eventID string) (models.EventStats, error)
}

type verifier interface {
	Verify(ctx context.Context, qrSignature string, eventID string) models.VerifyResult
}

type attendanceService interface {
	MarkLocal(ctx context.Context, qrSignature string, operatorID string) (*models.CachedRegistration, error)
}

type reconciler interface {
	SyncPending(ctx context.Context) (models.SyncReport, error)
	Kick()
	Wait()
}

type lifecycleManager interface {
	Initialize(ctx context.Context) error
	ClearExpiredCaches(ctx context.Context) (int, error)
	ClearOldSyncedEntries(ctx context.Context) (int64, error)
}

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	authService services.AuthService
	roster      rosterService
	verifier    verifier
	attendance  attendanceService
	reconciler  reconciler
	lifecycle   lifecycleManager
	meta        metadata.Repository

	mu         sync.RWMutex
	mode       Mode
	userName   string
	operatorID string
	eventID    string

	reader *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	db, err := localdb.Open(ctx, c.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	rec := services.NewReconciler(db, apiClient, c.SyncTimeout, log)
	att := services.NewAttendanceService(db, log)

	a := &App{
		config:      c,
		log:         log,
		db:          db,
		authService: services.NewAuthService(apiClient, db),
		roster:      services.NewRosterService(db, apiClient, c.CacheTTL, log),
		verifier:    services.NewVerifier(db, log),
		attendance:  att,
		reconciler:  rec,
		lifecycle:   services.NewLifecycleManager(db, c.SyncedRetention, log),
		meta:        metadata.NewSQLiteRepository(db),
		reader:      bufio.NewReader(os.Stdin),
	}
	att.SetAutoSync(a.isOnline, rec)

	return a, nil
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) isOnline() bool {
	return a.Mode() == ModeOnline
}

// setMode switches the mode and reports whether it changed.
func (a *App) setMode(mode Mode) bool {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "switched mode", "mode", mode)
	}
	return changed
}

func (a *App) isLoggedIn() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.operatorID != ""
}

func (a *App) session() (userName, operatorID, eventID string) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.userName, a.operatorID, a.eventID
}

func (a *App) Run(ctx context.Context) {
	defer a.Close(ctx)
	a.Root(ctx)
}

// Close waits for background syncs and releases the client and database.
func (a *App) Close(ctx context.Context) {
	if a.reconciler != nil {
		a.reconciler.Wait()
	}
	if a.authService != nil {
		_ = a.authService.Close(ctx)
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

// StartOnlineStatusWatcher pings the server every interval until ctx is done.
// Coming back online kicks a queue drain.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := a.authService.Ping(pingCtx)
	cancel()

	if err != nil {
		if a.isOnline() {
			a.setMode(ModeOffline)
		}
		return
	}

	if a.setMode(ModeOnline) && a.isLoggedIn() {
		a.reconciler.Kick()
	}
}

func (a *App) restoreActiveEvent(ctx context.Context) {
	eventID, err := metadata.GetString(ctx, a.meta, metadata.KeyActiveEvent)
	if err != nil {
		a.log.Warn(ctx, "read active event", "error", err)
		return
	}
	a.mu.Lock()
	a.eventID = eventID
	a.mu.Unlock()
}

func isUnavailable(err error) bool {
	return errors.Is(err, client.ErrUnavailable)
}
