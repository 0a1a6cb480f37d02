// Package server wires and runs the roster server: PostgreSQL, the optional
// Kafka and Redis side channels, the scanner-facing gRPC endpoint and the
// admin HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/orbitcheck/internal/logging"
	"github.com/dmitrijs2005/orbitcheck/internal/server/api"
	"github.com/dmitrijs2005/orbitcheck/internal/server/cache"
	"github.com/dmitrijs2005/orbitcheck/internal/server/config"
	"github.com/dmitrijs2005/orbitcheck/internal/server/eventbus"
	"github.com/dmitrijs2005/orbitcheck/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/orbitcheck/internal/server/services"

	gs "github.com/dmitrijs2005/orbitcheck/internal/server/grpc"
)

// runner is anything the app keeps alive until shutdown.
type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	closers []io.Closer

	operators     *services.OperatorService
	registrations *services.RegistrationService
	attendance    *services.AttendanceService
	stats         *services.StatsService
	export        *services.ExportService
}

// NewApp opens the database, applies migrations and builds the services.
// Kafka and Redis are optional: without brokers or a URL their no-op
// counterparts are used.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}

	var publisher eventbus.Publisher = eventbus.NopPublisher{}
	if len(c.KafkaBrokers) > 0 {
		p, err := eventbus.NewKafkaPublisher(c.KafkaBrokers, c.KafkaTopic)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("kafka: %w", err)
		}
		publisher = p
		app.closers = append(app.closers, p)
	}

	var statsCache cache.StatsCache = cache.NopStatsCache{}
	if c.RedisURL != "" {
		client, err := cache.Connect(ctx, c.RedisURL)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		statsCache = cache.NewRedisStatsCache(client)
		app.closers = append(app.closers, client)
	}

	app.operators = services.NewOperatorService(db, rm, c)
	app.registrations = services.NewRegistrationService(db, rm, logger)
	app.attendance = services.NewAttendanceService(db, rm, publisher, statsCache, logger)
	app.stats = services.NewStatsService(db, rm, statsCache, c.StatsCacheTTL, logger)
	app.export = services.NewExportService(db, rm, c, logger)

	return app, nil
}

// Close releases the database and side-channel clients.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		_ = app.closers[i].Close()
	}
	if app.db != nil {
		_ = app.db.Close()
	}
}

// SeedOperator handles "-add-operator name:password".
func (app *App) SeedOperator(ctx context.Context, spec string) error {
	username, password, err := services.ParseOperatorSpec(spec)
	if err != nil {
		return err
	}
	op, err := app.operators.Add(ctx, username, password)
	if err != nil {
		return err
	}
	app.logger.Info(ctx, "operator added", "username", op.Username, "id", op.ID)
	return nil
}

func (app *App) runners() []runner {
	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.operators, app.attendance, app.config.SecretKey)

	handler := api.NewHandler(app.registrations, app.stats, app.export, app.logger)
	router := api.NewRouter(handler, []byte(app.config.SecretKey), app.config.CORSOrigins)
	httpServer := api.NewServer(app.config.EndpointAddrHTTP, router, app.logger)

	return []runner{grpcServer, httpServer}
}

// Run serves gRPC and HTTP until ctx is cancelled or either server fails,
// in which case the other one is stopped too.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...")

	var wg sync.WaitGroup
	for _, r := range app.runners() {
		wg.Add(1)
		go func(r runner) {
			defer wg.Done()
			if err := r.Run(ctx); err != nil {
				app.logger.Error(ctx, err.Error())
				cancelFunc()
			}
		}(r)
	}

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")
}
