package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/orbitcheck/internal/buildinfo"
	"github.com/dmitrijs2005/orbitcheck/internal/logging"
	"github.com/dmitrijs2005/orbitcheck/internal/server"
	"github.com/dmitrijs2005/orbitcheck/internal/server/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.New(os.Stdout, "json", cfg.LogLevel)

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error(ctx, "server start failed", "error", err)
		os.Exit(1)
	}

	if cfg.AddOperator != "" {
		err := app.SeedOperator(ctx, cfg.AddOperator)
		app.Close()
		if err != nil {
			logger.Error(ctx, "add operator failed", "error", err)
			os.Exit(1)
		}
		return
	}

	app.Run(ctx)
}
