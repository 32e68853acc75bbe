package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/3PLWinner/veracore-sync/config"
	"github.com/3PLWinner/veracore-sync/internal/browser"
	"github.com/3PLWinner/veracore-sync/internal/logger"
	"github.com/3PLWinner/veracore-sync/internal/metrics"
	"github.com/3PLWinner/veracore-sync/internal/repository"
	"github.com/3PLWinner/veracore-sync/internal/repository/postgres"
	syncer "github.com/3PLWinner/veracore-sync/internal/sync"
	"github.com/3PLWinner/veracore-sync/internal/veracore"
	"go.uber.org/zap"
)

func main() {
	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Log.Sync()

	if cfg.VeracoreUser == "" || cfg.VeracorePass == "" || cfg.SystemID == "" {
		logger.Log.Fatal("Veracore credentials and system id are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// initialize database
	db, err := postgres.New(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Log.Fatal("Error initializing database", zap.Error(err))
	}
	defer db.Close()

	// migrate database
	if err := db.Migrate(); err != nil {
		logger.Log.Fatal("Error migrating database", zap.Error(err))
	}

	// diagnostics endpoint
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			logger.Log.Info("Serving metrics", zap.String("addr", cfg.MetricsAddr))
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Log.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	orderRepo := repository.NewWorkOrderRepository(db)

	newSession := func(ctx context.Context) (browser.Session, error) {
		return browser.Launch(ctx, browser.Options{Headless: cfg.Headless})
	}

	creds := veracore.Credentials{
		URL:      cfg.VeracoreURL,
		Username: cfg.VeracoreUser,
		Password: cfg.VeracorePass,
		SystemID: cfg.SystemID,
	}

	runner := syncer.NewRunner(orderRepo, newSession, creds, cfg.LogDir, cfg.SyncInterval, logger.Log)

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.Fatal("Sync run failed", zap.Error(err))
	}
}
