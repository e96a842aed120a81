package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/longevity-score-server/internal/api"
	"github.com/longevity-score-server/internal/cache"
	"github.com/longevity-score-server/internal/catalog"
	"github.com/longevity-score-server/internal/config"
	"github.com/longevity-score-server/internal/database"
	"github.com/longevity-score-server/internal/history"
	"github.com/longevity-score-server/internal/logging"
	"github.com/longevity-score-server/internal/service"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}

	// Load the evidence catalog
	cat, err := catalog.Load(cfg.Catalog.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load biomarker catalog")
	}
	logger.WithField("biomarkers", cat.Len()).Info("Biomarker catalog loaded")

	// Open the report history store
	var store history.Store
	switch cfg.History.Driver {
	case "sqlite":
		store, err = history.NewSQLiteStore(cfg.History.SQLitePath)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open SQLite history store")
		}
	case "postgres":
		if cfg.Database.AutoMigrate {
			runner, err := database.NewMigrationRunner(database.MigrateURL(cfg.Database), cfg.Database.MigrationsPath, logger)
			if err != nil {
				logger.WithError(err).Fatal("Failed to create migration runner")
			}
			if err := runner.Up(context.Background()); err != nil {
				logger.WithError(err).Fatal("Failed to run migrations")
			}
			runner.Close()
		}
		store, err = history.NewPostgresStoreFromURL(database.DSN(cfg.Database))
		if err != nil {
			logger.WithError(err).Fatal("Failed to open PostgreSQL history store")
		}
	case "none":
		logger.Info("Report history disabled")
	}
	if store != nil {
		defer store.Close()
	}

	// Connect the report cache
	var reportCache service.ReportCache
	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.Cache, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect report cache")
		}
		defer redisCache.Close()
		reportCache = redisCache
	}

	scorer := service.NewScoringService(cat, store, reportCache, logger)

	var reports api.ReportStore
	if store != nil {
		reports = store
	}
	server := api.NewServer(cfg, scorer, reports, logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	// Start server
	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}
