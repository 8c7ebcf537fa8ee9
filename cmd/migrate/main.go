package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/devfolio/portfolio-api/config"
	"github.com/devfolio/portfolio-api/pkg/db"
	"github.com/devfolio/portfolio-api/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadForMigrations()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		ServiceName: "portfolio-migrate",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting database migrations",
		zap.String("database", maskDatabaseURL(cfg.Store.DatabaseURL)))

	err = db.RunMigrations(db.PoolConfig{
		URL:        cfg.Store.DatabaseURL,
		CACertPath: cfg.Store.DatabaseCA,
	}, "file://migrations")
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		logger.Sync()
		os.Exit(1) //nolint:gocritic // logger synced above
	}

	logger.Info("Database migrations completed successfully")
}

// maskDatabaseURL hides the password for logging
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
