package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devfolio/portfolio-api/config"
	"github.com/devfolio/portfolio-api/internal/database/postgres"
	"github.com/devfolio/portfolio-api/internal/database/sqlite"
	"github.com/devfolio/portfolio-api/internal/notification"
	"github.com/devfolio/portfolio-api/internal/ratelimit"
	"github.com/devfolio/portfolio-api/internal/repository"
	"github.com/devfolio/portfolio-api/pkg/db"
	"github.com/devfolio/portfolio-api/pkg/httpclient"
	"github.com/devfolio/portfolio-api/pkg/logger"
	"github.com/devfolio/portfolio-api/pkg/objectstore"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// closer releases a backend on shutdown
type closer func()

func noopCloser() {}

// buildLimiter returns the fixed-window limiter for contact submissions
func buildLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, closer) {
	policy := ratelimit.Policy{
		MaxAttempts: cfg.RateLimit.MaxAttempts,
		Window:      cfg.RateLimit.Window(),
	}

	if cfg.RateLimit.Backend == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			// Allow still fails open per request, so the API stays up without Redis
			logger.Warn("Redis unreachable at startup, rate limiting will fail open until it recovers",
				zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}

		logger.Info("Using Redis rate limiter", zap.String("addr", cfg.Redis.Addr))
		return ratelimit.NewRedisLimiter(ratelimit.RedisLimiterConfig{Client: client, Policy: policy}), func() {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close Redis client", zap.Error(err))
			}
		}
	}

	logger.Info("Using in-memory rate limiter",
		zap.Int("max_attempts", policy.MaxAttempts),
		zap.Duration("window", policy.Window),
		zap.Duration("sweep_interval", cfg.RateLimit.SweepInterval()))
	return ratelimit.NewMemoryLimiter(policy, cfg.RateLimit.SweepInterval()), noopCloser
}

// buildSink returns the notification sink selected by NOTIFICATION_DRIVER
func buildSink(cfg *config.Config, httpClient httpclient.Client) (notification.Sink, closer, error) {
	switch cfg.Notification.Driver {
	case "webhook":
		return notification.NewWebhookSink(cfg.Notification.WebhookURL, cfg.Notification.WebhookToken, httpClient), noopCloser, nil
	case "nats":
		conn, err := notification.ConnectNATS(cfg.Notification.NATSURL, cfg.Observability.ServiceName)
		if err != nil {
			return nil, nil, err
		}
		return notification.NewNATSSink(conn, cfg.Notification.NATSSubject), func() {
			if err := conn.Drain(); err != nil {
				logger.Warn("Failed to drain NATS connection", zap.Error(err))
			}
		}, nil
	default:
		if cfg.IsProduction() {
			logger.Warn("NOTIFICATION_DRIVER=log in production: submissions are only logged")
		}
		return notification.NewLogSink(), noopCloser, nil
	}
}

// buildStore returns the submission store selected by STORE_DRIVER
func buildStore(ctx context.Context, cfg *config.Config) (repository.SubmissionStore, closer, error) {
	switch cfg.Store.Driver {
	case "postgres":
		pool, err := db.NewPool(ctx, db.PoolConfig{
			URL:        cfg.Store.DatabaseURL,
			MaxConns:   cfg.Store.MaxConns,
			MinConns:   cfg.Store.MinConns,
			CACertPath: cfg.Store.DatabaseCA,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database connection pool: %w", err)
		}
		client := postgres.NewClient(pool)
		return client, client.Close, nil

	case "sqlite":
		if dir := filepath.Dir(cfg.Store.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		store, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close sqlite store", zap.Error(err))
			}
		}, nil

	case "s3":
		client, err := objectstore.NewStorageClient(objectstore.Config{
			AccessKeyID:     cfg.ObjectStorage.AccessKeyID,
			SecretAccessKey: cfg.ObjectStorage.SecretAccessKey,
			BucketName:      cfg.ObjectStorage.BucketName,
			Endpoint:        cfg.ObjectStorage.Endpoint,
			Region:          cfg.ObjectStorage.Region,
			PathStyle:       cfg.ObjectStorage.PathStyle,
		})
		if err != nil {
			return nil, nil, err
		}
		return repository.NewObjectSubmissionStore(client), noopCloser, nil

	default:
		logger.Info("Submission persistence disabled")
		return repository.NopStore{}, noopCloser, nil
	}
}
