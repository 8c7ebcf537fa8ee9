package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/pkg/logger"
	"github.com/devfolio/portfolio-api/pkg/metrics"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Register sqlite driver
)

const driverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS contact_submissions (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	email        TEXT NOT NULL,
	company      TEXT,
	subject      TEXT NOT NULL,
	message      TEXT NOT NULL,
	project_type TEXT,
	budget       TEXT,
	timeline     TEXT,
	client_hash  TEXT NOT NULL,
	received_at  TEXT NOT NULL,
	created_at   TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_contact_submissions_received_at ON contact_submissions (received_at);
`

// Store keeps accepted submissions in a local SQLite file
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema exists.
// Use ":memory:" for an ephemeral database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps ":memory:" databases shared
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("SQLite submission store opened", zap.String("path", path))
	return &Store{db: db}, nil
}

// SaveSubmission inserts an accepted submission; duplicates by ID are ignored
func (s *Store) SaveSubmission(ctx context.Context, sub *models.StoredSubmission) error {
	start := time.Now()
	req := sub.Request

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO contact_submissions (
			id, name, email, company, subject, message,
			project_type, budget, timeline, client_hash, received_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, req.Name, req.Email, nullString(req.Company), req.Subject, req.Message,
		nullString(req.ProjectType), nullString(req.Budget), nullString(req.Timeline),
		sub.ClientHash, sub.ReceivedAt.UTC().Format(time.RFC3339Nano),
	)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.StoreRequestDuration.WithLabelValues(driverName, "saveSubmission", status).Observe(metrics.MeasureDuration(start))
	metrics.StoreRequestTotal.WithLabelValues(driverName, "saveSubmission", status).Inc()

	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

// CountByClientHash returns how many submissions one hashed client has made
func (s *Store) CountByClientHash(ctx context.Context, clientHash string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM contact_submissions WHERE client_hash = ?", clientHash).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return n, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
