package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/pkg/logger"
	"github.com/devfolio/portfolio-api/pkg/metrics"
	"go.uber.org/zap"
)

const insertSubmissionSQL = `
	INSERT INTO contact_submissions (
		id, name, email, company, subject, message,
		project_type, budget, timeline, client_hash, received_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO NOTHING`

// SaveSubmission inserts an accepted submission. Re-inserting the same ID is a no-op,
// so retried writes never duplicate rows.
func (c *Client) SaveSubmission(ctx context.Context, sub *models.StoredSubmission) error {
	start := time.Now()
	operation := "saveSubmission"

	req := sub.Request
	_, err := c.pool.Exec(ctx, insertSubmissionSQL,
		sub.ID,
		req.Name,
		req.Email,
		nullIfEmpty(req.Company),
		req.Subject,
		req.Message,
		nullIfEmpty(req.ProjectType),
		nullIfEmpty(req.Budget),
		nullIfEmpty(req.Timeline),
		sub.ClientHash,
		sub.ReceivedAt,
	)

	duration := metrics.MeasureDuration(start)
	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogError(ctx, err, "Failed to insert contact submission", zap.String("submission_id", sub.ID))
		return fmt.Errorf("failed to insert submission: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.Debug("Contact submission stored", zap.String("submission_id", sub.ID), zap.Float64("duration", duration))
	return nil
}

// CountSubmissions returns the number of stored submissions
func (c *Client) CountSubmissions(ctx context.Context) (int64, error) {
	var n int64
	if err := c.pool.QueryRow(ctx, "SELECT COUNT(*) FROM contact_submissions").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return n, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
