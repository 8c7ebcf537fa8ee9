package services

import (
	"context"
	"time"

	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/repository"
)

// ContactServiceInterface defines the interface for contact service operations
type ContactServiceInterface interface {
	Submit(ctx context.Context, clientID string, body []byte) (*models.SubmissionOutcome, error)
}

// SubmissionRepositoryInterface persists accepted submissions
type SubmissionRepositoryInterface interface {
	Save(ctx context.Context, req *models.SubmissionRequest, clientID string, receivedAt time.Time) (*models.StoredSubmission, error)
	Ping(ctx context.Context) error
}

// Ensure implementations satisfy interfaces
var (
	_ ContactServiceInterface       = (*ContactService)(nil)
	_ SubmissionRepositoryInterface = (*repository.SubmissionRepository)(nil)
)
