package repository

import (
	"context"

	"github.com/devfolio/portfolio-api/internal/models"
)

// SubmissionStore persists accepted submissions.
// Implemented by postgres.Client, sqlite.Store, ObjectSubmissionStore and NopStore.
type SubmissionStore interface {
	// SaveSubmission writes one submission; writing the same ID twice must not duplicate it
	SaveSubmission(ctx context.Context, sub *models.StoredSubmission) error

	// Ping reports whether the backing store is reachable
	Ping(ctx context.Context) error
}

// ObjectWriter is the subset of objectstore.StorageClient used for submissions
type ObjectWriter interface {
	PutJSON(ctx context.Context, key string, doc any) error
	Ping(ctx context.Context) error
}
