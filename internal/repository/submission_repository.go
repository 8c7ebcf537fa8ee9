package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/pkg/retry"
	"github.com/google/uuid"
)

// clientHashLength is the number of hex characters kept from the SHA-256 digest
const clientHashLength = 16

// SubmissionRepository handles submission persistence
type SubmissionRepository struct {
	store       SubmissionStore
	retryConfig retry.Config
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(store SubmissionStore) *SubmissionRepository {
	if store == nil {
		store = NopStore{}
	}
	return &SubmissionRepository{
		store:       store,
		retryConfig: retry.StoreConfig(),
	}
}

// WithRetryConfig overrides the retry policy used for writes
func (r *SubmissionRepository) WithRetryConfig(cfg retry.Config) *SubmissionRepository {
	r.retryConfig = cfg
	return r
}

// Save assigns an ID, hashes the client identifier and writes the submission.
// The raw client identifier is never stored.
func (r *SubmissionRepository) Save(ctx context.Context, req *models.SubmissionRequest, clientID string, receivedAt time.Time) (*models.StoredSubmission, error) {
	sub := &models.StoredSubmission{
		ID:         uuid.NewString(),
		Request:    *req,
		ClientHash: HashClientID(clientID),
		ReceivedAt: receivedAt.UTC(),
	}

	err := retry.Do(ctx, r.retryConfig, "saveSubmission", func(ctx context.Context) error {
		return r.store.SaveSubmission(ctx, sub)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// Ping checks the underlying store
func (r *SubmissionRepository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

// HashClientID returns a truncated hex SHA-256 of the client identifier
func HashClientID(clientID string) string {
	sum := sha256.Sum256([]byte(clientID))
	return hex.EncodeToString(sum[:])[:clientHashLength]
}
