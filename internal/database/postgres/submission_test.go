package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/pkg/db"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	require.NoError(t, db.RunMigrations(db.PoolConfig{URL: url}, "file://../../../migrations"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := db.NewPool(ctx, db.PoolConfig{URL: url, MaxConns: 2})
	require.NoError(t, err)

	client := NewClient(pool)
	t.Cleanup(client.Close)
	return client
}

func TestNullIfEmpty(t *testing.T) {
	assert.Nil(t, nullIfEmpty(""))
	require.NotNil(t, nullIfEmpty("Acme"))
	assert.Equal(t, "Acme", *nullIfEmpty("Acme"))
}

func TestSaveSubmission_Idempotent(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	before, err := client.CountSubmissions(ctx)
	require.NoError(t, err)

	sub := &models.StoredSubmission{
		ID: uuid.NewString(),
		Request: models.SubmissionRequest{
			Name:    "Jo",
			Email:   "jo@example.com",
			Subject: "Hello",
			Message: "Just saying hello!",
		},
		ClientHash: "0123456789abcdef",
		ReceivedAt: time.Now().UTC(),
	}

	require.NoError(t, client.SaveSubmission(ctx, sub))
	require.NoError(t, client.SaveSubmission(ctx, sub))

	after, err := client.CountSubmissions(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
	assert.NoError(t, client.Ping(ctx))
}
