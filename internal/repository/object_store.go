package repository

import (
	"context"
	"fmt"

	"github.com/devfolio/portfolio-api/internal/models"
)

// ObjectSubmissionStore writes each submission as a JSON document
type ObjectSubmissionStore struct {
	client ObjectWriter
}

func NewObjectSubmissionStore(client ObjectWriter) *ObjectSubmissionStore {
	return &ObjectSubmissionStore{client: client}
}

// SaveSubmission stores the document at submissions/YYYY/MM/DD/<id>.json
func (s *ObjectSubmissionStore) SaveSubmission(ctx context.Context, sub *models.StoredSubmission) error {
	return s.client.PutJSON(ctx, ObjectKey(sub), sub)
}

func (s *ObjectSubmissionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// ObjectKey partitions submissions by UTC receive date
func ObjectKey(sub *models.StoredSubmission) string {
	at := sub.ReceivedAt.UTC()
	return fmt.Sprintf("submissions/%04d/%02d/%02d/%s.json", at.Year(), int(at.Month()), at.Day(), sub.ID)
}

// NopStore discards submissions; used when persistence is disabled
type NopStore struct{}

func (NopStore) SaveSubmission(context.Context, *models.StoredSubmission) error { return nil }

func (NopStore) Ping(context.Context) error { return nil }
