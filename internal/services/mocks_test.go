package services_test

import (
	"context"
	"time"

	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/notification"
	"github.com/devfolio/portfolio-api/internal/ratelimit"
	"github.com/stretchr/testify/mock"
)

// MockLimiter is a mock implementation of ratelimit.Limiter
type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string) (ratelimit.Decision, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(ratelimit.Decision), args.Error(1)
}

// MockSink is a mock implementation of notification.Sink
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Send(ctx context.Context, msg notification.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockSink) Name() string { return "mock" }

// MockSubmissionRepository is a mock implementation of SubmissionRepositoryInterface
type MockSubmissionRepository struct {
	mock.Mock
}

func (m *MockSubmissionRepository) Save(ctx context.Context, req *models.SubmissionRequest, clientID string, receivedAt time.Time) (*models.StoredSubmission, error) {
	args := m.Called(ctx, req, clientID, receivedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StoredSubmission), args.Error(1)
}

func (m *MockSubmissionRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func ofKind(kind notification.Kind) interface{} {
	return mock.MatchedBy(func(msg notification.Message) bool { return msg.Kind == kind })
}
