package services_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/notification"
	"github.com/devfolio/portfolio-api/internal/ratelimit"
	"github.com/devfolio/portfolio-api/internal/services"
	apperrors "github.com/devfolio/portfolio-api/pkg/errors"
	"github.com/devfolio/portfolio-api/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

func allowAll() *MockLimiter {
	limiter := new(MockLimiter)
	limiter.On("Allow", mock.Anything, mock.Anything).Return(ratelimit.Decision{Allowed: true, Count: 1}, nil)
	return limiter
}

func storedOK() *MockSubmissionRepository {
	repo := new(MockSubmissionRepository)
	repo.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.StoredSubmission{ID: "sub-123"}, nil)
	return repo
}

func newService(limiter ratelimit.Limiter, sink notification.Sink, repo services.SubmissionRepositoryInterface) *services.ContactService {
	return services.NewContactService(limiter, sink, repo, newTestConfig(),
		httpclient.NewStandardClient(time.Second),
		services.WithNow(func() time.Time { return fixedNow }))
}

func TestContactService_Submit_Accepted(t *testing.T) {
	sink := new(MockSink)
	var owner, reply notification.Message
	sink.On("Send", mock.Anything, ofKind(notification.KindOwnerNotification)).
		Run(func(args mock.Arguments) { owner = args.Get(1).(notification.Message) }).Return(nil).Once()
	sink.On("Send", mock.Anything, ofKind(notification.KindAutoReply)).
		Run(func(args mock.Arguments) { reply = args.Get(1).(notification.Message) }).Return(nil).Once()
	repo := storedOK()

	service := newService(allowAll(), sink, repo)
	outcome, err := service.Submit(context.Background(), "203.0.113.7", []byte(validBody))

	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAccepted, outcome.Kind)
	assert.Equal(t, fixedNow, outcome.AcceptedAt)
	assert.Equal(t, "sub-123", outcome.SubmissionID)
	assert.Empty(t, outcome.Violations)

	assert.Equal(t, "owner@portfolio.dev", owner.To)
	assert.Equal(t, "jo@example.com", owner.From)
	assert.Contains(t, owner.Body, "Company: Acme")
	assert.Contains(t, owner.Body, "Budget: 10k-20k")
	assert.Equal(t, "jo@example.com", reply.To)

	sink.AssertExpectations(t)
	repo.AssertCalled(t, "Save", mock.Anything, mock.Anything, "203.0.113.7", fixedNow)
}

func TestContactService_Submit_ValidationShortMessage(t *testing.T) {
	sink := new(MockSink)
	service := newService(allowAll(), sink, nil)

	body := `{"name":"Jo","email":"jo@x.com","subject":"Hi","message":"short"}`
	outcome, err := service.Submit(context.Background(), "client", []byte(body))

	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, models.OutcomeRejectedValidation, outcome.Kind)
	require.Len(t, outcome.Violations, 1)
	assert.Equal(t, "message", outcome.Violations[0].Field)
	sink.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestContactService_Submit_ValidationReportsEveryField(t *testing.T) {
	service := newService(allowAll(), new(MockSink), nil)

	outcome, err := service.Submit(context.Background(), "client", []byte(`{"email":"nope","company":""}`))

	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	fields := map[string]bool{}
	for _, v := range outcome.Violations {
		fields[v.Field] = true
	}
	assert.Equal(t, map[string]bool{"name": true, "email": true, "subject": true, "message": true}, fields)
}

func TestContactService_Submit_SuspiciousContent(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		message string
	}{
		{"uppercase in message", "Hello there", "Cheap VIAGRA available for everyone"},
		{"in subject", "Bitcoin opportunity", "Please reply at your convenience."},
		{"markup", "Hello there", "Click <SCRIPT>alert(1)</script> now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := new(MockSink)
			service := newService(allowAll(), sink, nil)

			body := `{"name":"Jo","email":"jo@example.com","subject":"` + tt.subject + `","message":"` + tt.message + `"}`
			outcome, err := service.Submit(context.Background(), "client", []byte(body))

			assert.True(t, errors.Is(err, apperrors.ErrContentFlagged))
			assert.Equal(t, models.OutcomeRejectedSuspicious, outcome.Kind)
			sink.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		})
	}
}

func TestContactService_Submit_SixthRequestRateLimited(t *testing.T) {
	sink := new(MockSink)
	sink.On("Send", mock.Anything, mock.Anything).Return(nil)
	limiter := ratelimit.NewMemoryLimiter(ratelimit.DefaultPolicy(), 0,
		ratelimit.WithClock(func() time.Time { return fixedNow }))
	service := newService(limiter, sink, nil)

	for i := 0; i < 5; i++ {
		outcome, err := service.Submit(context.Background(), "203.0.113.7", []byte(validBody))
		require.NoError(t, err)
		require.Equal(t, models.OutcomeAccepted, outcome.Kind)
	}

	outcome, err := service.Submit(context.Background(), "203.0.113.7", []byte(validBody))
	assert.True(t, errors.Is(err, apperrors.ErrRateLimited))
	assert.Equal(t, models.OutcomeRejectedRateLimited, outcome.Kind)
	assert.Equal(t, 15*time.Minute, outcome.RetryAfter)
	sink.AssertNumberOfCalls(t, "Send", 10)

	// Other clients are unaffected
	outcome, err = service.Submit(context.Background(), "198.51.100.1", []byte(validBody))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAccepted, outcome.Kind)
}

func TestContactService_Submit_RateLimitPrecedesValidation(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(ratelimit.DefaultPolicy(), 0,
		ratelimit.WithClock(func() time.Time { return fixedNow }))
	service := newService(limiter, new(MockSink), nil)

	// Invalid submissions still consume the window
	for i := 0; i < 5; i++ {
		_, err := service.Submit(context.Background(), "client", []byte(`{}`))
		require.True(t, errors.Is(err, apperrors.ErrValidation))
	}

	outcome, err := service.Submit(context.Background(), "client", []byte(`not json`))
	assert.True(t, errors.Is(err, apperrors.ErrRateLimited))
	assert.Equal(t, models.OutcomeRejectedRateLimited, outcome.Kind)
	assert.Empty(t, outcome.Violations)
}

func TestContactService_Submit_DispatchFailure(t *testing.T) {
	sink := new(MockSink)
	sink.On("Send", mock.Anything, ofKind(notification.KindOwnerNotification)).
		Return(errors.New("smtp relay: 554 transaction failed")).Once()
	repo := new(MockSubmissionRepository)
	service := newService(allowAll(), sink, repo)

	outcome, err := service.Submit(context.Background(), "client", []byte(validBody))

	assert.True(t, errors.Is(err, apperrors.ErrDispatch))
	assert.Equal(t, models.OutcomeFailed, outcome.Kind)
	assert.True(t, outcome.AcceptedAt.IsZero())
	sink.AssertNumberOfCalls(t, "Send", 1)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestContactService_Submit_DispatchTimeoutIsFailure(t *testing.T) {
	sink := new(MockSink)
	sink.On("Send", mock.Anything, ofKind(notification.KindOwnerNotification)).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(context.DeadlineExceeded).Once()
	service := newService(allowAll(), sink, nil)

	start := time.Now()
	outcome, err := service.Submit(context.Background(), "client", []byte(validBody))

	assert.True(t, errors.Is(err, apperrors.ErrDispatch))
	assert.Equal(t, models.OutcomeFailed, outcome.Kind)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestContactService_Submit_CallerCancellationDoesNotAbortDispatch(t *testing.T) {
	sink := new(MockSink)
	sink.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			assert.NoError(t, args.Get(0).(context.Context).Err())
		}).
		Return(nil)
	service := newService(allowAll(), sink, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcome, err := service.Submit(ctx, "client", []byte(validBody))

	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAccepted, outcome.Kind)
}

func TestContactService_Submit_AutoReplyFailureIsSwallowed(t *testing.T) {
	sink := new(MockSink)
	sink.On("Send", mock.Anything, ofKind(notification.KindOwnerNotification)).Return(nil).Once()
	sink.On("Send", mock.Anything, ofKind(notification.KindAutoReply)).Return(errors.New("mailbox unavailable")).Once()
	service := newService(allowAll(), sink, storedOK())

	outcome, err := service.Submit(context.Background(), "client", []byte(validBody))

	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAccepted, outcome.Kind)
	sink.AssertExpectations(t)
}

func TestContactService_Submit_AutoReplyDisabled(t *testing.T) {
	sink := new(MockSink)
	sink.On("Send", mock.Anything, ofKind(notification.KindOwnerNotification)).Return(nil).Once()

	cfg := newTestConfig()
	cfg.Contact.AutoReplyEnabled = false
	service := services.NewContactService(allowAll(), sink, nil, cfg, httpclient.NewStandardClient(time.Second))

	outcome, err := service.Submit(context.Background(), "client", []byte(validBody))

	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAccepted, outcome.Kind)
	sink.AssertNumberOfCalls(t, "Send", 1)
}

func TestContactService_Submit_LimiterErrorFailsOpen(t *testing.T) {
	limiter := new(MockLimiter)
	limiter.On("Allow", mock.Anything, "client").Return(ratelimit.Decision{}, errors.New("redis: connection refused"))
	sink := new(MockSink)
	sink.On("Send", mock.Anything, mock.Anything).Return(nil)
	service := newService(limiter, sink, nil)

	outcome, err := service.Submit(context.Background(), "client", []byte(validBody))

	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAccepted, outcome.Kind)
}

func TestContactService_Submit_PersistenceFailureKeepsAcceptance(t *testing.T) {
	sink := new(MockSink)
	sink.On("Send", mock.Anything, mock.Anything).Return(nil)
	repo := new(MockSubmissionRepository)
	repo.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	service := newService(allowAll(), sink, repo)

	outcome, err := service.Submit(context.Background(), "client", []byte(validBody))

	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAccepted, outcome.Kind)
	assert.Empty(t, outcome.SubmissionID)
}

func TestContactService_Submit_RejectionIsIdempotent(t *testing.T) {
	service := newService(allowAll(), new(MockSink), nil)
	body := []byte(`{"name":"Jo","email":"jo@example.com","subject":"Act now","message":"This is a limited time offer."}`)

	first, firstErr := service.Submit(context.Background(), "client", body)
	second, secondErr := service.Submit(context.Background(), "client", body)

	assert.Equal(t, first, second)
	assert.Equal(t, firstErr.Error(), secondErr.Error())
}

func TestContactService_Submit_FiresAcceptedTrigger(t *testing.T) {
	var gotID atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID.Store(r.URL.Query().Get("submission_id"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := new(MockSink)
	sink.On("Send", mock.Anything, mock.Anything).Return(nil)
	cfg := newTestConfig()
	cfg.EventTriggers.SubmissionAcceptedTriggerURL = srv.URL
	service := services.NewContactService(allowAll(), sink, storedOK(), cfg, httpclient.NewStandardClient(time.Second))

	_, err := service.Submit(context.Background(), "client", []byte(validBody))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		id, _ := gotID.Load().(string)
		return id == "sub-123"
	}, 2*time.Second, 10*time.Millisecond)
}
