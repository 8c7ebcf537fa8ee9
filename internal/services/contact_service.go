package services

import (
	"context"
	"time"

	"github.com/devfolio/portfolio-api/config"
	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/notification"
	"github.com/devfolio/portfolio-api/internal/ratelimit"
	"github.com/devfolio/portfolio-api/internal/screening"
	"github.com/devfolio/portfolio-api/internal/validation"
	apperrors "github.com/devfolio/portfolio-api/pkg/errors"
	"github.com/devfolio/portfolio-api/pkg/httpclient"
	"github.com/devfolio/portfolio-api/pkg/logger"
	"github.com/devfolio/portfolio-api/pkg/metrics"
	"github.com/devfolio/portfolio-api/pkg/tracing"
	"github.com/devfolio/portfolio-api/pkg/trigger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ContactService runs portfolio contact form submissions through
// rate limiting, validation, content screening and notification dispatch.
type ContactService struct {
	limiter    ratelimit.Limiter
	sink       notification.Sink
	repo       SubmissionRepositoryInterface
	validator  *validation.Validator
	screener   *screening.Screener
	config     *config.Config
	httpClient httpclient.Client
	now        func() time.Time
}

// ContactServiceOption customizes a ContactService
type ContactServiceOption func(*ContactService)

// WithScreener replaces the default pattern table
func WithScreener(s *screening.Screener) ContactServiceOption {
	return func(cs *ContactService) { cs.screener = s }
}

// WithNow injects the clock used for acceptance timestamps
func WithNow(now func() time.Time) ContactServiceOption {
	return func(cs *ContactService) { cs.now = now }
}

// NewContactService creates a new contact service instance
func NewContactService(
	limiter ratelimit.Limiter,
	sink notification.Sink,
	repo SubmissionRepositoryInterface,
	cfg *config.Config,
	httpClient httpclient.Client,
	opts ...ContactServiceOption,
) *ContactService {
	s := &ContactService{
		limiter:    limiter,
		sink:       sink,
		repo:       repo,
		validator:  validation.New(),
		screener:   screening.New(nil),
		config:     cfg,
		httpClient: httpClient,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit processes one raw submission from clientID. Every call yields exactly
// one outcome. Rejections and failures are also returned as errors from
// pkg/errors (ErrRateLimited, ErrValidation, ErrContentFlagged, ErrDispatch)
// so callers can branch with errors.Is.
func (s *ContactService) Submit(ctx context.Context, clientID string, body []byte) (*models.SubmissionOutcome, error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "contact.submit", attribute.Int("contact.body_bytes", len(body)))
	defer span.End()

	outcome, err := s.submit(ctx, clientID, body)

	metrics.ContactFormSubmissions.WithLabelValues(string(outcome.Kind)).Inc()
	metrics.ContactFormDuration.Observe(metrics.MeasureDuration(start))
	span.SetAttributes(attribute.String("contact.outcome", string(outcome.Kind)))
	if err != nil && outcome.Kind == models.OutcomeFailed {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
	}

	return outcome, err
}

func (s *ContactService) submit(ctx context.Context, clientID string, body []byte) (*models.SubmissionOutcome, error) {
	// 1. Rate limiting
	decision, allowed := s.checkRateLimit(ctx, clientID)
	if !allowed {
		logger.Warn("Contact submission rate limited",
			append(logger.TraceFields(ctx),
				zap.String("client_id", clientID),
				zap.Int("count", decision.Count),
				zap.Time("reset_at", decision.ResetAt))...)
		return &models.SubmissionOutcome{
			Kind:       models.OutcomeRejectedRateLimited,
			RetryAfter: decision.RetryAfter(s.now()),
		}, apperrors.RateLimitError(clientID)
	}

	// 2. Schema validation
	req, violations := s.validator.DecodeAndValidate(body)
	if len(violations) > 0 {
		logger.Info("Contact submission failed validation",
			append(logger.TraceFields(ctx), zap.Int("violations", len(violations)))...)
		return &models.SubmissionOutcome{
			Kind:       models.OutcomeRejectedValidation,
			Violations: violations,
		}, apperrors.ValidationError(len(violations))
	}

	// 3. Content screening
	if match, flagged := s.screener.Screen(req.Subject, req.Message); flagged {
		metrics.ScreeningMatches.WithLabelValues(string(match.Kind)).Inc()
		logger.Warn("Contact submission flagged by content screening",
			append(logger.TraceFields(ctx),
				zap.String("kind", string(match.Kind)),
				zap.String("term", match.Term),
				zap.String("email", logger.MaskEmail(req.Email)))...)
		return &models.SubmissionOutcome{
			Kind: models.OutcomeRejectedSuspicious,
		}, apperrors.ContentPolicyError(string(match.Kind))
	}

	// 4. Dispatch
	receivedAt := s.now().UTC()
	owner := notification.OwnerNotification(req, s.config.Contact.OwnerEmail, receivedAt)
	if err := s.send(ctx, owner); err != nil {
		logger.LogError(ctx, err, "Failed to dispatch owner notification",
			zap.String("sink", s.sink.Name()),
			zap.String("email", logger.MaskEmail(req.Email)))
		return &models.SubmissionOutcome{Kind: models.OutcomeFailed}, apperrors.DispatchError(err)
	}

	if s.config.Contact.AutoReplyEnabled {
		// Fire, observe, discard: the auto-reply never changes the outcome
		if err := s.send(ctx, notification.AutoReply(req, s.config.Contact.FromEmail)); err != nil {
			logger.Warn("Auto-reply failed",
				append(logger.TraceFields(ctx),
					zap.String("sink", s.sink.Name()),
					zap.String("email", logger.MaskEmail(req.Email)),
					zap.Error(err))...)
		}
	}

	// 5. Acceptance
	outcome := &models.SubmissionOutcome{
		Kind:       models.OutcomeAccepted,
		AcceptedAt: s.now().UTC(),
	}
	s.persist(ctx, req, clientID, receivedAt, outcome)

	logger.Info("Contact submission accepted",
		append(logger.TraceFields(ctx),
			zap.String("submission_id", outcome.SubmissionID),
			zap.String("email", logger.MaskEmail(req.Email)))...)
	return outcome, nil
}

// checkRateLimit fails open: a limiter outage must not take the form down
func (s *ContactService) checkRateLimit(ctx context.Context, clientID string) (ratelimit.Decision, bool) {
	decision, err := s.limiter.Allow(ctx, clientID)
	if err != nil {
		logger.LogError(ctx, err, "Rate limiter unavailable, allowing request", zap.String("client_id", clientID))
		return decision, true
	}
	return decision, decision.Allowed
}

// send bounds one sink call by the dispatch timeout. The caller's
// cancellation is detached: once dispatch starts it runs to completion or timeout.
func (s *ContactService) send(ctx context.Context, msg notification.Message) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Contact.DispatchTimeout())
	defer cancel()

	ctx, span := tracing.StartSpan(ctx, "contact.dispatch",
		attribute.String("notification.kind", string(msg.Kind)),
		attribute.String("notification.sink", s.sink.Name()))
	defer span.End()

	err := s.sink.Send(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
	}
	return err
}

// persist stores the accepted submission and fires the acceptance trigger.
// Failures are logged only; the submission is already accepted.
func (s *ContactService) persist(ctx context.Context, req *models.SubmissionRequest, clientID string, receivedAt time.Time, outcome *models.SubmissionOutcome) {
	if s.repo == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.StoreTimeout())
	defer cancel()

	stored, err := s.repo.Save(ctx, req, clientID, receivedAt)
	if err != nil {
		logger.LogError(ctx, err, "Failed to persist accepted submission",
			zap.String("email", logger.MaskEmail(req.Email)))
		return
	}
	outcome.SubmissionID = stored.ID

	// Notify downstream automation (non-blocking)
	trigger.CallAsync(s.config.EventTriggers.SubmissionAcceptedTriggerURL, stored.ID, s.httpClient)
}
