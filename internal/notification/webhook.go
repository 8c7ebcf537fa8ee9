package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/devfolio/portfolio-api/pkg/circuitbreaker"
	"github.com/devfolio/portfolio-api/pkg/httpclient"
	"github.com/devfolio/portfolio-api/pkg/logger"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// WebhookSink POSTs each message as JSON to an email relay endpoint
// (a serverless mail function or a transactional email provider's HTTP API).
// Any non-2xx response is a failure. Consecutive failures open a circuit
// breaker so an unavailable relay fails fast instead of holding requests
// until the dispatch timeout.
type WebhookSink struct {
	url        string
	token      string
	httpClient httpclient.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewWebhookSink creates a webhook sink. token is sent as a bearer token when non-empty.
func NewWebhookSink(url, token string, httpClient httpclient.Client) *WebhookSink {
	return &WebhookSink{
		url:        url,
		token:      token,
		httpClient: httpClient,
		breaker:    circuitbreaker.NewCircuitBreaker(circuitbreaker.NotificationConfig("notification-webhook")),
	}
}

func (s *WebhookSink) Name() string { return "webhook" }

func (s *WebhookSink) Send(ctx context.Context, msg Message) error {
	start := time.Now()
	_, err := circuitbreaker.Execute(s.breaker, func() (struct{}, error) {
		return struct{}{}, s.post(ctx, msg)
	})

	duration := time.Since(start).Seconds()
	observe(s.Name(), msg.Kind, start, err)
	if err != nil {
		logger.LogAPICall(ctx, "notification_webhook", string(msg.Kind), "error", duration, zap.Error(err))
		return err
	}
	logger.LogAPICall(ctx, "notification_webhook", string(msg.Kind), "success", duration)
	return nil
}

func (s *WebhookSink) post(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notification webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024)) //nolint:errcheck // drain for connection reuse

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	return nil
}
