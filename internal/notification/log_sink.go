package notification

import (
	"context"
	"time"

	"github.com/devfolio/portfolio-api/pkg/logger"
	"go.uber.org/zap"
)

// LogSink writes notifications to the application log instead of delivering them.
// Used in development and when no delivery channel is configured.
type LogSink struct{}

// NewLogSink creates a LogSink
func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Send(ctx context.Context, msg Message) error {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		observe(s.Name(), msg.Kind, start, err)
		return err
	}

	fields := append(logger.TraceFields(ctx),
		zap.String("kind", string(msg.Kind)),
		zap.String("to", logger.MaskEmail(msg.To)),
		zap.String("subject", msg.Subject),
		zap.Int("body_length", len(msg.Body)),
	)
	logger.Info("Notification logged (no delivery channel)", fields...)
	logger.Debug("Notification body", zap.String("body", msg.Body))

	observe(s.Name(), msg.Kind, start, nil)
	return nil
}
