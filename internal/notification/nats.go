package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/devfolio/portfolio-api/pkg/logger"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// DefaultNATSSubject is used when no subject is configured
const DefaultNATSSubject = "portfolio.contact.notifications"

// FlushWithContext requires a deadline; this bounds flushes without one
const defaultFlushTimeout = 5 * time.Second

// NATSSink publishes messages for a mail worker subscribed on the subject.
// A send succeeds once the server has acknowledged the publish via flush.
type NATSSink struct {
	conn    *nats.Conn
	subject string
}

// NewNATSSink creates a sink publishing to subject on conn
func NewNATSSink(conn *nats.Conn, subject string) *NATSSink {
	if subject == "" {
		subject = DefaultNATSSubject
	}
	return &NATSSink{conn: conn, subject: subject}
}

// ConnectNATS dials the server with reconnect settings suited to a long-lived API process
func ConnectNATS(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}

func (s *NATSSink) Name() string { return "nats" }

func (s *NATSSink) Send(ctx context.Context, msg Message) error {
	start := time.Now()
	err := s.publish(ctx, msg)
	observe(s.Name(), msg.Kind, start, err)
	if err != nil {
		logger.LogAPICall(ctx, "notification_nats", string(msg.Kind), "error", time.Since(start).Seconds(), zap.Error(err))
		return err
	}
	return nil
}

func (s *NATSSink) publish(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	out := nats.NewMsg(s.subject + "." + string(msg.Kind))
	out.Data = payload
	out.Header.Set("Content-Type", "application/json")

	if err := s.conn.PublishMsg(out); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	if _, ok := ctx.Deadline(); !ok {
		if err := s.conn.FlushTimeout(defaultFlushTimeout); err != nil {
			return fmt.Errorf("failed to flush notification: %w", err)
		}
		return nil
	}
	if err := s.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush notification: %w", err)
	}
	return nil
}
