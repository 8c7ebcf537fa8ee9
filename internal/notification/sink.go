package notification

import (
	"context"
	"time"

	"github.com/devfolio/portfolio-api/pkg/metrics"
)

// Kind distinguishes the owner notification from the auto-reply in metrics and logs
type Kind string

const (
	KindOwnerNotification Kind = "owner_notification"
	KindAutoReply         Kind = "auto_reply"
)

// Message is one outbound email-style notification
type Message struct {
	Kind    Kind   `json:"kind"`
	To      string `json:"to"`
	From    string `json:"from"`
	ReplyTo string `json:"replyTo,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sink delivers notifications. A nil error means the sink accepted the message.
type Sink interface {
	Send(ctx context.Context, msg Message) error
	Name() string
}

// observe records duration and outcome of a send
func observe(sink string, kind Kind, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := metrics.MeasureDuration(start)
	metrics.NotificationDuration.WithLabelValues(sink, string(kind), status).Observe(duration)
	metrics.NotificationTotal.WithLabelValues(sink, string(kind), status).Inc()
}
