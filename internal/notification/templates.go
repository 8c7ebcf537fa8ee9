package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/devfolio/portfolio-api/internal/models"
)

// OwnerNotification builds the message sent to the site owner on behalf of the requester
func OwnerNotification(req *models.SubmissionRequest, owner string, receivedAt time.Time) Message {
	var b strings.Builder
	b.WriteString("New contact form submission\n\n")
	writeField(&b, "Name", req.Name)
	writeField(&b, "Email", req.Email)
	writeField(&b, "Company", req.Company)
	writeField(&b, "Subject", req.Subject)
	writeField(&b, "Project type", req.ProjectType)
	writeField(&b, "Budget", req.Budget)
	writeField(&b, "Timeline", req.Timeline)
	b.WriteString("\nMessage:\n")
	b.WriteString(req.Message)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Received: %s\n", receivedAt.UTC().Format(time.RFC3339))

	return Message{
		Kind:    KindOwnerNotification,
		To:      owner,
		From:    req.Email,
		ReplyTo: req.Email,
		Subject: "Portfolio contact: " + req.Subject,
		Body:    b.String(),
	}
}

// AutoReply builds the acknowledgement sent back to the requester
func AutoReply(req *models.SubmissionRequest, from string) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", req.Name)
	b.WriteString("Thanks for reaching out. Your message has been received and I'll get back to you as soon as possible, usually within two business days.\n\n")
	b.WriteString("For reference, here is what you sent:\n\n")
	fmt.Fprintf(&b, "Subject: %s\n\n%s\n", req.Subject, req.Message)

	return Message{
		Kind:    KindAutoReply,
		To:      req.Email,
		From:    from,
		Subject: "Thanks for your message: " + req.Subject,
		Body:    b.String(),
	}
}

// writeField writes "Label: value" lines, skipping empty optional fields
func writeField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}
