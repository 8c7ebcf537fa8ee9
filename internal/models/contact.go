package models

import "time"

// SubmissionRequest represents a contact form submission.
// It is never mutated after decoding.
type SubmissionRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Company     string `json:"company,omitempty" validate:"max=100"`
	Subject     string `json:"subject" validate:"required,min=1,max=200"`
	Message     string `json:"message" validate:"required,min=10,max=2000"`
	ProjectType string `json:"projectType,omitempty"`
	Budget      string `json:"budget,omitempty"`
	Timeline    string `json:"timeline,omitempty"`
}

// FieldViolation is one failed constraint, addressed by JSON field name
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// OutcomeKind classifies the result of a submission
type OutcomeKind string

const (
	OutcomeAccepted            OutcomeKind = "accepted"
	OutcomeRejectedValidation  OutcomeKind = "rejected_validation"
	OutcomeRejectedRateLimited OutcomeKind = "rejected_rate_limited"
	OutcomeRejectedSuspicious  OutcomeKind = "rejected_suspicious"
	OutcomeFailed              OutcomeKind = "failed"
)

// SubmissionOutcome is the single result produced for every submission.
// AcceptedAt is set only for OutcomeAccepted, Violations only for
// OutcomeRejectedValidation, RetryAfter only for OutcomeRejectedRateLimited.
type SubmissionOutcome struct {
	Kind         OutcomeKind
	AcceptedAt   time.Time
	Violations   []FieldViolation
	RetryAfter   time.Duration
	SubmissionID string
}

// RateLimitRecord tracks one client's fixed window
type RateLimitRecord struct {
	Count   int       `json:"count"`
	ResetAt time.Time `json:"resetAt"`
}

// StoredSubmission is an accepted submission as written to the content store
type StoredSubmission struct {
	ID         string            `json:"id"`
	Request    SubmissionRequest `json:"request"`
	ClientHash string            `json:"clientHash"`
	ReceivedAt time.Time         `json:"receivedAt"`
}

// ContactSuccessResponse is the 200 response body
type ContactSuccessResponse struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the body of every non-200 response
type ErrorResponse struct {
	Error   string           `json:"error"`
	Details []FieldViolation `json:"details,omitempty"`
}
