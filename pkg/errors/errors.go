package errors

import (
	"errors"
	"fmt"
)

// Common application errors with proper types for error handling

var (
	// ErrValidation indicates a submission failed schema validation.
	// The client can resubmit corrected input.
	ErrValidation = errors.New("validation failed")

	// ErrRateLimited indicates the client exhausted its submission window.
	// The client can retry after the window resets.
	ErrRateLimited = errors.New("rate limited")

	// ErrContentFlagged indicates the content screening matched a spam or abuse pattern
	ErrContentFlagged = errors.New("content flagged")

	// ErrDispatch indicates the notification could not be delivered
	ErrDispatch = errors.New("dispatch failed")
)

// ValidationError reports how many fields failed validation
func ValidationError(violations int) error {
	return fmt.Errorf("%d invalid field(s): %w", violations, ErrValidation)
}

// RateLimitError identifies the throttled client
func RateLimitError(clientID string) error {
	return fmt.Errorf("client %s: %w", clientID, ErrRateLimited)
}

// ContentPolicyError names the pattern kind that matched
func ContentPolicyError(kind string) error {
	return fmt.Errorf("matched %s pattern: %w", kind, ErrContentFlagged)
}

// DispatchError wraps the underlying sink failure. The cause stays available
// for logging through errors.Unwrap chains but must not reach clients.
func DispatchError(cause error) error {
	return fmt.Errorf("%w: %w", ErrDispatch, cause)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}
