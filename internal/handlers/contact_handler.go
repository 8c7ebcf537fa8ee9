package handlers

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/devfolio/portfolio-api/internal/services"
	apperrors "github.com/devfolio/portfolio-api/pkg/errors"
	"github.com/gin-gonic/gin"
)

// Response messages are part of the public contract
const (
	SuccessMessage          = "Thank you for your message! I'll get back to you soon."
	ErrMsgValidationFailed  = "Validation failed"
	ErrMsgFlagged           = "Message flagged for review."
	ErrMsgTooManyRequests   = "Too many requests. Please try again later."
	ErrMsgInternal          = "Internal server error. Please try again later."
	ErrMsgMethodNotAllowed  = "Method not allowed"
	unknownClientIdentifier = "unknown"
)

// ContactHandler handles contact form HTTP requests
type ContactHandler struct {
	service services.ContactServiceInterface
}

// NewContactHandler creates a new contact handler
func NewContactHandler(service services.ContactServiceInterface) *ContactHandler {
	return &ContactHandler{service: service}
}

// Submit handles /api/v1/contact for every method; only POST is accepted
func (h *ContactHandler) Submit(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.Header("Allow", http.MethodPost)
		respondError(c, http.StatusMethodNotAllowed, ErrMsgMethodNotAllowed, nil)
		return
	}

	// An unreadable or oversized body is passed on empty so the submission
	// is still rate limited before it is rejected by validation.
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		attachError(c, err)
		body = nil
	}

	outcome, err := h.service.Submit(c.Request.Context(), ClientID(c.Request), body)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRateLimited):
			if outcome != nil && outcome.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(outcome.RetryAfter.Seconds()))))
			}
			respondError(c, http.StatusTooManyRequests, ErrMsgTooManyRequests, err)
		case errors.Is(err, apperrors.ErrValidation):
			var details []models.FieldViolation
			if outcome != nil {
				details = outcome.Violations
			}
			respondErrorWithDetails(c, http.StatusBadRequest, ErrMsgValidationFailed, details, err)
		case errors.Is(err, apperrors.ErrContentFlagged):
			respondError(c, http.StatusBadRequest, ErrMsgFlagged, err)
		default:
			respondError(c, http.StatusInternalServerError, ErrMsgInternal, err)
		}
		return
	}

	if outcome == nil || outcome.Kind != models.OutcomeAccepted {
		respondError(c, http.StatusInternalServerError, ErrMsgInternal, errors.New("submission finished without acceptance"))
		return
	}

	c.JSON(http.StatusOK, models.ContactSuccessResponse{
		Message:   SuccessMessage,
		Timestamp: outcome.AcceptedAt,
	})
}

// ClientID resolves the rate-limit key: the first X-Forwarded-For entry,
// then X-Real-IP, then "unknown". Headers are trusted as sent.
func ClientID(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return unknownClientIdentifier
}
