package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/devfolio/portfolio-api/internal/models"
	"github.com/go-playground/validator/v10"
)

// BodyField is the field reported when the payload is not a JSON object
const BodyField = "body"

// Validator checks submissions against the struct tags on models.SubmissionRequest
type Validator struct {
	validate *validator.Validate
}

// New creates a validator that reports JSON field names
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate returns every violated field, in struct field order.
// An empty result means the request is valid.
func (v *Validator) Validate(req *models.SubmissionRequest) []models.FieldViolation {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []models.FieldViolation{{Field: BodyField, Message: "Invalid request"}}
	}

	violations := make([]models.FieldViolation, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		violations = append(violations, models.FieldViolation{
			Field:   fieldError.Field(),
			Message: getErrorMessage(fieldError),
		})
	}
	return violations
}

// DecodeAndValidate parses the raw body and validates it.
// Malformed JSON yields a single violation on the body field.
func (v *Validator) DecodeAndValidate(body []byte) (*models.SubmissionRequest, []models.FieldViolation) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, []models.FieldViolation{{Field: BodyField, Message: "Request body must be a JSON object"}}
	}

	var req models.SubmissionRequest
	var typeViolation *models.FieldViolation
	if err := json.Unmarshal(trimmed, &req); err != nil {
		// Type mismatches still decode the remaining fields, so they are
		// reported alongside the ordinary constraint violations.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) || typeErr.Field == "" {
			return nil, []models.FieldViolation{{Field: BodyField, Message: "Invalid JSON"}}
		}
		typeViolation = &models.FieldViolation{
			Field:   typeErr.Field,
			Message: typeErr.Field + " must be a " + typeErr.Type.String(),
		}
	}

	violations := v.Validate(&req)
	if typeViolation != nil {
		merged := []models.FieldViolation{*typeViolation}
		for _, violation := range violations {
			if violation.Field != typeViolation.Field {
				merged = append(merged, violation)
			}
		}
		violations = merged
	}

	if len(violations) > 0 {
		return nil, violations
	}
	return &req, nil
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must not exceed " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
