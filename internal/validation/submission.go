package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lifecarechoice/leadgate/internal/models"
)

var (
	phonePattern = regexp.MustCompile(`^\+?1?[-.\s]?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}$`)
	zipPattern   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// Shared validator instance with the submission-specific validators
// registered. Field names in errors come from the json tag so they match
// what the client actually sent.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("usphone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("uszip", func(fl validator.FieldLevel) bool {
		return zipPattern.MatchString(fl.Field().String())
	})

	return v
}

// ValidateSubmission checks a sanitized submission against the lead schema.
// It returns one error per offending field; an empty slice means the
// submission is acceptable. Acceptance is all-or-nothing.
func ValidateSubmission(sub *models.Submission) []models.FieldError {
	err := validate.Struct(sub)
	if err == nil {
		return nil
	}

	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return []models.FieldError{{Field: "_", Message: "validation failed"}}
	}

	fieldErrors := make([]models.FieldError, 0, len(ve))
	for _, fe := range ve {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   fe.Field(),
			Message: formatFieldError(fe),
		})
	}
	return fieldErrors
}

// formatFieldError converts a validator FieldError to a user-friendly message
func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "usphone":
		return "must be a valid US phone number"
	case "uszip":
		return "must be a 5-digit ZIP code (optionally ZIP+4)"
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		if fe.Param() == "0" {
			return "must be empty"
		}
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "alpha":
		return "must contain only letters"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "number":
		return "must be a whole number"
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
