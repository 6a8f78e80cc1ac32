package validation

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/deppfellow/edufinance/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is implemented by every request payload.
//
// Validate returns validator.ValidationErrors, CustomValidationErrors, or nil.
type Validatable interface {
	Validate() error
}

// CustomValidationError is a rule that cannot be expressed with tags.
type CustomValidationError struct {
	Field   string
	Message string
}

type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// Add appends a field error and returns the updated slice.
func (c CustomValidationErrors) Add(field, message string) CustomValidationErrors {
	return append(c, CustomValidationError{Field: field, Message: message})
}

// OrNil returns nil when no errors were collected so callers can
// `return errs.OrNil()` without creating a non-nil empty error.
func (c CustomValidationErrors) OrNil() error {
	if len(c) == 0 {
		return nil
	}
	return c
}

var validate = validator.New()

// Struct runs tag validation with the shared validator instance.
func Struct(v any) error {
	return validate.Struct(v)
}

// Var validates a single value against a tag, e.g. Var(email, "email").
func Var(v any, tag string) error {
	return validate.Var(v, tag)
}

// BindAndValidate binds path, query and body values into payload and
// validates it. payload must be a pointer.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError(bindErrorMessage(err), false, nil, nil, nil)
	}

	if msg, fieldErrors := validateStruct(payload); fieldErrors != nil {
		return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
	}

	return nil
}

func bindErrorMessage(err error) string {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok && msg != "" {
			return msg
		}
		return http.StatusText(he.Code)
	}
	return "Invalid request payload"
}

func validateStruct(v Validatable) (string, []errs.FieldError) {
	if err := v.Validate(); err != nil {
		return extractValidationError(err)
	}
	return "", nil
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var fieldErrors []errs.FieldError

	var customValidationErrors CustomValidationErrors
	if errors.As(err, &customValidationErrors) {
		for _, err := range customValidationErrors {
			fieldErrors = append(fieldErrors, errs.FieldError{
				Field: err.Field,
				Error: err.Message,
			})
		}
		return "Validation failed", fieldErrors
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "Validation failed", []errs.FieldError{{Field: "", Error: err.Error()}}
	}

	for _, err := range validationErrors {
		field := toSnakeCase(err.Field())
		var msg string

		switch err.Tag() {
		case "required", "required_without", "required_with":
			msg = "is required"

		case "min":
			if err.Kind() == reflect.String {
				msg = fmt.Sprintf("must be at least %s characters", err.Param())
			} else if err.Kind() == reflect.Slice {
				msg = fmt.Sprintf("must contain at least %s items", err.Param())
			} else {
				msg = fmt.Sprintf("must be at least %s", err.Param())
			}

		case "max":
			if err.Kind() == reflect.String {
				msg = fmt.Sprintf("must not exceed %s characters", err.Param())
			} else if err.Kind() == reflect.Slice {
				msg = fmt.Sprintf("must not contain more than %s items", err.Param())
			} else {
				msg = fmt.Sprintf("must not exceed %s", err.Param())
			}

		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", err.Param())

		case "email":
			msg = "must be a valid email address"

		case "e164":
			msg = "must be a valid phone number with country code"

		case "uuid", "uuid4":
			msg = "must be a valid UUID"

		case "datetime":
			msg = fmt.Sprintf("must be a date in the format %s", err.Param())

		case "dive":
			msg = "some items are invalid"

		default:
			if err.Param() != "" {
				msg = fmt.Sprintf("%s: %s:%s", field, err.Tag(), err.Param())
			} else {
				msg = fmt.Sprintf("%s: %s", field, err.Tag())
			}
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: field,
			Error: msg,
		})
	}

	return "Validation failed", fieldErrors
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// toSnakeCase maps Go field names onto the JSON names clients send:
// DocumentNumber -> document_number, StudentIDs -> student_ids.
func toSnakeCase(field string) string {
	return strings.ToLower(camelBoundary.ReplaceAllString(field, "${1}_${2}"))
}

// FieldErrors flattens a Validate/Struct error into field errors.
func FieldErrors(err error) []errs.FieldError {
	if err == nil {
		return nil
	}
	_, fieldErrors := extractValidationError(err)
	return fieldErrors
}
