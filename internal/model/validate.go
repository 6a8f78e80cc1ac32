package model

import (
	"strings"

	"github.com/deppfellow/edufinance/internal/validation"
)

func validateStruct(v any) error {
	return validation.Struct(v)
}

// trimSpace trims the given fields in place. Nil pointers are skipped.
func trimSpace(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

// checkOptional validates an optional value against tag. A present but blank
// value means "clear the field" and passes.
func checkOptional(errs validation.CustomValidationErrors, field string, v *string, tag, msg string) validation.CustomValidationErrors {
	if v == nil || strings.TrimSpace(*v) == "" {
		return errs
	}
	if validation.Var(strings.TrimSpace(*v), tag) != nil {
		return errs.Add(field, msg)
	}
	return errs
}

const (
	msgEmail = "must be a valid email address"
	msgUUID  = "must be a valid UUID"
	msgDate  = "must be a date in the format " + dateLayout
)
