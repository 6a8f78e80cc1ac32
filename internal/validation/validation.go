// Package validation binds and validates request payloads.
//
// Rules live in `validate` struct tags (go-playground/validator) or in a
// request's own Validate method; failures are converted into field errors
// inside a 400 errs.HTTPError.
package validation
