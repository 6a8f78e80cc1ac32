// Package errs defines the error shape returned to API clients.
//
// Every failure that reaches the HTTP layer is converted to an HTTPError so
// clients always receive the same JSON structure, including field-level
// validation errors and optional action hints.
package errs
