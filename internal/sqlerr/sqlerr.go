// Package sqlerr translates database driver errors into API errors.
//
// Postgres SQLSTATE codes are mapped to a small set of categories and turned
// into errs.HTTPError values with readable messages, e.g. a unique violation
// on students becomes "A Student with this Document already exists".
package sqlerr
