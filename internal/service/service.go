// Package service contains the business logic.
//
// Services sit between the handlers and the repositories. They receive
// validated requests together with the caller and the resolved tenant,
// enforce the business rules that need more than one row, and translate
// domain failures into errs.HTTPError values.
//
// Every service depends on small interfaces declared next to it rather
// than on the concrete repositories, so tests can use in-memory fakes.
package service

import (
	"context"

	"github.com/rs/zerolog"
)

// logFor prefers the request logger carried by ctx over fallback.
func logFor(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}
