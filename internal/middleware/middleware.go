// Package middleware holds the global and route-level echo middleware:
// request ids, request-scoped logging, New Relic tracing, rate limiting,
// bearer authentication, tenant resolution and permission checks.
package middleware
