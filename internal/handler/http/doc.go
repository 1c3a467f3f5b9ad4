// Package http exposes the identity store over a chi-based REST surface:
// user accounts, external logins, claims and roles. Handlers translate
// between JSON payloads and store operations and map the store's sentinel
// errors onto HTTP status codes via statusFromError.
//
// Every request carries a trace id (withTraceID) and a request-scoped
// logger, so downstream store calls log with the same trace_id field.
package http
