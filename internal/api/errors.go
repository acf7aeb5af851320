package api

import "errors"

var (
	// ErrInvalidRequestBody is returned when the request body cannot be decoded
	ErrInvalidRequestBody = errors.New("invalid request body")
	// ErrRequestTooLarge is returned when the request body exceeds the configured limit
	ErrRequestTooLarge = errors.New("request body too large")
	// ErrMultipleJSONObjects is returned when the request body contains more than one JSON object
	ErrMultipleJSONObjects = errors.New("request body must contain a single JSON object")
	// ErrAuditorNotConfigured is returned when audit endpoints are called without an auditor
	ErrAuditorNotConfigured = errors.New("auditor not configured")
	// ErrAuditFailed is returned when fetching or analyzing a target fails
	ErrAuditFailed = errors.New("audit failed")
	// ErrAuditTimeout is returned when an audit exceeds the request deadline
	ErrAuditTimeout = errors.New("audit timed out")
)
