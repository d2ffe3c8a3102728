package domain

import "errors"

// Sentinel errors for task-source and provider operations
var (
	// ErrAuthFailed indicates the token or API key was rejected (401/403)
	ErrAuthFailed = errors.New("authentication token is invalid")

	// ErrSourceOffline indicates the task source is unreachable after retries
	ErrSourceOffline = errors.New("task source is unreachable")

	// ErrServerError indicates a 5xx from the task source
	ErrServerError = errors.New("task source reported a server error, try again later")

	// ErrItemNotFound indicates the requested task does not exist
	ErrItemNotFound = errors.New("task not found")

	// ErrRateLimited indicates the provider rejected the call with 429
	ErrRateLimited = errors.New("rate limit exceeded")
)
