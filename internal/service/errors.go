package service

import "errors"

// Service errors. The API layer maps them to HTTP status codes.
var (
	// ErrTaskNotFound is returned when no task matches both the id and the
	// requesting user. Foreign tasks are reported the same way as missing ones.
	ErrTaskNotFound = errors.New("task not found")

	// ErrSessionNotFound is returned for unknown chat sessions and for
	// sessions owned by someone else.
	ErrSessionNotFound = errors.New("chat session not found")

	// ErrSessionForbidden is returned when a WebSocket client tries to join a
	// session owned by another user.
	ErrSessionForbidden = errors.New("chat session belongs to another user")

	// ErrJobsUnavailable is returned when background work is requested but no
	// event emitter is configured.
	ErrJobsUnavailable = errors.New("background jobs are not available")
)
