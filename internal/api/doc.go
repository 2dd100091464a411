// Package api implements the HTTP handlers of the service.
//
// Handlers decode and validate requests, call the service layer and map its
// errors to status codes through MapErrorToStatusCode and GetSafeErrorMessage.
// Error bodies are always {"detail": "..."}.
package api
