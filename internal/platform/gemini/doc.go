// Package gemini provides a chat assistant backed by Google's Gemini API.
//
// This package is an infrastructure adapter: it implements service.Assistant
// by rendering the recent transcript into a prompt, calling the model and
// returning the text of the first candidate.
//
// Key components:
//
// 1. Responder:
//   - Implements the service.Assistant interface
//   - Retries transient API failures with exponential backoff and jitter
//   - Falls back to another assistant when the model cannot answer
//
// 2. Prompt Management:
//   - Renders the transcript through a text/template
//   - Labels each line with the author of the message
package gemini
