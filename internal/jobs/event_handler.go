package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskhub-api/internal/events"
)

// EventHandler turns user-scoped domain events into random-task jobs.
type EventHandler struct {
	generator *TaskGenerator
	submitter Submitter
	logger    *slog.Logger
}

// NewEventHandler creates a handler submitting jobs built by generator.
func NewEventHandler(generator *TaskGenerator, submitter Submitter, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		generator: generator,
		submitter: submitter,
		logger:    logger.With("component", "job_event_handler"),
	}
}

// HandleEvent submits a random task job for RandomTaskRequested events and
// ignores everything else.
func (h *EventHandler) HandleEvent(ctx context.Context, event *events.Event) error {
	switch event.Type {
	case events.RandomTaskRequested:
	default:
		h.logger.Debug("ignoring event", "event_type", event.Type, "event_id", event.ID)
		return nil
	}

	var payload events.UserPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %w", event.Type, err)
	}

	job, err := h.generator.RandomTaskJob(payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to build random task job: %w", err)
	}

	if err := h.submitter.Submit(ctx, job); err != nil {
		return fmt.Errorf("failed to submit job: %w", err)
	}

	h.logger.Info("random task job submitted",
		"job_id", job.ID(),
		"user_id", payload.UserID,
		"event_id", event.ID,
		"event_type", event.Type)
	return nil
}

var _ events.EventHandler = (*EventHandler)(nil)
