package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bookwise/bookwise-api/internal/events"
	"github.com/google/uuid"
)

// TaskFactory creates tasks from a book ID.
type TaskFactory interface {
	CreateTask(bookID uuid.UUID) (Task, error)
}

// TaskSubmitter accepts tasks for background execution.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler bridges the event bus and the task runner:
// it turns prompt generation request events into tasks and submits them.
type TaskFactoryEventHandler struct {
	factory TaskFactory
	runner  TaskSubmitter
	logger  *slog.Logger
}

// NewTaskFactoryEventHandler creates the handler.
func NewTaskFactoryEventHandler(
	factory TaskFactory,
	runner TaskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	return &TaskFactoryEventHandler{
		factory: factory,
		runner:  runner,
		logger:  logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent creates and submits a task for prompt generation events.
// Events of other types are ignored without error.
func (h *TaskFactoryEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if event.Type != events.EventPromptGeneration {
		h.logger.Debug("ignoring event of unsupported type",
			"event_type", event.Type, "event_id", event.ID)
		return nil
	}

	var payload struct {
		BookID string `json:"book_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal event payload: %w", err)
	}

	bookID, err := uuid.Parse(payload.BookID)
	if err != nil {
		return fmt.Errorf("invalid book ID in event payload: %w", err)
	}

	t, err := h.factory.CreateTask(bookID)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.runner.Submit(ctx, t); err != nil {
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task submitted for book",
		"task_id", t.ID(), "book_id", bookID, "event_id", event.ID)
	return nil
}

var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
