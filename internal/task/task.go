package task

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskTypePromptGeneration identifies tasks that generate study prompts
// from a book excerpt.
const TaskTypePromptGeneration = "prompt_generation"

// Task is a unit of background work.
type Task interface {
	// ID returns the task's unique identifier.
	ID() uuid.UUID

	// Type returns the task type identifier.
	Type() string

	// Payload returns the task data serialized for persistence.
	Payload() []byte

	// Status returns the current task status.
	Status() TaskStatus

	// Execute runs the task logic.
	Execute(ctx context.Context) error
}

// TaskStore persists tasks so they can be recovered after a restart.
type TaskStore interface {
	// SaveTask persists a task.
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus updates the status of a task, recording errorMsg
	// when the transition is to failed.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks retrieves all tasks in the pending state.
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks retrieves tasks in the processing state. A
	// non-zero olderThan restricts the result to tasks that entered the
	// state at least that long ago.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)

	// WithTx returns a TaskStore that runs its operations on the given
	// transaction. The caller owns the transaction lifecycle.
	WithTx(tx *sql.Tx) TaskStore
}
