package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TaskRunnerConfig holds configuration for the task runner.
type TaskRunnerConfig struct {
	// WorkerCount is the number of concurrent workers processing tasks.
	WorkerCount int

	// QueueSize is the buffer size of the in-memory task queue.
	QueueSize int

	// StuckTaskAge is how long a task may sit in the processing state
	// before it is considered stuck and reset to pending.
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval is how often stuck tasks are checked for.
	// Zero means every 5 minutes.
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns the production defaults.
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner owns the worker pool and the in-memory queue. Tasks are
// persisted before they are queued, so the runner can requeue anything
// the process lost on a crash.
type TaskRunner struct {
	store    TaskStore
	taskChan chan Task
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	config   TaskRunnerConfig
	logger   *slog.Logger
}

// NewTaskRunner creates a TaskRunner. Call Start to begin processing.
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &TaskRunner{
		store:    store,
		taskChan: make(chan Task, config.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		config:   config,
		logger:   logger.With("component", "task_runner"),
	}
}

// Submit persists the task and hands it to the worker pool. The task is
// durable once Submit returns nil even if the queue push raced a
// shutdown; recovery will pick it up on the next start.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	select {
	case r.taskChan <- task:
		return nil
	default:
		return fmt.Errorf("task queue is full, try again later")
	}
}

// Start recovers unfinished tasks and launches the workers and the
// stuck-task monitor.
func (r *TaskRunner) Start() error {
	if err := r.Recover(); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop cancels the runner and waits for in-flight tasks to finish.
func (r *TaskRunner) Stop() {
	r.cancel()
	r.wg.Wait()
	close(r.taskChan)
}

// Recover requeues tasks the previous process left behind: pending tasks
// go straight back on the queue, processing tasks are reset to pending
// first since their previous execution may have died mid-flight.
func (r *TaskRunner) Recover() error {
	ctx := context.Background()

	pending, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processing, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		"pending_count", len(pending),
		"processing_count", len(processing))

	for _, t := range pending {
		r.requeue(t)
	}

	for _, t := range processing {
		if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending, "reset after restart"); err != nil {
			r.logger.Error("failed to reset interrupted task",
				"task_id", t.ID(), "task_type", t.Type(), "error", err)
			continue
		}
		r.requeue(t)
	}

	return nil
}

// requeue pushes a task onto the queue without blocking. A full queue is
// not fatal; the task stays pending in the database for the next recovery.
func (r *TaskRunner) requeue(t Task) {
	select {
	case r.taskChan <- t:
	default:
		r.logger.Error("queue full, task left pending for next recovery",
			"task_id", t.ID(), "task_type", t.Type())
	}
}

func (r *TaskRunner) worker(id int) {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case t, ok := <-r.taskChan:
			if !ok {
				return
			}
			r.processTask(t, id)
		}
	}
}

// processTask drives a single task through its status lifecycle. It uses
// a background context on purpose: a task picked up by a worker runs to
// completion even while the server is shutting down.
func (r *TaskRunner) processTask(t Task, workerID int) {
	ctx := context.Background()
	logger := r.logger.With(
		"task_id", t.ID(),
		"task_type", t.Type(),
		"worker_id", workerID,
	)

	if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusProcessing, ""); err != nil {
		logger.Error("failed to mark task processing", "error", err)
		return
	}

	logger.Info("processing task")

	if err := t.Execute(ctx); err != nil {
		logger.Error("task execution failed", "error", err)
		if updateErr := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			logger.Error("failed to mark task failed", "error", updateErr)
		}
		return
	}

	logger.Info("task completed")
	if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusCompleted, ""); err != nil {
		logger.Error("failed to mark task completed", "error", err)
	}
}

// stuckTaskMonitor resets tasks that have been processing for longer
// than StuckTaskAge, which happens when a worker dies without updating
// the database.
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.resetStuckTasks()
		}
	}
}

func (r *TaskRunner) resetStuckTasks() {
	ctx := context.Background()

	stuck, err := r.store.GetProcessingTasks(ctx, r.config.StuckTaskAge)
	if err != nil {
		r.logger.Error("failed to check for stuck tasks", "error", err)
		return
	}
	if len(stuck) == 0 {
		return
	}

	r.logger.Info("found stuck tasks", "count", len(stuck))
	for _, t := range stuck {
		if err := r.store.UpdateTaskStatus(ctx, t.ID(), TaskStatusPending, "reset after stall in processing"); err != nil {
			r.logger.Error("failed to reset stuck task",
				"task_id", t.ID(), "task_type", t.Type(), "error", err)
			continue
		}
		r.requeue(t)
	}
}
