package task

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTask is a controllable Task implementation for runner tests.
type mockTask struct {
	id        uuid.UUID
	executeFn func(ctx context.Context) error
	executed  chan struct{}
}

func newMockTask(executeFn func(ctx context.Context) error) *mockTask {
	t := &mockTask{
		id:       uuid.New(),
		executed: make(chan struct{}),
	}
	t.executeFn = func(ctx context.Context) error {
		defer close(t.executed)
		if executeFn != nil {
			return executeFn(ctx)
		}
		return nil
	}
	return t
}

func (t *mockTask) ID() uuid.UUID      { return t.id }
func (t *mockTask) Type() string       { return "mock_task" }
func (t *mockTask) Payload() []byte    { return []byte(`{}`) }
func (t *mockTask) Status() TaskStatus { return TaskStatusPending }
func (t *mockTask) Execute(ctx context.Context) error {
	return t.executeFn(ctx)
}

// memoryTaskStore is an in-memory TaskStore tracking saved tasks and
// status transitions.
type memoryTaskStore struct {
	mu         sync.Mutex
	saved      []Task
	statuses   map[uuid.UUID][]TaskStatus
	pending    []Task
	processing []Task
	saveErr    error
}

func newMemoryTaskStore() *memoryTaskStore {
	return &memoryTaskStore{statuses: make(map[uuid.UUID][]TaskStatus)}
}

func (s *memoryTaskStore) SaveTask(ctx context.Context, task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, task)
	return nil
}

func (s *memoryTaskStore) UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[taskID] = append(s.statuses[taskID], status)
	return nil
}

func (s *memoryTaskStore) GetPendingTasks(ctx context.Context) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, nil
}

func (s *memoryTaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing, nil
}

func (s *memoryTaskStore) WithTx(tx *sql.Tx) TaskStore {
	return s
}

func (s *memoryTaskStore) statusHistory(taskID uuid.UUID) []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := make([]TaskStatus, len(s.statuses[taskID]))
	copy(history, s.statuses[taskID])
	return history
}

func testRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              10,
		StuckTaskAge:           time.Minute,
		StuckTaskCheckInterval: time.Hour, // keep the monitor quiet during tests
	}
}

func TestTaskRunnerExecutesSubmittedTask(t *testing.T) {
	t.Parallel()

	store := newMemoryTaskStore()
	runner := NewTaskRunner(store, testRunnerConfig(), taskTestLogger())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	task := newMockTask(nil)
	require.NoError(t, runner.Submit(context.Background(), task))

	select {
	case <-task.executed:
	case <-time.After(2 * time.Second):
		t.Fatal("task was not executed")
	}

	require.Eventually(t, func() bool {
		history := store.statusHistory(task.id)
		return len(history) == 2 &&
			history[0] == TaskStatusProcessing &&
			history[1] == TaskStatusCompleted
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTaskRunnerMarksFailedTask(t *testing.T) {
	t.Parallel()

	store := newMemoryTaskStore()
	runner := NewTaskRunner(store, testRunnerConfig(), taskTestLogger())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	task := newMockTask(func(ctx context.Context) error {
		return errors.New("execution blew up")
	})
	require.NoError(t, runner.Submit(context.Background(), task))

	require.Eventually(t, func() bool {
		history := store.statusHistory(task.id)
		return len(history) == 2 && history[1] == TaskStatusFailed
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTaskRunnerSubmitSaveFailure(t *testing.T) {
	t.Parallel()

	store := newMemoryTaskStore()
	store.saveErr = errors.New("insert failed")
	runner := NewTaskRunner(store, testRunnerConfig(), taskTestLogger())

	err := runner.Submit(context.Background(), newMockTask(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save task")
}

func TestTaskRunnerSubmitQueueFull(t *testing.T) {
	t.Parallel()

	store := newMemoryTaskStore()
	config := testRunnerConfig()
	config.QueueSize = 1
	// Runner deliberately not started: nothing drains the queue.
	runner := NewTaskRunner(store, config, taskTestLogger())

	require.NoError(t, runner.Submit(context.Background(), newMockTask(nil)))
	err := runner.Submit(context.Background(), newMockTask(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue is full")
}

func TestTaskRunnerRecovery(t *testing.T) {
	t.Parallel()

	store := newMemoryTaskStore()
	pendingTask := newMockTask(nil)
	interruptedTask := newMockTask(nil)
	store.pending = []Task{pendingTask}
	store.processing = []Task{interruptedTask}

	runner := NewTaskRunner(store, testRunnerConfig(), taskTestLogger())
	require.NoError(t, runner.Start())
	defer runner.Stop()

	for _, task := range []*mockTask{pendingTask, interruptedTask} {
		select {
		case <-task.executed:
		case <-time.After(2 * time.Second):
			t.Fatal("recovered task was not executed")
		}
	}

	// The interrupted task is reset to pending before requeuing.
	history := store.statusHistory(interruptedTask.id)
	require.NotEmpty(t, history)
	assert.Equal(t, TaskStatusPending, history[0])
}

func TestTaskRunnerStopWaitsForInFlightTask(t *testing.T) {
	t.Parallel()

	store := newMemoryTaskStore()
	runner := NewTaskRunner(store, testRunnerConfig(), taskTestLogger())
	require.NoError(t, runner.Start())

	release := make(chan struct{})
	task := newMockTask(func(ctx context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, runner.Submit(context.Background(), task))

	// Let a worker pick the task up, then stop while it is running.
	require.Eventually(t, func() bool {
		return len(store.statusHistory(task.id)) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		runner.Stop()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Stop returned while a task was still running")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the task finished")
	}

	history := store.statusHistory(task.id)
	assert.Equal(t, TaskStatusCompleted, history[len(history)-1])
}
