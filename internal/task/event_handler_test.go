package task

import (
	"context"
	"errors"
	"testing"

	"github.com/bookwise/bookwise-api/internal/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTaskFactory struct {
	task    Task
	err     error
	bookIDs []uuid.UUID
}

func (f *fakeTaskFactory) CreateTask(bookID uuid.UUID) (Task, error) {
	f.bookIDs = append(f.bookIDs, bookID)
	return f.task, f.err
}

type fakeSubmitter struct {
	tasks []Task
	err   error
}

func (s *fakeSubmitter) Submit(ctx context.Context, task Task) error {
	if s.err != nil {
		return s.err
	}
	s.tasks = append(s.tasks, task)
	return nil
}

func promptGenerationEvent(t *testing.T, bookID string) *events.TaskRequestEvent {
	t.Helper()
	event, err := events.NewTaskRequestEvent(events.EventPromptGeneration,
		map[string]string{"book_id": bookID})
	require.NoError(t, err)
	return event
}

func TestHandleEventSubmitsTask(t *testing.T) {
	t.Parallel()

	bookID := uuid.New()
	factory := &fakeTaskFactory{task: newMockTask(nil)}
	submitter := &fakeSubmitter{}
	handler := NewTaskFactoryEventHandler(factory, submitter, taskTestLogger())

	err := handler.HandleEvent(context.Background(), promptGenerationEvent(t, bookID.String()))
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{bookID}, factory.bookIDs)
	require.Len(t, submitter.tasks, 1)
}

func TestHandleEventIgnoresOtherTypes(t *testing.T) {
	t.Parallel()

	factory := &fakeTaskFactory{task: newMockTask(nil)}
	submitter := &fakeSubmitter{}
	handler := NewTaskFactoryEventHandler(factory, submitter, taskTestLogger())

	event, err := events.NewTaskRequestEvent("unrelated_event", nil)
	require.NoError(t, err)

	require.NoError(t, handler.HandleEvent(context.Background(), event))
	assert.Empty(t, factory.bookIDs, "factory must not be called for unknown types")
	assert.Empty(t, submitter.tasks)
}

func TestHandleEventInvalidBookID(t *testing.T) {
	t.Parallel()

	handler := NewTaskFactoryEventHandler(&fakeTaskFactory{}, &fakeSubmitter{}, taskTestLogger())

	err := handler.HandleEvent(context.Background(), promptGenerationEvent(t, "not-a-uuid"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid book ID")
}

func TestHandleEventFactoryFailure(t *testing.T) {
	t.Parallel()

	factoryErr := errors.New("bad dependencies")
	handler := NewTaskFactoryEventHandler(
		&fakeTaskFactory{err: factoryErr},
		&fakeSubmitter{},
		taskTestLogger(),
	)

	err := handler.HandleEvent(context.Background(), promptGenerationEvent(t, uuid.New().String()))
	assert.ErrorIs(t, err, factoryErr)
}

func TestHandleEventSubmitFailure(t *testing.T) {
	t.Parallel()

	submitErr := errors.New("queue is full")
	handler := NewTaskFactoryEventHandler(
		&fakeTaskFactory{task: newMockTask(nil)},
		&fakeSubmitter{err: submitErr},
		taskTestLogger(),
	)

	err := handler.HandleEvent(context.Background(), promptGenerationEvent(t, uuid.New().String()))
	assert.ErrorIs(t, err, submitErr)
}
