package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrNilBookService = errors.New("book service cannot be nil")
	ErrNilGenerator   = errors.New("generator cannot be nil")
	ErrNilPromptSaver = errors.New("prompt saver cannot be nil")
	ErrNilLogger      = errors.New("logger cannot be nil")
	ErrEmptyBookID    = errors.New("book ID cannot be empty")
)

// BookService is the slice of the book service the task needs: reading
// the book and moving it through its status lifecycle.
type BookService interface {
	GetBook(ctx context.Context, bookID uuid.UUID) (*domain.Book, error)
	UpdateBookStatus(ctx context.Context, bookID uuid.UUID, status domain.BookStatus) error
}

// Generator produces study prompts from a book excerpt.
type Generator interface {
	GeneratePrompts(ctx context.Context, book *domain.Book) ([]*domain.Prompt, error)
}

// PromptSaver persists a batch of generated prompts atomically.
type PromptSaver interface {
	SavePrompts(ctx context.Context, prompts []*domain.Prompt) error
}

type promptGenerationPayload struct {
	BookID uuid.UUID `json:"book_id"`
}

// PromptGenerationTask generates study prompts for a single book and
// persists them, updating the book's status along the way.
type PromptGenerationTask struct {
	id          uuid.UUID
	bookID      uuid.UUID
	bookService BookService
	generator   Generator
	promptSaver PromptSaver
	logger      *slog.Logger
	status      TaskStatus
}

// NewPromptGenerationTask creates a prompt generation task for the given
// book. All dependencies are required.
func NewPromptGenerationTask(
	bookID uuid.UUID,
	bookService BookService,
	generator Generator,
	promptSaver PromptSaver,
	logger *slog.Logger,
) (*PromptGenerationTask, error) {
	if bookService == nil {
		return nil, ErrNilBookService
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if promptSaver == nil {
		return nil, ErrNilPromptSaver
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if bookID == uuid.Nil {
		return nil, ErrEmptyBookID
	}

	return &PromptGenerationTask{
		id:          uuid.New(),
		bookID:      bookID,
		bookService: bookService,
		generator:   generator,
		promptSaver: promptSaver,
		logger:      logger.With("task_type", TaskTypePromptGeneration, "book_id", bookID),
		status:      TaskStatusPending,
	}, nil
}

func (t *PromptGenerationTask) ID() uuid.UUID {
	return t.id
}

func (t *PromptGenerationTask) Type() string {
	return TaskTypePromptGeneration
}

func (t *PromptGenerationTask) Payload() []byte {
	data, err := json.Marshal(promptGenerationPayload{BookID: t.bookID})
	if err != nil {
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}
	return data
}

func (t *PromptGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute fetches the book, generates prompts, and saves them. The book
// moves pending -> processing -> completed, or to failed when generation
// or persistence errors out. A run that completes without error but
// produces no prompts leaves the book in completed_with_errors so the
// user can see that the excerpt yielded nothing.
func (t *PromptGenerationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting prompt generation")

	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("task cancelled: %w", err)
	}

	book, err := t.bookService.GetBook(ctx, t.bookID)
	if err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to retrieve book: %w", err)
	}

	if err := t.bookService.UpdateBookStatus(ctx, t.bookID, domain.BookStatusProcessing); err != nil {
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to mark book processing: %w", err)
	}

	prompts, err := t.generator.GeneratePrompts(ctx, book)
	if err != nil {
		_ = t.bookService.UpdateBookStatus(ctx, t.bookID, domain.BookStatusFailed)
		t.status = TaskStatusFailed
		return fmt.Errorf("failed to generate prompts: %w", err)
	}

	t.logger.Info("prompts generated", "count", len(prompts))

	finalStatus := domain.BookStatusCompleted
	if len(prompts) > 0 {
		if err := t.promptSaver.SavePrompts(ctx, prompts); err != nil {
			_ = t.bookService.UpdateBookStatus(ctx, t.bookID, domain.BookStatusFailed)
			t.status = TaskStatusFailed
			return fmt.Errorf("failed to save generated prompts: %w", err)
		}
	} else {
		t.logger.Warn("generation produced no prompts")
		finalStatus = domain.BookStatusCompletedWithErrors
	}

	if err := t.bookService.UpdateBookStatus(ctx, t.bookID, finalStatus); err != nil {
		// The prompts are saved; losing the status update is not worth
		// failing the task over.
		t.logger.Error("failed to update final book status",
			"error", err, "prompts_saved", len(prompts))
	}

	t.status = TaskStatusCompleted
	t.logger.Info("prompt generation completed", "prompts_saved", len(prompts))
	return nil
}

var _ Task = (*PromptGenerationTask)(nil)
