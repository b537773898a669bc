package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// PromptGenerationTaskFactory builds PromptGenerationTask instances with
// a fixed set of dependencies, so the event handler only needs a book ID.
type PromptGenerationTaskFactory struct {
	bookService BookService
	generator   Generator
	promptSaver PromptSaver
	logger      *slog.Logger
}

// NewPromptGenerationTaskFactory creates the factory.
func NewPromptGenerationTaskFactory(
	bookService BookService,
	generator Generator,
	promptSaver PromptSaver,
	logger *slog.Logger,
) *PromptGenerationTaskFactory {
	return &PromptGenerationTaskFactory{
		bookService: bookService,
		generator:   generator,
		promptSaver: promptSaver,
		logger:      logger,
	}
}

// CreateTask creates a prompt generation task for the given book.
func (f *PromptGenerationTaskFactory) CreateTask(bookID uuid.UUID) (Task, error) {
	return NewPromptGenerationTask(
		bookID,
		f.bookService,
		f.generator,
		f.promptSaver,
		f.logger,
	)
}

// ReconstructTask rebuilds a persisted prompt generation task from its
// stored payload, preserving the original task ID so status updates hit
// the right row. Used when recovering tasks after a restart.
func (f *PromptGenerationTaskFactory) ReconstructTask(id uuid.UUID, payload []byte) (Task, error) {
	var p promptGenerationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("invalid prompt generation payload: %w", err)
	}

	t, err := NewPromptGenerationTask(
		p.BookID,
		f.bookService,
		f.generator,
		f.promptSaver,
		f.logger,
	)
	if err != nil {
		return nil, err
	}
	t.id = id
	return t, nil
}
