package store

import (
	"context"
	"database/sql"

	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/google/uuid"
)

// PromptStore defines the interface for prompt data persistence.
type PromptStore interface {
	// CreateMultiple saves multiple prompts to the store.
	// This method MUST be run within a transaction for atomicity: use
	// WithTx together with store.RunInTransaction so a failed insert does
	// not leave a partial batch behind.
	//
	// All prompts must be valid according to domain validation rules.
	CreateMultiple(ctx context.Context, prompts []*domain.Prompt) error

	// GetByID retrieves a prompt by its unique ID.
	// Returns ErrPromptNotFound if the prompt does not exist.
	// The returned prompt has its Content field populated from JSONB.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Prompt, error)

	// GetNextForUser retrieves a random prompt the user has not answered
	// yet, optionally restricted to a single book (bookID == uuid.Nil
	// means any book).
	// Returns ErrPromptNotFound if no unanswered prompts remain.
	GetNextForUser(ctx context.Context, userID, bookID uuid.UUID) (*domain.Prompt, error)

	// ListByBook retrieves all prompts generated for a book.
	// Returns an empty slice if the book has no prompts.
	ListByBook(ctx context.Context, bookID uuid.UUID) ([]*domain.Prompt, error)

	// Delete removes a prompt from the store by its ID.
	// Returns ErrPromptNotFound if the prompt does not exist.
	// Associated attempts are removed by ON DELETE CASCADE.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new PromptStore instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller (typically a service).
	WithTx(tx *sql.Tx) PromptStore
}
