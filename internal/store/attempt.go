package store

import (
	"context"
	"database/sql"

	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/google/uuid"
)

// AttemptStore defines the interface for attempt data persistence.
type AttemptStore interface {
	// Create saves a new attempt to the store.
	// It handles domain validation internally.
	Create(ctx context.Context, attempt *domain.Attempt) error

	// GetByID retrieves an attempt by its unique ID.
	// Returns ErrAttemptNotFound if the attempt does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Attempt, error)

	// ListByUser retrieves a user's attempts, newest first.
	// Returns an empty slice if the user has no attempts.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Attempt, error)

	// ListByPrompt retrieves all attempts recorded against a prompt.
	ListByPrompt(ctx context.Context, promptID uuid.UUID) ([]*domain.Attempt, error)

	// WithTx returns a new AttemptStore instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller (typically a service).
	WithTx(tx *sql.Tx) AttemptStore
}
