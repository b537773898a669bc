package store

import (
	"context"
	"database/sql"

	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/google/uuid"
)

// BookStore defines the interface for book data persistence.
type BookStore interface {
	// Create saves a new book to the store.
	// It handles domain validation internally.
	// Returns ErrBookExists if a book with the same fingerprint already
	// exists for the user (enforced by a unique constraint).
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book by its unique ID.
	// Returns ErrBookNotFound if the book does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// GetByFingerprint retrieves the user's book with the given dedup
	// fingerprint. This is the lookup behind duplicate detection: callers
	// check here before creating a new book.
	// Returns ErrBookNotFound if no such book exists.
	GetByFingerprint(ctx context.Context, userID uuid.UUID, fingerprint string) (*domain.Book, error)

	// ListByUser retrieves all books belonging to a user, newest first.
	// Returns an empty slice if the user has no books.
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Book, error)

	// UpdateStatus updates the status of an existing book.
	// Returns ErrBookNotFound if the book does not exist.
	// Returns validation errors if the status is invalid.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookStatus) error

	// WithTx returns a new BookStore instance that uses the provided
	// transaction. The transaction should be created and managed by the
	// caller (typically a service).
	WithTx(tx *sql.Tx) BookStore
}
