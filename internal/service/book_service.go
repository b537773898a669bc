package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/bookwise/bookwise-api/internal/events"
	"github.com/bookwise/bookwise-api/internal/store"
	"github.com/google/uuid"
)

// BookRepository is the persistence surface the book service needs. It
// mirrors store.BookStore plus access to the underlying database for
// transaction management.
type BookRepository interface {
	store.BookStore

	// DB returns the underlying database handle for RunInTransaction.
	DB() *sql.DB
}

// BookService provides book-related operations.
type BookService interface {
	// CreateBookAndEnqueueTask creates a book and requests prompt
	// generation for it. When the user already has a book with the same
	// title/author fingerprint, the existing book is returned instead and
	// created is false; no duplicate generation runs.
	CreateBookAndEnqueueTask(
		ctx context.Context,
		userID uuid.UUID,
		title, author, excerpt string,
	) (book *domain.Book, created bool, err error)

	// GetBook retrieves a book by its ID.
	GetBook(ctx context.Context, bookID uuid.UUID) (*domain.Book, error)

	// ListBooks retrieves a user's books, newest first.
	ListBooks(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Book, error)

	// UpdateBookStatus moves a book through its processing lifecycle.
	UpdateBookStatus(ctx context.Context, bookID uuid.UUID, status domain.BookStatus) error
}

type bookServiceImpl struct {
	bookRepo     BookRepository
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewBookService creates a BookService. All dependencies except the
// logger are required.
func NewBookService(
	bookRepo BookRepository,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (BookService, error) {
	if bookRepo == nil {
		return nil, &ServiceError{
			Service:   "book_service",
			Operation: "create_service",
			Message:   "bookRepo cannot be nil",
		}
	}
	if eventEmitter == nil {
		return nil, &ServiceError{
			Service:   "book_service",
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &bookServiceImpl{
		bookRepo:     bookRepo,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "book_service"),
	}, nil
}

func (s *bookServiceImpl) CreateBookAndEnqueueTask(
	ctx context.Context,
	userID uuid.UUID,
	title, author, excerpt string,
) (*domain.Book, bool, error) {
	// Duplicate submissions of the same title/author return the existing
	// book rather than generating a second prompt set.
	fingerprint := domain.NormalizeFingerprint(title, author)
	existing, err := s.bookRepo.GetByFingerprint(ctx, userID, fingerprint)
	if err == nil {
		s.logger.Info("duplicate book submission, returning existing book",
			"book_id", existing.ID,
			"user_id", userID)
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrBookNotFound) {
		return nil, false, NewServiceError("book_service", "create_book", "fingerprint lookup failed", err)
	}

	book, err := domain.NewBook(userID, title, author, excerpt)
	if err != nil {
		return nil, false, NewServiceError("book_service", "create_book", "invalid book data", err)
	}

	err = store.RunInTransaction(ctx, s.bookRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		return s.bookRepo.WithTx(tx).Create(ctx, book)
	})
	if err != nil {
		// A concurrent submission can beat us to the unique constraint;
		// treat it the same as the lookup hit above.
		if errors.Is(err, store.ErrBookExists) {
			existing, lookupErr := s.bookRepo.GetByFingerprint(ctx, userID, fingerprint)
			if lookupErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, NewServiceError("book_service", "create_book", "failed to save book", err)
	}

	s.logger.Info("book created",
		"book_id", book.ID,
		"user_id", userID)

	payload := struct {
		BookID uuid.UUID `json:"book_id"`
	}{BookID: book.ID}

	event, err := events.NewTaskRequestEvent(events.EventPromptGeneration, payload)
	if err != nil {
		return nil, false, NewServiceError("book_service", "create_book", "failed to create event", err)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		return nil, false, NewServiceError("book_service", "create_book", "failed to emit event", err)
	}

	s.logger.Info("prompt generation requested",
		"book_id", book.ID,
		"event_id", event.ID)

	return book, true, nil
}

func (s *bookServiceImpl) GetBook(ctx context.Context, bookID uuid.UUID) (*domain.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		return nil, NewServiceError("book_service", "get_book", "failed to retrieve book", err)
	}
	return book, nil
}

func (s *bookServiceImpl) ListBooks(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Book, error) {
	books, err := s.bookRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewServiceError("book_service", "list_books", "failed to list books", err)
	}
	return books, nil
}

func (s *bookServiceImpl) UpdateBookStatus(
	ctx context.Context,
	bookID uuid.UUID,
	status domain.BookStatus,
) error {
	if err := s.bookRepo.UpdateStatus(ctx, bookID, status); err != nil {
		return NewServiceError("book_service", "update_book_status", "failed to update status", err)
	}

	s.logger.Debug("book status updated",
		"book_id", bookID,
		"status", status)
	return nil
}
