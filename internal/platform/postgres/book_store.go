package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/bookwise/bookwise-api/internal/platform/logger"
	"github.com/bookwise/bookwise-api/internal/store"
	"github.com/google/uuid"
)

// PostgresBookStore implements store.BookStore using PostgreSQL.
type PostgresBookStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewPostgresBookStore creates a PostgreSQL implementation of
// store.BookStore. The database connection is managed by the caller.
// If logger is nil, slog.Default() is used.
func NewPostgresBookStore(db *sql.DB, logger *slog.Logger) *PostgresBookStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBookStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "book_store")),
	}
}

var _ store.BookStore = (*PostgresBookStore)(nil)

// DB returns the connection the store was created with, for use with
// store.RunInTransaction.
func (s *PostgresBookStore) DB() *sql.DB {
	return s.sqlDB
}

const bookColumns = `id, user_id, title, author, excerpt, fingerprint, status, created_at, updated_at`

func scanBook(row interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var book domain.Book
	var status string
	err := row.Scan(
		&book.ID,
		&book.UserID,
		&book.Title,
		&book.Author,
		&book.Excerpt,
		&book.Fingerprint,
		&status,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	book.Status = domain.BookStatus(status)
	return &book, nil
}

// Create implements store.BookStore.Create.
func (s *PostgresBookStore) Create(ctx context.Context, book *domain.Book) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := book.Validate(); err != nil {
		log.Warn("book validation failed during create",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return err
	}

	query := `
		INSERT INTO books (id, user_id, title, author, excerpt, fingerprint, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		book.ID,
		book.UserID,
		book.Title,
		book.Author,
		book.Excerpt,
		book.Fingerprint,
		book.Status,
		book.CreatedAt,
		book.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			log.Debug("duplicate fingerprint during book creation",
				slog.String("book_id", book.ID.String()),
				slog.String("user_id", book.UserID.String()))
			return store.ErrBookExists
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user with ID %s not found",
				store.ErrInvalidEntity, book.UserID)
		}
		log.Error("failed to create book",
			slog.String("error", err.Error()),
			slog.String("book_id", book.ID.String()))
		return err
	}

	log.Info("book created",
		slog.String("book_id", book.ID.String()),
		slog.String("user_id", book.UserID.String()))
	return nil
}

// GetByID implements store.BookStore.GetByID.
func (s *PostgresBookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	book, err := scanBook(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBookNotFound
		}
		log.Error("failed to get book by ID",
			slog.String("error", err.Error()),
			slog.String("book_id", id.String()))
		return nil, err
	}

	return book, nil
}

// GetByFingerprint implements store.BookStore.GetByFingerprint.
func (s *PostgresBookStore) GetByFingerprint(
	ctx context.Context,
	userID uuid.UUID,
	fingerprint string,
) (*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + bookColumns + ` FROM books WHERE user_id = $1 AND fingerprint = $2`

	book, err := scanBook(s.db.QueryRowContext(ctx, query, userID, fingerprint))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrBookNotFound
		}
		log.Error("failed to get book by fingerprint",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	return book, nil
}

// ListByUser implements store.BookStore.ListByUser.
func (s *PostgresBookStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Book, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + bookColumns + `
		FROM books
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.Error("failed to list books",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	books := make([]*domain.Book, 0)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			log.Error("failed to scan book row", slog.String("error", err.Error()))
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return books, nil
}

// UpdateStatus implements store.BookStore.UpdateStatus.
func (s *PostgresBookStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookStatus) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.IsValidBookStatus(status) {
		return domain.ErrInvalidBookStatus
	}

	query := `
		UPDATE books
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update book status",
			slog.String("error", err.Error()),
			slog.String("book_id", id.String()),
			slog.String("status", string(status)))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrBookNotFound
	}

	log.Debug("book status updated",
		slog.String("book_id", id.String()),
		slog.String("status", string(status)))
	return nil
}

// WithTx implements store.BookStore.WithTx.
func (s *PostgresBookStore) WithTx(tx *sql.Tx) store.BookStore {
	return &PostgresBookStore{
		db:     tx,
		sqlDB:  s.sqlDB,
		logger: s.logger,
	}
}
