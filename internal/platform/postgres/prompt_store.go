package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/bookwise/bookwise-api/internal/platform/logger"
	"github.com/bookwise/bookwise-api/internal/store"
	"github.com/google/uuid"
)

// PostgresPromptStore implements store.PromptStore using PostgreSQL.
// Prompt content is stored as JSONB.
type PostgresPromptStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewPostgresPromptStore creates a PostgreSQL implementation of
// store.PromptStore. The database connection is managed by the caller.
// If logger is nil, slog.Default() is used.
func NewPostgresPromptStore(db *sql.DB, logger *slog.Logger) *PostgresPromptStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresPromptStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "prompt_store")),
	}
}

var _ store.PromptStore = (*PostgresPromptStore)(nil)

// DB returns the connection the store was created with, for use with
// store.RunInTransaction.
func (s *PostgresPromptStore) DB() *sql.DB {
	return s.sqlDB
}

const promptColumns = `id, user_id, book_id, content, created_at, updated_at`

func scanPrompt(row interface{ Scan(dest ...any) error }) (*domain.Prompt, error) {
	var prompt domain.Prompt
	var content []byte
	err := row.Scan(
		&prompt.ID,
		&prompt.UserID,
		&prompt.BookID,
		&content,
		&prompt.CreatedAt,
		&prompt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	prompt.Content = content
	return &prompt, nil
}

// CreateMultiple implements store.PromptStore.CreateMultiple. Callers
// are expected to run this inside a transaction via WithTx so a failed
// insert does not leave a partial batch.
func (s *PostgresPromptStore) CreateMultiple(ctx context.Context, prompts []*domain.Prompt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(prompts) == 0 {
		return nil
	}

	for _, prompt := range prompts {
		if err := prompt.Validate(); err != nil {
			log.Warn("prompt validation failed during batch create",
				slog.String("error", err.Error()),
				slog.String("prompt_id", prompt.ID.String()))
			return err
		}
	}

	query := `
		INSERT INTO prompts (id, user_id, book_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, prompt := range prompts {
		_, err := s.db.ExecContext(
			ctx,
			query,
			prompt.ID,
			prompt.UserID,
			prompt.BookID,
			[]byte(prompt.Content),
			prompt.CreatedAt,
			prompt.UpdatedAt,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: book with ID %s not found",
					store.ErrInvalidEntity, prompt.BookID)
			}
			log.Error("failed to insert prompt",
				slog.String("error", err.Error()),
				slog.String("prompt_id", prompt.ID.String()))
			return err
		}
	}

	log.Info("prompts created",
		slog.Int("count", len(prompts)),
		slog.String("book_id", prompts[0].BookID.String()))
	return nil
}

// GetByID implements store.PromptStore.GetByID.
func (s *PostgresPromptStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Prompt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + promptColumns + ` FROM prompts WHERE id = $1`

	prompt, err := scanPrompt(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPromptNotFound
		}
		log.Error("failed to get prompt by ID",
			slog.String("error", err.Error()),
			slog.String("prompt_id", id.String()))
		return nil, err
	}

	return prompt, nil
}

// GetNextForUser implements store.PromptStore.GetNextForUser. It picks a
// uniformly random prompt the user has not attempted yet; a non-nil
// bookID restricts the pool to that book.
func (s *PostgresPromptStore) GetNextForUser(
	ctx context.Context,
	userID, bookID uuid.UUID,
) (*domain.Prompt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT p.id, p.user_id, p.book_id, p.content, p.created_at, p.updated_at
		FROM prompts p
		WHERE p.user_id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM attempts a
			WHERE a.prompt_id = p.id AND a.user_id = $1
		  )
	`
	args := []any{userID}
	if bookID != uuid.Nil {
		query += ` AND p.book_id = $2`
		args = append(args, bookID)
	}
	query += ` ORDER BY random() LIMIT 1`

	prompt, err := scanPrompt(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPromptNotFound
		}
		log.Error("failed to get next prompt",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	return prompt, nil
}

// ListByBook implements store.PromptStore.ListByBook.
func (s *PostgresPromptStore) ListByBook(ctx context.Context, bookID uuid.UUID) ([]*domain.Prompt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + promptColumns + `
		FROM prompts
		WHERE book_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, bookID)
	if err != nil {
		log.Error("failed to list prompts",
			slog.String("error", err.Error()),
			slog.String("book_id", bookID.String()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	prompts := make([]*domain.Prompt, 0)
	for rows.Next() {
		prompt, err := scanPrompt(rows)
		if err != nil {
			log.Error("failed to scan prompt row", slog.String("error", err.Error()))
			return nil, err
		}
		prompts = append(prompts, prompt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return prompts, nil
}

// Delete implements store.PromptStore.Delete. Attempts referencing the
// prompt are removed by ON DELETE CASCADE.
func (s *PostgresPromptStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM prompts WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete prompt",
			slog.String("error", err.Error()),
			slog.String("prompt_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return store.ErrPromptNotFound
	}

	log.Info("prompt deleted", slog.String("prompt_id", id.String()))
	return nil
}

// WithTx implements store.PromptStore.WithTx.
func (s *PostgresPromptStore) WithTx(tx *sql.Tx) store.PromptStore {
	return &PostgresPromptStore{
		db:     tx,
		sqlDB:  s.sqlDB,
		logger: s.logger,
	}
}
