package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/bookwise/bookwise-api/internal/platform/logger"
	"github.com/bookwise/bookwise-api/internal/store"
	"github.com/google/uuid"
)

// PostgresAttemptStore implements store.AttemptStore using PostgreSQL.
// Selected indices are stored as JSONB so the answer set survives
// round-trips without an array-type dependency.
type PostgresAttemptStore struct {
	db     store.DBTX
	sqlDB  *sql.DB
	logger *slog.Logger
}

// NewPostgresAttemptStore creates a PostgreSQL implementation of
// store.AttemptStore. The database connection is managed by the caller.
// If logger is nil, slog.Default() is used.
func NewPostgresAttemptStore(db *sql.DB, logger *slog.Logger) *PostgresAttemptStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAttemptStore{
		db:     db,
		sqlDB:  db,
		logger: logger.With(slog.String("component", "attempt_store")),
	}
}

var _ store.AttemptStore = (*PostgresAttemptStore)(nil)

// DB returns the connection the store was created with, for use with
// store.RunInTransaction.
func (s *PostgresAttemptStore) DB() *sql.DB {
	return s.sqlDB
}

const attemptColumns = `id, user_id, prompt_id, selected_indices, correct, feedback, answered_at`

func scanAttempt(row interface{ Scan(dest ...any) error }) (*domain.Attempt, error) {
	var attempt domain.Attempt
	var selected []byte
	var feedback sql.NullString
	err := row.Scan(
		&attempt.ID,
		&attempt.UserID,
		&attempt.PromptID,
		&selected,
		&attempt.Correct,
		&feedback,
		&attempt.AnsweredAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(selected, &attempt.SelectedIndices); err != nil {
		return nil, fmt.Errorf("failed to decode selected indices: %w", err)
	}
	attempt.Feedback = feedback.String
	return &attempt, nil
}

// Create implements store.AttemptStore.Create.
func (s *PostgresAttemptStore) Create(ctx context.Context, attempt *domain.Attempt) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := attempt.Validate(); err != nil {
		log.Warn("attempt validation failed during create",
			slog.String("error", err.Error()),
			slog.String("attempt_id", attempt.ID.String()))
		return err
	}

	selected, err := json.Marshal(attempt.SelectedIndices)
	if err != nil {
		return fmt.Errorf("failed to encode selected indices: %w", err)
	}

	query := `
		INSERT INTO attempts (id, user_id, prompt_id, selected_indices, correct, feedback, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		attempt.ID,
		attempt.UserID,
		attempt.PromptID,
		selected,
		attempt.Correct,
		attempt.Feedback,
		attempt.AnsweredAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: prompt with ID %s not found",
				store.ErrInvalidEntity, attempt.PromptID)
		}
		log.Error("failed to create attempt",
			slog.String("error", err.Error()),
			slog.String("attempt_id", attempt.ID.String()))
		return err
	}

	log.Info("attempt recorded",
		slog.String("attempt_id", attempt.ID.String()),
		slog.String("prompt_id", attempt.PromptID.String()),
		slog.Bool("correct", attempt.Correct))
	return nil
}

// GetByID implements store.AttemptStore.GetByID.
func (s *PostgresAttemptStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Attempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + attemptColumns + ` FROM attempts WHERE id = $1`

	attempt, err := scanAttempt(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAttemptNotFound
		}
		log.Error("failed to get attempt by ID",
			slog.String("error", err.Error()),
			slog.String("attempt_id", id.String()))
		return nil, err
	}

	return attempt, nil
}

// ListByUser implements store.AttemptStore.ListByUser.
func (s *PostgresAttemptStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Attempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + attemptColumns + `
		FROM attempts
		WHERE user_id = $1
		ORDER BY answered_at DESC
		LIMIT $2 OFFSET $3
	`

	return s.listAttempts(ctx, log, query, userID, limit, offset)
}

// ListByPrompt implements store.AttemptStore.ListByPrompt.
func (s *PostgresAttemptStore) ListByPrompt(ctx context.Context, promptID uuid.UUID) ([]*domain.Attempt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + attemptColumns + `
		FROM attempts
		WHERE prompt_id = $1
		ORDER BY answered_at DESC
	`

	return s.listAttempts(ctx, log, query, promptID)
}

func (s *PostgresAttemptStore) listAttempts(
	ctx context.Context,
	log *slog.Logger,
	query string,
	args ...any,
) ([]*domain.Attempt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list attempts", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	attempts := make([]*domain.Attempt, 0)
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			log.Error("failed to scan attempt row", slog.String("error", err.Error()))
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return attempts, nil
}

// WithTx implements store.AttemptStore.WithTx.
func (s *PostgresAttemptStore) WithTx(tx *sql.Tx) store.AttemptStore {
	return &PostgresAttemptStore{
		db:     tx,
		sqlDB:  s.sqlDB,
		logger: s.logger,
	}
}
