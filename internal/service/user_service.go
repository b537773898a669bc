package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/bookwise/bookwise-api/internal/service/auth"
	"github.com/bookwise/bookwise-api/internal/store"
	"github.com/google/uuid"
)

// UserService provides registration, authentication, and account lookup.
type UserService interface {
	// Register creates a new account. Returns ErrEmailTaken when the
	// email is already registered.
	Register(ctx context.Context, email, password string) (*domain.User, error)

	// Authenticate checks credentials and returns the user on success.
	// Returns ErrInvalidCredentials for both unknown emails and wrong
	// passwords.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

type userServiceImpl struct {
	userStore store.UserStore
	db        *sql.DB
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	logger    *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	userStore store.UserStore,
	db *sql.DB,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	logger *slog.Logger,
) (UserService, error) {
	if userStore == nil {
		return nil, &ServiceError{
			Service:   "user_service",
			Operation: "create_service",
			Message:   "userStore cannot be nil",
		}
	}
	if hasher == nil || verifier == nil {
		return nil, &ServiceError{
			Service:   "user_service",
			Operation: "create_service",
			Message:   "password hasher and verifier cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		userStore: userStore,
		db:        db,
		hasher:    hasher,
		verifier:  verifier,
		logger:    logger.With("component", "user_service"),
	}, nil
}

func (s *userServiceImpl) Register(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(email, password)
	if err != nil {
		return nil, NewServiceError("user_service", "register", "invalid user data", err)
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, NewServiceError("user_service", "register", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		return nil, NewServiceError("user_service", "register", "failed to save user", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, NewServiceError("user_service", "authenticate", "failed to look up user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, NewServiceError("user_service", "get_user", "failed to retrieve user", err)
	}
	return user, nil
}
