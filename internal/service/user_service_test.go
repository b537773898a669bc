package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/bookwise/bookwise-api/internal/service/auth"
	"github.com/bookwise/bookwise-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserStore is an in-memory store.UserStore.
type fakeUserStore struct {
	byID    map[uuid.UUID]*domain.User
	byEmail map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    make(map[uuid.UUID]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (s *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	if _, exists := s.byEmail[user.Email]; exists {
		return store.ErrEmailExists
	}
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	user, ok := s.byID[id]
	if !ok {
		return store.ErrUserNotFound
	}
	delete(s.byEmail, user.Email)
	delete(s.byID, id)
	return nil
}

func (s *fakeUserStore) WithTx(tx *sql.Tx) store.UserStore { return s }

func newTestUserService(t *testing.T, users *fakeUserStore, txCount int) UserService {
	t.Helper()
	var db *sql.DB
	if txCount > 0 {
		db = newTxDB(t, txCount)
	}
	svc, err := NewUserService(users, db, auth.NewBcryptHasher(4), auth.NewBcryptVerifier(), serviceTestLogger())
	require.NoError(t, err)
	return svc
}

func TestRegisterHashesPassword(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	svc := newTestUserService(t, users, 1)

	user, err := svc.Register(context.Background(), "reader@example.com", "a long enough password")
	require.NoError(t, err)

	stored := users.byEmail["reader@example.com"]
	require.NotNil(t, stored)
	assert.Empty(t, stored.Password, "plaintext must not survive registration")
	assert.NotEmpty(t, stored.HashedPassword)
	assert.NoError(t, auth.NewBcryptVerifier().Compare(stored.HashedPassword, "a long enough password"))
	assert.Equal(t, user.ID, stored.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	svc := newTestUserService(t, users, 2)

	_, err := svc.Register(context.Background(), "reader@example.com", "a long enough password")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "reader@example.com", "another long password")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	svc := newTestUserService(t, users, 1)

	registered, err := svc.Register(context.Background(), "reader@example.com", "a long enough password")
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), "reader@example.com", "a long enough password")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = svc.Authenticate(context.Background(), "reader@example.com", "wrong password entirely")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "a long enough password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetUser(t *testing.T) {
	t.Parallel()

	users := newFakeUserStore()
	svc := newTestUserService(t, users, 1)

	registered, err := svc.Register(context.Background(), "reader@example.com", "a long enough password")
	require.NoError(t, err)

	user, err := svc.GetUser(context.Background(), registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", user.Email)

	_, err = svc.GetUser(context.Background(), uuid.New())
	assert.Error(t, err)
}
