package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookwise/bookwise-api/internal/service/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJWTService validates a single known token.
type fakeJWTService struct {
	token  string
	userID uuid.UUID
	err    error
}

func (s *fakeJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.token, nil
}

func (s *fakeJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	if tokenString != s.token {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: s.userID}, nil
}

func (s *fakeJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.token, nil
}

func (s *fakeJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	return s.ValidateToken(ctx, tokenString)
}

func authChain(jwtService auth.JWTService, captured *uuid.UUID) http.Handler {
	mw := NewAuthMiddleware(jwtService)
	return mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := GetUserID(r); ok {
			*captured = userID
		}
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthenticatePassesUserID(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	var captured uuid.UUID
	handler := authChain(&fakeJWTService{token: "good-token", userID: userID}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, captured)
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	t.Parallel()

	var captured uuid.UUID
	handler := authChain(&fakeJWTService{token: "good-token"}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, uuid.Nil, captured)
}

func TestAuthenticateRejectsBadScheme(t *testing.T) {
	t.Parallel()

	var captured uuid.UUID
	handler := authChain(&fakeJWTService{token: "good-token"}, &captured)

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateRejectsTokenErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
	}{
		{"expired", auth.ErrExpiredToken},
		{"invalid", auth.ErrInvalidToken},
		{"wrong type", auth.ErrWrongTokenType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var captured uuid.UUID
			handler := authChain(&fakeJWTService{token: "good-token", err: tc.err}, &captured)

			req := httptest.NewRequest(http.MethodGet, "/books", nil)
			req.Header.Set("Authorization", "Bearer good-token")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestGetUserIDWithoutAuth(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	_, ok := GetUserID(req)
	assert.False(t, ok)
}
