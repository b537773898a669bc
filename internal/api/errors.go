package api

import (
	"errors"
	"net/http"

	"github.com/bookwise/bookwise-api/internal/service"
	"github.com/bookwise/bookwise-api/internal/service/auth"
	"github.com/bookwise/bookwise-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so
// handlers never improvise their own mapping.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	case errors.Is(err, service.ErrBookNotFound),
		errors.Is(err, service.ErrPromptNotFound),
		errors.Is(err, service.ErrNoPromptsAvailable),
		errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict

	case errors.Is(err, service.ErrInvalidSelection),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for err. Internal
// details stay in the logs.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this resource"

	case errors.Is(err, service.ErrBookNotFound):
		return "Book not found"

	case errors.Is(err, service.ErrPromptNotFound):
		return "Prompt not found"

	case errors.Is(err, service.ErrNoPromptsAvailable):
		return "No unanswered prompts available"

	case errors.Is(err, service.ErrEmailTaken):
		return "Email already exists"

	case errors.Is(err, service.ErrInvalidSelection):
		return "Invalid answer selection"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}
