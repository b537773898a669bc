package service

import (
	"errors"
	"fmt"

	"github.com/bookwise/bookwise-api/internal/store"
)

// Sentinel errors callers check with errors.Is. The API layer maps these
// to HTTP status codes; everything else becomes a 500.
var (
	// ErrBookNotFound indicates the book does not exist.
	ErrBookNotFound = errors.New("book not found")

	// ErrPromptNotFound indicates the prompt does not exist.
	ErrPromptNotFound = errors.New("prompt not found")

	// ErrNoPromptsAvailable indicates the user has answered every prompt
	// in scope. Maps to 404 on the next-prompt endpoint.
	ErrNoPromptsAvailable = errors.New("no unanswered prompts available")

	// ErrNotOwned indicates a resource belongs to a different user than
	// the one making the request. Maps to 403.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidSelection indicates submitted answer indices fall outside
	// the prompt's option range or are empty. Maps to 400.
	ErrInvalidSelection = errors.New("invalid answer selection")

	// ErrEmailTaken indicates the registration email is already in use.
	ErrEmailTaken = errors.New("email address is already registered")

	// ErrInvalidCredentials indicates a failed login. Deliberately not
	// distinguishing unknown email from wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ServiceError wraps unexpected failures with the operation that hit
// them. Sentinel errors are never wrapped in a ServiceError; New returns
// them as-is so errors.Is checks stay cheap at the call site.
type ServiceError struct {
	// Service names the service the failure came from, e.g. "book_service".
	Service string
	// Operation is the operation that failed, e.g. "create_book".
	Operation string
	// Message is a human-readable description.
	Message string
	// Err is the underlying error.
	Err error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Service, e.Operation, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// sentinels that pass through NewServiceError unwrapped.
var passthrough = []error{
	ErrBookNotFound,
	ErrPromptNotFound,
	ErrNoPromptsAvailable,
	ErrNotOwned,
	ErrInvalidSelection,
	ErrEmailTaken,
	ErrInvalidCredentials,
}

// NewServiceError wraps err with service and operation context. Known
// sentinel errors (including their store-level counterparts, which are
// translated first) are returned directly.
func NewServiceError(serviceName, operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if mapped := mapStoreError(err); mapped != nil {
		return mapped
	}
	for _, sentinel := range passthrough {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}

	return &ServiceError{
		Service:   serviceName,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// mapStoreError translates store sentinels into their service-level
// equivalents, or returns nil when err is not a store sentinel this
// layer recognizes.
func mapStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrBookNotFound):
		return ErrBookNotFound
	case errors.Is(err, store.ErrPromptNotFound):
		return ErrPromptNotFound
	case errors.Is(err, store.ErrEmailExists):
		return ErrEmailTaken
	default:
		return nil
	}
}
