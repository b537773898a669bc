package domain

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// BookStatus represents the prompt-generation state of a book
type BookStatus string

// Possible book status values
const (
	BookStatusPending             BookStatus = "pending"
	BookStatusProcessing          BookStatus = "processing"
	BookStatusCompleted           BookStatus = "completed"
	BookStatusCompletedWithErrors BookStatus = "completed_with_errors"
	BookStatusFailed              BookStatus = "failed"
)

// Common validation errors for Book
var (
	ErrBookIDEmpty          = errors.New("book ID cannot be empty")
	ErrBookUserIDEmpty      = errors.New("book user ID cannot be empty")
	ErrBookTitleEmpty       = errors.New("book title cannot be empty")
	ErrBookExcerptEmpty     = errors.New("book excerpt cannot be empty")
	ErrBookFingerprintEmpty = errors.New("book fingerprint cannot be empty")
	ErrInvalidBookStatus    = errors.New("invalid book status")
)

// Book represents a book a user is studying. The excerpt holds the text
// the user submitted for prompt generation, and the fingerprint is a
// normalized title/author key used to detect duplicate entries before
// enqueueing another generation task.
type Book struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Author      string     `json:"author,omitempty"`
	Excerpt     string     `json:"excerpt"`
	Fingerprint string     `json:"-"`
	Status      BookStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewBook creates a new Book with the given user ID, title, author, and excerpt.
// It generates a new UUID for the book ID, computes the dedup fingerprint,
// sets the status to pending, and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewBook(userID uuid.UUID, title, author, excerpt string) (*Book, error) {
	book := &Book{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Author:      author,
		Excerpt:     excerpt,
		Fingerprint: NormalizeFingerprint(title, author),
		Status:      BookStatusPending,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := book.Validate(); err != nil {
		return nil, err
	}

	return book, nil
}

// Validate checks if the Book has valid data.
// Returns an error if any field fails validation.
func (b *Book) Validate() error {
	if b.ID == uuid.Nil {
		return ErrBookIDEmpty
	}

	if b.UserID == uuid.Nil {
		return ErrBookUserIDEmpty
	}

	if strings.TrimSpace(b.Title) == "" {
		return ErrBookTitleEmpty
	}

	if strings.TrimSpace(b.Excerpt) == "" {
		return ErrBookExcerptEmpty
	}

	if b.Fingerprint == "" {
		return ErrBookFingerprintEmpty
	}

	if !isValidBookStatus(b.Status) {
		return ErrInvalidBookStatus
	}

	return nil
}

// UpdateStatus updates the book's status and updates the UpdatedAt timestamp.
// Returns an error if the new status is invalid.
func (b *Book) UpdateStatus(status BookStatus) error {
	if !isValidBookStatus(status) {
		return ErrInvalidBookStatus
	}

	b.Status = status
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValidBookStatus reports whether the given status is one of the known
// book statuses.
func IsValidBookStatus(status BookStatus) bool {
	return isValidBookStatus(status)
}

// isValidBookStatus checks if the given status is a valid BookStatus.
func isValidBookStatus(status BookStatus) bool {
	switch status {
	case BookStatusPending, BookStatusProcessing, BookStatusCompleted,
		BookStatusCompletedWithErrors, BookStatusFailed:
		return true
	default:
		return false
	}
}

// NormalizeFingerprint derives the dedup key for a book from its title and
// author. It lower-cases both, strips everything that is not a letter or
// digit, and collapses the result so trivial re-entry variants ("The Go
// Programming Language " vs "the go programming language") map to the same
// key. An empty author is allowed; the title alone then determines the key.
func NormalizeFingerprint(title, author string) string {
	var b strings.Builder
	b.Grow(len(title) + len(author) + 1)

	appendNormalized := func(s string) {
		for _, r := range s {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(unicode.ToLower(r))
			}
		}
	}

	appendNormalized(title)
	b.WriteByte('|')
	appendNormalized(author)

	return b.String()
}
