package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Prompt-specific validation errors
var (
	// ErrPromptIDEmpty is returned when a prompt ID is empty or nil.
	ErrPromptIDEmpty = errors.New("prompt ID cannot be empty")

	// ErrPromptUserIDEmpty is returned when a prompt's user ID is empty or nil.
	ErrPromptUserIDEmpty = errors.New("prompt user ID cannot be empty")

	// ErrPromptBookIDEmpty is returned when a prompt's book ID is empty or nil.
	ErrPromptBookIDEmpty = errors.New("prompt book ID cannot be empty")

	// ErrPromptContentEmpty is returned when a prompt's content is empty.
	ErrPromptContentEmpty = errors.New("prompt content cannot be empty")

	// ErrPromptContentInvalid is returned when a prompt's content is not valid JSON.
	ErrPromptContentInvalid = errors.New("prompt content must be valid JSON")

	// ErrPromptTooFewOptions is returned when a multiple-choice prompt has
	// fewer than two options.
	ErrPromptTooFewOptions = errors.New("prompt must have at least two options")

	// ErrPromptNoCorrectOption is returned when no correct option index is set.
	ErrPromptNoCorrectOption = errors.New("prompt must have at least one correct option")

	// ErrPromptCorrectIndexRange is returned when a correct option index is
	// outside the option list.
	ErrPromptCorrectIndexRange = errors.New("prompt correct index out of range")
)

// Prompt represents a multiple-choice question generated from a book excerpt.
// The content is stored as a JSONB structure, allowing for flexible prompt
// formats and future extensibility.
type Prompt struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	BookID    uuid.UUID       `json:"book_id"`
	Content   json.RawMessage `json:"content"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PromptContent represents the structure of the content field in a Prompt.
// CorrectIndices are positions into Options; the stored ordering is the
// ordering the generator produced, and options are shuffled at serve time.
type PromptContent struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	CorrectIndices []int    `json:"correct_indices"`
	Explanation    string   `json:"explanation,omitempty"`
	Concept        string   `json:"concept,omitempty"`
}

// Validate checks the multiple-choice invariants of the content itself.
func (c *PromptContent) Validate() error {
	if c.Question == "" {
		return ErrPromptContentEmpty
	}

	if len(c.Options) < 2 {
		return ErrPromptTooFewOptions
	}

	if len(c.CorrectIndices) == 0 {
		return ErrPromptNoCorrectOption
	}

	for _, idx := range c.CorrectIndices {
		if idx < 0 || idx >= len(c.Options) {
			return ErrPromptCorrectIndexRange
		}
	}

	return nil
}

// NewPrompt creates a new Prompt with the given user ID, book ID, and content.
// It generates a new UUID for the prompt ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewPrompt(userID, bookID uuid.UUID, content json.RawMessage) (*Prompt, error) {
	prompt := &Prompt{
		ID:        uuid.New(),
		UserID:    userID,
		BookID:    bookID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := prompt.Validate(); err != nil {
		return nil, err
	}

	return prompt, nil
}

// Validate checks if the Prompt has valid data.
// Returns an error if any field fails validation.
func (p *Prompt) Validate() error {
	if p.ID == uuid.Nil {
		return ErrPromptIDEmpty
	}

	if p.UserID == uuid.Nil {
		return ErrPromptUserIDEmpty
	}

	if p.BookID == uuid.Nil {
		return ErrPromptBookIDEmpty
	}

	if len(p.Content) == 0 {
		return ErrPromptContentEmpty
	}

	var content PromptContent
	if err := json.Unmarshal(p.Content, &content); err != nil {
		return ErrPromptContentInvalid
	}

	return content.Validate()
}

// ParseContent decodes the JSONB content field into its typed structure.
func (p *Prompt) ParseContent() (*PromptContent, error) {
	var content PromptContent
	if err := json.Unmarshal(p.Content, &content); err != nil {
		return nil, ErrPromptContentInvalid
	}
	return &content, nil
}
