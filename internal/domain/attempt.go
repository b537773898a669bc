package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Attempt-specific validation errors
var (
	ErrAttemptIDEmpty       = errors.New("attempt ID cannot be empty")
	ErrAttemptUserIDEmpty   = errors.New("attempt user ID cannot be empty")
	ErrAttemptPromptIDEmpty = errors.New("attempt prompt ID cannot be empty")
	ErrAttemptNoSelection   = errors.New("attempt must select at least one option")
)

// Attempt records a user's answer to a prompt: which option positions they
// selected, whether the selection matched the correct set, and the optional
// AI-generated feedback. Feedback is best-effort; an attempt without
// feedback is still a complete record of the answer.
type Attempt struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	PromptID        uuid.UUID `json:"prompt_id"`
	SelectedIndices []int     `json:"selected_indices"`
	Correct         bool      `json:"correct"`
	Feedback        string    `json:"feedback,omitempty"`
	AnsweredAt      time.Time `json:"answered_at"`
}

// NewAttempt creates a new Attempt for the given user, prompt, and selection.
// It generates a new UUID for the attempt ID and stamps the answer time.
// Returns an error if validation fails.
func NewAttempt(userID, promptID uuid.UUID, selected []int, correct bool) (*Attempt, error) {
	attempt := &Attempt{
		ID:              uuid.New(),
		UserID:          userID,
		PromptID:        promptID,
		SelectedIndices: selected,
		Correct:         correct,
		AnsweredAt:      time.Now().UTC(),
	}

	if err := attempt.Validate(); err != nil {
		return nil, err
	}

	return attempt, nil
}

// Validate checks if the Attempt has valid data.
// Returns an error if any field fails validation.
func (a *Attempt) Validate() error {
	if a.ID == uuid.Nil {
		return ErrAttemptIDEmpty
	}

	if a.UserID == uuid.Nil {
		return ErrAttemptUserIDEmpty
	}

	if a.PromptID == uuid.Nil {
		return ErrAttemptPromptIDEmpty
	}

	if len(a.SelectedIndices) == 0 {
		return ErrAttemptNoSelection
	}

	return nil
}

// SetFeedback attaches AI feedback to the attempt after evaluation.
func (a *Attempt) SetFeedback(feedback string) {
	a.Feedback = feedback
}
