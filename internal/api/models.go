package api

import (
	"time"

	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/bookwise/bookwise-api/internal/service"
	"github.com/google/uuid"
)

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the payload for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse carries tokens after registration, login, or refresh.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

// CreateBookRequest is the payload for POST /books.
type CreateBookRequest struct {
	Title   string `json:"title"   validate:"required,max=500"`
	Author  string `json:"author"  validate:"max=500"`
	Excerpt string `json:"excerpt" validate:"required"`
}

// BookResponse is a book as returned to clients.
type BookResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// NewBookResponse converts a domain book to its API shape. The excerpt
// is intentionally not echoed back on list endpoints.
func NewBookResponse(book *domain.Book) BookResponse {
	return BookResponse{
		ID:        book.ID,
		Title:     book.Title,
		Author:    book.Author,
		Status:    string(book.Status),
		CreatedAt: book.CreatedAt,
	}
}

// StudyPromptResponse is a served prompt. Correct indices never appear
// here; grading is server-side only.
type StudyPromptResponse struct {
	PromptID uuid.UUID `json:"prompt_id"`
	BookID   uuid.UUID `json:"book_id"`
	Question string    `json:"question"`
	Options  []string  `json:"options"`
	Concept  string    `json:"concept,omitempty"`
}

// NewStudyPromptResponse converts a served prompt to its API shape.
func NewStudyPromptResponse(prompt *service.StudyPrompt) StudyPromptResponse {
	return StudyPromptResponse{
		PromptID: prompt.PromptID,
		BookID:   prompt.BookID,
		Question: prompt.Question,
		Options:  prompt.Options,
		Concept:  prompt.Concept,
	}
}

// SubmitAnswerRequest is the payload for POST /study/answers. Indices
// refer to the option order the prompt was served with.
type SubmitAnswerRequest struct {
	PromptID        uuid.UUID `json:"prompt_id"        validate:"required"`
	SelectedIndices []int     `json:"selected_indices" validate:"required,min=1"`
}

// AttemptResponse is a recorded attempt as returned to clients.
type AttemptResponse struct {
	ID         uuid.UUID `json:"id"`
	PromptID   uuid.UUID `json:"prompt_id"`
	Correct    bool      `json:"correct"`
	Feedback   string    `json:"feedback,omitempty"`
	AnsweredAt time.Time `json:"answered_at"`
}

// NewAttemptResponse converts a domain attempt to its API shape.
func NewAttemptResponse(attempt *domain.Attempt) AttemptResponse {
	return AttemptResponse{
		ID:         attempt.ID,
		PromptID:   attempt.PromptID,
		Correct:    attempt.Correct,
		Feedback:   attempt.Feedback,
		AnsweredAt: attempt.AnsweredAt,
	}
}
