package generation

import (
	"context"

	"github.com/bookwise/bookwise-api/internal/domain"
)

// PromptGenerator defines the interface for generating multiple-choice
// prompts from a book excerpt. It is the boundary between the application
// core and the external LLM service.
type PromptGenerator interface {
	// GeneratePrompts creates multiple-choice prompts for the concepts in
	// the given book's excerpt. The returned prompts carry the book's user
	// and book IDs and validated JSONB content.
	//
	// Returns an error if generation fails for any reason (see errors.go
	// for the specific sentinel types).
	GeneratePrompts(ctx context.Context, book *domain.Book) ([]*domain.Prompt, error)
}

// Evaluation is the result of evaluating a user's answer to a prompt.
type Evaluation struct {
	// Feedback is a short explanation of why the selection was right or
	// wrong, written for the learner.
	Feedback string
}

// AnswerEvaluator defines the interface for AI evaluation of a user's
// answer. Grading itself is local (a set comparison); the evaluator only
// produces explanatory feedback, so failures here are recoverable.
type AnswerEvaluator interface {
	// EvaluateAnswer produces feedback for the given prompt content and
	// the option indices the user selected. correct reports whether the
	// selection matched the correct set.
	EvaluateAnswer(ctx context.Context, content *domain.PromptContent, selected []int, correct bool) (*Evaluation, error)
}
