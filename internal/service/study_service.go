package service

import (
	"context"
	"database/sql"
	"hash/fnv"
	"log/slog"
	"math/rand/v2"

	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/bookwise/bookwise-api/internal/domain/shuffle"
	"github.com/bookwise/bookwise-api/internal/generation"
	"github.com/bookwise/bookwise-api/internal/store"
	"github.com/google/uuid"
)

// PromptRepository is the persistence surface the study service needs.
type PromptRepository interface {
	store.PromptStore

	// DB returns the underlying database handle for RunInTransaction.
	DB() *sql.DB
}

// AttemptRepository is the attempt persistence surface.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *domain.Attempt) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Attempt, error)
}

// StudyPrompt is a prompt as served to a user: options shuffled, correct
// indices withheld.
type StudyPrompt struct {
	PromptID uuid.UUID
	BookID   uuid.UUID
	Question string
	Options  []string
	Concept  string
}

// StudyService drives the answer loop: serve a prompt, grade the
// submission, record the attempt.
type StudyService interface {
	// GetNextPrompt returns a random prompt the user has not answered,
	// optionally scoped to one book (uuid.Nil means any book). The
	// option order is shuffled per user and prompt; submissions are
	// graded against the same ordering.
	// Returns ErrNoPromptsAvailable when everything is answered.
	GetNextPrompt(ctx context.Context, userID, bookID uuid.UUID) (*StudyPrompt, error)

	// SubmitAnswer grades the selection (indices into the served option
	// order), obtains AI feedback when the evaluator is reachable, and
	// records the attempt. Evaluation failure is not submission failure:
	// the attempt is stored without feedback.
	SubmitAnswer(ctx context.Context, userID, promptID uuid.UUID, selected []int) (*domain.Attempt, error)

	// ListAttempts returns the user's attempt history, newest first.
	ListAttempts(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Attempt, error)
}

type studyServiceImpl struct {
	promptRepo  PromptRepository
	attemptRepo AttemptRepository
	evaluator   generation.AnswerEvaluator
	logger      *slog.Logger
}

// NewStudyService creates a StudyService. The evaluator may be nil, in
// which case attempts are recorded without AI feedback.
func NewStudyService(
	promptRepo PromptRepository,
	attemptRepo AttemptRepository,
	evaluator generation.AnswerEvaluator,
	logger *slog.Logger,
) (StudyService, error) {
	if promptRepo == nil {
		return nil, &ServiceError{
			Service:   "study_service",
			Operation: "create_service",
			Message:   "promptRepo cannot be nil",
		}
	}
	if attemptRepo == nil {
		return nil, &ServiceError{
			Service:   "study_service",
			Operation: "create_service",
			Message:   "attemptRepo cannot be nil",
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &studyServiceImpl{
		promptRepo:  promptRepo,
		attemptRepo: attemptRepo,
		evaluator:   evaluator,
		logger:      logger.With("component", "study_service"),
	}, nil
}

// servePermutation returns the option permutation used when serving the
// prompt to this user. It is deterministic in (userID, promptID) so a
// submission can be graded against the order the user actually saw,
// without the server keeping per-serve state.
func servePermutation(userID, promptID uuid.UUID, n int) []int {
	h := fnv.New64a()
	h.Write(userID[:])
	h.Write(promptID[:])
	seed1 := h.Sum64()
	h.Write(promptID[:])
	seed2 := h.Sum64()

	rng := rand.New(rand.NewPCG(seed1, seed2))
	return rng.Perm(n)
}

func (s *studyServiceImpl) GetNextPrompt(
	ctx context.Context,
	userID, bookID uuid.UUID,
) (*StudyPrompt, error) {
	prompt, err := s.promptRepo.GetNextForUser(ctx, userID, bookID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrNoPromptsAvailable
		}
		return nil, NewServiceError("study_service", "get_next_prompt", "failed to fetch prompt", err)
	}

	content, err := prompt.ParseContent()
	if err != nil {
		return nil, NewServiceError("study_service", "get_next_prompt", "stored prompt content is invalid", err)
	}

	perm := servePermutation(userID, prompt.ID, len(content.Options))
	shuffled, _ := shuffle.Apply(perm, content.Options, nil)

	return &StudyPrompt{
		PromptID: prompt.ID,
		BookID:   prompt.BookID,
		Question: content.Question,
		Options:  shuffled,
		Concept:  content.Concept,
	}, nil
}

func (s *studyServiceImpl) SubmitAnswer(
	ctx context.Context,
	userID, promptID uuid.UUID,
	selected []int,
) (*domain.Attempt, error) {
	if len(selected) == 0 {
		return nil, ErrInvalidSelection
	}

	prompt, err := s.promptRepo.GetByID(ctx, promptID)
	if err != nil {
		return nil, NewServiceError("study_service", "submit_answer", "failed to fetch prompt", err)
	}
	if prompt.UserID != userID {
		return nil, ErrNotOwned
	}

	content, err := prompt.ParseContent()
	if err != nil {
		return nil, NewServiceError("study_service", "submit_answer", "stored prompt content is invalid", err)
	}

	// Translate served-order selections back to stored option positions.
	perm := servePermutation(userID, promptID, len(content.Options))
	original := make([]int, 0, len(selected))
	seen := make(map[int]struct{}, len(selected))
	for _, idx := range selected {
		if idx < 0 || idx >= len(content.Options) {
			return nil, ErrInvalidSelection
		}
		orig := perm[idx]
		if _, dup := seen[orig]; dup {
			continue
		}
		seen[orig] = struct{}{}
		original = append(original, orig)
	}

	correct := gradeSelection(original, content.CorrectIndices)

	attempt, err := domain.NewAttempt(userID, promptID, original, correct)
	if err != nil {
		return nil, NewServiceError("study_service", "submit_answer", "failed to build attempt", err)
	}

	if s.evaluator != nil {
		eval, evalErr := s.evaluator.EvaluateAnswer(ctx, content, original, correct)
		if evalErr != nil {
			// Feedback is best-effort. The attempt still counts.
			s.logger.Warn("answer evaluation unavailable, storing attempt without feedback",
				"error", evalErr,
				"prompt_id", promptID,
				"user_id", userID)
		} else {
			attempt.SetFeedback(eval.Feedback)
		}
	}

	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, NewServiceError("study_service", "submit_answer", "failed to save attempt", err)
	}

	s.logger.Info("attempt recorded",
		"attempt_id", attempt.ID,
		"prompt_id", promptID,
		"user_id", userID,
		"correct", correct)

	return attempt, nil
}

func (s *studyServiceImpl) ListAttempts(
	ctx context.Context,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Attempt, error) {
	attempts, err := s.attemptRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, NewServiceError("study_service", "list_attempts", "failed to list attempts", err)
	}
	return attempts, nil
}

// gradeSelection reports whether the selected index set equals the
// correct index set exactly. Partial selections of a multi-answer prompt
// are incorrect.
func gradeSelection(selected, correctIndices []int) bool {
	selectedSet := shuffle.IndexSet(selected)
	correctSet := shuffle.IndexSet(correctIndices)
	if len(selectedSet) != len(correctSet) {
		return false
	}
	for idx := range selectedSet {
		if _, ok := correctSet[idx]; !ok {
			return false
		}
	}
	return true
}
