package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bookwise/bookwise-api/internal/domain"
	"github.com/bookwise/bookwise-api/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStudyService is a scriptable service.StudyService.
type fakeStudyService struct {
	prompt   *service.StudyPrompt
	attempt  *domain.Attempt
	attempts []*domain.Attempt
	err      error

	gotBookID   uuid.UUID
	gotSelected []int
}

func (s *fakeStudyService) GetNextPrompt(ctx context.Context, userID, bookID uuid.UUID) (*service.StudyPrompt, error) {
	s.gotBookID = bookID
	if s.err != nil {
		return nil, s.err
	}
	return s.prompt, nil
}

func (s *fakeStudyService) SubmitAnswer(ctx context.Context, userID, promptID uuid.UUID, selected []int) (*domain.Attempt, error) {
	s.gotSelected = selected
	if s.err != nil {
		return nil, s.err
	}
	return s.attempt, nil
}

func (s *fakeStudyService) ListAttempts(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Attempt, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.attempts, nil
}

func testStudyPrompt() *service.StudyPrompt {
	return &service.StudyPrompt{
		PromptID: uuid.New(),
		BookID:   uuid.New(),
		Question: "What does the excerpt identify as Go's main design goal?",
		Options:  []string{"Simplicity", "Raw speed", "Dynamic typing", "Macros"},
		Concept:  "design goals",
	}
}

func TestGetNextPromptEndpoint(t *testing.T) {
	t.Parallel()

	prompt := testStudyPrompt()
	svc := &fakeStudyService{prompt: prompt}
	handler := NewStudyHandler(svc)

	req := authedRequest(t, http.MethodGet, "/study/next", uuid.New(), nil)
	rec := httptest.NewRecorder()
	handler.GetNextPrompt(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp StudyPromptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, prompt.PromptID, resp.PromptID)
	assert.Equal(t, prompt.Options, resp.Options)
	assert.Equal(t, uuid.Nil, svc.gotBookID, "no book_id query should mean any book")
}

func TestGetNextPromptEndpointScopedToBook(t *testing.T) {
	t.Parallel()

	svc := &fakeStudyService{prompt: testStudyPrompt()}
	handler := NewStudyHandler(svc)
	bookID := uuid.New()

	req := authedRequest(t, http.MethodGet, "/study/next?book_id="+bookID.String(), uuid.New(), nil)
	rec := httptest.NewRecorder()
	handler.GetNextPrompt(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bookID, svc.gotBookID)
}

func TestGetNextPromptEndpointInvalidBookID(t *testing.T) {
	t.Parallel()

	handler := NewStudyHandler(&fakeStudyService{})

	req := authedRequest(t, http.MethodGet, "/study/next?book_id=nope", uuid.New(), nil)
	rec := httptest.NewRecorder()
	handler.GetNextPrompt(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetNextPromptEndpointNoneAvailable(t *testing.T) {
	t.Parallel()

	handler := NewStudyHandler(&fakeStudyService{err: service.ErrNoPromptsAvailable})

	req := authedRequest(t, http.MethodGet, "/study/next", uuid.New(), nil)
	rec := httptest.NewRecorder()
	handler.GetNextPrompt(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitAnswerEndpoint(t *testing.T) {
	t.Parallel()

	attempt := &domain.Attempt{
		ID:         uuid.New(),
		PromptID:   uuid.New(),
		Correct:    true,
		Feedback:   "Right: the excerpt names simplicity as the goal.",
		AnsweredAt: time.Now().UTC(),
	}
	svc := &fakeStudyService{attempt: attempt}
	handler := NewStudyHandler(svc)

	req := authedRequest(t, http.MethodPost, "/study/answers", uuid.New(), SubmitAnswerRequest{
		PromptID:        attempt.PromptID,
		SelectedIndices: []int{0, 2},
	})
	rec := httptest.NewRecorder()
	handler.SubmitAnswer(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp AttemptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, attempt.ID, resp.ID)
	assert.True(t, resp.Correct)
	assert.Equal(t, []int{0, 2}, svc.gotSelected)
}

func TestSubmitAnswerEndpointValidation(t *testing.T) {
	t.Parallel()

	handler := NewStudyHandler(&fakeStudyService{})

	cases := []struct {
		name string
		body SubmitAnswerRequest
	}{
		{"missing prompt id", SubmitAnswerRequest{SelectedIndices: []int{0}}},
		{"empty selection", SubmitAnswerRequest{PromptID: uuid.New(), SelectedIndices: []int{}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := authedRequest(t, http.MethodPost, "/study/answers", uuid.New(), tc.body)
			rec := httptest.NewRecorder()
			handler.SubmitAnswer(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestSubmitAnswerEndpointInvalidSelection(t *testing.T) {
	t.Parallel()

	handler := NewStudyHandler(&fakeStudyService{err: service.ErrInvalidSelection})

	req := authedRequest(t, http.MethodPost, "/study/answers", uuid.New(), SubmitAnswerRequest{
		PromptID:        uuid.New(),
		SelectedIndices: []int{42},
	})
	rec := httptest.NewRecorder()
	handler.SubmitAnswer(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitAnswerEndpointNotOwned(t *testing.T) {
	t.Parallel()

	handler := NewStudyHandler(&fakeStudyService{err: service.ErrNotOwned})

	req := authedRequest(t, http.MethodPost, "/study/answers", uuid.New(), SubmitAnswerRequest{
		PromptID:        uuid.New(),
		SelectedIndices: []int{0},
	})
	rec := httptest.NewRecorder()
	handler.SubmitAnswer(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestListAttemptsEndpoint(t *testing.T) {
	t.Parallel()

	attempts := []*domain.Attempt{
		{ID: uuid.New(), PromptID: uuid.New(), Correct: true, AnsweredAt: time.Now().UTC()},
		{ID: uuid.New(), PromptID: uuid.New(), Correct: false, AnsweredAt: time.Now().UTC()},
	}
	handler := NewStudyHandler(&fakeStudyService{attempts: attempts})

	req := authedRequest(t, http.MethodGet, "/study/attempts", uuid.New(), nil)
	rec := httptest.NewRecorder()
	handler.ListAttempts(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []AttemptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}
