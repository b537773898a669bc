package api

import (
	"net/http"

	"github.com/bookwise/bookwise-api/internal/api/middleware"
	"github.com/bookwise/bookwise-api/internal/api/shared"
	"github.com/bookwise/bookwise-api/internal/service"
	"github.com/google/uuid"
)

// StudyHandler handles the study loop endpoints.
type StudyHandler struct {
	studyService service.StudyService
}

// NewStudyHandler creates a StudyHandler.
func NewStudyHandler(studyService service.StudyService) *StudyHandler {
	return &StudyHandler{studyService: studyService}
}

// GetNextPrompt handles GET /study/next. An optional book_id query
// parameter scopes the prompt to one book.
func (h *StudyHandler) GetNextPrompt(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	bookID := uuid.Nil
	if raw := r.URL.Query().Get("book_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid book ID")
			return
		}
		bookID = parsed
	}

	prompt, err := h.studyService.GetNextPrompt(r.Context(), userID, bookID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewStudyPromptResponse(prompt))
}

// SubmitAnswer handles POST /study/answers.
func (h *StudyHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SubmitAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	attempt, err := h.studyService.SubmitAnswer(r.Context(), userID, req.PromptID, req.SelectedIndices)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewAttemptResponse(attempt))
}

// ListAttempts handles GET /study/attempts.
func (h *StudyHandler) ListAttempts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit, offset := parsePagination(r)
	attempts, err := h.studyService.ListAttempts(r.Context(), userID, limit, offset)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]AttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, NewAttemptResponse(attempt))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}
