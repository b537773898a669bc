package api

import (
	"net/http"
	"strconv"

	"github.com/bookwise/bookwise-api/internal/api/middleware"
	"github.com/bookwise/bookwise-api/internal/api/shared"
	"github.com/bookwise/bookwise-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// defaultPageSize bounds list endpoints when the client does not ask for
// a specific limit.
const defaultPageSize = 20

// maxPageSize caps what a client may request in one page.
const maxPageSize = 100

// BookHandler handles book submission and retrieval.
type BookHandler struct {
	bookService service.BookService
}

// NewBookHandler creates a BookHandler.
func NewBookHandler(bookService service.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// CreateBook handles POST /books. Submitting a duplicate title/author
// returns the existing book with 200 instead of creating a new one.
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateBookRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	book, created, err := h.bookService.CreateBookAndEnqueueTask(
		r.Context(), userID, req.Title, req.Author, req.Excerpt)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	shared.RespondWithJSON(w, r, status, NewBookResponse(book))
}

// GetBook handles GET /books/{id}.
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	bookID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid book ID")
		return
	}

	book, err := h.bookService.GetBook(r.Context(), bookID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	// Another user's book is indistinguishable from a missing one.
	if book.UserID != userID {
		shared.RespondWithError(w, r, http.StatusNotFound, "Book not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewBookResponse(book))
}

// ListBooks handles GET /books.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit, offset := parsePagination(r)
	books, err := h.bookService.ListBooks(r.Context(), userID, limit, offset)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	responses := make([]BookResponse, 0, len(books))
	for _, book := range books {
		responses = append(responses, NewBookResponse(book))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// parsePagination reads limit/offset query parameters, clamping to sane
// bounds.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}
