package main

import (
	"net/http"

	"github.com/bookwise/bookwise-api/internal/api"
	apimiddleware "github.com/bookwise/bookwise-api/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// setupRouter builds the HTTP routing table: public auth endpoints plus
// JWT-protected book and study endpoints.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService)
	bookHandler := api.NewBookHandler(app.bookService)
	studyHandler := api.NewStudyHandler(app.studyService)
	authMiddleware := apimiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/books", bookHandler.CreateBook)
			r.Get("/books", bookHandler.ListBooks)
			r.Get("/books/{id}", bookHandler.GetBook)

			r.Get("/study/next", studyHandler.GetNextPrompt)
			r.Post("/study/answers", studyHandler.SubmitAnswer)
			r.Get("/study/attempts", studyHandler.ListAttempts)
		})
	})

	return r
}
