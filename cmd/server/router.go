package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/api"
	apiMiddleware "github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))

	diaryHandler := api.NewDiaryHandler(app.diaryService, app.logger)
	streamHandler := api.NewStreamHandler(app.hub, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/diaries", func(r chi.Router) {
			r.Post("/", diaryHandler.CreateDiary)
			r.Get("/{id}", diaryHandler.GetDiary)
			r.Put("/{id}", diaryHandler.UpdateDiary)
			r.Delete("/{id}", diaryHandler.DeleteDiary)
			r.Post("/{id}/analysis", diaryHandler.ReanalyzeDiary)
		})

		r.Get("/users/{userID}/depression/daily", diaryHandler.GetDailyAverages)
		r.Get("/analysis/stream", streamHandler.Stream)
	})

	r.Get("/health", api.Health)

	return r
}
