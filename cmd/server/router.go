package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/taskhub-api/internal/api"
	apiMiddleware "github.com/phrazzld/taskhub-api/internal/api/middleware"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(app.authService)
	taskHandler := api.NewTaskHandler(app.taskService)
	chatHandler := api.NewChatHandler(app.chatService, app.chatManager)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.authService)

	r.Get("/health", api.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/token", authHandler.Token)
		r.With(authMiddleware.Authenticate).Get("/me", authHandler.Me)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Post("/create", taskHandler.Create)
		r.Get("/get_all", taskHandler.List)
		r.Put("/update/{task_id}", taskHandler.Update)
		r.Delete("/delete/{task_id}", taskHandler.Delete)
		r.Post("/random", taskHandler.Random)
	})

	r.Route("/api/sessions", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Post("/", chatHandler.CreateSession)
		r.Get("/", chatHandler.ListSessions)
		r.Get("/{session_id}/messages", chatHandler.Messages)
	})

	r.With(authMiddleware.AuthenticateWebSocket).Get("/ws/{session_id}", chatHandler.Connect)

	return r
}
