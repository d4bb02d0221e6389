package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"thirdvoice.ai/third-voice/internal/logger"
)

func NewRouter(apiHandler *APIHandler, limiter *RateLimiter, log *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", apiHandler.HealthHandler)
		r.Post("/auth/signup", apiHandler.SignupHandler)
		r.Post("/auth/login", apiHandler.LoginHandler)
		r.Get("/contexts", apiHandler.ContextsHandler)

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Post("/auth/logout", apiHandler.LogoutHandler)
			r.Get("/auth/session", apiHandler.SessionHandler)

			r.Get("/contacts", apiHandler.ListContactsHandler)
			r.Post("/contacts", apiHandler.CreateContactHandler)
			r.Route("/contacts/{contactID}", func(r chi.Router) {
				r.Get("/", apiHandler.GetContactHandler)
				r.Put("/", apiHandler.UpdateContactHandler)
				r.Delete("/", apiHandler.DeleteContactHandler)

				r.Get("/messages", apiHandler.ListMessagesHandler)
				r.With(limiter.Middleware).Post("/messages", apiHandler.ProcessMessageHandler)
				r.With(limiter.Middleware).Post("/interpret", apiHandler.InterpretHandler)
				r.Get("/insights", apiHandler.InsightsHandler)
				r.Delete("/cache", apiHandler.PurgeCacheHandler)
			})

			r.Post("/feedback", apiHandler.FeedbackHandler)
			r.Get("/stats", apiHandler.StatsHandler)
		})
	})

	return r
}
