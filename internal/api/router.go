package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apimiddleware "github.com/phrazzld/mediqa-api/internal/api/middleware"
	"github.com/phrazzld/mediqa-api/internal/generation"
	"github.com/phrazzld/mediqa-api/internal/retrieval"
	"github.com/phrazzld/mediqa-api/internal/service/auth"
	"github.com/phrazzld/mediqa-api/internal/service/gamification"
	"github.com/phrazzld/mediqa-api/internal/service/review"
	"github.com/phrazzld/mediqa-api/internal/store"
)

// RouterDeps holds everything the router needs to build its handlers.
// Index and Generator may be nil; the chat endpoint then responds 503.
type RouterDeps struct {
	UserStore        store.UserStore
	JWTService       auth.JWTService
	PasswordVerifier auth.PasswordVerifier
	Gamification     gamification.Service
	Review           review.Service
	Index            *retrieval.Index
	Generator        generation.Generator
}

// NewRouter configures the application router with all routes and
// middleware.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.TraceMiddleware)

	authHandler := NewAuthHandler(deps.UserStore, deps.JWTService, deps.PasswordVerifier)
	gamificationHandler := NewGamificationHandler(deps.Gamification)
	reviewHandler := NewReviewHandler(deps.Review)
	chatHandler := NewChatHandler(deps.Index, deps.Generator, deps.Gamification)
	authMiddleware := apimiddleware.NewAuthMiddleware(deps.JWTService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Engagement endpoints
			r.Post("/activity", gamificationHandler.RecordActivity)
			r.Post("/points", gamificationHandler.AddPoints)
			r.Post("/achievements/{id}/unlock", gamificationHandler.Unlock)
			r.Get("/achievements", gamificationHandler.ListAchievements)
			r.Get("/leaderboard", gamificationHandler.Leaderboard)

			// Flashcard endpoints
			r.Post("/cards", reviewHandler.CreateCard)
			r.Get("/cards/due", reviewHandler.DueCards)
			r.Post("/cards/{id}/review", reviewHandler.ReviewCard)

			// Grounded answering
			r.Post("/chat", chatHandler.Chat)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
