package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"quizgame/internal/handlers"
	"quizgame/internal/metrics"
	"quizgame/internal/middleware"
)

type Handlers struct {
	Questions *handlers.QuestionHandler
	Auth      *handlers.AuthHandler
	Scores    *handlers.ScoreHandler
	LiveFeed  http.HandlerFunc
}

func New(
	ctx context.Context,
	authenticator middleware.Authenticator,
	h Handlers,
	m *metrics.Metrics,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))
	r.Use(m.Middleware)

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(ctx, 10, time.Minute)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", m.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/questions/", h.Questions.List)

		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register/", h.Auth.Register)
			r.Post("/login/", h.Auth.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(authenticator))
			r.Post("/logout/", h.Auth.Logout)
			r.Get("/profile/", h.Auth.Profile)
		})

		r.Route("/scores", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(authenticator))
			r.Get("/", h.Scores.List)
			r.Post("/", h.Scores.Submit)
		})

		r.Get("/ws/scores", h.LiveFeed)
	})

	return r
}
