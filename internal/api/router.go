package api

import (
	"net/http"
	"time"

	"github.com/Learnmade/livechallenge/internal/api/handler"
	"github.com/Learnmade/livechallenge/internal/api/middleware"
	"github.com/Learnmade/livechallenge/internal/app/service"
	"github.com/Learnmade/livechallenge/internal/common/security"
	"github.com/Learnmade/livechallenge/internal/platform/metrics"
	"github.com/Learnmade/livechallenge/internal/platform/ratelimit"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

// Limiters carries the per-scope rate limiters the router mounts. Auth
// endpoints get their own tighter budget, submissions another.
type Limiters struct {
	API    ratelimit.Limiter
	Auth   ratelimit.Limiter
	Submit ratelimit.Limiter
}

func NewRouter(
	authService *service.AuthService,
	challengeService *service.ChallengeService,
	submissionService *service.SubmissionService,
	leaderboardService *service.LeaderboardService,
	participantService *service.ParticipantService,
	battleService *service.BattleService,
	limiters Limiters,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies a bearer token when present and puts the claims in context.
	// Routes that require auth add middleware.Authenticator on top.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	authHandler := handler.NewAuthHandler(authService)
	challengeHandler := handler.NewChallengeHandler(challengeService)
	submissionHandler := handler.NewSubmissionHandler(submissionService)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)
	participantHandler := handler.NewParticipantHandler(participantService)
	battleHandler := handler.NewBattleHandler(battleService, submissionService)

	r.Route("/api/v1", func(v1 chi.Router) {
		// Auth routes (public, tight limiter keyed by client IP)
		v1.Route("/auth", func(auth chi.Router) {
			auth.Use(middleware.RateLimit(limiters.Auth, "auth"))
			authHandler.RegisterRoutes(auth)
		})

		// Everything else shares the general API budget.
		v1.Group(func(api chi.Router) {
			api.Use(middleware.RateLimit(limiters.API, "api"))

			api.Route("/challenges", func(cr chi.Router) {
				challengeHandler.RegisterRoutes(cr)
				leaderboardHandler.RegisterChallengeRoutes(cr)
				participantHandler.RegisterChallengeRoutes(cr)

				cr.Group(func(sub chi.Router) {
					sub.Use(middleware.Authenticator)
					sub.Use(middleware.RateLimit(limiters.Submit, "submit"))
					submissionHandler.RegisterChallengeRoutes(sub)
				})
			})

			api.Route("/submissions", func(sr chi.Router) {
				sr.Use(middleware.Authenticator)
				submissionHandler.RegisterRoutes(sr)
			})

			api.Route("/leaderboard", leaderboardHandler.RegisterRoutes)

			api.Route("/battles", func(br chi.Router) {
				battleHandler.RegisterRoutes(br)

				br.Group(func(sub chi.Router) {
					sub.Use(middleware.Authenticator)
					sub.Use(middleware.RateLimit(limiters.Submit, "submit"))
					battleHandler.RegisterSubmitRoutes(sub)
				})
			})

			// Host-only surface.
			api.Route("/admin", func(ar chi.Router) {
				ar.Use(middleware.Authenticator)
				ar.Use(middleware.AdminOnly)
				challengeHandler.RegisterAdminRoutes(ar)
				battleHandler.RegisterAdminRoutes(ar)
				participantHandler.RegisterAdminRoutes(ar)
			})
		})
	})

	return r
}
