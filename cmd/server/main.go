package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Learnmade/livechallenge/internal/api"
	"github.com/Learnmade/livechallenge/internal/app/grading"
	"github.com/Learnmade/livechallenge/internal/app/service"
	"github.com/Learnmade/livechallenge/internal/common/security"
	"github.com/Learnmade/livechallenge/internal/domain/repository"
	"github.com/Learnmade/livechallenge/internal/platform/cache"
	"github.com/Learnmade/livechallenge/internal/platform/config"
	"github.com/Learnmade/livechallenge/internal/platform/database"
	"github.com/Learnmade/livechallenge/internal/platform/metrics"
	"github.com/Learnmade/livechallenge/internal/platform/ratelimit"
	"github.com/Learnmade/livechallenge/internal/platform/redisconn"
	"github.com/Learnmade/livechallenge/internal/platform/sandbox"
)

func main() {
	// 1. Load Configuration
	config.Load()
	log.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	log.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	log.Println("Database connected.")

	// 4. Cache store and rate limiters, backed by memory or redis.
	obs := metrics.CacheObserver{}
	var store cache.Store
	var limiters api.Limiters
	if config.AppConfig.StateBackend == "redis" {
		redisconn.Connect()
		defer redisconn.Close()
		log.Println("Redis connected.")

		store = cache.NewRedisStore(redisconn.RDB, "cache", obs)
		limiters = api.Limiters{
			API:    ratelimit.NewRedisFixedWindow(redisconn.RDB, "api", config.AppConfig.APIRateLimit, config.AppConfig.APIRateWindow),
			Auth:   ratelimit.NewRedisFixedWindow(redisconn.RDB, "auth", config.AppConfig.AuthRateLimit, config.AppConfig.AuthRateWindow),
			Submit: ratelimit.NewRedisFixedWindow(redisconn.RDB, "submit", config.AppConfig.SubmitRateLimit, config.AppConfig.SubmitRateWindow),
		}
	} else {
		store = cache.NewMemoryStore(obs)
		limiters = api.Limiters{
			API:    ratelimit.NewFixedWindow(config.AppConfig.APIRateLimit, config.AppConfig.APIRateWindow),
			Auth:   ratelimit.NewFixedWindow(config.AppConfig.AuthRateLimit, config.AppConfig.AuthRateWindow),
			Submit: ratelimit.NewFixedWindow(config.AppConfig.SubmitRateLimit, config.AppConfig.SubmitRateWindow),
		}
	}

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	if sweeper, ok := store.(cache.Sweeper); ok {
		go sweeper.Sweep(sweepCtx, config.AppConfig.CacheSweepInterval)
	}

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	challengeRepo := repository.NewPgChallengeRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	battleRepo := repository.NewPgBattleRepository(database.DB)

	// 6. Grading pipeline against the sandbox
	runner := sandbox.NewClient(config.AppConfig.SandboxURL)
	pipeline := grading.NewPipeline(runner, config.AppConfig.SandboxTimeout, config.AppConfig.MaxCodeLength)

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo)
	challengeService := service.NewChallengeService(challengeRepo, database.DB)
	submissionService := service.NewSubmissionService(submissionRepo, challengeRepo, battleRepo, pipeline, store, database.DB)
	leaderboardService := service.NewLeaderboardService(submissionRepo, challengeRepo, store, config.AppConfig.LeaderboardCacheTTL)
	participantService := service.NewParticipantService(submissionRepo, challengeRepo, store, config.AppConfig.ParticipantWindow, config.AppConfig.ParticipantsCacheTTL)
	battleService := service.NewBattleService(battleRepo, challengeRepo, submissionRepo)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(
		authService,
		challengeService,
		submissionService,
		leaderboardService,
		participantService,
		battleService,
		limiters,
	)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop

	log.Println("Shutting down server...")
	sweepCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
