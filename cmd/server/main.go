package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"quizgame/internal/config"
	"quizgame/internal/database"
	"quizgame/internal/handlers"
	"quizgame/internal/logging"
	"quizgame/internal/metrics"
	"quizgame/internal/middleware"
	"quizgame/internal/repository"
	"quizgame/internal/router"
	"quizgame/internal/services"
	"quizgame/internal/websocket"
	"quizgame/internal/worker"
)

const tokenTTL = 7 * 24 * time.Hour

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.Env)
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── PostgreSQL ────
	pool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("postgres connected")

	// ──── Redis ────
	redisClients, err := database.NewRedisClients(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClients.Close()
	logger.Info("redis connected")

	// ──── Migrations ────
	if err := database.RunMigrations(ctx, pool, cfg.MigrationsDir, logger); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// ──── Repositories & Services ────
	userRepo := repository.NewUserRepo(pool)
	scoreRepo := repository.NewScoreRepo(pool)
	questionRepo := repository.NewQuestionRepo(pool)

	m := metrics.New()
	tokens := middleware.NewTokenAuth(cfg.JWTSecret, tokenTTL)
	authService := services.NewAuthService(userRepo, services.NewRedisSessionStore(redisClients.Sessions), tokens, m, logger)
	scoreService := services.NewScoreService(scoreRepo, userRepo, worker.NewQueue(redisClients.Queue), m, logger)
	questionService := services.NewQuestionService(questionRepo, logger)

	if _, err := questionService.SeedFromFile(ctx, cfg.QuestionsSeedFile); err != nil {
		return fmt.Errorf("seed questions: %w", err)
	}

	// ──── Workers & WebSocket Hub ────
	workerPool := worker.NewPool(redisClients.Queue, userRepo, worker.NewRedisBroadcaster(redisClients.Queue), logger, cfg.WorkerCount)
	workerPool.Start(ctx)

	wsHub := websocket.NewHub(redisClients.PubSub, worker.LiveScoreChannel, logger)
	go wsHub.Run(ctx)

	// ──── HTTP Server ────
	r := router.New(ctx, authService, router.Handlers{
		Questions: handlers.NewQuestionHandler(questionService),
		Auth:      handlers.NewAuthHandler(authService),
		Scores:    handlers.NewScoreHandler(scoreService),
		LiveFeed:  wsHub.HandleWebSocket,
	}, m, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("quiz server ready",
			zap.String("api", fmt.Sprintf("http://localhost:%s/api", cfg.Port)),
			zap.String("ws", fmt.Sprintf("ws://localhost:%s/api/ws/scores", cfg.Port)),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	workerPool.Stop()
	return nil
}
