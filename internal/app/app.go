package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/student-toolkit/internal/auth"
	"github.com/gokatarajesh/student-toolkit/internal/auth/jwt"
	"github.com/gokatarajesh/student-toolkit/internal/config"
	"github.com/gokatarajesh/student-toolkit/internal/db/repository"
	"github.com/gokatarajesh/student-toolkit/internal/logging"
	"github.com/gokatarajesh/student-toolkit/internal/question"
	"github.com/gokatarajesh/student-toolkit/internal/question/ai"
	"github.com/gokatarajesh/student-toolkit/internal/ratelimit"
	"github.com/gokatarajesh/student-toolkit/internal/server"
	"github.com/gokatarajesh/student-toolkit/internal/stats"
	ws "github.com/gokatarajesh/student-toolkit/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, Redis, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
	hub   *ws.Hub

	statsBroadcaster *stats.Broadcaster
	bgCancels        []context.CancelFunc
}

// New bootstraps logger, Postgres, Redis, the AI text generator and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env, cfg.LogLevel)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("%s pool_max_conns=%d", cfg.Postgres.DSN(), cfg.Postgres.MaxConns)
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	prompts, err := loadPrompts(cfg.AI.PromptsFile)
	if err != nil {
		closeStores(pool, redisClient, logger)
		return nil, err
	}

	textGen, err := ai.NewTextGenerator(ctx, ai.Config{
		Provider:     cfg.AI.Provider,
		GeneratorURL: cfg.AI.GeneratorURL,
		GeneratorKey: cfg.AI.GeneratorKey,
		APIKey:       cfg.AI.APIKey,
		Model:        cfg.AI.Model,
		BaseURL:      cfg.AI.BaseURL,
		Timeout:      cfg.AI.HTTPTimeout,
		MaxTokens:    cfg.AI.MaxTokens,
	}, logger)
	if err != nil {
		closeStores(pool, redisClient, logger)
		return nil, fmt.Errorf("configure text generator: %w", err)
	}
	logger.Info().Str("provider", cfg.AI.Provider).Msg("text generator initialized")

	tokens := jwt.NewManager(jwt.TokenConfig{
		Secret: []byte(cfg.Security.JWTSecret),
		TTL:    cfg.Security.TokenTTL,
		Issuer: cfg.Name,
	})

	questionRepo := repository.NewQuestionRepository(pool)
	statsRepo := repository.NewStatsRepository(pool)

	board := stats.NewRedisLeaderboard(redisClient, logger, stats.LeaderboardOptions{TopN: cfg.Stats.LeaderboardSize})
	ledger := stats.NewLedger(statsRepo, stats.NewRedisPublisher(redisClient), cfg.Stats.Channel, logger).
		WithLeaderboard(board)
	generator := question.NewGenerator(textGen, questionRepo, question.GeneratorOptions{Prompts: prompts}, logger)
	evaluator := question.NewEvaluator(textGen, questionRepo, ledger, prompts, logger)
	questionHandlers := question.NewHTTPHandlers(generator, evaluator, questionRepo, logger)

	wsHub := ws.NewHub(logger)
	ws.AllowOrigins(cfg.CORS.AllowedOrigins)
	statsHandler := stats.NewHTTPHandler(ledger, wsHub, tokens, logger)
	statsBroadcaster := stats.NewBroadcaster(redisClient, wsHub, cfg.Stats.Channel, logger)

	limiter := ratelimit.NewLimiter(
		ratelimit.NewRedisCounter(redisClient, "rl"),
		"generate",
		cfg.RateLimit.GenerateLimit,
		cfg.RateLimit.GenerateWindow,
		logger,
	)

	apiServer := server.NewHTTPServer(cfg, logger, server.Routes{
		Authenticate:     auth.RequireAuth(tokens, logger),
		GenerateLimit:    limiter.Middleware,
		GenerateQuestion: questionHandlers.Generate,
		CheckAnswer:      questionHandlers.CheckAnswer,
		GetQuestion:      questionHandlers.GetQuestion,
		RandomQuestion:   questionHandlers.Random,
		MyStats:          statsHandler.GetMine,
		Leaderboard:      statsHandler.GetLeaderboard,
		StatsSocket:      statsHandler.HandleWebSocket,
	}, server.PostgresPinger(pool), server.RedisPinger(redisClient))

	return &Application{
		cfg:              cfg,
		logger:           logger,
		pool:             pool,
		redis:            redisClient,
		http:             apiServer,
		hub:              wsHub,
		statsBroadcaster: statsBroadcaster,
		bgCancels:        make([]context.CancelFunc, 0, 1),
	}, nil
}

func loadPrompts(path string) (*question.Prompts, error) {
	if path == "" {
		return question.DefaultPrompts(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	prompts, err := question.LoadPrompts(data)
	if err != nil {
		return nil, fmt.Errorf("load prompts file %s: %w", path, err)
	}
	return prompts, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}
	a.hub.Close()

	closeStores(a.pool, a.redis, a.logger)

	a.logger.Info().Msg("shutdown complete")
	return nil
}

// closeStores releases the Postgres pool and the Redis client.
func closeStores(pool *pgxpool.Pool, client *redis.Client, logger zerolog.Logger) {
	pool.Close()
	if err := client.Close(); err != nil {
		logger.Error().Err(err).Msg("redis shutdown error")
	}
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	if a.statsBroadcaster != nil {
		bgCtx, cancel := context.WithCancel(ctx)
		a.bgCancels = append(a.bgCancels, cancel)
		go func() {
			if err := a.statsBroadcaster.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Warn().Err(err).Msg("stats broadcaster stopped")
			}
		}()
	}
}
