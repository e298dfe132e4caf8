package server

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/student-toolkit/internal/config"
	"github.com/gokatarajesh/student-toolkit/internal/logging"
)

// Pinger checks that a backing dependency is reachable.
type Pinger func(ctx context.Context) error

// PostgresPinger pings the pool.
func PostgresPinger(pool *pgxpool.Pool) Pinger {
	return pool.Ping
}

// RedisPinger pings the client.
func RedisPinger(client *redis.Client) Pinger {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// Routes carries the feature handlers mounted by NewHTTPServer. Nil handlers
// are skipped.
type Routes struct {
	// Authenticate wraps handlers that need a caller email.
	Authenticate func(http.Handler) http.Handler
	// GenerateLimit wraps the generate handler, after Authenticate.
	GenerateLimit func(http.Handler) http.Handler

	GenerateQuestion http.HandlerFunc
	CheckAnswer      http.HandlerFunc
	GetQuestion      http.HandlerFunc
	RandomQuestion   http.HandlerFunc
	MyStats          http.HandlerFunc
	Leaderboard      http.HandlerFunc
	StatsSocket      http.HandlerFunc
}

// NewHTTPServer wires base routes (health, metrics, ping) and the feature routes.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, routes Routes, pingers ...Pinger) *http.Server {
	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: NewHandler(cfg, logger, routes, pingers...),
	}
}

// NewHandler builds the API route table.
func NewHandler(cfg *config.App, logger zerolog.Logger, routes Routes, pingers ...Pinger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/ping", func(w http.ResponseWriter, r *http.Request) {
		for _, ping := range pingers {
			if err := ping(r.Context()); err != nil {
				logger.Error().Err(err).Msg("dependency ping failed")
				http.Error(w, "upstream error", http.StatusBadGateway)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	authn := routes.Authenticate
	if authn == nil {
		authn = func(next http.Handler) http.Handler { return next }
	}
	limit := routes.GenerateLimit
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	if routes.GenerateQuestion != nil {
		generate := authn(limit(routes.GenerateQuestion))
		mux.Handle("POST /v1/questions/generate", generate)
		mux.Handle("POST /generate-question", generate)
	}
	if routes.CheckAnswer != nil {
		check := authn(routes.CheckAnswer)
		mux.Handle("POST /v1/answers/check", check)
		mux.Handle("POST /check-answer", check)
	}
	if routes.RandomQuestion != nil {
		mux.Handle("GET /v1/questions/random", authn(routes.RandomQuestion))
	}
	if routes.GetQuestion != nil {
		mux.Handle("GET /v1/questions/{id}", authn(routes.GetQuestion))
	}
	if routes.MyStats != nil {
		mux.Handle("GET /v1/stats/me", authn(routes.MyStats))
	}
	if routes.Leaderboard != nil {
		mux.Handle("GET /v1/stats/leaderboard/{window}", authn(routes.Leaderboard))
	}
	if routes.StatsSocket != nil {
		// authenticates from the token query parameter itself
		mux.HandleFunc("GET /ws/stats", routes.StatsSocket)
	}

	return withRequestLogger(logger, withCORS(cfg.CORS, mux))
}

func withRequestLogger(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqLogger := logger.With().Str("method", r.Method).Str("path", r.URL.Path).Logger()
		next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), reqLogger)))
	})
}

func withCORS(cfg config.CORS, next http.Handler) http.Handler {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (slices.Contains(cfg.AllowedOrigins, "*") || slices.Contains(cfg.AllowedOrigins, origin)) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			h.Set("Access-Control-Max-Age", maxAge)
			if cfg.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
