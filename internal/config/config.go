package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"student-toolkit"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Postgres  Postgres
	Redis     Redis
	Security  Security
	AI        AI
	RateLimit RateLimit
	Stats     Stats
	CORS      CORS
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST,notEmpty"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER,notEmpty"`
	Password string `env:"PG_PASSWORD,notEmpty"`
	Database string `env:"PG_DATABASE,notEmpty"`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// DSN renders the libpq-style connection string used by pgxpool and goose.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// Redis holds pub/sub + rate limit configuration.
type Redis struct {
	Addr     string `env:"REDIS_ADDR,notEmpty"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing and auth.
type Security struct {
	JWTSecret string        `env:"JWT_SECRET,notEmpty"`
	TokenTTL  time.Duration `env:"JWT_TOKEN_TTL" envDefault:"6h"`
}

// AI configures the text generator.
type AI struct {
	Provider     string        `env:"AI_PROVIDER" envDefault:"http"`
	GeneratorURL string        `env:"AI_GENERATOR_URL" envDefault:""`
	GeneratorKey string        `env:"AI_GENERATOR_API_KEY" envDefault:""`
	APIKey       string        `env:"AI_API_KEY" envDefault:""`
	Model        string        `env:"AI_MODEL" envDefault:""`
	BaseURL      string        `env:"AI_BASE_URL" envDefault:""`
	HTTPTimeout  time.Duration `env:"AI_HTTP_TIMEOUT" envDefault:"20s"`
	MaxTokens    int           `env:"AI_MAX_TOKENS" envDefault:"1024"`
	PromptsFile  string        `env:"AI_PROMPTS_FILE" envDefault:""`
}

// RateLimit bounds question generation per caller.
type RateLimit struct {
	GenerateLimit  int           `env:"GENERATE_RATE_LIMIT" envDefault:"20"`
	GenerateWindow time.Duration `env:"GENERATE_RATE_WINDOW" envDefault:"1m"`
}

// Stats governs the live stats feed.
type Stats struct {
	Channel         string `env:"STATS_CHANNEL" envDefault:"stats:updates"`
	LeaderboardSize int    `env:"LEADERBOARD_SIZE" envDefault:"50"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.RateLimit.GenerateLimit > 0 && cfg.RateLimit.GenerateWindow <= 0 {
		return nil, fmt.Errorf("parse config: GENERATE_RATE_WINDOW must be positive")
	}
	return cfg, nil
}

// LoadSection parses a single config group, for tools that need only part of
// the environment.
func LoadSection[T any]() (T, error) {
	var section T
	if err := env.ParseWithOptions(&section, env.Options{RequiredIfNoDef: true}); err != nil {
		return section, fmt.Errorf("parse config: %w", err)
	}
	return section, nil
}
