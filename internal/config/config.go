package config

import (
	"log/slog"

	"github.com/caarlos0/env/v10"
)

// Config holds minimal runtime configuration. Extend as needed.
type Config struct {
	// Server
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Upload limits
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"10485760"` // 10MB in bytes

	// Store
	StoreProvider string `env:"STORE_PROVIDER" envDefault:"postgres"` // "postgres" (production database)
	DBURL         string `env:"DB_URL"`

	// Queue
	QueueProvider string `env:"QUEUE_PROVIDER" envDefault:"nats"` // "nats" (required for inter-service communication)
	QueueURL      string `env:"QUEUE_URL"`

	// Embeddings
	EmbeddingProvider string `env:"EMBEDDING_PROVIDER" envDefault:"openai"` // "openai" (uses OpenAI API)
	OpenAIKey         string `env:"OPENAI_API_KEY"`
	EmbeddingModel    string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`

	// Provider call shaping
	RequestsPerMinute int `env:"EMBED_REQUESTS_PER_MINUTE" envDefault:"3000"`
	MaxRetries        int `env:"EMBED_MAX_RETRIES" envDefault:"3"`
	MaxTokens         int `env:"EMBED_MAX_TOKENS" envDefault:"8000"`
	ChunkSize         int `env:"EMBED_CHUNK_SIZE" envDefault:"20"`
	ChunkWorkers      int `env:"EMBED_CHUNK_WORKERS" envDefault:"4"`
	ChunkDelayMillis  int `env:"EMBED_CHUNK_DELAY_MS" envDefault:"1000"`

	// Embedding cache (noop when REDIS_ADDR is unset)
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	CacheTTL      int    `env:"CACHE_TTL" envDefault:"86400"` // seconds

	// Job source
	JobProvider  string `env:"JOB_PROVIDER" envDefault:"adzuna"` // "adzuna" (aggregates Indeed, Monster, etc.)
	AdzunaAppID  string `env:"ADZUNA_APP_ID"`
	AdzunaAPIKey string `env:"ADZUNA_API_KEY"`
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Warn("failed to parse env; using defaults where set", "err", err)
	}
	return cfg
}
