package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/openai/openai-go/v3"

	"job-match/internal/cache"
	"job-match/internal/config"
	"job-match/internal/embeddings"
	"job-match/internal/jobs"
	"job-match/internal/logger"
	"job-match/internal/pipeline"
	"job-match/internal/queue"
	"job-match/internal/resume"
	"job-match/internal/store"
)

// Deps bundles common runtime dependencies for services.
type Deps struct {
	Config    config.Config
	Log       *slog.Logger
	Store     store.Store
	Queue     queue.Queue
	Embedder  embeddings.Client
	Batcher   *embeddings.Batcher
	Source    jobs.Source
	Extractor *resume.FileExtractor
	Matcher   *pipeline.Matcher
}

// Build loads env, config, and shared components.
func Build() (Deps, error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	st, err := buildStore(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize store: %w", err)
	}
	q, err := buildQueue(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize queue: %w", err)
	}
	embedder, err := buildEmbedder(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	source, err := buildSource(cfg, log)
	if err != nil {
		return Deps{}, fmt.Errorf("failed to initialize job source: %w", err)
	}

	extractor := resume.NewFileExtractor(log)
	batcher := embeddings.NewBatcher(embedder, log, embeddings.BatchSettings{
		ChunkSize:  cfg.ChunkSize,
		Workers:    cfg.ChunkWorkers,
		ChunkDelay: time.Duration(cfg.ChunkDelayMillis) * time.Millisecond,
	})
	matcher := pipeline.NewMatcher(source, extractor, embedder, batcher, log)

	return Deps{
		Config:    cfg,
		Log:       log,
		Store:     st,
		Queue:     q,
		Embedder:  embedder,
		Batcher:   batcher,
		Source:    source,
		Extractor: extractor,
		Matcher:   matcher,
	}, nil
}

func buildStore(cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreProvider {
	case "postgres":
		if cfg.DBURL == "" {
			return nil, fmt.Errorf("DB_URL is required when STORE_PROVIDER=postgres")
		}
		db, err := store.NewPostgres(cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres: %w", err)
		}
		log.Info("using Postgres store")
		return db, nil
	default:
		return nil, fmt.Errorf("invalid STORE_PROVIDER: %s (valid option: postgres)", cfg.StoreProvider)
	}
}

func buildQueue(cfg config.Config, log *slog.Logger) (queue.Queue, error) {
	switch cfg.QueueProvider {
	case "nats":
		if cfg.QueueURL == "" {
			return nil, fmt.Errorf("QUEUE_URL is required when QUEUE_PROVIDER=nats")
		}
		nc, err := nats.Connect(cfg.QueueURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		log.Info("using NATS queue")
		return queue.NewNATS(log, nc), nil
	default:
		return nil, fmt.Errorf("invalid QUEUE_PROVIDER: %s (valid option: nats)", cfg.QueueProvider)
	}
}

func buildEmbedder(cfg config.Config, log *slog.Logger) (embeddings.Client, error) {
	switch cfg.EmbeddingProvider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required when EMBEDDING_PROVIDER=openai")
		}
		client, err := embeddings.NewOpenAIClient(cfg.OpenAIKey, openai.EmbeddingModel(cfg.EmbeddingModel), log, embeddings.Settings{
			RequestsPerMinute: cfg.RequestsPerMinute,
			MaxRetries:        cfg.MaxRetries,
			MaxTokens:         cfg.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize OpenAI embedder: %w", err)
		}
		log.Info("using OpenAI embedder", "model", cfg.EmbeddingModel)

		c, err := buildCache(cfg, log)
		if err != nil {
			return nil, err
		}
		ttl := time.Duration(cfg.CacheTTL) * time.Second
		return embeddings.NewCachedClient(client, c, cfg.EmbeddingModel, ttl, log), nil
	default:
		return nil, fmt.Errorf("invalid EMBEDDING_PROVIDER: %s (valid option: openai)", cfg.EmbeddingProvider)
	}
}

func buildCache(cfg config.Config, log *slog.Logger) (cache.Cache, error) {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set; embedding cache disabled")
		return cache.NewNoOpCache(), nil
	}
	c, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("using Redis embedding cache", "addr", cfg.RedisAddr)
	return c, nil
}

func buildSource(cfg config.Config, log *slog.Logger) (jobs.Source, error) {
	switch cfg.JobProvider {
	case "adzuna":
		src, err := jobs.NewAdzunaSource(cfg.AdzunaAppID, cfg.AdzunaAPIKey, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Adzuna source: %w", err)
		}
		log.Info("using Adzuna job source")
		return src, nil
	default:
		return nil, fmt.Errorf("invalid JOB_PROVIDER: %s (valid option: adzuna)", cfg.JobProvider)
	}
}
