package embeddings

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"job-match/internal/retry"
)

const (
	defaultRequestsPerMinute = 3000
	defaultMaxRetries        = 3
	defaultMaxTokens         = 8000

	retryBase = time.Second
)

// Settings shape how the client talks to the provider. Zero values fall
// back to the defaults above.
type Settings struct {
	RequestsPerMinute int // ceiling on provider calls, enforced per instance
	MaxRetries        int // attempts per EmbedOne call
	MaxTokens         int // whitespace-token ceiling before truncation
}

// OpenAIClient calls OpenAI's embeddings API with per-instance rate
// limiting, input truncation, and retry with exponential backoff.
type OpenAIClient struct {
	model  openai.EmbeddingModel
	client *openai.Client
	log    *slog.Logger

	maxRetries  int
	maxTokens   int
	minInterval time.Duration

	// guards lastCall so concurrent callers never both dispatch within
	// the same minimum interval
	mu       sync.Mutex
	lastCall time.Time
}

// NewOpenAIClient creates a new OpenAI embedding client. Extra request
// options are passed through to the SDK (tests use option.WithBaseURL).
func NewOpenAIClient(apiKey string, model openai.EmbeddingModel, log *slog.Logger, s Settings, opts ...option.RequestOption) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = openai.EmbeddingModelTextEmbedding3Small
	}
	if log == nil {
		log = slog.Default()
	}
	if s.RequestsPerMinute <= 0 {
		s.RequestsPerMinute = defaultRequestsPerMinute
	}
	if s.MaxRetries <= 0 {
		s.MaxRetries = defaultMaxRetries
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = defaultMaxTokens
	}

	// The SDK retries on its own; call attempts are managed here instead.
	opts = append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	cli := openai.NewClient(opts...)

	return &OpenAIClient{
		model:       model,
		client:      &cli,
		log:         log.With("component", "embeddings"),
		maxRetries:  s.MaxRetries,
		maxTokens:   s.MaxTokens,
		minInterval: time.Minute / time.Duration(s.RequestsPerMinute),
	}, nil
}

// EmbedOne embeds a single text. Transient provider errors are retried up
// to MaxRetries times with 2^attempt second backoff; exhaustion surfaces
// ErrProviderExhausted wrapping the last error.
func (c *OpenAIClient) EmbedOne(ctx context.Context, text string) (Vector, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidInput
	}
	text = c.truncate(text)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := retry.ExponentialBackoff(attempt-1, retryBase)
			c.log.Info("retrying embedding call", "attempt", attempt+1, "max_attempts", c.maxRetries, "wait", wait)
			if err := retry.Wait(ctx, wait); err != nil {
				return nil, err
			}
		}
		if err := c.reserveSlot(ctx); err != nil {
			return nil, err
		}

		resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfString: openai.String(text),
			},
			Model: c.model,
		})
		if err != nil {
			lastErr = err
			c.log.Error("embedding attempt failed", "attempt", attempt+1, "max_attempts", c.maxRetries, "err", err)
			continue
		}
		if len(resp.Data) == 0 {
			lastErr = fmt.Errorf("provider returned no embedding data")
			c.log.Error("embedding attempt failed", "attempt", attempt+1, "max_attempts", c.maxRetries, "err", lastErr)
			continue
		}
		vec := toVector(resp.Data[0].Embedding)
		c.log.Debug("generated embedding", "dimension", len(vec))
		return vec, nil
	}
	return nil, fmt.Errorf("%w after %d attempts: %v", ErrProviderExhausted, c.maxRetries, lastErr)
}

// EmbedMany embeds all texts in one provider call without per-item retry.
// On provider failure every item is marked Failed and the caller moves on.
func (c *OpenAIClient) EmbedMany(ctx context.Context, texts []string) []Result {
	results := make([]Result, len(texts))
	if len(texts) == 0 {
		return results
	}

	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = c.truncate(t)
	}

	if err := c.reserveSlot(ctx); err != nil {
		return failAll(results)
	}

	resp, err := c.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: input,
		},
		Model: c.model,
	})
	if err != nil {
		c.log.Error("batch embedding call failed", "texts", len(texts), "err", err)
		return failAll(results)
	}
	if len(resp.Data) != len(texts) {
		c.log.Error("batch embedding count mismatch", "want", len(texts), "got", len(resp.Data))
		return failAll(results)
	}

	for i, item := range resp.Data {
		results[i] = Result{Vector: toVector(item.Embedding)}
	}
	return results
}

// reserveSlot blocks until the minimum inter-call interval has elapsed
// since the previous call, then records this call's dispatch time. The
// reservation is made under the lock so concurrent callers queue up
// distinct slots.
func (c *OpenAIClient) reserveSlot(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	wait := c.minInterval - now.Sub(c.lastCall)
	if wait < 0 {
		wait = 0
	}
	c.lastCall = now.Add(wait)
	c.mu.Unlock()

	return retry.Wait(ctx, wait)
}

// truncate caps text at the configured whitespace-token ceiling. This is a
// logged normalization, not an error.
func (c *OpenAIClient) truncate(text string) string {
	fields := strings.Fields(text)
	if len(fields) <= c.maxTokens {
		return text
	}
	c.log.Warn("text truncated before embedding", "max_tokens", c.maxTokens, "tokens", len(fields))
	return strings.Join(fields[:c.maxTokens], " ")
}

func failAll(results []Result) []Result {
	for i := range results {
		results[i] = Result{Failed: true}
	}
	return results
}

// toVector converts the SDK's []float64 to the wire-friendly float32 form.
func toVector(embedding []float64) Vector {
	vec := make(Vector, len(embedding))
	for i, v := range embedding {
		vec[i] = float32(v)
	}
	return vec
}
