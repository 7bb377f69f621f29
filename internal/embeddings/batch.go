package embeddings

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"job-match/internal/retry"
)

const (
	defaultChunkSize  = 20
	defaultWorkers    = 4
	defaultChunkDelay = time.Second

	// emptyPlaceholder stands in for empty texts so batch indices stay
	// aligned with their candidates instead of being dropped.
	emptyPlaceholder = "empty text"
)

// BatchSettings shape batch submission. Zero values fall back to the
// defaults above.
type BatchSettings struct {
	ChunkSize  int           // texts per provider call
	Workers    int           // concurrent chunk calls in flight
	ChunkDelay time.Duration // pacing between successive chunk submissions
}

// Batcher embeds large text lists by splitting them into fixed-size
// chunks, one provider call per chunk. A failed chunk yields Failed for
// every index in it; later chunks still proceed.
type Batcher struct {
	client     Client
	log        *slog.Logger
	chunkSize  int
	workers    int
	chunkDelay time.Duration
}

// NewBatcher creates a batch embedder on top of an embedding client.
func NewBatcher(client Client, log *slog.Logger, s BatchSettings) *Batcher {
	if log == nil {
		log = slog.Default()
	}
	if s.ChunkSize <= 0 {
		s.ChunkSize = defaultChunkSize
	}
	if s.Workers <= 0 {
		s.Workers = defaultWorkers
	}
	if s.ChunkDelay <= 0 {
		s.ChunkDelay = defaultChunkDelay
	}
	return &Batcher{
		client:     client,
		log:        log.With("component", "batch"),
		chunkSize:  s.ChunkSize,
		workers:    s.Workers,
		chunkDelay: s.ChunkDelay,
	}
}

// EmbedBatch embeds texts chunk by chunk and returns exactly len(texts)
// results in input order. Chunk calls run concurrently across a bounded
// pool; each chunk writes into its own slice range, so order is preserved
// regardless of completion order.
func (b *Batcher) EmbedBatch(ctx context.Context, texts []string) []Result {
	results := make([]Result, len(texts))
	if len(texts) == 0 {
		return results
	}
	// Start from all-failed; successful chunks overwrite their range.
	failAll(results)

	input := make([]string, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			input[i] = emptyPlaceholder
		} else {
			input[i] = t
		}
	}

	totalChunks := (len(input) + b.chunkSize - 1) / b.chunkSize
	b.log.Debug("embedding batch", "texts", len(input), "chunks", totalChunks)

	var g errgroup.Group
	g.SetLimit(b.workers)

	for chunk := 0; chunk < totalChunks; chunk++ {
		if chunk > 0 {
			// Pace successive submissions; skipped after the final chunk.
			if err := retry.Wait(ctx, b.chunkDelay); err != nil {
				b.log.Warn("batch cancelled", "remaining_chunks", totalChunks-chunk)
				break
			}
		}

		start := chunk * b.chunkSize
		end := min(start+b.chunkSize, len(input))
		chunkNum := chunk + 1

		g.Go(func() error {
			res := b.client.EmbedMany(ctx, input[start:end])
			if len(res) != end-start {
				b.log.Error("chunk result count mismatch", "chunk", chunkNum, "want", end-start, "got", len(res))
				return nil
			}
			copy(results[start:end], res)
			if failed := countFailed(res); failed > 0 {
				b.log.Warn("chunk failed", "chunk", chunkNum, "total_chunks", totalChunks, "items", failed)
			} else {
				b.log.Debug("chunk completed", "chunk", chunkNum, "total_chunks", totalChunks)
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func countFailed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Failed {
			n++
		}
	}
	return n
}
