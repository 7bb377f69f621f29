package embeddings

import "context"

// Vector is a simple float32 slice wrapper.
type Vector []float32

// Result is the outcome of embedding one text within a batch. Failed marks
// items whose provider call did not succeed; Vector is nil in that case.
// Downstream scoring must handle both variants explicitly.
type Result struct {
	Vector Vector
	Failed bool
}

// Client defines the embedding provider interface.
type Client interface {
	// EmbedOne embeds a single text, retrying transient provider errors
	// with backoff before giving up.
	EmbedOne(ctx context.Context, text string) (Vector, error)

	// EmbedMany embeds all texts in one provider call. A provider failure
	// marks every item as Failed instead of returning an error, so the
	// caller decides whether partial results are acceptable.
	EmbedMany(ctx context.Context, texts []string) []Result
}
