// Package pipeline runs the fixed two-stage match flow: embed the resume
// and the fetched jobs, then rank jobs by cosine similarity.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"job-match/internal/embeddings"
	"job-match/internal/filter"
	"job-match/internal/jobs"
	"job-match/internal/ranker"
	"job-match/internal/resume"
	"job-match/internal/similarity"
	"job-match/internal/textproc"
)

const (
	defaultMaxJobs = 50
	defaultTopN    = 10
)

// Request describes one match run. ResumeText, when set, is used directly;
// otherwise the resume is extracted from ResumePath.
type Request struct {
	ResumePath string
	ResumeText string
	Location   string
	Keywords   string
	MaxJobs    int
	TopN       int
	Filters    *filter.Criteria
}

// Matcher orchestrates resume embedding, batch job embedding, and ranking.
type Matcher struct {
	source    jobs.Source
	extractor resume.Extractor
	embedder  embeddings.Client
	batcher   *embeddings.Batcher
	log       *slog.Logger
}

// NewMatcher wires the pipeline's collaborators together.
func NewMatcher(source jobs.Source, extractor resume.Extractor, embedder embeddings.Client, batcher *embeddings.Batcher, log *slog.Logger) *Matcher {
	if log == nil {
		log = slog.Default()
	}
	return &Matcher{
		source:    source,
		extractor: extractor,
		embedder:  embedder,
		batcher:   batcher,
		log:       log.With("component", "pipeline"),
	}
}

// Run executes the pipeline and returns the ranked recommendations.
// Stage failures surface as a *StageError; cancellation is honored between
// stages, so an in-flight retry cycle completes before it takes effect.
func (m *Matcher) Run(ctx context.Context, req Request) ([]ranker.Recommendation, error) {
	if req.MaxJobs <= 0 {
		req.MaxJobs = defaultMaxJobs
	}
	if req.TopN <= 0 {
		req.TopN = defaultTopN
	}

	refVec, err := m.embedResume(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates, results, err := m.embedJobs(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scores, err := similarity.ScoreAll(refVec, results)
	if err != nil {
		return nil, stageErr(StageRanking, err)
	}
	recs, err := ranker.TopN(candidates, scores, req.TopN)
	if err != nil {
		return nil, stageErr(StageRanking, err)
	}

	m.log.Info("match complete", "candidates", len(candidates), "recommendations", len(recs))
	return recs, nil
}

// embedResume produces the mandatory reference vector. Any provider
// failure here is fatal to the whole run.
func (m *Matcher) embedResume(ctx context.Context, req Request) (embeddings.Vector, error) {
	text := req.ResumeText
	if text == "" {
		extracted, err := m.extractor.Extract(req.ResumePath)
		if err != nil {
			return nil, stageErr(StageResume, fmt.Errorf("%w: %v", ErrEmptyResume, err))
		}
		text = extracted
	}
	if strings.TrimSpace(text) == "" {
		return nil, stageErr(StageResume, ErrEmptyResume)
	}
	m.log.Info("resume text ready", "chars", len(text))

	vec, err := m.embedder.EmbedOne(ctx, textproc.Clean(text))
	if err != nil {
		return nil, stageErr(StageResume, err)
	}
	return vec, nil
}

// embedJobs fetches, filters, and batch-embeds the candidates. Partial
// embedding failures pass through; those candidates score 0 and rank last.
func (m *Matcher) embedJobs(ctx context.Context, req Request) ([]jobs.Candidate, []embeddings.Result, error) {
	candidates, err := m.source.Fetch(ctx, req.Location, req.Keywords, req.MaxJobs)
	if err != nil {
		return nil, nil, stageErr(StageJobs, err)
	}
	if len(candidates) == 0 {
		return nil, nil, stageErr(StageJobs, ErrNoJobsFound)
	}
	m.log.Info("jobs fetched", "count", len(candidates))

	if req.Filters != nil && !req.Filters.IsZero() {
		fetched := len(candidates)
		candidates = filter.Apply(candidates, *req.Filters)
		if len(candidates) == 0 {
			return nil, nil, stageErr(StageJobs, fmt.Errorf("%w (%d fetched)", ErrNoJobsMatchFilters, fetched))
		}
		m.log.Info("filters applied", "fetched", fetched, "remaining", len(candidates))
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = textproc.Clean(textproc.PrepareJobText(c))
	}

	results := m.batcher.EmbedBatch(ctx, texts)
	failed := 0
	for _, r := range results {
		if r.Failed {
			failed++
		}
	}
	if failed == len(results) {
		return nil, nil, stageErr(StageEmbedding, fmt.Errorf("%w: all %d job embeddings failed", ErrEmbeddingFailed, len(results)))
	}
	if failed > 0 {
		m.log.Warn("partial embedding failure", "failed", failed, "total", len(results))
	}
	return candidates, results, nil
}
