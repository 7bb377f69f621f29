package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"job-match/internal/app"
	"job-match/internal/filter"
	"job-match/internal/httputil"
	"job-match/internal/pipeline"
	"job-match/internal/queue"
	"job-match/internal/store"
)

type matchTaskPayload struct {
	RunID      uuid.UUID       `json:"run_id"`
	ResumeText string          `json:"resume_text"`
	Location   string          `json:"location"`
	Keywords   string          `json:"keywords"`
	MaxJobs    int             `json:"max_jobs"`
	TopN       int             `json:"top_n"`
	Criteria   filter.Criteria `json:"criteria"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	deps.Log.Info("matcher worker starting")

	g, ctx := errgroup.WithContext(context.Background())

	// Run queue worker
	g.Go(func() error {
		return deps.Queue.Worker(ctx, queue.TaskTypeMatch, func(ctx context.Context, task queue.Task) error {
			var payload matchTaskPayload
			if err := json.Unmarshal(task.Payload, &payload); err != nil {
				return err
			}
			return handleMatch(ctx, deps, payload)
		})
	})

	// Run health check server
	g.Go(func() error {
		return httputil.ServeHealth(deps, "matcher")
	})

	// Wait for either to fail
	if err := g.Wait(); err != nil {
		deps.Log.Error("matcher service stopped", "err", err)
	}
}

func handleMatch(ctx context.Context, deps app.Deps, payload matchTaskPayload) error {
	log := deps.Log.With("run_id", payload.RunID)

	req := pipeline.Request{
		ResumeText: payload.ResumeText,
		Location:   payload.Location,
		Keywords:   payload.Keywords,
		MaxJobs:    payload.MaxJobs,
		TopN:       payload.TopN,
	}
	if !payload.Criteria.IsZero() {
		req.Filters = &payload.Criteria
	}

	recs, err := deps.Matcher.Run(ctx, req)
	if err != nil {
		var stageErr *pipeline.StageError
		if errors.As(err, &stageErr) {
			// Business outcomes like an empty job market or a blank resume
			// are terminal; re-running the task cannot change them.
			log.Warn("match run failed", "stage", stageErr.Stage, "err", stageErr.Err)
			if upErr := deps.Store.UpdateRunStatus(ctx, payload.RunID, store.StatusFailed, stageErr.Error()); upErr != nil {
				return upErr
			}
			return nil
		}
		return err
	}

	if err := deps.Store.SaveRecommendations(ctx, payload.RunID, recs); err != nil {
		return err
	}
	if err := deps.Store.UpdateRunStatus(ctx, payload.RunID, store.StatusReady, ""); err != nil {
		return err
	}
	log.Info("match run completed", "recommendations", len(recs))
	return nil
}
