package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"job-match/internal/app"
	"job-match/internal/filter"
	"job-match/internal/httputil"
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

type matchParams struct {
	Location string `validate:"required"`
	Keywords string `validate:"required"`
	MaxJobs  int    `validate:"gte=0,lte=500"`
	TopN     int    `validate:"gte=0,lte=100"`
}

func main() {
	deps, err := app.Build()
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}
	r := httputil.NewRouter(deps.Log)

	r.Post("/api/match", matchHandler(deps))
	r.Get("/api/runs/{id}", runHandler(deps))
	r.Get("/healthz", httputil.HealthHandler(deps))

	addr := fmt.Sprintf(":%d", deps.Config.Port)
	deps.Log.Info("gateway listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		deps.Log.Error("server failed", "err", err)
	}
}

func matchHandler(deps app.Deps) http.HandlerFunc {
	maxFileSize := deps.Config.MaxUploadSize

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// Validate file size before parsing
		if r.ContentLength > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("resume")
		if err != nil {
			httputil.Fail(deps.Log, w, "resume file is required", err, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if header.Size > maxFileSize {
			httputil.Fail(deps.Log, w, fmt.Sprintf("file too large (max %d bytes)", maxFileSize), nil, http.StatusBadRequest)
			return
		}

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".txt" && ext != ".pdf" {
			httputil.Fail(deps.Log, w, "unsupported file type (only PDF and TXT allowed)", nil, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to read file", err, http.StatusInternalServerError)
			return
		}
		text, err := deps.Extractor.FromBytes(header.Filename, content)
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to extract resume text", err, http.StatusBadRequest)
			return
		}

		params := matchParams{
			Location: r.FormValue("location"),
			Keywords: r.FormValue("keywords"),
			MaxJobs:  formInt(r, "max_jobs"),
			TopN:     formInt(r, "top_n"),
		}
		if err := httputil.Validator.Struct(&params); err != nil {
			httputil.ValidationError(deps.Log, w, err)
			return
		}

		criteria := filter.Criteria{
			MinSalary:        formInt(r, "min_salary"),
			ExperienceLevels: formList(r, "experience"),
			JobTypes:         formList(r, "job_type"),
			RequiredSkills:   formList(r, "skills"),
		}

		run, err := deps.Store.CreateRun(ctx, store.Run{
			ResumeFilename: header.Filename,
			Location:       params.Location,
			Keywords:       params.Keywords,
			MaxJobs:        params.MaxJobs,
			TopN:           params.TopN,
			Criteria:       criteria,
		})
		if err != nil {
			httputil.Fail(deps.Log, w, "failed to persist run", err, http.StatusInternalServerError)
			return
		}

		payload := matchTaskPayload{
			RunID:      run.ID,
			ResumeText: text,
			Location:   params.Location,
			Keywords:   params.Keywords,
			MaxJobs:    params.MaxJobs,
			TopN:       params.TopN,
			Criteria:   criteria,
		}
		body, err := json.Marshal(payload)
		if err != nil {
			fail(deps, ctx, w, "marshal payload failed", err, run.ID, http.StatusInternalServerError, true)
			return
		}
		task := queue.Task{Type: queue.TaskTypeMatch, Payload: body}
		if err := queue.EnqueueWithRetry(ctx, deps.Queue, task, 3, 200*time.Millisecond); err != nil {
			fail(deps, ctx, w, "failed to enqueue match; please retry", err, run.ID, http.StatusInternalServerError, true)
			return
		}

		httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
			"run_id": run.ID.String(),
			"status": run.Status,
		})
	}
}

// fail is the gateway-specific error handler that can mark runs as failed.
func fail(deps app.Deps, ctx context.Context, w http.ResponseWriter, message string, err error, runID uuid.UUID, status int, markFailed bool) {
	log := deps.Log.With("run_id", runID)
	if markFailed && runID != uuid.Nil {
		if upErr := deps.Store.UpdateRunStatus(ctx, runID, store.StatusFailed, message); upErr != nil {
			log.Error("failed to mark run failed", "err", upErr)
		}
	}

	httputil.Fail(log, w, message, err, status)
}

func runHandler(deps app.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr := chi.URLParam(r, "id")
		runID, err := uuid.Parse(idStr)
		if err != nil {
			httputil.Fail(deps.Log, w, "invalid run id", err, http.StatusBadRequest)
			return
		}
		run, err := deps.Store.GetRun(r.Context(), runID)
		if err != nil {
			httputil.Fail(deps.Log, w, "run not found", err, http.StatusNotFound)
			return
		}

		resp := map[string]any{
			"run_id":  run.ID.String(),
			"status":  run.Status,
			"created": run.CreatedAt,
		}
		if run.FailReason != "" {
			resp["fail_reason"] = run.FailReason
		}
		if run.Status == store.StatusReady {
			recs, err := deps.Store.ListRecommendations(r.Context(), runID)
			if err != nil {
				httputil.Fail(deps.Log, w, "failed to load recommendations", err, http.StatusInternalServerError)
				return
			}
			resp["recommendations"] = recs
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}

func formInt(r *http.Request, key string) int {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// formList splits a comma-separated form value into trimmed entries.
func formList(r *http.Request, key string) []string {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
