package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"job-match/internal/app"
	"job-match/internal/config"
	"job-match/internal/queue"
	"job-match/internal/ranker"
	"job-match/internal/resume"
	"job-match/internal/store"
)

func newTestDeps(st store.Store, q queue.Queue) app.Deps {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return app.Deps{
		Store:     st,
		Queue:     q,
		Extractor: resume.NewFileExtractor(log),
		Config: config.Config{
			MaxUploadSize: 1024 * 1024, // 1MB for tests
		},
		Log: log,
	}
}

func TestMatchHandler(t *testing.T) {
	validRunID := uuid.New()

	tests := []struct {
		name          string
		filename      string
		content       []byte
		fields        map[string]string
		setup         func(*store.MockStore, *queue.MockQueue)
		wantStatus    int
		checkResponse func(*testing.T, *http.Response)
	}{
		{
			name:     "successful submission",
			filename: "resume.txt",
			content:  []byte("Senior Go developer with five years of backend experience"),
			fields:   map[string]string{"location": "Austin", "keywords": "golang backend"},
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("CreateRun", mock.Anything, mock.Anything).
					Return(store.Run{ID: validRunID, Status: store.StatusProcessing}, nil).Once()
				q.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()
			},
			wantStatus: http.StatusAccepted,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result map[string]any
				if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if result["run_id"] != validRunID.String() {
					t.Errorf("Expected run_id %s, got %v", validRunID, result["run_id"])
				}
				if result["status"] != string(store.StatusProcessing) {
					t.Errorf("Expected status %s, got %v", store.StatusProcessing, result["status"])
				}
			},
		},
		{
			name:       "file too large",
			filename:   "large.txt",
			content:    make([]byte, 2*1024*1024), // 2MB
			fields:     map[string]string{"location": "Austin", "keywords": "golang"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unsupported extension",
			filename:   "resume.docx",
			content:    []byte("content"),
			fields:     map[string]string{"location": "Austin", "keywords": "golang"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty resume rejected",
			filename:   "resume.txt",
			content:    []byte("   \n  "),
			fields:     map[string]string{"location": "Austin", "keywords": "golang"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing location fails validation",
			filename:   "resume.txt",
			content:    []byte("some resume text"),
			fields:     map[string]string{"keywords": "golang"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing keywords fails validation",
			filename:   "resume.txt",
			content:    []byte("some resume text"),
			fields:     map[string]string{"location": "Austin"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:     "CreateRun failure",
			filename: "resume.txt",
			content:  []byte("some resume text"),
			fields:   map[string]string{"location": "Austin", "keywords": "golang"},
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("CreateRun", mock.Anything, mock.Anything).
					Return(store.Run{}, errors.New("db error")).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:     "Enqueue failure marks run failed",
			filename: "resume.txt",
			content:  []byte("some resume text"),
			fields:   map[string]string{"location": "Austin", "keywords": "golang"},
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("CreateRun", mock.Anything, mock.Anything).
					Return(store.Run{ID: validRunID, Status: store.StatusProcessing}, nil).Once()
				q.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("queue error")).Times(3)
				s.On("UpdateRunStatus", mock.Anything, validRunID, store.StatusFailed, mock.Anything).Return(nil).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(store.MockStore)
			mockQueue := new(queue.MockQueue)

			if tt.setup != nil {
				tt.setup(mockStore, mockQueue)
			}

			deps := newTestDeps(mockStore, mockQueue)
			handler := matchHandler(deps)

			req, err := createMultipartRequest(tt.filename, tt.content, tt.fields)
			if err != nil {
				t.Fatalf("Failed to create request: %v", err)
			}

			w := httptest.NewRecorder()
			handler(w, req)

			resp := w.Result()
			if resp.StatusCode != tt.wantStatus {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("Expected status %d, got %d. Body: %s", tt.wantStatus, resp.StatusCode, string(body))
			}

			if tt.checkResponse != nil {
				resp.Body = io.NopCloser(bytes.NewReader(w.Body.Bytes()))
				tt.checkResponse(t, resp)
			}

			mockStore.AssertExpectations(t)
			mockQueue.AssertExpectations(t)
		})
	}

	// Test missing file separately since it requires different request setup
	t.Run("missing file", func(t *testing.T) {
		mockStore := new(store.MockStore)
		mockQueue := new(queue.MockQueue)
		deps := newTestDeps(mockStore, mockQueue)
		handler := matchHandler(deps)

		req := httptest.NewRequest(http.MethodPost, "/api/match", nil)
		req.Header.Set("Content-Type", "multipart/form-data")
		w := httptest.NewRecorder()

		handler(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestMatchHandlerPayloadCarriesCriteria(t *testing.T) {
	runID := uuid.New()
	mockStore := new(store.MockStore)
	mockQueue := new(queue.MockQueue)

	mockStore.On("CreateRun", mock.Anything, mock.Anything).
		Return(store.Run{ID: runID, Status: store.StatusProcessing}, nil).Once()

	var captured queue.Task
	mockQueue.On("Enqueue", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(queue.Task) }).
		Return(nil).Once()

	deps := newTestDeps(mockStore, mockQueue)
	handler := matchHandler(deps)

	req, err := createMultipartRequest("resume.txt", []byte("python data engineer"), map[string]string{
		"location":   "Remote",
		"keywords":   "data engineer",
		"max_jobs":   "30",
		"top_n":      "5",
		"min_salary": "120000",
		"experience": "Senior,Lead",
		"job_type":   "full-time",
		"skills":     "python, spark",
	})
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected status 202, got %d. Body: %s", w.Code, w.Body.String())
	}

	var payload matchTaskPayload
	if err := json.Unmarshal(captured.Payload, &payload); err != nil {
		t.Fatalf("Failed to decode task payload: %v", err)
	}
	if payload.RunID != runID {
		t.Errorf("Expected run id %s, got %s", runID, payload.RunID)
	}
	if payload.ResumeText != "python data engineer" {
		t.Errorf("Unexpected resume text: %q", payload.ResumeText)
	}
	if payload.MaxJobs != 30 || payload.TopN != 5 {
		t.Errorf("Unexpected limits: max_jobs=%d top_n=%d", payload.MaxJobs, payload.TopN)
	}
	if payload.Criteria.MinSalary != 120000 {
		t.Errorf("Expected min salary 120000, got %d", payload.Criteria.MinSalary)
	}
	if len(payload.Criteria.ExperienceLevels) != 2 || payload.Criteria.ExperienceLevels[1] != "Lead" {
		t.Errorf("Unexpected experience levels: %v", payload.Criteria.ExperienceLevels)
	}
	if len(payload.Criteria.RequiredSkills) != 2 || payload.Criteria.RequiredSkills[1] != "spark" {
		t.Errorf("Unexpected skills: %v", payload.Criteria.RequiredSkills)
	}

	mockStore.AssertExpectations(t)
	mockQueue.AssertExpectations(t)
}

func TestRunHandler(t *testing.T) {
	validRunID := uuid.New()
	created := time.Now()

	tests := []struct {
		name          string
		runID         string
		setup         func(*store.MockStore)
		wantStatus    int
		checkResponse func(*testing.T, *http.Response)
	}{
		{
			name:  "ready run returns recommendations",
			runID: validRunID.String(),
			setup: func(s *store.MockStore) {
				s.On("GetRun", mock.Anything, validRunID).
					Return(store.Run{ID: validRunID, Status: store.StatusReady, CreatedAt: created}, nil).Once()
				s.On("ListRecommendations", mock.Anything, validRunID).
					Return([]ranker.Recommendation{{Rank: 1, Similarity: 0.9123}}, nil).Once()
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result map[string]any
				if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if result["status"] != string(store.StatusReady) {
					t.Errorf("Expected status ready, got %v", result["status"])
				}
				recs, ok := result["recommendations"].([]any)
				if !ok || len(recs) != 1 {
					t.Errorf("Expected 1 recommendation, got %v", result["recommendations"])
				}
			},
		},
		{
			name:  "processing run omits recommendations",
			runID: validRunID.String(),
			setup: func(s *store.MockStore) {
				s.On("GetRun", mock.Anything, validRunID).
					Return(store.Run{ID: validRunID, Status: store.StatusProcessing, CreatedAt: created}, nil).Once()
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result map[string]any
				if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if _, present := result["recommendations"]; present {
					t.Error("Did not expect recommendations while processing")
				}
			},
		},
		{
			name:  "failed run reports reason",
			runID: validRunID.String(),
			setup: func(s *store.MockStore) {
				s.On("GetRun", mock.Anything, validRunID).
					Return(store.Run{ID: validRunID, Status: store.StatusFailed, FailReason: "no jobs found", CreatedAt: created}, nil).Once()
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result map[string]any
				if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if result["fail_reason"] != "no jobs found" {
					t.Errorf("Expected fail reason, got %v", result["fail_reason"])
				}
			},
		},
		{
			name:       "invalid UUID",
			runID:      "not-a-uuid",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:  "run not found",
			runID: validRunID.String(),
			setup: func(s *store.MockStore) {
				s.On("GetRun", mock.Anything, validRunID).
					Return(store.Run{}, store.ErrRunNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(store.MockStore)
			mockQueue := new(queue.MockQueue)

			if tt.setup != nil {
				tt.setup(mockStore)
			}

			deps := newTestDeps(mockStore, mockQueue)
			handler := runHandler(deps)

			req := httptest.NewRequest(http.MethodGet, "/api/runs/"+tt.runID, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.runID)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler(w, req)

			resp := w.Result()
			if resp.StatusCode != tt.wantStatus {
				body, _ := io.ReadAll(resp.Body)
				t.Errorf("Expected status %d, got %d. Body: %s", tt.wantStatus, resp.StatusCode, string(body))
			}

			if tt.checkResponse != nil {
				resp.Body = io.NopCloser(bytes.NewReader(w.Body.Bytes()))
				tt.checkResponse(t, resp)
			}

			mockStore.AssertExpectations(t)
			mockQueue.AssertExpectations(t)
		})
	}
}

func createMultipartRequest(filename string, content []byte, fields map[string]string) (*http.Request, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name="resume"; filename="%s"`, filename)}

	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	req := httptest.NewRequest(http.MethodPost, "/api/match", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req, nil
}
