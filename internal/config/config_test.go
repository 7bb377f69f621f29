package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Save original env and restore after test
	originalEnv := os.Environ()
	defer func() {
		os.Clearenv()
		for _, env := range originalEnv {
			// Parse and restore each env var
			for i, c := range env {
				if c == '=' {
					os.Setenv(env[:i], env[i+1:])
					break
				}
			}
		}
	}()

	// Clear env to test defaults
	os.Clearenv()

	cfg := Load()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"Port", cfg.Port, 8080},
		{"LogLevel", cfg.LogLevel, "info"},
		{"StoreProvider", cfg.StoreProvider, "postgres"},
		{"QueueProvider", cfg.QueueProvider, "nats"},
		{"EmbeddingProvider", cfg.EmbeddingProvider, "openai"},
		{"EmbeddingModel", cfg.EmbeddingModel, "text-embedding-3-small"},
		{"JobProvider", cfg.JobProvider, "adzuna"},
		{"RequestsPerMinute", cfg.RequestsPerMinute, 3000},
		{"MaxRetries", cfg.MaxRetries, 3},
		{"MaxTokens", cfg.MaxTokens, 8000},
		{"ChunkSize", cfg.ChunkSize, 20},
		{"ChunkWorkers", cfg.ChunkWorkers, 4},
		{"ChunkDelayMillis", cfg.ChunkDelayMillis, 1000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	// Save and restore env
	originalPort := os.Getenv("PORT")
	originalRPM := os.Getenv("EMBED_REQUESTS_PER_MINUTE")
	defer func() {
		os.Setenv("PORT", originalPort)
		os.Setenv("EMBED_REQUESTS_PER_MINUTE", originalRPM)
	}()

	// Set test values
	os.Setenv("PORT", "9090")
	os.Setenv("EMBED_REQUESTS_PER_MINUTE", "120")

	cfg := Load()

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.RequestsPerMinute != 120 {
		t.Errorf("expected 120 requests per minute, got %d", cfg.RequestsPerMinute)
	}
}
