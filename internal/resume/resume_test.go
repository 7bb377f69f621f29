package resume

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractTXT(t *testing.T) {
	path := writeTemp(t, "resume.txt", []byte("Senior Python engineer, 5 years"))

	e := NewFileExtractor(testLogger())
	text, err := e.Extract(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Senior Python engineer, 5 years" {
		t.Errorf("got %q", text)
	}
}

func TestExtractTXTLatin1Fallback(t *testing.T) {
	// "résumé" in Latin-1: e9 is invalid UTF-8
	content := []byte{'r', 0xe9, 's', 'u', 'm', 0xe9}
	path := writeTemp(t, "resume.txt", content)

	e := NewFileExtractor(testLogger())
	text, err := e.Extract(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "résumé" {
		t.Errorf("got %q, want résumé", text)
	}
}

func TestExtractMissingFile(t *testing.T) {
	e := NewFileExtractor(testLogger())
	if _, err := e.Extract(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	path := writeTemp(t, "resume.docx", []byte("whatever"))

	e := NewFileExtractor(testLogger())
	_, err := e.Extract(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("got %v, want unsupported-format error", err)
	}
}

func TestExtractEmptyFile(t *testing.T) {
	path := writeTemp(t, "resume.txt", []byte("   \n\t"))

	e := NewFileExtractor(testLogger())
	if _, err := e.Extract(path); err == nil {
		t.Error("expected error for whitespace-only resume")
	}
}

func TestFromBytesMalformedPDF(t *testing.T) {
	e := NewFileExtractor(testLogger())
	if _, err := e.FromBytes("resume.pdf", []byte("not a pdf")); err == nil {
		t.Error("expected error for malformed pdf")
	}
}
